// Package runs archives completed simulation runs so past estimates can
// be listed and replayed. Request and result payloads are stored as
// msgpack blobs with an expiration timestamp for retention cleanup.
package runs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Kind identifies which pipeline produced a run.
type Kind string

const (
	KindClassical Kind = "classical"
	KindQuantum   Kind = "quantum"
	KindBenchmark Kind = "benchmark"
	KindCompare   Kind = "compare"
)

// Summary holds the headline figures kept in queryable columns.
type Summary struct {
	PFE              float64
	ExpectedExposure float64
	Alpha            float64
	RuntimeMS        float64
}

// Record is one archived run. Request and Result hold the msgpack
// encoded payloads; listings omit them.
type Record struct {
	ID               string    `json:"id" msgpack:"id"`
	Kind             Kind      `json:"kind" msgpack:"kind"`
	PFE              float64   `json:"pfe" msgpack:"pfe"`
	ExpectedExposure float64   `json:"expected_exposure" msgpack:"expected_exposure"`
	Alpha            float64   `json:"alpha" msgpack:"alpha"`
	RuntimeMS        float64   `json:"runtime_ms" msgpack:"runtime_ms"`
	Request          []byte    `json:"-" msgpack:"request"`
	Result           []byte    `json:"-" msgpack:"result"`
	CreatedAt        time.Time `json:"created_at" msgpack:"created_at"`
	ExpiresAt        time.Time `json:"expires_at" msgpack:"expires_at"`
}

// NewRecord packs a request and its result into an archivable record
// with a fresh identifier and a retention window of ttl.
func NewRecord(kind Kind, summary Summary, request, result any, ttl time.Duration) (Record, error) {
	requestBlob, err := msgpack.Marshal(request)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode run request: %w", err)
	}
	resultBlob, err := msgpack.Marshal(result)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode run result: %w", err)
	}

	now := time.Now().UTC()
	return Record{
		ID:               uuid.NewString(),
		Kind:             kind,
		PFE:              summary.PFE,
		ExpectedExposure: summary.ExpectedExposure,
		Alpha:            summary.Alpha,
		RuntimeMS:        summary.RuntimeMS,
		Request:          requestBlob,
		Result:           resultBlob,
		CreatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}, nil
}

// DecodeRequest unpacks the archived request payload.
func (r Record) DecodeRequest() (map[string]any, error) {
	return decodeBlob(r.Request)
}

// DecodeResult unpacks the archived result payload.
func (r Record) DecodeResult() (map[string]any, error) {
	return decodeBlob(r.Result)
}

func decodeBlob(blob []byte) (map[string]any, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var payload map[string]any
	if err := msgpack.Unmarshal(blob, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode run payload: %w", err)
	}
	return payload, nil
}
