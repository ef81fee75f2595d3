package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/database"
)

// MaintenanceJob keeps the runs archive healthy between backups: it
// verifies integrity, truncates the WAL file and reclaims freelist
// pages. Meant to run daily, before the backup job.
type MaintenanceJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job for the runs database.
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:  db,
		log: log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Run performs the maintenance pass. An integrity failure is returned
// as an error so it surfaces in the scheduler log; WAL and vacuum
// problems are logged and skipped since they only affect file size.
func (j *MaintenanceJob) Run() error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("Integrity check failed")
		return err
	}

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	if _, err := j.db.Conn().ExecContext(ctx, "PRAGMA incremental_vacuum"); err != nil {
		j.log.Warn().Err(err).Msg("Incremental vacuum failed")
	}

	stats, err := j.db.GetStats()
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to read database stats")
	} else {
		j.log.Info().
			Int64("size_bytes", stats.SizeBytes).
			Int64("wal_size_bytes", stats.WALSizeBytes).
			Int64("freelist_pages", stats.FreelistCount).
			Dur("duration", time.Since(start)).
			Msg("Database maintenance completed")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *MaintenanceJob) Name() string {
	return "db_maintenance"
}
