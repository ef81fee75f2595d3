// Package version holds the build version reported by the health and
// system endpoints and stamped into backup metadata.
package version

// Version is the current release. Bump on tagged releases.
const Version = "2.0.0"
