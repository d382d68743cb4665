// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// History record types

package history

import "time"

// RunRecord is one pipeline run as stored in the index
type RunRecord struct {
	ID            int64
	MapName       string
	StartedAt     time.Time
	Elapsed       time.Duration
	Success       bool
	FailureStage  string // empty on success
	FailureReason string
	SnapshotName  string // empty when no snapshot was saved
	Warnings      int
}

// Status returns a short label for listings
func (r RunRecord) Status() string {
	if r.Success {
		return "ok"
	}
	return "failed@" + r.FailureStage
}
