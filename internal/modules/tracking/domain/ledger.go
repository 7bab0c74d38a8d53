package domain

import "time"

// LedgerSession is the ledger's view of an open session.
type LedgerSession struct {
	ID          string
	Type        SessionType
	StartTime   time.Time
	OpenPauseID string
}
