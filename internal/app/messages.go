package app

import "github.com/myasin/meetnotes/internal/record"

// LiveTextMsg carries the live transcript text for the recording event.
// The session controller publishes it on every recognition callback.
type LiveTextMsg struct {
	EventID int64
	Text    string
}

// RecordStartedMsg is sent when a start attempt finishes.
type RecordStartedMsg struct {
	Session record.Session
	Err     error
}

// RecordStoppedMsg is sent when a stop attempt finishes.
type RecordStoppedMsg struct {
	EventID int64
	Err     error
}

// SummaryDoneMsg is sent when a summarization attempt finishes.
type SummaryDoneMsg struct {
	EventID int64
	Err     error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
