// Package clock abstracts time so window filters and session timestamps
// stay deterministic in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Test helper.
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }
