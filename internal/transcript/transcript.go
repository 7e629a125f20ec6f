// Package transcript assembles speech-recognition results into transcript
// text and manages its session segmentation.
//
// A transcript is a sequence of segments separated by Delimiter, one
// segment per recording session. Each segment starts with a bracketed
// local-time label written when the session began.
package transcript

import (
	"strings"
	"time"
)

// Delimiter separates recording-session segments inside one transcript.
const Delimiter = "\n\n\n"

// Result is one speech-recognition fragment. Final fragments are settled;
// interim ones are provisional and will be revised or finalized later.
type Result struct {
	Text  string
	Final bool
}

// SessionHeader returns the time label that opens a segment.
func SessionHeader(t time.Time) string {
	return "[" + t.Format("3:04:05 PM") + "]\n"
}

// Assembler folds recognition results into a live display string and a
// durable committed string. Only finalized text is ever persisted.
type Assembler struct {
	final   string // committed buffer, grows on final results only
	interim string // replaced wholesale on every callback
	dirty   bool   // true once any final text arrived
}

// NewAssembler seeds the committed buffer with the prior transcript (if
// any) and a fresh session header.
func NewAssembler(prior string, startedAt time.Time) *Assembler {
	header := SessionHeader(startedAt)
	buf := header
	if prior != "" {
		buf = prior + Delimiter + header
	}
	return &Assembler{final: buf}
}

// Apply folds one recognition callback into the assembler. Results must
// arrive in delivery order; final texts accumulate, interim texts replace
// whatever interim text the previous callback left.
func (a *Assembler) Apply(results []Result) {
	var interim strings.Builder
	for _, r := range results {
		if r.Final {
			a.final += r.Text + " "
			a.dirty = true
		} else {
			interim.WriteString(r.Text)
		}
	}
	a.interim = interim.String()
}

// Display returns the live text shown while recording: the committed
// buffer plus any pending interim text. Never persist this value.
func (a *Assembler) Display() string {
	return strings.TrimSpace(a.final + a.interim)
}

// Final returns the committed text, trimmed. Interim text is discarded.
func (a *Assembler) Final() string {
	return strings.TrimSpace(a.final)
}

// Dirty reports whether the session produced any finalized text. A clean
// session leaves the owning event's transcript unchanged.
func (a *Assembler) Dirty() bool {
	return a.dirty
}

// Segments splits a transcript into its session segments.
func Segments(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, Delimiter)
}

// DeleteSegment removes the segment at index i and rejoins the remainder
// in order. Out-of-range indices leave the transcript unchanged.
func DeleteSegment(s string, i int) string {
	segs := Segments(s)
	if i < 0 || i >= len(segs) {
		return s
	}
	segs = append(segs[:i], segs[i+1:]...)
	return strings.Join(segs, Delimiter)
}
