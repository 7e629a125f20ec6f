// Package capture talks to the local speech daemon over a Unix socket
// using NDJSON and adapts it to the record.Stream contract. The daemon
// owns the microphone and the recognition engine; this package owns the
// wire protocol.
package capture

// Command is sent from the client to the daemon. Cmd is one of start,
// pause, resume, stop, devices or subscribe; subscribe turns the
// connection into an event stream and Locale/Device apply to start only.
type Command struct {
	Cmd    string `json:"cmd"`
	Locale string `json:"locale,omitempty"`
	Device string `json:"device,omitempty"`
}

// Response is returned by the daemon after processing a command.
type Response struct {
	OK        bool     `json:"ok"`
	Error     string   `json:"error,omitempty"`
	Devices   []string `json:"devices,omitempty"`
	Recording *bool    `json:"recording,omitempty"`
}

// Event is streamed from the daemon to subscribed clients. "partial"
// carries interim recognition text, "final" a settled fragment.
type Event struct {
	Event   string `json:"event"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}
