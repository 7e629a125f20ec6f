package capture

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/myasin/meetnotes/internal/model"
	"github.com/myasin/meetnotes/internal/record"
	"github.com/myasin/meetnotes/internal/transcript"
)

// DefaultSocketPath returns the default speech daemon socket path.
func DefaultSocketPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".meetnotes", "speechd.sock")
}

// Client opens capture/recognition streams against the speech daemon.
type Client struct {
	socketPath string
	locale     string
}

// New creates a client for the daemon at socketPath.
func New(socketPath, locale string) *Client {
	return &Client{socketPath: socketPath, locale: locale}
}

// conn wraps one NDJSON connection. Commands get exactly one response
// line each.
type conn struct {
	c       net.Conn
	scanner *bufio.Scanner
	mu      sync.Mutex
}

func dial(socketPath string) (*conn, error) {
	c, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(c)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer
	return &conn{c: c, scanner: scanner}, nil
}

func (cn *conn) send(cmd Command) (Response, error) {
	cn.mu.Lock()
	defer cn.mu.Unlock()

	data, err := json.Marshal(cmd)
	if err != nil {
		return Response{}, fmt.Errorf("marshal command: %w", err)
	}
	data = append(data, '\n')
	if _, err := cn.c.Write(data); err != nil {
		return Response{}, fmt.Errorf("write command: %w", err)
	}

	if !cn.scanner.Scan() {
		if err := cn.scanner.Err(); err != nil {
			return Response{}, fmt.Errorf("read response: %w", err)
		}
		return Response{}, fmt.Errorf("connection closed")
	}

	var resp Response
	if err := json.Unmarshal(cn.scanner.Bytes(), &resp); err != nil {
		return Response{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp, nil
}

func (cn *conn) readEvent() (Event, error) {
	if !cn.scanner.Scan() {
		if err := cn.scanner.Err(); err != nil {
			return Event{}, fmt.Errorf("read event: %w", err)
		}
		return Event{}, fmt.Errorf("connection closed")
	}
	var ev Event
	if err := json.Unmarshal(cn.scanner.Bytes(), &ev); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return ev, nil
}

func (cn *conn) close() error {
	return cn.c.Close()
}

// Open starts a capture + recognition session. Two connections are used:
// one for commands, one subscribed to the event stream, so control
// responses never interleave with recognition events.
func (c *Client) Open() (record.Stream, error) {
	cmdConn, err := dial(c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: speech daemon not reachable: %v", model.ErrUnsupported, err)
	}

	evConn, err := dial(c.socketPath)
	if err != nil {
		cmdConn.close()
		return nil, fmt.Errorf("%w: speech daemon not reachable: %v", model.ErrUnsupported, err)
	}

	resp, err := cmdConn.send(Command{Cmd: "start", Locale: c.locale})
	if err != nil {
		cmdConn.close()
		evConn.close()
		return nil, fmt.Errorf("start capture: %w", err)
	}
	if !resp.OK {
		cmdConn.close()
		evConn.close()
		return nil, classifyStartError(resp.Error)
	}

	if _, err := evConn.send(Command{Cmd: "subscribe"}); err != nil {
		cmdConn.send(Command{Cmd: "stop"})
		cmdConn.close()
		evConn.close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	s := &stream{
		cmd:     cmdConn,
		ev:      evConn,
		results: make(chan []transcript.Result, 16),
	}
	go s.readLoop()
	return s, nil
}

// Devices lists the daemon's audio input devices.
func (c *Client) Devices() ([]string, error) {
	cn, err := dial(c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: speech daemon not reachable: %v", model.ErrUnsupported, err)
	}
	defer cn.close()

	resp, err := cn.send(Command{Cmd: "devices"})
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("list devices: %s", resp.Error)
	}
	return resp.Devices, nil
}

// classifyStartError maps daemon start failures onto the error taxonomy.
func classifyStartError(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "denied"),
		strings.Contains(lower, "permission"),
		strings.Contains(lower, "no microphone"),
		strings.Contains(lower, "no input device"):
		return fmt.Errorf("%w: %s", model.ErrDevice, msg)
	case strings.Contains(lower, "unsupported"),
		strings.Contains(lower, "no recognition"):
		return fmt.Errorf("%w: %s", model.ErrUnsupported, msg)
	default:
		return fmt.Errorf("start capture: %s", msg)
	}
}

// stream is one live session. It owns both connections and is released
// exactly once.
type stream struct {
	cmd     *conn
	ev      *conn
	results chan []transcript.Result
	closed  sync.Once
}

func (s *stream) Results() <-chan []transcript.Result {
	return s.results
}

// readLoop forwards recognition events until the event connection closes.
func (s *stream) readLoop() {
	defer close(s.results)
	for {
		ev, err := s.ev.readEvent()
		if err != nil {
			return
		}
		switch ev.Event {
		case "partial":
			s.results <- []transcript.Result{{Text: ev.Text}}
		case "final":
			s.results <- []transcript.Result{{Text: ev.Text, Final: true}}
		}
	}
}

// Pause suspends recognition and capture on the daemon side.
func (s *stream) Pause() error {
	resp, err := s.cmd.send(Command{Cmd: "pause"})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("pause: %s", resp.Error)
	}
	return nil
}

// Resume restarts recognition after a pause.
func (s *stream) Resume() error {
	resp, err := s.cmd.send(Command{Cmd: "resume"})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("resume: %s", resp.Error)
	}
	return nil
}

// Stop ends the session and closes both connections. The results channel
// closes once the event connection drops.
func (s *stream) Stop() error {
	var err error
	s.closed.Do(func() {
		_, err = s.cmd.send(Command{Cmd: "stop"})
		s.cmd.close()
		s.ev.close()
	})
	return err
}
