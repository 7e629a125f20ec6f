// Package summarize sends transcripts to a remote text-generation model
// and derives key points locally.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/myasin/meetnotes/internal/model"
)

// DefaultEndpoint is the hosted summarization model.
const DefaultEndpoint = "https://api-inference.huggingface.co/models/sshleifer/distilbart-cnn-12-6"

// Request shaping. Text beyond MaxInputLength is silently dropped from
// the remote call; key points are always derived from the full text.
const (
	MaxInputLength   = 1000
	MaxSummaryLength = 130
	MinSummaryLength = 30
)

// Client calls the remote summarization endpoint.
type Client struct {
	endpoint string
	token    string
	httpc    *http.Client
}

// New creates a client for the given endpoint and bearer token.
func New(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{endpoint: endpoint, token: token, httpc: http.DefaultClient}
}

type request struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
	Options    options    `json:"options"`
}

type parameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type options struct {
	WaitForModel bool `json:"wait_for_model"`
}

type result struct {
	SummaryText string `json:"summary_text"`
}

// RequestBody builds the JSON body sent to the model for the given text,
// truncated to MaxInputLength characters.
func RequestBody(text string) ([]byte, error) {
	return json.Marshal(request{
		Inputs: truncate(text, MaxInputLength),
		Parameters: parameters{
			MaxLength: MaxSummaryLength,
			MinLength: MinSummaryLength,
			DoSample:  false,
		},
		Options: options{WaitForModel: true},
	})
}

// Summarize sends the first MaxInputLength characters of text to the
// model and returns the generated summary verbatim. Non-2xx responses
// surface the provider's payload wrapped in model.ErrRemote; the call is
// never retried.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	body, err := RequestBody(text)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrRemote, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", model.ErrRemote, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var results []result
	if err := json.Unmarshal(raw, &results); err != nil {
		return "", fmt.Errorf("%w: unexpected response: %v", model.ErrRemote, err)
	}
	if len(results) == 0 || results[0].SummaryText == "" {
		return "", fmt.Errorf("%w: empty response", model.ErrRemote)
	}
	return results[0].SummaryText, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// KeyPoints extracts up to MaxKeyPoints sentences of trimmed length at
// least MinKeyPointLength, in original order. Sentences end at terminal
// punctuation; a trailing fragment without one is not a candidate.
func KeyPoints(text string) []string {
	var points []string
	for _, s := range sentences(text) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < model.MinKeyPointLength {
			continue
		}
		points = append(points, s)
		if len(points) == model.MaxKeyPoints {
			break
		}
	}
	return points
}

// sentences splits text into runs of non-terminal characters followed by
// their run of terminal punctuation.
func sentences(text string) []string {
	var out []string
	start := 0
	inTerm := false
	for i, r := range text {
		term := r == '.' || r == '!' || r == '?'
		if inTerm && !term {
			out = append(out, text[start:i])
			start = i
		}
		inTerm = term
	}
	if inTerm {
		out = append(out, text[start:])
	}
	return out
}

// EventStore is the slice of the repository the gateway writes through.
type EventStore interface {
	GetEvent(id int64) (model.Event, error)
	SetSummary(id int64, summary string, keyPoints []string) error
}

// SummarizeEvent summarizes the event's transcription and persists the
// summary together with locally derived key points. On any failure the
// event is left exactly as it was.
func (c *Client) SummarizeEvent(ctx context.Context, store EventStore, id int64) error {
	ev, err := store.GetEvent(id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(ev.Transcription) == "" {
		return fmt.Errorf("%w: no transcription to summarize", model.ErrValidation)
	}

	summary, err := c.Summarize(ctx, ev.Transcription)
	if err != nil {
		return err
	}

	return store.SetSummary(id, summary, KeyPoints(ev.Transcription))
}
