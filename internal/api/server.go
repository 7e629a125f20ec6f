// Package api exposes the thin server-side proxy that forwards
// summarization requests to the remote model with a server-held secret.
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/myasin/meetnotes/internal/summarize"
)

// Server proxies summarization requests so the API token never reaches
// the client.
type Server struct {
	addr     string
	upstream string
	token    string
	httpc    *http.Client
}

// New creates a proxy server. token may be empty; requests then fail
// with 401 until one is configured.
func New(addr, upstream, token string) *Server {
	if upstream == "" {
		upstream = summarize.DefaultEndpoint
	}
	return &Server{addr: addr, upstream: upstream, token: token, httpc: http.DefaultClient}
}

// Handler returns the routed handler, CORS included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/summarize", s.summarizeProxy)
	mux.HandleFunc("GET /api/check-key", s.checkKey)
	return withCORS(mux)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	slog.Info("starting summarize proxy", "addr", s.addr, "upstream", s.upstream)
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS opens the API to all origins and short-circuits preflight.
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) checkKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"hasKey": s.token != ""})
}

// SummarizeRequest is the client-facing request body.
type SummarizeRequest struct {
	Text string `json:"text"`
}

// summarizeProxy forwards the text upstream and returns the provider's
// JSON verbatim, with the provider's status code.
func (s *Server) summarizeProxy(w http.ResponseWriter, r *http.Request) {
	if s.token == "" {
		writeError(w, http.StatusUnauthorized, "API key not configured")
		return
	}

	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	body, err := summarize.RequestBody(req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	upReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.upstream, bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	upReq.Header.Set("Content-Type", "application/json")
	upReq.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpc.Do(upReq)
	if err != nil {
		slog.Error("upstream request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("proxied summarize request", "status", resp.StatusCode, "bytes", len(raw))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
