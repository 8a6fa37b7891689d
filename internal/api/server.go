package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"Go2NetWindow/internal/model"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// CurrentFunc returns a copy of the window being accumulated.
type CurrentFunc func() model.WindowStats

// Handler holds the dependencies for API handlers.
type Handler struct {
	store   *Store
	current CurrentFunc
}

// NewRouter builds the status routes. current may be nil, in which case the
// live-window route is not registered.
func NewRouter(store *Store, current CurrentFunc) *mux.Router {
	h := &Handler{store: store, current: current}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthHandler).Methods("GET")
	r.HandleFunc("/api/v1/windows/latest", h.latestWindowHandler).Methods("GET")
	if current != nil {
		r.HandleFunc("/api/v1/windows/current", h.currentWindowHandler).Methods("GET")
	}
	r.HandleFunc("/api/v1/results", h.resultsHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}

type windowResponse struct {
	Seq           uint64             `json:"seq,omitempty"`
	Opened        time.Time          `json:"opened"`
	Closed        time.Time          `json:"closed"`
	Packets       uint64             `json:"packets"`
	TCP           uint64             `json:"tcp"`
	UDP           uint64             `json:"udp"`
	ICMP          uint64             `json:"icmp"`
	SrcBytes      uint64             `json:"src_bytes"`
	States        map[string]uint64  `json:"states"`
	WrongFragment bool               `json:"wrong_fragment"`
	Urgent        bool               `json:"urgent"`
	Land          bool               `json:"land"`
	Features      map[string]float64 `json:"features,omitempty"`
	Line          string             `json:"line,omitempty"`
}

func newWindowResponse(s model.WindowStats) windowResponse {
	states := make(map[string]uint64, model.NumConnStates)
	for i, n := range s.States {
		states[model.ConnState(i).String()] = n
	}
	return windowResponse{
		Opened:        s.Opened,
		Closed:        s.Closed,
		Packets:       s.Packets,
		TCP:           s.TCP,
		UDP:           s.UDP,
		ICMP:          s.ICMP,
		SrcBytes:      s.SrcBytes,
		States:        states,
		WrongFragment: s.WrongFragment,
		Urgent:        s.Urgent,
		Land:          s.Land,
	}
}

func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) latestWindowHandler(w http.ResponseWriter, r *http.Request) {
	win, ok := h.store.Latest()
	if !ok {
		http.Error(w, "no window has closed yet", http.StatusNotFound)
		return
	}
	resp := newWindowResponse(win.Stats)
	resp.Seq = win.Seq
	resp.Features = win.Features.Map()
	resp.Line = win.Features.String()
	writeJSON(w, resp)
}

func (h *Handler) currentWindowHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, newWindowResponse(h.current()))
}

type resultResponse struct {
	Line       string    `json:"line"`
	ReceivedAt time.Time `json:"received_at"`
}

func (h *Handler) resultsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	results := h.store.Results(limit)
	resp := make([]resultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, resultResponse{Line: res.Line, ReceivedAt: res.ReceivedAt})
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}

// Server runs the status router on the configured address.
type Server struct {
	server *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{server: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start serves in the background. A listen failure is logged; the
// daemon keeps aggregating without its status API.
func (s *Server) Start() {
	go func() {
		log.Printf("API server starting on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Could not listen on %s: %v", s.server.Addr, err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("API server shutting down...")
	return s.server.Shutdown(ctx)
}
