// server.go - REST surface of the mixer daemon.
//
// The daemon simulates the hosting ledger's execution model: a single mutex
// serializes every state-changing call, and a snapshot is written after each
// committed mutation so a restart resumes exactly where the process stopped.
package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"mixer/internal/mixer"
)

// Server owns the mixer state and its HTTP surface.
type Server struct {
	cfg     *Config
	log     *logrus.Logger
	limiter *ClientRateLimiter
	health  *HealthChecker

	mu    sync.Mutex
	mixer *mixer.Mixer
}

// NewServer wires the daemon around an initialized or restored mixer.
func NewServer(cfg *Config, log *logrus.Logger, m *mixer.Mixer, health *HealthChecker) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		limiter: NewClientRateLimiter(cfg.RateLimitTokens, cfg.RateLimitRefill),
		health:  health,
		mixer:   m,
	}
}

// Handler builds the daemon's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/deposit", s.limited(s.handleDeposit))
	mux.HandleFunc("/withdraw", s.limited(s.handleWithdraw))
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

type depositRequest struct {
	Commitment string `json:"commitment"`
	Amount     uint64 `json:"amount"`
}

type depositResponse struct {
	LeafIndex uint64 `json:"leaf_index"`
	Root      string `json:"root"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	defer observe("deposit", time.Now())
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		depositsTotal.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	commitment, err := mixer.DigestFromHex(req.Commitment)
	if err != nil {
		depositsTotal.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	receipt, err := s.mixer.Deposit(commitment, req.Amount)
	if err == nil {
		s.persistLocked()
	}
	s.mu.Unlock()

	if err != nil {
		depositsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		s.log.WithFields(logrus.Fields{
			"amount": req.Amount,
			"error":  err,
		}).Warn("deposit rejected")
		writeError(w, statusFor(err), err.Error())
		return
	}

	depositsTotal.WithLabelValues("accepted").Inc()
	s.updateGauges()
	s.log.WithFields(logrus.Fields{
		"leaf_index": receipt.Index,
		"amount":     req.Amount,
	}).Info("deposit accepted")
	writeJSON(w, http.StatusOK, depositResponse{
		LeafIndex: uint64(receipt.Index),
		Root:      receipt.Root.String(),
	})
}

type withdrawRequest struct {
	Nullifier    string `json:"nullifier"`
	Root         string `json:"root"`
	Recipient    string `json:"recipient"`
	Denomination uint64 `json:"denomination"`
	Proof        string `json:"proof"` // base64
}

type withdrawResponse struct {
	Net uint64 `json:"net"`
	Fee uint64 `json:"fee"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	defer observe("withdraw", time.Now())
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		withdrawalsTotal.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	nullifier, err := mixer.DigestFromHex(req.Nullifier)
	if err != nil {
		withdrawalsTotal.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	root, err := mixer.DigestFromHex(req.Root)
	if err != nil {
		withdrawalsTotal.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		withdrawalsTotal.WithLabelValues("malformed").Inc()
		writeError(w, http.StatusBadRequest, "invalid proof encoding")
		return
	}

	s.mu.Lock()
	receipt, err := s.mixer.Withdraw(mixer.WithdrawRequest{
		Nullifier:    nullifier,
		Root:         root,
		Recipient:    mixer.AccountID(req.Recipient),
		Denomination: req.Denomination,
		Proof:        proof,
	})
	// A failed withdrawal may still have burned the nullifier; persist
	// unconditionally so the burn survives a restart.
	s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		withdrawalsTotal.WithLabelValues(outcomeLabel(err)).Inc()
		s.updateGauges()
		s.log.WithFields(logrus.Fields{
			"nullifier":    req.Nullifier,
			"denomination": req.Denomination,
			"error":        err,
		}).Warn("withdrawal rejected")
		writeError(w, statusFor(err), err.Error())
		return
	}

	withdrawalsTotal.WithLabelValues("settled").Inc()
	s.updateGauges()
	s.log.WithFields(logrus.Fields{
		"nullifier":    req.Nullifier,
		"denomination": req.Denomination,
		"net":          receipt.Net,
		"fee":          receipt.Fee,
	}).Info("withdrawal settled")
	writeJSON(w, http.StatusOK, withdrawResponse{Net: receipt.Net, Fee: receipt.Fee})
}

type statsResponse struct {
	Root      string            `json:"root"`
	TreeSize  uint64            `json:"tree_size"`
	Spent     int               `json:"spent_nullifiers"`
	Pool      []mixer.PoolEntry `json:"pool"`
	FeeBps    uint16            `json:"fee_basis_points"`
	MinDelayS uint64            `json:"min_delay_seconds"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	defer observe("stats", time.Now())
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	resp := statsResponse{
		Root:      s.mixer.LatestRoot().String(),
		TreeSize:  s.mixer.TreeSize(),
		Spent:     s.mixer.SpentNullifiers(),
		Pool:      s.mixer.Stats(),
		FeeBps:    s.mixer.Policy().FeeBasisPoints,
		MinDelayS: s.mixer.Policy().MinDelaySeconds,
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	health := s.health.CheckHealth()
	status := http.StatusOK
	if health.OverallStatus != Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// limited wraps a handler with per-client rate limiting.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			client = r.RemoteAddr
		}
		if !s.limiter.Allow(client) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

// persistLocked snapshots state to disk; the caller holds s.mu.
func (s *Server) persistLocked() {
	if err := s.mixer.SaveToFile(s.cfg.SnapshotPath); err != nil {
		snapshotFailures.Inc()
		s.log.WithError(err).Error("snapshot write failed")
	}
}

func (s *Server) updateGauges() {
	s.mu.Lock()
	size := s.mixer.TreeSize()
	spent := s.mixer.SpentNullifiers()
	pool := s.mixer.Stats()
	s.mu.Unlock()

	treeSize.Set(float64(size))
	spentNullifiers.Set(float64(spent))
	for _, e := range pool {
		poolAvailable.WithLabelValues(formatDenomination(e.Denomination)).Set(float64(e.Available()))
	}
}

// statusFor maps the core error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, mixer.ErrMalformed), errors.Is(err, mixer.ErrInvalidDenomination):
		return http.StatusBadRequest
	case errors.Is(err, mixer.ErrStaleRoot):
		return http.StatusGone
	case errors.Is(err, mixer.ErrTooEarly):
		return http.StatusTooEarly
	case errors.Is(err, mixer.ErrAlreadySpent):
		return http.StatusConflict
	case errors.Is(err, mixer.ErrInvalidProof):
		return http.StatusUnprocessableEntity
	case errors.Is(err, mixer.ErrPoolInsufficient):
		return http.StatusConflict
	case errors.Is(err, mixer.ErrCapacityExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, mixer.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// outcomeLabel keeps metric labels to a small fixed vocabulary.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, mixer.ErrMalformed), errors.Is(err, mixer.ErrInvalidDenomination):
		return "malformed"
	case errors.Is(err, mixer.ErrStaleRoot):
		return "stale_root"
	case errors.Is(err, mixer.ErrTooEarly):
		return "too_early"
	case errors.Is(err, mixer.ErrAlreadySpent):
		return "already_spent"
	case errors.Is(err, mixer.ErrInvalidProof):
		return "invalid_proof"
	case errors.Is(err, mixer.ErrPoolInsufficient):
		return "pool_insufficient"
	case errors.Is(err, mixer.ErrCapacityExceeded):
		return "capacity_exceeded"
	default:
		return "error"
	}
}

func observe(endpoint string, start time.Time) {
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func formatDenomination(d uint64) string {
	return strconv.FormatUint(d, 10)
}
