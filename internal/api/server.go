// SPDX-License-Identifier: MIT

// Package api exposes the local playback agent's HTTP control surface:
// playback control, playlist navigation, status and stats inspection, and
// Prometheus metrics.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shuliangfu/video-player/internal/player"
)

// Config tunes the HTTP surface.
type Config struct {
	// RatePerMinute bounds requests per client IP.
	RatePerMinute int
	// ReportPath is where POST /v1/report writes the performance report.
	ReportPath string
}

// Server routes control calls to the player.
type Server struct {
	player *player.Player
	log    zerolog.Logger
	cfg    Config
}

// NewServer builds the handler around an existing player.
func NewServer(p *player.Player, cfg Config, logger zerolog.Logger) *Server {
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 120
	}
	if cfg.ReportPath == "" {
		cfg.ReportPath = "performance-report.json"
	}
	return &Server{player: p, log: logger, cfg: cfg}
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.Limit(
		s.cfg.RatePerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
		}),
	))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/load", s.handleLoad)
		r.Post("/play", s.handlePlay)
		r.Post("/pause", s.handlePause)
		r.Post("/toggle", s.handleToggle)
		r.Post("/stop", s.handleStop)
		r.Post("/seek", s.handleSeek)
		r.Post("/volume", s.handleVolume)
		r.Post("/rate", s.handleRate)
		r.Post("/quality", s.handleQuality)
		r.Post("/reconnect", s.handleReconnect)

		r.Post("/playlist/next", s.handleNext)
		r.Post("/playlist/previous", s.handlePrevious)
		r.Post("/playlist/jump/{index}", s.handleJump)
		r.Post("/playlist/shuffle", s.handleShuffle)
		r.Post("/playlist/restore", s.handleRestore)

		r.Get("/status", s.handleStatus)
		r.Get("/stats", s.handleStats)
		r.Get("/video", s.handleVideo)
		r.Get("/buffered", s.handleBuffered)
		r.Get("/network", s.handleNetwork)
		r.Post("/report", s.handleReport)
	})
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type loadRequest struct {
	Locator string `json:"locator"`
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Locator == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "locator required"})
		return
	}
	s.player.LoadSource(req.Locator)
	s.writeJSON(w, http.StatusAccepted, okResponse{OK: true})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Play(r.Context()); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.player.Pause()
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Toggle(r.Context()); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.player.Stop()
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type seekRequest struct {
	Seconds float64 `json:"seconds"`
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seconds required"})
		return
	}
	s.player.Seek(req.Seconds)
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type valueRequest struct {
	Value float64 `json:"value"`
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value required"})
		return
	}
	s.player.SetVolume(req.Value)
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value required"})
		return
	}
	s.player.SetPlaybackRate(req.Value)
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type qualityRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	var req qualityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index required"})
		return
	}
	if err := s.player.SetQualityLevel(req.Index); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleReconnect(w http.ResponseWriter, _ *http.Request) {
	if err := s.player.Reconnect(); err != nil {
		s.writeError(w, http.StatusConflict, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request) {
	if !s.player.Next() {
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": "no next item"})
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handlePrevious(w http.ResponseWriter, _ *http.Request) {
	if !s.player.Previous() {
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": "no previous item"})
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid index"})
		return
	}
	if !s.player.JumpTo(index) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "index out of range"})
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleShuffle(w http.ResponseWriter, _ *http.Request) {
	s.player.Shuffle()
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleRestore(w http.ResponseWriter, _ *http.Request) {
	s.player.RestoreOrder()
	s.writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.player.State())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.player.PlaybackStats())
}

func (s *Server) handleVideo(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.player.VideoInfo())
}

func (s *Server) handleBuffered(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.player.BufferedInfo())
}

func (s *Server) handleNetwork(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.player.NetworkStats())
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	if err := s.player.ExportReport(s.cfg.ReportPath); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"path": s.cfg.ReportPath})
}
