package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/models"
	"github.com/dmitrijs2005/berbagi/internal/notify"
	"github.com/dmitrijs2005/berbagi/internal/syncer"
	"github.com/dmitrijs2005/berbagi/internal/worker"
)

const maxBodySize = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg worker.Message
	if err := decode(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message")
		return
	}

	err := s.deps.Worker.HandleMessage(r.Context(), msg)
	switch {
	case errors.Is(err, common.ErrNoWaiting):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.log.Error(r.Context(), "message failed", "type", msg.Type, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, s.deps.Worker.Status())
	}
}

type syncRequest struct {
	Tag string `json:"tag"`
}

type syncResponse struct {
	Registered bool `json:"registered"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sync request")
		return
	}
	ok := s.deps.Syncer.Register(r.Context(), req.Tag)
	status := http.StatusAccepted
	if !ok {
		status = http.StatusOK
	}
	writeJSON(w, status, syncResponse{Registered: ok})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable payload")
		return
	}
	n, err := s.deps.Bridge.Push(r.Context(), raw)
	if err != nil {
		s.log.Warn(r.Context(), "push delivery failed", "error", err)
	}
	writeJSON(w, http.StatusOK, n)
}

type clickRequest struct {
	Action       string              `json:"action"`
	Notification notify.Notification `json:"notification"`
}

type clickResponse struct {
	Open bool   `json:"open"`
	URL  string `json:"url,omitempty"`
}

func (s *Server) handleNotificationClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid click")
		return
	}
	target, ok := s.deps.Bridge.Click(r.Context(), req.Action, req.Notification)
	if !ok {
		writeJSON(w, http.StatusOK, clickResponse{})
		return
	}
	if u, err := s.appBase.Parse(target); err == nil {
		target = u.String()
	}
	writeJSON(w, http.StatusOK, clickResponse{Open: true, URL: target})
}

type statusResponse struct {
	Worker  worker.Status       `json:"worker"`
	Sync    syncer.Status       `json:"sync"`
	Storage *models.StorageInfo `json:"storage,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Worker: s.deps.Worker.Status(),
		Sync:   s.deps.Syncer.Status(),
	}
	if s.deps.Info != nil {
		info, err := s.deps.Info.Info(r.Context())
		if err != nil {
			s.log.Error(r.Context(), "storage info failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.Storage = info
	}
	writeJSON(w, http.StatusOK, resp)
}
