package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mstovari/framstore/pkg/store"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrPayloadSize):
		status = http.StatusBadRequest
	}

	s.writeJSON(w, status, APIResponse{Success: false, Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: "ok"})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := make([]byte, s.store.PayloadSize())
	if err := s.store.Load(payload); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    RecordResponse{Payload: payload},
	})
}

func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})

		return nil, false
	}

	return req.Payload, true
}

func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.StoreImmediate(payload); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]uint32{"seq": s.store.LastSeq()},
	})
}

func (s *Server) handleDeferRecord(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.StoreDeferred(payload); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusAccepted, APIResponse{Success: true})
}

func (s *Server) handleFlush(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Flush(); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]uint32{"seq": s.store.LastSeq()},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: StatusResponse{
			ID:          s.store.ID(),
			Dirty:       s.store.Dirty(),
			LastSeq:     s.store.LastSeq(),
			Slots:       s.store.SlotCount(),
			SlotSize:    s.store.SlotSize(),
			PayloadSize: s.store.PayloadSize(),
			BaseAddress: s.store.Base(),
		},
	})
}
