package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/posqueue/internal/common"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type orderResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, common.PingStatusOK)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	res, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Warn(r.Context(), "login refused", "username", req.Username)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info(r.Context(), "Logged in", "username", req.Username)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		UserID:      res.User.ID,
		DisplayName: res.User.DisplayName,
	})
}

func (s *Server) submitOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	clientRef := r.Header.Get(ClientRefHeader)

	id, created, err := s.orders.Submit(r.Context(), userID, clientRef, payload)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error(r.Context(), "order not stored", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info(r.Context(), "Order accepted", "id", id, "client_ref", clientRef, "replay", !created)

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, orderResponse{ID: id})
}
