package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sqlchat/sqlchat/internal/chat"
)

type sessionResponse struct {
	ID        string         `json:"id"`
	Strategy  string         `json:"strategy"`
	State     chat.TurnState `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Messages  []chat.Message `json:"messages"`
}

type strategyChangedResponse struct {
	ID       string `json:"id"`
	Strategy string `json:"strategy"`
	Previous string `json:"previous"`
}

func newSessionResponse(session *chat.Session) sessionResponse {
	return sessionResponse{
		ID:        session.ID(),
		Strategy:  session.Strategy().String(),
		State:     session.State(),
		CreatedAt: session.CreatedAt(),
		UpdatedAt: session.UpdatedAt(),
		Messages:  session.Messages(),
	}
}

func handleCreateSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat sessions are not configured", false, nil)
		return
	}
	session, err := deps.Sessions.Create()
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(session))
}

func handleGetSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	session, ok := lookupSession(deps, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func handleDeleteSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat sessions are not configured", false, nil)
		return
	}
	if err := deps.Sessions.Delete(r.PathValue("id")); err != nil {
		writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleSetStrategy(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	session, ok := lookupSession(deps, w, r)
	if !ok {
		return
	}
	var request setStrategyRequest
	if err := decodeRequest(w, r, &request); err != nil {
		writeRequestError(w, r, err)
		return
	}
	previous := session.Strategy()
	next := strategyOrDefault(request.Strategy)
	session.SetStrategy(next)
	writeJSON(w, http.StatusOK, strategyChangedResponse{
		ID:       session.ID(),
		Strategy: next.String(),
		Previous: previous.String(),
	})
}

func handleSubmitMessage(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	session, ok := lookupSession(deps, w, r)
	if !ok {
		return
	}
	var request submitMessageRequest
	if err := decodeRequest(w, r, &request); err != nil {
		writeRequestError(w, r, err)
		return
	}
	turn, err := session.Submit(r.Context(), request.Text, strategyOrDefault(request.Strategy))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func lookupSession(deps Dependencies, w http.ResponseWriter, r *http.Request) (*chat.Session, bool) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat sessions are not configured", false, nil)
		return nil, false
	}
	session, err := deps.Sessions.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return nil, false
	}
	return session, true
}

func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error(), false, map[string]any{"session_id": r.PathValue("id")})
	case errors.Is(err, chat.ErrEmptyInput):
		writeError(r.Context(), w, http.StatusBadRequest, "EMPTY_INPUT", err.Error(), false, nil)
	case errors.Is(err, chat.ErrTurnInProgress):
		writeError(r.Context(), w, http.StatusConflict, "TURN_IN_PROGRESS", err.Error(), true, nil)
	case errors.Is(err, chat.ErrSessionLimit):
		writeError(r.Context(), w, http.StatusServiceUnavailable, "SESSION_LIMIT", err.Error(), true, nil)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(r.Context(), w, http.StatusRequestTimeout, "REQUEST_TIMEOUT", err.Error(), true, nil)
	case errors.Is(err, context.Canceled):
		writeError(r.Context(), w, http.StatusServiceUnavailable, "REQUEST_CANCELED", err.Error(), true, nil)
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "CHAT_ERROR", err.Error(), true, nil)
	}
}
