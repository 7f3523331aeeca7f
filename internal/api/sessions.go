package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/c360chat/c360chat/internal/auth"
	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/observability"
	"github.com/c360chat/c360chat/internal/render"
)

// anonymousTenant owns sessions created without auth and without an
// X-Tenant-ID header.
const anonymousTenant = "anonymous"

const maxTurnBodyBytes = 64 << 10

type sessionResponse struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"created_at"`
	Turns     []conversation.Turn `json:"turns"`
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	conversation.Turn
	ShowTable bool `json:"show_table"`
}

func handleCreateSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	tenantID, ok := authorizeChat(deps, w, r)
	if !ok {
		return
	}

	session := deps.Sessions.Create(tenantID)
	observability.SetActiveSessions(deps.Sessions.Len())
	if deps.Logger != nil {
		deps.Logger.InfoContext(r.Context(), "session created", "session_id", session.ID, "tenant_id", tenantID)
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:        session.ID,
		CreatedAt: session.CreatedAt,
		Turns:     []conversation.Turn{},
	})
}

func handleGetSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	session, ok := lookupSession(deps, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        session.ID,
		CreatedAt: session.CreatedAt,
		Turns:     session.State.Turns(),
	})
}

func handleDeleteSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	tenantID, ok := authorizeChat(deps, w, r)
	if !ok {
		return
	}
	sessionID := r.PathValue("session")
	if err := deps.Sessions.Delete(tenantID, sessionID); err != nil {
		writeSessionError(w, r, err)
		return
	}
	observability.SetActiveSessions(deps.Sessions.Len())
	w.WriteHeader(http.StatusNoContent)
}

func handleCreateTurn(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Assistant == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASSISTANT_NOT_CONFIGURED", "assistant is not configured", false, nil)
		return
	}
	session, ok := lookupSession(deps, w, r)
	if !ok {
		return
	}

	var request turnRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTurnBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid turn request body", false, map[string]any{"details": err.Error()})
		return
	}
	text := strings.TrimSpace(request.Text)
	if text == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "TEXT_REQUIRED", "text is required", false, nil)
		return
	}

	session.LockTurn()
	turn := deps.Assistant.RunTurn(r.Context(), session.State, text)
	session.UnlockTurn()
	if deps.Logger != nil {
		deps.Logger.DebugContext(r.Context(), "turn answered", "session_id", session.ID, "turn_id", turn.ID, "outcome", string(turn.Outcome))
	}

	writeJSON(w, http.StatusOK, turnResponse{Turn: turn, ShowTable: render.ShowTable(turn)})
}

func authorizeChat(deps Dependencies, w http.ResponseWriter, r *http.Request) (string, bool) {
	if deps.Sessions == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SESSIONS_NOT_CONFIGURED", "session registry is not configured", false, nil)
		return "", false
	}
	tenantID := tenantFromRequest(r)
	if err := requireRole(r, auth.RoleChatUser); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return "", false
	}
	return tenantID, true
}

func lookupSession(deps Dependencies, w http.ResponseWriter, r *http.Request) (*conversation.Session, bool) {
	tenantID, ok := authorizeChat(deps, w, r)
	if !ok {
		return nil, false
	}
	session, err := deps.Sessions.Get(tenantID, r.PathValue("session"))
	if err != nil {
		writeSessionError(w, r, err)
		return nil, false
	}
	return session, true
}

func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, conversation.ErrSessionNotFound) {
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error(), false, map[string]any{"session_id": r.PathValue("session")})
		return
	}
	writeError(r.Context(), w, http.StatusInternalServerError, "SESSION_ERROR", err.Error(), false, nil)
}

func tenantFromRequest(r *http.Request) string {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		if strings.TrimSpace(identity.TenantID) != "" {
			return identity.TenantID
		}
	}
	if tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-ID")); tenantID != "" {
		return tenantID
	}
	return anonymousTenant
}

func requireRole(r *http.Request, role string) error {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil
	}
	if identity.HasRole(role) {
		return nil
	}
	return fmt.Errorf("missing required role %q", role)
}
