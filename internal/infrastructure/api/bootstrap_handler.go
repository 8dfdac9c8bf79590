package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shopbridge/internal/application"
	"shopbridge/internal/domain"
)

// BootstrapHandler runs the session bootstrap sequence on behalf of the
// embedded UI. The bearer token from the embedding host arrives in the
// Authorization header; its absence is terminal, every later step is best
// effort and reported in the response body.
type BootstrapHandler struct {
	bootstrap *application.BootstrapService
	logger    zerolog.Logger
}

// NewBootstrapHandler creates the bootstrap endpoint.
func NewBootstrapHandler(bootstrap *application.BootstrapService, logger zerolog.Logger) *BootstrapHandler {
	return &BootstrapHandler{bootstrap: bootstrap, logger: logger}
}

type bootstrapRequest struct {
	Shop      string     `json:"shop"`
	SessionID string     `json:"sessionId,omitempty"`
	Scope     string     `json:"scope,omitempty"`
	IsOnline  bool       `json:"isOnline,omitempty"`
	State     string     `json:"state,omitempty"`
	Expires   *time.Time `json:"expires,omitempty"`
}

type bootstrapResponse struct {
	SessionStored      bool   `json:"sessionStored"`
	WebhooksRegistered bool   `json:"webhooksRegistered"`
	StoreError         string `json:"storeError,omitempty"`
	RegisterError      string `json:"registerError,omitempty"`
}

// ServeHTTP handles one bootstrap request.
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		h.logger.Warn().Msg("Bootstrap request without bearer token")
		http.Error(w, "Missing bearer token", http.StatusUnauthorized)
		return
	}

	var req bootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Shop == "" {
		http.Error(w, "shop is required", http.StatusBadRequest)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = domain.OfflineSessionID(req.Shop)
	}

	session := &domain.Session{
		ID:          sessionID,
		Shop:        req.Shop,
		State:       req.State,
		IsOnline:    req.IsOnline,
		AccessToken: token,
		Scope:       req.Scope,
		Expires:     req.Expires,
	}

	result := h.bootstrap.Run(r.Context(), session)

	// The sequence is fire-and-forget from the UI's perspective: step
	// failures ride back in the body, not in the status code.
	resp := bootstrapResponse{
		SessionStored:      result.SessionStored,
		WebhooksRegistered: result.WebhooksRegistered,
	}
	if result.StoreErr != nil {
		resp.StoreError = result.StoreErr.Error()
	}
	if result.RegisterErr != nil {
		resp.RegisterError = result.RegisterErr.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
