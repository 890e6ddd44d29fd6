package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/malawibank/analyzer/internal/api/middleware"
	"github.com/malawibank/analyzer/internal/auth"
	"github.com/malawibank/analyzer/internal/document"
	"github.com/malawibank/analyzer/internal/domain"
	"github.com/malawibank/analyzer/internal/export"
	"github.com/malawibank/analyzer/internal/pipeline"
	"github.com/malawibank/analyzer/internal/store"
)

// AuthHandler handles registration, sign-in and session endpoints.
type AuthHandler struct {
	provider auth.Provider
	log      zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(provider auth.Provider, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, log: log}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "email, password and name are required")
		return
	}

	user, err := h.provider.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if errors.Is(err, auth.ErrEmailTaken) {
		middleware.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Sign-up failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, user)
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		middleware.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Sign-in failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, user)
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.SignOut(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Sign-out failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword handles POST /api/auth/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.provider.ResetPassword(r.Context(), req.Email)
	if errors.Is(err, auth.ErrInvalidEmail) {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Password reset failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	// Success is reported whether or not the account exists.
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for this address, reset instructions have been sent",
	})
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, err := h.provider.CurrentUser(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Session lookup failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to restore session")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

// AnalysisHandler handles statement analysis endpoints.
type AnalysisHandler struct {
	orch *pipeline.Orchestrator
	log  zerolog.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(orch *pipeline.Orchestrator, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{orch: orch, log: log}
}

// Analyze handles POST /api/analyze (multipart, field "file").
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(document.MaxFileSize + 1<<20); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "A statement file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")

	item, err := h.orch.Analyze(r.Context(), user.ID, header.Filename, mimeType, data)
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		middleware.WriteError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, document.ErrUnsupportedType):
		middleware.WriteError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, document.ErrFileTooLarge):
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Str("file", header.Filename).Msg("Analysis failed")
		middleware.WriteError(w, http.StatusInternalServerError,
			"The analysis could not be completed. Please try again in a moment.")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, item)
}

// State handles GET /api/analyze/state
func (h *AnalysisHandler) State(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"state":      string(h.orch.State()),
		"last_error": h.orch.LastError(),
	})
}

// Reset handles POST /api/analyze/reset
func (h *AnalysisHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.orch.Reset(); err != nil {
		middleware.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"state": string(h.orch.State()),
	})
}

// HistoryHandler handles saved-analysis endpoints.
type HistoryHandler struct {
	history *store.HistoryRepo
	log     zerolog.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(history *store.HistoryRepo, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, log: log}
}

// List handles GET /api/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	items, err := h.history.List(user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, items)
}

// Delete handles DELETE /api/history/{id}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request, itemID string) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.history.Remove(user.ID, itemID); err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to delete history item")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete history item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/history/{id}/export
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request, itemID string) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	item, found, err := h.history.Find(user.ID, itemID)
	if err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("Failed to load history item")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load history item")
		return
	}
	if !found {
		middleware.WriteError(w, http.StatusNotFound, "History item not found")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "malawibank-report-"+item.ID+".csv"))
	if err := export.WriteSummary(w, &item.Result); err != nil {
		h.log.Error().Err(err).Str("item_id", itemID).Msg("CSV export failed")
	}
}

// BillingHandler handles plan upgrade endpoints.
type BillingHandler struct {
	provider auth.Provider
	log      zerolog.Logger
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(provider auth.Provider, log zerolog.Logger) *BillingHandler {
	return &BillingHandler{provider: provider, log: log}
}

// Upgrade handles POST /api/billing/upgrade
func (h *BillingHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Method domain.PaymentMethod `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.Method {
	case domain.PaymentAirtel, domain.PaymentMpamba, domain.PaymentVisa, domain.PaymentPaypal:
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Unknown payment method")
		return
	}

	updated, err := h.provider.UpgradePlan(r.Context(), user.ID, req.Method)
	if errors.Is(err, auth.ErrUserNotFound) {
		middleware.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("Plan upgrade failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upgrade plan")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, updated)
}
