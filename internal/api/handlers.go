/**
 * @description
 * This file contains the HTTP handlers for the revenue-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/creatorhq/revenue-service/internal/app"
	"github.com/creatorhq/revenue-service/internal/domain"
	"github.com/creatorhq/revenue-service/internal/store"
)

// RevenueHandlers holds the application service that handlers will use.
type RevenueHandlers struct {
	service        *app.Service
	rateLimiter    app.RateLimiter
	appBaseURL     string
	syncRateLimit  int
	syncRateWindow time.Duration
}

// NewRevenueHandlers creates a new instance of RevenueHandlers.
func NewRevenueHandlers(service *app.Service, limiter app.RateLimiter, appBaseURL string, syncRateLimit int, syncRateWindow time.Duration) *RevenueHandlers {
	return &RevenueHandlers{
		service:        service,
		rateLimiter:    limiter,
		appBaseURL:     appBaseURL,
		syncRateLimit:  syncRateLimit,
		syncRateWindow: syncRateWindow,
	}
}

// authedUserID pulls the authenticated user's UUID out of the request context.
// It writes the error response itself when the ID is absent or malformed.
func (h *RevenueHandlers) authedUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		log.Printf("level=warn component=api outcome=reject reason=invalid_user_id user_id=%s", userIDStr)
		h.writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the {id} URL parameter as a UUID.
func (h *RevenueHandlers) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// --- Transactions ---

// ListTransactionsHandler returns the user's revenue records.
func (h *RevenueHandlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_transactions outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// CreateTransactionHandler records a new revenue entry.
func (h *RevenueHandlers) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	var req domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=create_transaction outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	tx, err := h.service.CreateTransaction(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=create_transaction outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

// UpdateTransactionHandler applies changes to an existing revenue entry.
func (h *RevenueHandlers) UpdateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	txID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	tx, err := h.service.UpdateTransaction(r.Context(), txID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrValidation):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrTransactionNotFound):
			h.writeError(w, http.StatusNotFound, "Transaction not found")
		default:
			log.Printf("level=error component=api endpoint=update_transaction outcome=failed transaction_id=%s user_id=%s err=%v", txID, userID, err)
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

// DeleteTransactionHandler removes a revenue entry.
func (h *RevenueHandlers) DeleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	txID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), txID, userID); err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			h.writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		log.Printf("level=error component=api endpoint=delete_transaction outcome=failed transaction_id=%s user_id=%s err=%v", txID, userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Brand deals ---

// ListBrandDealsHandler returns the user's deal pipeline.
func (h *RevenueHandlers) ListBrandDealsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	deals, err := h.service.ListBrandDeals(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_deals outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if deals == nil {
		deals = []domain.BrandDeal{}
	}
	h.writeJSON(w, http.StatusOK, deals)
}

// CreateBrandDealHandler records a new sponsorship deal.
func (h *RevenueHandlers) CreateBrandDealHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	var req domain.BrandDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	deal, err := h.service.CreateBrandDeal(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=create_deal outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusCreated, deal)
}

// UpdateBrandDealHandler applies changes to an existing deal.
func (h *RevenueHandlers) UpdateBrandDealHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	dealID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req domain.BrandDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	deal, err := h.service.UpdateBrandDeal(r.Context(), dealID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrValidation):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrBrandDealNotFound):
			h.writeError(w, http.StatusNotFound, "Brand deal not found")
		default:
			log.Printf("level=error component=api endpoint=update_deal outcome=failed deal_id=%s user_id=%s err=%v", dealID, userID, err)
			h.writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	h.writeJSON(w, http.StatusOK, deal)
}

// DeleteBrandDealHandler removes a deal.
func (h *RevenueHandlers) DeleteBrandDealHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	dealID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBrandDeal(r.Context(), dealID, userID); err != nil {
		if errors.Is(err, store.ErrBrandDealNotFound) {
			h.writeError(w, http.StatusNotFound, "Brand deal not found")
			return
		}
		log.Printf("level=error component=api endpoint=delete_deal outcome=failed deal_id=%s user_id=%s err=%v", dealID, userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Social accounts ---

// ListSocialAccountsHandler returns the user's social profiles.
func (h *RevenueHandlers) ListSocialAccountsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.ListSocialAccounts(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_socials outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if accounts == nil {
		accounts = []domain.SocialAccount{}
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

// AddSocialAccountHandler records a manually added social profile.
func (h *RevenueHandlers) AddSocialAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	var req domain.SocialAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	account, err := h.service.AddSocialAccount(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=add_social outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

// DeleteSocialAccountHandler removes a social profile.
func (h *RevenueHandlers) DeleteSocialAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	accountID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSocialAccount(r.Context(), accountID, userID); err != nil {
		if errors.Is(err, store.ErrSocialAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "Social account not found")
			return
		}
		log.Printf("level=error component=api endpoint=delete_social outcome=failed account_id=%s user_id=%s err=%v", accountID, userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncSocialAccountsHandler triggers a metrics refresh for all the user's
// accounts. Rate limited per user when Redis is configured.
func (h *RevenueHandlers) SyncSocialAccountsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	if h.rateLimiter != nil && h.syncRateLimit > 0 {
		count, retryAfter, err := h.rateLimiter.ConsumeRateLimit(r.Context(), "social_sync", userID.String(), h.syncRateLimit, h.syncRateWindow)
		if err != nil {
			// Limiter failures must not block syncs; log and continue.
			log.Printf("level=warn component=api endpoint=sync_socials msg=\"rate limiter unavailable\" user_id=%s err=%v", userID, err)
		} else if count > h.syncRateLimit {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			h.writeError(w, http.StatusTooManyRequests, "Too many sync requests. Please wait and try again.")
			return
		}
	}

	result, err := h.service.SyncAccounts(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=sync_socials outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// --- Profile ---

// GetProfileHandler returns the user's dashboard preferences.
func (h *RevenueHandlers) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=get_profile outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

// UpdateProfileHandler upserts the user's display currency preference.
func (h *RevenueHandlers) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	var req domain.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=update_profile outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

// GetCurrenciesHandler returns the fixed display-currency table.
func (h *RevenueHandlers) GetCurrenciesHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, domain.Currencies)
}

// --- Analytics ---

// GetAnalyticsHandler returns the revenue summary for the requested range.
// The range query parameter defaults to "6m".
func (h *RevenueHandlers) GetAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}

	rangeKey := r.URL.Query().Get("range")
	if rangeKey == "" {
		rangeKey = "6m"
	}

	summary, err := h.service.GetAnalytics(r.Context(), userID, rangeKey)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("level=error component=api endpoint=get_analytics outcome=failed user_id=%s err=%v", userID, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// writeJSON is a helper for writing JSON responses.
func (h *RevenueHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *RevenueHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
