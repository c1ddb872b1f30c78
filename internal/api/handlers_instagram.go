/**
 * @description
 * HTTP handlers for the Instagram OAuth account-linking flow. The authorize
 * endpoint hands the browser off to the Facebook OAuth dialog; the callback
 * endpoint finishes the link and always sends the browser back to the
 * dashboard with a success or error query parameter, never an error page.
 */

package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/creatorhq/revenue-service/internal/app"
)

// Dashboard redirect codes for the callback outcome.
const (
	linkErrAuthFailed       = "auth_failed"
	linkErrConfigMissing    = "config_missing"
	linkErrNoIGAccount      = "no_ig_account"
	linkErrConnectionFailed = "instagram_connection_failed"
	linkSuccess             = "instagram_connected"
)

// InstagramAuthorizeHandler starts the OAuth flow by redirecting the browser
// to the Facebook OAuth dialog. The initiating user's id rides along in the
// state parameter.
func (h *RevenueHandlers) InstagramAuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "userId query parameter is required",
			"status": http.StatusBadRequest,
		})
		return
	}

	authorizeURL, err := h.service.BuildInstagramAuthorizeURL(userID)
	if err != nil {
		log.Printf("level=error component=api endpoint=instagram_authorize outcome=failed err=%v", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":  "Instagram integration is not configured",
			"status": http.StatusInternalServerError,
		})
		return
	}

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// InstagramCallbackHandler completes the OAuth flow. Every outcome is a 302
// back to the dashboard; failures carry a machine-readable error code.
func (h *RevenueHandlers) InstagramCallbackHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")
	providerError := query.Get("error")

	if providerError != "" || code == "" || state == "" {
		log.Printf("level=warn component=api endpoint=instagram_callback outcome=reject reason=missing_params provider_error=%q", providerError)
		h.dashboardRedirect(w, r, "error", linkErrAuthFailed)
		return
	}

	userID, err := uuid.Parse(state)
	if err != nil {
		log.Printf("level=warn component=api endpoint=instagram_callback outcome=reject reason=invalid_state state=%q", state)
		h.dashboardRedirect(w, r, "error", linkErrAuthFailed)
		return
	}

	_, err = h.service.LinkInstagramAccount(r.Context(), userID, code)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrConfiguration):
			h.dashboardRedirect(w, r, "error", linkErrConfigMissing)
		case errors.Is(err, app.ErrNoLinkedAccount):
			h.dashboardRedirect(w, r, "error", linkErrNoIGAccount)
		default:
			log.Printf("level=warn component=api endpoint=instagram_callback outcome=failed user_id=%s err=%v", userID, err)
			h.dashboardRedirect(w, r, "error", linkErrConnectionFailed)
		}
		return
	}

	h.dashboardRedirect(w, r, "success", linkSuccess)
}

func (h *RevenueHandlers) dashboardRedirect(w http.ResponseWriter, r *http.Request, key, value string) {
	http.Redirect(w, r, h.appBaseURL+"/dashboard?"+key+"="+value, http.StatusFound)
}
