/**
 * @description
 * This file defines the core domain models for the revenue-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests, database models, and external service
 *   payloads ensures clear separation of concerns and type safety.
 * - Monetary amounts are stored as `float64` backed by a `numeric` column. All
 *   aggregates are computed on read; no derived values are persisted.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction categories. Free-form input is rejected; the dashboard only
// offers this fixed set.
const (
	CategoryBrandDeal      = "Brand Deal"
	CategoryAdRevenue      = "Ad Revenue"
	CategoryAffiliate      = "Affiliate"
	CategoryDigitalProduct = "Digital Product"
	CategoryOther          = "Other"
)

// Transaction statuses.
const (
	TransactionCompleted = "completed"
	TransactionPending   = "pending"
	TransactionCancelled = "cancelled"
)

// Brand deal pipeline statuses. The pipeline advances pitching -> completed;
// cancelled is an absorbing alternate state reachable from any stage.
const (
	DealPitching     = "pitching"
	DealNegotiating  = "negotiating"
	DealContractSent = "contract_sent"
	DealSigned       = "signed"
	DealInProgress   = "in_progress"
	DealCompleted    = "completed"
	DealCancelled    = "cancelled"
)

// Social platforms.
const (
	PlatformInstagram = "Instagram"
	PlatformYouTube   = "YouTube"
	PlatformTwitter   = "Twitter"
	PlatformLinkedIn  = "LinkedIn"
	PlatformTikTok    = "TikTok"
	PlatformOther     = "Other"
)

// Social account connection statuses.
const (
	AccountConnected    = "connected"
	AccountDisconnected = "disconnected"
	AccountError        = "error"
)

// TransactionCategories lists every valid transaction category.
var TransactionCategories = []string{
	CategoryBrandDeal,
	CategoryAdRevenue,
	CategoryAffiliate,
	CategoryDigitalProduct,
	CategoryOther,
}

// DealStatuses lists every valid brand deal pipeline status.
var DealStatuses = []string{
	DealPitching,
	DealNegotiating,
	DealContractSent,
	DealSigned,
	DealInProgress,
	DealCompleted,
	DealCancelled,
}

// Platforms lists every valid social platform.
var Platforms = []string{
	PlatformInstagram,
	PlatformYouTube,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformTikTok,
	PlatformOther,
}

// ValidCategory reports whether category is one of the fixed transaction categories.
func ValidCategory(category string) bool {
	return contains(TransactionCategories, category)
}

// ValidTransactionStatus reports whether status is a valid transaction status.
func ValidTransactionStatus(status string) bool {
	return status == TransactionCompleted || status == TransactionPending || status == TransactionCancelled
}

// ValidDealStatus reports whether status is a valid brand deal pipeline status.
func ValidDealStatus(status string) bool {
	return contains(DealStatuses, status)
}

// ValidPlatform reports whether platform is a supported social platform.
func ValidPlatform(platform string) bool {
	return contains(Platforms, platform)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// Transaction represents one revenue record tracked by a creator.
// This struct maps directly to the `transactions` table in the database.
type Transaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"` // calendar date, midnight UTC
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransactionRequest is the DTO for creating or updating a transaction.
type TransactionRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Status      string  `json:"status"`
}

// BrandDeal represents a sponsorship deal moving through the pipeline.
type BrandDeal struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	BrandName     string     `json:"brand_name"`
	ContactPerson string     `json:"contact_person"`
	ContactEmail  string     `json:"contact_email"`
	DealValue     float64    `json:"deal_value"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	Deliverables  string     `json:"deliverables"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BrandDealRequest is the DTO for creating or updating a brand deal.
type BrandDealRequest struct {
	BrandName     string  `json:"brand_name"`
	ContactPerson string  `json:"contact_person"`
	ContactEmail  string  `json:"contact_email"`
	DealValue     float64 `json:"deal_value"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	Deliverables  string  `json:"deliverables"`
	Deadline      string  `json:"deadline"` // YYYY-MM-DD, optional
}

// SocialAccount represents one linked or manually added social profile.
// For Instagram accounts connected through the OAuth flow, AccessToken and
// InstagramBusinessID hold the Graph API credentials; for manual accounts
// they are empty.
type SocialAccount struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                uuid.UUID  `json:"user_id"`
	Platform              string     `json:"platform"`
	Handle                string     `json:"handle"`
	FollowerCount         int64      `json:"follower_count"`
	PreviousFollowerCount int64      `json:"previous_follower_count"`
	EngagementRate        float64    `json:"engagement_rate"`
	Status                string     `json:"status"`
	AccessToken           string     `json:"-"`
	InstagramBusinessID   string     `json:"instagram_business_id,omitempty"`
	LastSyncedAt          *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// SocialAccountRequest is the DTO for manually adding a social account.
type SocialAccountRequest struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// Profile holds per-user dashboard preferences.
type Profile struct {
	UserID          uuid.UUID `json:"user_id"`
	DisplayCurrency string    `json:"display_currency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfileRequest is the DTO for updating the display currency preference.
type ProfileRequest struct {
	DisplayCurrency string `json:"display_currency"`
}

// SyncOutcome reports the result of refreshing one social account's metrics.
// FollowerDisplay is the compact rendition (1.2M, 45.3k) shown by the dashboard.
type SyncOutcome struct {
	AccountID       uuid.UUID `json:"account_id"`
	Platform        string    `json:"platform"`
	Handle          string    `json:"handle"`
	FollowerCount   int64     `json:"follower_count"`
	FollowerDisplay string    `json:"follower_display,omitempty"`
	EngagementRate  float64   `json:"engagement_rate"`
	Status          string    `json:"status"`
	Error           string    `json:"error,omitempty"`
}

// SyncResult summarizes one batch sync pass over a user's accounts.
type SyncResult struct {
	SyncedCount int           `json:"synced_count"`
	FailedCount int           `json:"failed_count"`
	Outcomes    []SyncOutcome `json:"outcomes"`
}
