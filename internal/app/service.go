/**
 * @description
 * This file contains the core business logic for the revenue-service. The `Service`
 * struct orchestrates all creator-facing operations, coordinating between the
 * database repository, the Facebook Graph API client, and the message broker.
 *
 * Key features:
 * - Implements CRUD use cases for transactions, brand deals, social accounts and profiles.
 * - Contains the Instagram account-linking flow (token exchange, page discovery, upsert).
 * - Publishes events to RabbitMQ for asynchronous processing by other services.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/graphclient, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhq/revenue-service/internal/domain"
	"github.com/creatorhq/revenue-service/internal/store"
	"github.com/creatorhq/revenue-service/pkg/graphclient"
	"github.com/creatorhq/revenue-service/pkg/rabbitmq"
)

// InstagramScopes is the permission set requested during the OAuth dialog.
const InstagramScopes = "pages_show_list,instagram_basic,instagram_manage_insights,pages_read_engagement"

// Sentinel errors for the account-linking flow and request validation.
// Handlers map these to HTTP statuses and dashboard redirect codes.
var (
	ErrMissingParameter = errors.New("required parameter is missing")
	ErrConfiguration    = errors.New("service is not configured for this operation")
	ErrValidation       = errors.New("request failed validation")
	ErrTokenExchange    = errors.New("authorization code exchange failed")
	ErrPagesFetch       = errors.New("failed to fetch pages for the authorized identity")
	ErrNoLinkedAccount  = errors.New("no page with a linked instagram business account")
	ErrUpstream         = errors.New("upstream graph api call failed")
	ErrPersistence      = errors.New("failed to persist linked account")
)

// LinkingConfig carries the OAuth credentials and endpoints for the Instagram
// account-linking flow.
type LinkingConfig struct {
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	OAuthDialogURL string
}

// Service provides the core business logic for the revenue dashboard.
type Service struct {
	repo          store.Repository
	graphClient   *graphclient.Client
	eventProducer rabbitmq.Publisher
	refresher     MetricsRefresher
	linking       LinkingConfig
}

// NewService creates a new revenue service instance.
func NewService(repo store.Repository, graph *graphclient.Client, producer rabbitmq.Publisher, refresher MetricsRefresher, linking LinkingConfig) *Service {
	return &Service{
		repo:          repo,
		graphClient:   graph,
		eventProducer: producer,
		refresher:     refresher,
		linking:       linking,
	}
}

// --- Instagram account linking ---

// BuildInstagramAuthorizeURL constructs the OAuth dialog URL for the given
// user. The user id travels in the `state` parameter and comes back on the
// callback.
func (s *Service) BuildInstagramAuthorizeURL(userID string) (string, error) {
	if s.linking.ClientID == "" {
		return "", fmt.Errorf("%w: instagram client id", ErrConfiguration)
	}

	params := url.Values{}
	params.Set("client_id", s.linking.ClientID)
	params.Set("redirect_uri", s.linking.RedirectURI)
	params.Set("state", userID)
	params.Set("scope", InstagramScopes)
	params.Set("response_type", "code")

	return s.linking.OAuthDialogURL + "?" + params.Encode(), nil
}

// LinkInstagramAccount runs the post-callback linking sequence: exchange the
// authorization code for a token, discover the first page with a linked
// Instagram business account, fetch its profile and upsert the social account
// record. Each step is attempted exactly once; on any failure nothing is
// written to the store.
func (s *Service) LinkInstagramAccount(ctx context.Context, userID uuid.UUID, code string) (*domain.SocialAccount, error) {
	if s.linking.ClientID == "" || s.linking.ClientSecret == "" {
		return nil, fmt.Errorf("%w: instagram credentials", ErrConfiguration)
	}

	token, err := s.graphClient.ExchangeCode(ctx, code, s.linking.RedirectURI)
	if err != nil {
		log.Printf("level=warn component=service flow=instagram_link step=token_exchange user_id=%s err=%v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	pages, err := s.graphClient.ListPages(ctx, token.AccessToken)
	if err != nil {
		log.Printf("level=warn component=service flow=instagram_link step=list_pages user_id=%s err=%v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrPagesFetch, err)
	}

	// First page carrying a linked business account wins; page order is
	// whatever the Graph API returned.
	var businessID string
	for _, page := range pages.Data {
		if page.InstagramBusinessAccount != nil {
			businessID = page.InstagramBusinessAccount.ID
			break
		}
	}
	if businessID == "" {
		return nil, ErrNoLinkedAccount
	}

	profile, err := s.graphClient.GetBusinessProfile(ctx, businessID, token.AccessToken)
	if err != nil {
		log.Printf("level=warn component=service flow=instagram_link step=business_profile user_id=%s err=%v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	account := &domain.SocialAccount{
		ID:                    uuid.New(),
		UserID:                userID,
		Platform:              domain.PlatformInstagram,
		Handle:                "@" + profile.Username,
		FollowerCount:         profile.FollowersCount,
		PreviousFollowerCount: profile.FollowersCount,
		EngagementRate:        0,
		Status:                domain.AccountConnected,
		AccessToken:           token.AccessToken,
		InstagramBusinessID:   businessID,
	}
	if err := s.repo.UpsertLinkedAccount(ctx, account); err != nil {
		log.Printf("level=error component=service flow=instagram_link step=upsert user_id=%s err=%v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Printf("level=info component=service flow=instagram_link msg=\"account linked\" user_id=%s handle=%s followers=%d", userID, account.Handle, account.FollowerCount)

	// Best-effort event; linking already succeeded.
	if err := s.eventProducer.PublishAccountLinked(ctx, rabbitmq.AccountLinkedEvent{
		UserID:        userID,
		Platform:      account.Platform,
		Handle:        account.Handle,
		FollowerCount: account.FollowerCount,
		Timestamp:     time.Now().UTC(),
	}); err != nil {
		log.Printf("level=warn component=service flow=instagram_link msg=\"event publish failed\" user_id=%s err=%v", userID, err)
	}

	return account, nil
}

// --- Transactions ---

// ListTransactions returns the user's revenue records, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// CreateTransaction validates and stores a new revenue record.
func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, req domain.TransactionRequest) (*domain.Transaction, error) {
	date, err := s.validateTransactionRequest(req)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
		Status:      req.Status,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction validates and applies changes to an existing revenue record.
func (s *Service) UpdateTransaction(ctx context.Context, txID, userID uuid.UUID, req domain.TransactionRequest) (*domain.Transaction, error) {
	date, err := s.validateTransactionRequest(req)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		ID:          txID,
		UserID:      userID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
		Status:      req.Status,
	}
	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// DeleteTransaction removes a revenue record owned by the user.
func (s *Service) DeleteTransaction(ctx context.Context, txID, userID uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, txID, userID)
}

func (s *Service) validateTransactionRequest(req domain.TransactionRequest) (time.Time, error) {
	if req.Amount <= 0 {
		return time.Time{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !domain.ValidCategory(req.Category) {
		return time.Time{}, fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
	}
	if !domain.ValidTransactionStatus(req.Status) {
		return time.Time{}, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return date, nil
}

// --- Brand deals ---

// ListBrandDeals returns the user's deal pipeline, most recently updated first.
func (s *Service) ListBrandDeals(ctx context.Context, userID uuid.UUID) ([]domain.BrandDeal, error) {
	return s.repo.ListBrandDeals(ctx, userID)
}

// CreateBrandDeal validates and stores a new sponsorship deal.
func (s *Service) CreateBrandDeal(ctx context.Context, userID uuid.UUID, req domain.BrandDealRequest) (*domain.BrandDeal, error) {
	deadline, err := s.validateBrandDealRequest(req)
	if err != nil {
		return nil, err
	}

	deal := &domain.BrandDeal{
		ID:            uuid.New(),
		UserID:        userID,
		BrandName:     req.BrandName,
		ContactPerson: req.ContactPerson,
		ContactEmail:  req.ContactEmail,
		DealValue:     req.DealValue,
		Currency:      req.Currency,
		Status:        req.Status,
		Deliverables:  req.Deliverables,
		Deadline:      deadline,
	}
	if err := s.repo.CreateBrandDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create brand deal: %w", err)
	}
	return deal, nil
}

// UpdateBrandDeal validates and applies changes to an existing deal.
func (s *Service) UpdateBrandDeal(ctx context.Context, dealID, userID uuid.UUID, req domain.BrandDealRequest) (*domain.BrandDeal, error) {
	deadline, err := s.validateBrandDealRequest(req)
	if err != nil {
		return nil, err
	}

	deal := &domain.BrandDeal{
		ID:            dealID,
		UserID:        userID,
		BrandName:     req.BrandName,
		ContactPerson: req.ContactPerson,
		ContactEmail:  req.ContactEmail,
		DealValue:     req.DealValue,
		Currency:      req.Currency,
		Status:        req.Status,
		Deliverables:  req.Deliverables,
		Deadline:      deadline,
	}
	if err := s.repo.UpdateBrandDeal(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

// DeleteBrandDeal removes a deal owned by the user.
func (s *Service) DeleteBrandDeal(ctx context.Context, dealID, userID uuid.UUID) error {
	return s.repo.DeleteBrandDeal(ctx, dealID, userID)
}

func (s *Service) validateBrandDealRequest(req domain.BrandDealRequest) (*time.Time, error) {
	if req.BrandName == "" {
		return nil, fmt.Errorf("%w: brand_name is required", ErrValidation)
	}
	if req.DealValue < 0 {
		return nil, fmt.Errorf("%w: deal_value must not be negative", ErrValidation)
	}
	if !domain.ValidDealStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	if req.Currency != "" && !domain.ValidCurrency(req.Currency) {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrValidation, req.Currency)
	}
	if req.Deadline == "" {
		return nil, nil
	}
	deadline, err := time.ParseInLocation("2006-01-02", req.Deadline, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: deadline must be YYYY-MM-DD", ErrValidation)
	}
	return &deadline, nil
}

// --- Social accounts ---

// ListSocialAccounts returns the user's social profiles, oldest first.
func (s *Service) ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]domain.SocialAccount, error) {
	return s.repo.ListSocialAccounts(ctx, userID)
}

// AddSocialAccount stores a manually added social profile. Manual accounts
// have no API credentials, so they get simulated starting metrics and are
// refreshed by the same sync path as linked accounts.
func (s *Service) AddSocialAccount(ctx context.Context, userID uuid.UUID, req domain.SocialAccountRequest) (*domain.SocialAccount, error) {
	if !domain.ValidPlatform(req.Platform) {
		return nil, fmt.Errorf("%w: unknown platform %q", ErrValidation, req.Platform)
	}
	if req.Handle == "" {
		return nil, fmt.Errorf("%w: handle is required", ErrValidation)
	}

	// Seed starting metrics: 500-10,499 followers, engagement 1.0-6.0, and a
	// previous count slightly below the current one so the first dashboard
	// render shows a growth delta.
	followers := rand.Int63n(10000) + 500
	engagement := math.Round((rand.Float64()*5+1)*10) / 10

	account := &domain.SocialAccount{
		ID:                    uuid.New(),
		UserID:                userID,
		Platform:              req.Platform,
		Handle:                req.Handle,
		FollowerCount:         followers,
		PreviousFollowerCount: followers - rand.Int63n(100),
		EngagementRate:        engagement,
		Status:                domain.AccountConnected,
	}
	if err := s.repo.CreateSocialAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create social account: %w", err)
	}
	return account, nil
}

// DeleteSocialAccount removes a social profile owned by the user.
func (s *Service) DeleteSocialAccount(ctx context.Context, accountID, userID uuid.UUID) error {
	return s.repo.DeleteSocialAccount(ctx, accountID, userID)
}

// --- Profile ---

// GetProfile returns the user's dashboard preferences, falling back to the
// default display currency when no row exists yet.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		return &domain.Profile{UserID: userID, DisplayCurrency: domain.DefaultCurrency}, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile upserts the user's display currency preference.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.ProfileRequest) (*domain.Profile, error) {
	if !domain.ValidCurrency(req.DisplayCurrency) {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrValidation, req.DisplayCurrency)
	}

	profile := &domain.Profile{
		UserID:          userID,
		DisplayCurrency: req.DisplayCurrency,
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// --- Analytics ---

// GetAnalytics computes the revenue summary for the requested range
// ("6m", "1y" or "all"). Aggregates are recomputed from the user's
// transactions on every call.
func (s *Service) GetAnalytics(ctx context.Context, userID uuid.UUID, rangeKey string) (*AnalyticsSummary, error) {
	window, err := windowForRange(rangeKey)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	// Only completed transactions count as revenue. Pending and cancelled
	// rows never reach the totals, growth or category breakdown.
	completed := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Status == domain.TransactionCompleted {
			completed = append(completed, tx)
		}
	}

	summary := BuildSummary(completed, window)
	summary.Range = rangeKey

	// Totals are rendered in the user's display currency.
	currency := domain.DefaultCurrency
	if profile, profileErr := s.GetProfile(ctx, userID); profileErr == nil {
		currency = profile.DisplayCurrency
	} else {
		log.Printf("level=warn component=service flow=analytics msg=\"profile lookup failed; using default currency\" user_id=%s err=%v", userID, profileErr)
	}
	summary.Currency = currency
	summary.TotalDisplay = FormatMoney(summary.Total, currency)

	return summary, nil
}

func windowForRange(rangeKey string) (int, error) {
	switch rangeKey {
	case "6m":
		return 6, nil
	case "1y":
		return 12, nil
	case "all":
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: range must be one of 6m, 1y, all", ErrValidation)
	}
}
