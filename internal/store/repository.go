/**
 * @description
 * This file defines the Repository interface for the revenue-service's data
 * access layer. Abstracting database operations behind an interface decouples
 * the business logic from the concrete PostgreSQL implementation and lets
 * tests substitute an in-memory fake.
 */

package store

import (
	"context"

	"github.com/creatorhq/revenue-service/internal/domain"
	"github.com/google/uuid"
)

// Repository defines the storage operations required by the application service.
// Every method is scoped to a single owning user; no cross-entity joins are
// performed here.
type Repository interface {
	// Transactions
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	UpdateTransaction(ctx context.Context, tx *domain.Transaction) error
	DeleteTransaction(ctx context.Context, txID, userID uuid.UUID) error

	// Brand deals
	ListBrandDeals(ctx context.Context, userID uuid.UUID) ([]domain.BrandDeal, error)
	CreateBrandDeal(ctx context.Context, deal *domain.BrandDeal) error
	UpdateBrandDeal(ctx context.Context, deal *domain.BrandDeal) error
	DeleteBrandDeal(ctx context.Context, dealID, userID uuid.UUID) error

	// Social accounts
	ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]domain.SocialAccount, error)
	CreateSocialAccount(ctx context.Context, account *domain.SocialAccount) error
	UpdateSocialMetrics(ctx context.Context, accountID, userID uuid.UUID, followers int64, engagement float64) error
	MarkSocialAccountError(ctx context.Context, accountID, userID uuid.UUID) error
	UpsertLinkedAccount(ctx context.Context, account *domain.SocialAccount) error
	DeleteSocialAccount(ctx context.Context, accountID, userID uuid.UUID) error
	ListUsersWithSocialAccounts(ctx context.Context) ([]uuid.UUID, error)

	// Profiles
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
}
