/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to transactions, brand deals, social accounts, and profiles.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/creatorhq/revenue-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrBrandDealNotFound     = errors.New("brand deal not found")
	ErrSocialAccountNotFound = errors.New("social account not found")
	ErrProfileNotFound       = errors.New("profile not found")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListTransactions retrieves all of a user's transactions, newest date first.
func (r *PostgresRepository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, COALESCE(description, '') AS description, category,
		       date, status, created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Amount, &tx.Description, &tx.Category,
			&tx.Date, &tx.Status, &tx.CreatedAt, &tx.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// CreateTransaction inserts a new transaction record into the database.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, amount, description, category, date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		tx.ID, tx.UserID, tx.Amount, tx.Description, tx.Category, tx.Date, tx.Status,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
}

// UpdateTransaction updates an existing transaction owned by the same user.
func (r *PostgresRepository) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET amount = $1, description = $2, category = $3, date = $4, status = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
	`
	result, err := r.db.Exec(ctx, query,
		tx.Amount, tx.Description, tx.Category, tx.Date, tx.Status, tx.ID, tx.UserID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction owned by the user.
func (r *PostgresRepository) DeleteTransaction(ctx context.Context, txID, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, "DELETE FROM transactions WHERE id = $1 AND user_id = $2", txID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListBrandDeals retrieves all of a user's brand deals, most recently updated first.
func (r *PostgresRepository) ListBrandDeals(ctx context.Context, userID uuid.UUID) ([]domain.BrandDeal, error) {
	query := `
		SELECT id, user_id, brand_name, COALESCE(contact_person, '') AS contact_person,
		       COALESCE(contact_email, '') AS contact_email, deal_value, currency, status,
		       COALESCE(deliverables, '') AS deliverables, deadline, created_at, updated_at
		FROM brand_deals
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []domain.BrandDeal
	for rows.Next() {
		var deal domain.BrandDeal
		err := rows.Scan(
			&deal.ID, &deal.UserID, &deal.BrandName, &deal.ContactPerson, &deal.ContactEmail,
			&deal.DealValue, &deal.Currency, &deal.Status, &deal.Deliverables, &deal.Deadline,
			&deal.CreatedAt, &deal.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}

	return deals, rows.Err()
}

// CreateBrandDeal inserts a new brand deal record into the database.
func (r *PostgresRepository) CreateBrandDeal(ctx context.Context, deal *domain.BrandDeal) error {
	query := `
		INSERT INTO brand_deals (id, user_id, brand_name, contact_person, contact_email,
		                         deal_value, currency, status, deliverables, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		deal.ID, deal.UserID, deal.BrandName, deal.ContactPerson, deal.ContactEmail,
		deal.DealValue, deal.Currency, deal.Status, deal.Deliverables, deal.Deadline,
	).Scan(&deal.CreatedAt, &deal.UpdatedAt)
}

// UpdateBrandDeal updates an existing brand deal owned by the same user.
func (r *PostgresRepository) UpdateBrandDeal(ctx context.Context, deal *domain.BrandDeal) error {
	query := `
		UPDATE brand_deals
		SET brand_name = $1, contact_person = $2, contact_email = $3, deal_value = $4,
		    currency = $5, status = $6, deliverables = $7, deadline = $8, updated_at = NOW()
		WHERE id = $9 AND user_id = $10
	`
	result, err := r.db.Exec(ctx, query,
		deal.BrandName, deal.ContactPerson, deal.ContactEmail, deal.DealValue,
		deal.Currency, deal.Status, deal.Deliverables, deal.Deadline, deal.ID, deal.UserID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrBrandDealNotFound
	}
	return nil
}

// DeleteBrandDeal removes a brand deal owned by the user.
func (r *PostgresRepository) DeleteBrandDeal(ctx context.Context, dealID, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, "DELETE FROM brand_deals WHERE id = $1 AND user_id = $2", dealID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrBrandDealNotFound
	}
	return nil
}

// ListSocialAccounts retrieves all of a user's social accounts, oldest first.
func (r *PostgresRepository) ListSocialAccounts(ctx context.Context, userID uuid.UUID) ([]domain.SocialAccount, error) {
	query := `
		SELECT id, user_id, platform, handle, follower_count, previous_follower_count,
		       engagement_rate, status, COALESCE(access_token, '') AS access_token,
		       COALESCE(instagram_business_id, '') AS instagram_business_id,
		       last_synced_at, created_at, updated_at
		FROM social_accounts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.SocialAccount
	for rows.Next() {
		var account domain.SocialAccount
		err := rows.Scan(
			&account.ID, &account.UserID, &account.Platform, &account.Handle,
			&account.FollowerCount, &account.PreviousFollowerCount, &account.EngagementRate,
			&account.Status, &account.AccessToken, &account.InstagramBusinessID,
			&account.LastSyncedAt, &account.CreatedAt, &account.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// CreateSocialAccount inserts a manually added social account.
func (r *PostgresRepository) CreateSocialAccount(ctx context.Context, account *domain.SocialAccount) error {
	query := `
		INSERT INTO social_accounts (id, user_id, platform, handle, follower_count,
		                             previous_follower_count, engagement_rate, status, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING last_synced_at, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		account.ID, account.UserID, account.Platform, account.Handle, account.FollowerCount,
		account.PreviousFollowerCount, account.EngagementRate, account.Status,
	).Scan(&account.LastSyncedAt, &account.CreatedAt, &account.UpdatedAt)
}

// UpdateSocialMetrics persists refreshed metrics for one account and stamps the
// sync time. The status is reset to connected on every successful refresh.
func (r *PostgresRepository) UpdateSocialMetrics(ctx context.Context, accountID, userID uuid.UUID, followers int64, engagement float64) error {
	query := `
		UPDATE social_accounts
		SET follower_count = $1, engagement_rate = $2, status = 'connected',
		    last_synced_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`
	result, err := r.db.Exec(ctx, query, followers, engagement, accountID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSocialAccountNotFound
	}
	return nil
}

// MarkSocialAccountError flags an account whose refresh failed.
func (r *PostgresRepository) MarkSocialAccountError(ctx context.Context, accountID, userID uuid.UUID) error {
	query := `UPDATE social_accounts SET status = 'error', updated_at = NOW() WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, accountID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSocialAccountNotFound
	}
	return nil
}

// UpsertLinkedAccount inserts or overwrites an OAuth-linked account. The
// conflict target (user_id, platform, instagram_business_id) makes relinking
// the same business account idempotent per user.
func (r *PostgresRepository) UpsertLinkedAccount(ctx context.Context, account *domain.SocialAccount) error {
	query := `
		INSERT INTO social_accounts (id, user_id, platform, handle, follower_count,
		                             previous_follower_count, engagement_rate, status,
		                             access_token, instagram_business_id, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id, platform, instagram_business_id)
		DO UPDATE SET
			handle = EXCLUDED.handle,
			follower_count = EXCLUDED.follower_count,
			engagement_rate = EXCLUDED.engagement_rate,
			status = EXCLUDED.status,
			access_token = EXCLUDED.access_token,
			last_synced_at = NOW(),
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		account.ID, account.UserID, account.Platform, account.Handle, account.FollowerCount,
		account.PreviousFollowerCount, account.EngagementRate, account.Status,
		account.AccessToken, account.InstagramBusinessID,
	)
	return err
}

// DeleteSocialAccount removes a social account owned by the user.
func (r *PostgresRepository) DeleteSocialAccount(ctx context.Context, accountID, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, "DELETE FROM social_accounts WHERE id = $1 AND user_id = $2", accountID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSocialAccountNotFound
	}
	return nil
}

// ListUsersWithSocialAccounts returns the distinct owners of at least one
// social account. Used by the scheduled background sync.
func (r *PostgresRepository) ListUsersWithSocialAccounts(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, "SELECT DISTINCT user_id FROM social_accounts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}

	return userIDs, rows.Err()
}

// GetProfile retrieves a user's preference record.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT user_id, display_currency, created_at, updated_at FROM profiles WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.DisplayCurrency, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile creates or replaces a user's preference record.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_currency)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET display_currency = EXCLUDED.display_currency, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, profile.UserID, profile.DisplayCurrency)
	return err
}
