/**
 * @description
 * Metrics sync for social accounts. A MetricsRefresher produces fresh
 * follower and engagement figures for one account; the Service fans a batch
 * out across goroutines, one per account, so a single failing account never
 * blocks the rest. The default refresher simulates platform APIs with a
 * bounded random walk.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhq/revenue-service/internal/domain"
	"github.com/creatorhq/revenue-service/pkg/rabbitmq"
)

// MetricsRefresher produces fresh metrics for one social account.
type MetricsRefresher interface {
	RefreshMetrics(ctx context.Context, account domain.SocialAccount) (followers int64, engagement float64, err error)
}

// SimulatedRefresher stands in for real platform APIs. Followers take a
// bounded random step (roughly 70% of syncs gain up to 50, the rest lose up
// to 10) and engagement drifts by at most ±0.2, clamped to [0, 10].
type SimulatedRefresher struct{}

func (r *SimulatedRefresher) RefreshMetrics(ctx context.Context, account domain.SocialAccount) (int64, float64, error) {
	var growth int64
	if rand.Float64() > 0.3 {
		growth = int64(rand.Float64() * 50)
	} else {
		growth = -int64(rand.Float64() * 10)
	}

	followers := account.FollowerCount + growth
	if followers < 0 {
		followers = 0
	}

	engagement := account.EngagementRate + (rand.Float64()*0.4 - 0.2)
	if engagement < 0 {
		engagement = 0
	}
	if engagement > 10 {
		engagement = 10
	}
	engagement = math.Round(engagement*10) / 10

	return followers, engagement, nil
}

// SyncAccounts refreshes every social account the user has, concurrently.
// A failed refresh marks that one account with status "error" and is reported
// in the outcome list; other accounts proceed unaffected.
func (s *Service) SyncAccounts(ctx context.Context, userID uuid.UUID) (*domain.SyncResult, error) {
	accounts, err := s.repo.ListSocialAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load social accounts: %w", err)
	}
	if len(accounts) == 0 {
		return &domain.SyncResult{Outcomes: []domain.SyncOutcome{}}, nil
	}

	outcomes := make([]domain.SyncOutcome, len(accounts))
	var wg sync.WaitGroup
	for i, account := range accounts {
		wg.Add(1)
		go func(i int, account domain.SocialAccount) {
			defer wg.Done()
			outcomes[i] = s.syncOne(ctx, account)
		}(i, account)
	}
	wg.Wait()

	result := &domain.SyncResult{Outcomes: outcomes}
	for _, outcome := range outcomes {
		if outcome.Error == "" {
			result.SyncedCount++
		} else {
			result.FailedCount++
		}
	}
	log.Printf("level=info component=service flow=social_sync user_id=%s synced=%d failed=%d", userID, result.SyncedCount, result.FailedCount)

	// Best-effort event; the sync itself already completed.
	if err := s.eventProducer.PublishSyncCompleted(ctx, rabbitmq.SyncCompletedEvent{
		UserID:      userID,
		SyncedCount: result.SyncedCount,
		FailedCount: result.FailedCount,
		Timestamp:   time.Now().UTC(),
	}); err != nil {
		log.Printf("level=warn component=service flow=social_sync msg=\"event publish failed\" user_id=%s err=%v", userID, err)
	}

	return result, nil
}

func (s *Service) syncOne(ctx context.Context, account domain.SocialAccount) domain.SyncOutcome {
	outcome := domain.SyncOutcome{
		AccountID: account.ID,
		Platform:  account.Platform,
		Handle:    account.Handle,
	}

	followers, engagement, err := s.refresher.RefreshMetrics(ctx, account)
	if err != nil {
		log.Printf("level=warn component=service flow=social_sync msg=\"refresh failed\" account_id=%s handle=%s err=%v", account.ID, account.Handle, err)
		if markErr := s.repo.MarkSocialAccountError(ctx, account.ID, account.UserID); markErr != nil {
			log.Printf("level=error component=service flow=social_sync msg=\"failed to mark account error\" account_id=%s err=%v", account.ID, markErr)
		}
		outcome.Status = domain.AccountError
		outcome.Error = err.Error()
		return outcome
	}

	if err := s.repo.UpdateSocialMetrics(ctx, account.ID, account.UserID, followers, engagement); err != nil {
		log.Printf("level=error component=service flow=social_sync msg=\"failed to store metrics\" account_id=%s err=%v", account.ID, err)
		outcome.Status = domain.AccountError
		outcome.Error = err.Error()
		return outcome
	}

	outcome.FollowerCount = followers
	outcome.FollowerDisplay = FormatCount(followers)
	outcome.EngagementRate = engagement
	outcome.Status = domain.AccountConnected
	return outcome
}

// SyncAllUsers runs a sync pass for every user that has at least one social
// account. Used by the periodic scheduler; users are processed sequentially
// while each user's accounts still sync concurrently.
func (s *Service) SyncAllUsers(ctx context.Context) {
	userIDs, err := s.repo.ListUsersWithSocialAccounts(ctx)
	if err != nil {
		log.Printf("level=error component=service flow=social_sync msg=\"failed to list users for scheduled sync\" err=%v", err)
		return
	}

	for _, userID := range userIDs {
		if _, err := s.SyncAccounts(ctx, userID); err != nil {
			log.Printf("level=warn component=service flow=social_sync msg=\"scheduled sync failed for user\" user_id=%s err=%v", userID, err)
		}
	}
}
