package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/creatorhq/revenue-service/internal/domain"
)

// scriptedRefresher returns canned metrics per handle, or an error for
// handles listed in failing.
type scriptedRefresher struct {
	followers  int64
	engagement float64
	failing    map[string]error
}

func (r *scriptedRefresher) RefreshMetrics(ctx context.Context, account domain.SocialAccount) (int64, float64, error) {
	if err, ok := r.failing[account.Handle]; ok {
		return 0, 0, err
	}
	return r.followers, r.engagement, nil
}

func newSyncTestService(repo *fakeRepository, refresher MetricsRefresher) (*Service, *fakePublisher) {
	publisher := &fakePublisher{}
	svc := NewService(repo, nil, publisher, refresher, LinkingConfig{})
	return svc, publisher
}

func TestSyncAccounts_UpdatesEveryAccount(t *testing.T) {
	repo := newFakeRepository()
	userID := uuid.New()
	for _, handle := range []string{"@a", "@b", "@c"} {
		repo.accounts = append(repo.accounts, domain.SocialAccount{
			ID:       uuid.New(),
			UserID:   userID,
			Platform: domain.PlatformInstagram,
			Handle:   handle,
			Status:   domain.AccountConnected,
		})
	}
	svc, publisher := newSyncTestService(repo, &scriptedRefresher{followers: 500, engagement: 4.2})

	result, err := svc.SyncAccounts(context.Background(), userID)
	if err != nil {
		t.Fatalf("SyncAccounts returned error: %v", err)
	}
	if result.SyncedCount != 3 || result.FailedCount != 0 {
		t.Fatalf("expected 3 synced / 0 failed, got %d/%d", result.SyncedCount, result.FailedCount)
	}
	if len(repo.metricsUpdates) != 3 {
		t.Fatalf("expected 3 metrics updates, got %d", len(repo.metricsUpdates))
	}
	for _, update := range repo.metricsUpdates {
		if update.followers != 500 || update.engagement != 4.2 {
			t.Fatalf("unexpected stored metrics: %+v", update)
		}
	}
	for _, outcome := range result.Outcomes {
		if outcome.FollowerDisplay != "500" {
			t.Fatalf("unexpected follower display: %q", outcome.FollowerDisplay)
		}
	}
	if len(publisher.synced) != 1 || publisher.synced[0].SyncedCount != 3 {
		t.Fatalf("expected one sync completed event, got %+v", publisher.synced)
	}
}

func TestSyncAccounts_PartialFailureIsolation(t *testing.T) {
	repo := newFakeRepository()
	userID := uuid.New()
	broken := domain.SocialAccount{ID: uuid.New(), UserID: userID, Platform: domain.PlatformTikTok, Handle: "@broken", Status: domain.AccountConnected}
	healthy := domain.SocialAccount{ID: uuid.New(), UserID: userID, Platform: domain.PlatformYouTube, Handle: "@healthy", Status: domain.AccountConnected}
	repo.accounts = []domain.SocialAccount{broken, healthy}

	refresher := &scriptedRefresher{
		followers:  900,
		engagement: 6.0,
		failing:    map[string]error{"@broken": errors.New("platform timeout")},
	}
	svc, _ := newSyncTestService(repo, refresher)

	result, err := svc.SyncAccounts(context.Background(), userID)
	if err != nil {
		t.Fatalf("SyncAccounts returned error: %v", err)
	}
	if result.SyncedCount != 1 || result.FailedCount != 1 {
		t.Fatalf("expected 1 synced / 1 failed, got %d/%d", result.SyncedCount, result.FailedCount)
	}

	// Failing account gets marked, healthy account still updated.
	if len(repo.errorMarks) != 1 || repo.errorMarks[0] != broken.ID {
		t.Fatalf("expected error mark for broken account, got %v", repo.errorMarks)
	}
	if _, ok := repo.metricsUpdates[healthy.ID]; !ok {
		t.Fatalf("healthy account was not updated")
	}
	if _, ok := repo.metricsUpdates[broken.ID]; ok {
		t.Fatalf("broken account must not receive a metrics update")
	}

	// Outcomes preserve account order.
	if result.Outcomes[0].Handle != "@broken" || result.Outcomes[0].Status != domain.AccountError {
		t.Fatalf("unexpected first outcome: %+v", result.Outcomes[0])
	}
	if result.Outcomes[1].Handle != "@healthy" || result.Outcomes[1].Status != domain.AccountConnected {
		t.Fatalf("unexpected second outcome: %+v", result.Outcomes[1])
	}
}

func TestSyncAccounts_NoAccounts(t *testing.T) {
	repo := newFakeRepository()
	svc, publisher := newSyncTestService(repo, &scriptedRefresher{})

	result, err := svc.SyncAccounts(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("SyncAccounts returned error: %v", err)
	}
	if result.SyncedCount != 0 || result.FailedCount != 0 || len(result.Outcomes) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if len(publisher.synced) != 0 {
		t.Fatalf("no event expected for empty account list")
	}
}

func TestSimulatedRefresher_Bounds(t *testing.T) {
	refresher := &SimulatedRefresher{}
	account := domain.SocialAccount{FollowerCount: 100, EngagementRate: 5.0}

	for i := 0; i < 200; i++ {
		followers, engagement, err := refresher.RefreshMetrics(context.Background(), account)
		if err != nil {
			t.Fatalf("RefreshMetrics returned error: %v", err)
		}
		if followers < 90 || followers >= 150 {
			t.Fatalf("followers outside random walk bounds: %d", followers)
		}
		if engagement < 4.8-1e-9 || engagement > 5.2+1e-9 {
			t.Fatalf("engagement drifted too far: %f", engagement)
		}
	}
}

func TestSimulatedRefresher_FollowersNeverNegative(t *testing.T) {
	refresher := &SimulatedRefresher{}
	account := domain.SocialAccount{FollowerCount: 0, EngagementRate: 0}

	for i := 0; i < 200; i++ {
		followers, engagement, err := refresher.RefreshMetrics(context.Background(), account)
		if err != nil {
			t.Fatalf("RefreshMetrics returned error: %v", err)
		}
		if followers < 0 {
			t.Fatalf("followers went negative: %d", followers)
		}
		if engagement < 0 || engagement > 10 {
			t.Fatalf("engagement outside [0,10]: %f", engagement)
		}
	}
}

func TestSyncAllUsers_RunsEveryUser(t *testing.T) {
	repo := newFakeRepository()
	userA := uuid.New()
	userB := uuid.New()
	repo.usersWithAccounts = []uuid.UUID{userA, userB}
	repo.accounts = []domain.SocialAccount{
		{ID: uuid.New(), UserID: userA, Platform: domain.PlatformInstagram, Handle: "@a", Status: domain.AccountConnected},
	}
	svc, publisher := newSyncTestService(repo, &scriptedRefresher{followers: 10, engagement: 1})

	svc.SyncAllUsers(context.Background())

	// The fake repo returns the same account list for both users, so two
	// sync completed events prove both users were processed.
	if len(publisher.synced) != 2 {
		t.Fatalf("expected 2 sync completed events, got %d", len(publisher.synced))
	}
}
