package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/creatorhq/revenue-service/internal/domain"
	"github.com/creatorhq/revenue-service/pkg/graphclient"
)

// fakeGraphServer simulates the three Graph API endpoints the linking flow
// touches. Behavior is controlled per-test through the struct fields.
type fakeGraphServer struct {
	failTokenExchange bool
	failListPages     bool
	failProfile       bool
	pages             string // raw JSON for /me/accounts
	profile           string // raw JSON for /{businessID}
}

func (f *fakeGraphServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/oauth/access_token"):
			if f.failTokenExchange {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":{"message":"Invalid verification code","type":"OAuthException","code":100}}`)
				return
			}
			fmt.Fprint(w, `{"access_token":"graph-token","token_type":"bearer","expires_in":5183944}`)
		case strings.HasSuffix(r.URL.Path, "/me/accounts"):
			if f.failListPages {
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `{"error":{"message":"Permission denied","type":"OAuthException","code":200}}`)
				return
			}
			fmt.Fprint(w, f.pages)
		default:
			if f.failProfile {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":{"message":"Unsupported get request","type":"GraphMethodException","code":100}}`)
				return
			}
			fmt.Fprint(w, f.profile)
		}
	})
}

func newLinkTestService(t *testing.T, graph *fakeGraphServer) (*Service, *fakeRepository, *fakePublisher) {
	t.Helper()
	server := httptest.NewServer(graph.handler())
	t.Cleanup(server.Close)

	repo := newFakeRepository()
	publisher := &fakePublisher{}
	client := graphclient.NewClient(server.URL, "client-id", "client-secret")
	svc := NewService(repo, client, publisher, &SimulatedRefresher{}, LinkingConfig{
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		RedirectURI:    "https://dash.example.com/api/social/instagram/callback",
		OAuthDialogURL: "https://www.facebook.com/v18.0/dialog/oauth",
	})
	return svc, repo, publisher
}

func TestBuildInstagramAuthorizeURL(t *testing.T) {
	svc, _, _ := newLinkTestService(t, &fakeGraphServer{})

	authorizeURL, err := svc.BuildInstagramAuthorizeURL("user-123")
	if err != nil {
		t.Fatalf("BuildInstagramAuthorizeURL returned error: %v", err)
	}

	parsed, err := url.Parse(authorizeURL)
	if err != nil {
		t.Fatalf("authorize url does not parse: %v", err)
	}
	if parsed.Host != "www.facebook.com" {
		t.Fatalf("unexpected host: %s", parsed.Host)
	}
	query := parsed.Query()
	if query.Get("client_id") != "client-id" {
		t.Fatalf("unexpected client_id: %q", query.Get("client_id"))
	}
	if query.Get("state") != "user-123" {
		t.Fatalf("state must carry the user id, got %q", query.Get("state"))
	}
	if query.Get("response_type") != "code" {
		t.Fatalf("unexpected response_type: %q", query.Get("response_type"))
	}
	if query.Get("scope") != InstagramScopes {
		t.Fatalf("unexpected scope: %q", query.Get("scope"))
	}
}

func TestBuildInstagramAuthorizeURL_MissingClientID(t *testing.T) {
	svc := NewService(newFakeRepository(), nil, &fakePublisher{}, &SimulatedRefresher{}, LinkingConfig{})

	if _, err := svc.BuildInstagramAuthorizeURL("user-123"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLinkInstagramAccount_Success(t *testing.T) {
	graph := &fakeGraphServer{
		pages:   `{"data":[{"id":"p1","name":"No IG Page"},{"id":"p2","name":"Creator Page","instagram_business_account":{"id":"ig-42"}}]}`,
		profile: `{"id":"ig-42","username":"creatorjane","followers_count":12450,"media_count":321}`,
	}
	svc, repo, publisher := newLinkTestService(t, graph)
	userID := uuid.New()

	account, err := svc.LinkInstagramAccount(context.Background(), userID, "auth-code")
	if err != nil {
		t.Fatalf("LinkInstagramAccount returned error: %v", err)
	}

	if account.Handle != "@creatorjane" {
		t.Fatalf("expected handle @creatorjane, got %s", account.Handle)
	}
	if account.FollowerCount != 12450 {
		t.Fatalf("expected 12450 followers, got %d", account.FollowerCount)
	}
	if account.Platform != domain.PlatformInstagram || account.Status != domain.AccountConnected {
		t.Fatalf("unexpected platform/status: %s/%s", account.Platform, account.Status)
	}
	if account.InstagramBusinessID != "ig-42" {
		t.Fatalf("expected business id ig-42, got %s", account.InstagramBusinessID)
	}
	if account.AccessToken != "graph-token" {
		t.Fatalf("access token not captured")
	}

	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
	if len(publisher.linked) != 1 || publisher.linked[0].UserID != userID {
		t.Fatalf("expected account linked event for user, got %+v", publisher.linked)
	}
}

func TestLinkInstagramAccount_FirstLinkedPageWins(t *testing.T) {
	graph := &fakeGraphServer{
		pages:   `{"data":[{"id":"p1","name":"First","instagram_business_account":{"id":"ig-first"}},{"id":"p2","name":"Second","instagram_business_account":{"id":"ig-second"}}]}`,
		profile: `{"id":"ig-first","username":"first_account","followers_count":10,"media_count":1}`,
	}
	svc, repo, _ := newLinkTestService(t, graph)

	account, err := svc.LinkInstagramAccount(context.Background(), uuid.New(), "auth-code")
	if err != nil {
		t.Fatalf("LinkInstagramAccount returned error: %v", err)
	}
	if account.InstagramBusinessID != "ig-first" {
		t.Fatalf("expected the first linked page to win, got %s", account.InstagramBusinessID)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected exactly one upsert, got %d", len(repo.upserted))
	}
}

func TestLinkInstagramAccount_NoLinkedAccount(t *testing.T) {
	graph := &fakeGraphServer{
		pages: `{"data":[{"id":"p1","name":"Plain Page"},{"id":"p2","name":"Another Page"}]}`,
		// Profile endpoint must never be reached; poison it.
		failProfile: true,
	}
	svc, repo, _ := newLinkTestService(t, graph)

	_, err := svc.LinkInstagramAccount(context.Background(), uuid.New(), "auth-code")
	if !errors.Is(err, ErrNoLinkedAccount) {
		t.Fatalf("expected ErrNoLinkedAccount, got %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Fatalf("no store write expected on failure, got %d", len(repo.upserted))
	}
}

func TestLinkInstagramAccount_FailureMatrix(t *testing.T) {
	tests := []struct {
		name  string
		graph *fakeGraphServer
		want  error
	}{
		{
			name:  "token exchange fails",
			graph: &fakeGraphServer{failTokenExchange: true},
			want:  ErrTokenExchange,
		},
		{
			name:  "pages fetch fails",
			graph: &fakeGraphServer{failListPages: true},
			want:  ErrPagesFetch,
		},
		{
			name: "profile fetch fails",
			graph: &fakeGraphServer{
				pages:       `{"data":[{"id":"p1","name":"Page","instagram_business_account":{"id":"ig-1"}}]}`,
				failProfile: true,
			},
			want: ErrUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, publisher := newLinkTestService(t, tt.graph)

			_, err := svc.LinkInstagramAccount(context.Background(), uuid.New(), "auth-code")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(repo.upserted) != 0 {
				t.Fatalf("no store write expected on failure, got %d", len(repo.upserted))
			}
			if len(publisher.linked) != 0 {
				t.Fatalf("no event expected on failure, got %d", len(publisher.linked))
			}
		})
	}
}

func TestLinkInstagramAccount_PersistenceFailure(t *testing.T) {
	graph := &fakeGraphServer{
		pages:   `{"data":[{"id":"p1","name":"Page","instagram_business_account":{"id":"ig-1"}}]}`,
		profile: `{"id":"ig-1","username":"jane","followers_count":5,"media_count":2}`,
	}
	svc, repo, publisher := newLinkTestService(t, graph)
	repo.upsertLinkedErr = errors.New("connection reset")

	_, err := svc.LinkInstagramAccount(context.Background(), uuid.New(), "auth-code")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(publisher.linked) != 0 {
		t.Fatalf("no event expected when persistence fails")
	}
}

func TestLinkInstagramAccount_MissingCredentials(t *testing.T) {
	svc := NewService(newFakeRepository(), nil, &fakePublisher{}, &SimulatedRefresher{}, LinkingConfig{ClientID: "client-id"})

	if _, err := svc.LinkInstagramAccount(context.Background(), uuid.New(), "auth-code"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
