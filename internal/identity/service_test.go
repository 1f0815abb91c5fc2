package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func googleProfile(sub, email string) Profile {
	return Profile{
		Provider:      ProviderGoogle,
		ProviderID:    sub,
		Email:         email,
		Name:          "Ann Example",
		AvatarURL:     "https://img.example/ann.png",
		EmailVerified: true,
	}
}

func TestResolveCreatesNewIdentity(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	ident, err := svc.Resolve(context.Background(), googleProfile("sub-1", "Ann@X.com"))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if ident.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if ident.Email != "ann@x.com" {
		t.Fatalf("expected lowercase email, got %q", ident.Email)
	}
	if ident.Role != RoleUser {
		t.Fatalf("expected default role user, got %q", ident.Role)
	}
	if !ident.HasProvider(ProviderGoogle, "sub-1") {
		t.Fatalf("expected google provider link, got %+v", ident.Providers)
	}
	if !ident.EmailVerified {
		t.Fatal("expected emailVerified carried over from profile")
	}
}

func TestResolveSameProviderTwiceReturnsSameIdentity(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
	}
	calls := 0
	svc.now = func() time.Time {
		at := times[calls%len(times)]
		calls++
		return at
	}

	first, err := svc.Resolve(ctx, googleProfile("sub-1", "ann@x.com"))
	if err != nil {
		t.Fatalf("first Resolve returned error: %v", err)
	}
	second, err := svc.Resolve(ctx, googleProfile("sub-1", "ann@x.com"))
	if err != nil {
		t.Fatalf("second Resolve returned error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected one identity, got %s and %s", first.ID, second.ID)
	}
	if !second.LastLoginAt.After(first.LastLoginAt) {
		t.Fatalf("expected lastLogin to increase, got %v then %v", first.LastLoginAt, second.LastLoginAt)
	}
	if len(second.Providers) != 1 {
		t.Fatalf("expected one provider link, got %+v", second.Providers)
	}
}

func TestResolveLinksNewProviderByEmail(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	ctx := context.Background()

	first, err := svc.Resolve(ctx, googleProfile("sub-1", "ann@x.com"))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	github := Profile{Provider: ProviderGitHub, ProviderID: "gh-9", Email: "ann@x.com", Name: "ann"}
	linked, err := svc.Resolve(ctx, github)
	if err != nil {
		t.Fatalf("Resolve via email returned error: %v", err)
	}

	if linked.ID != first.ID {
		t.Fatalf("expected email match to reuse identity %s, got %s", first.ID, linked.ID)
	}
	if !linked.HasProvider(ProviderGitHub, "gh-9") {
		t.Fatalf("expected github link to be added, got %+v", linked.Providers)
	}

	// The freshly linked provider must now match directly.
	again, err := svc.Resolve(ctx, github)
	if err != nil {
		t.Fatalf("Resolve by linked provider returned error: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected provider lookup to hit identity %s, got %s", first.ID, again.ID)
	}
}

func TestResolveWithoutEmailNeverMatchesByEmail(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	ctx := context.Background()

	a, err := svc.Resolve(ctx, Profile{Provider: ProviderGitHub, ProviderID: "gh-1"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	b, err := svc.Resolve(ctx, Profile{Provider: ProviderGitHub, ProviderID: "gh-2"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if a.ID == b.ID {
		t.Fatal("two email-less profiles must not be merged into one identity")
	}
}

func TestResolveEmailVerifiedIsMonotonic(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	ctx := context.Background()

	verified := googleProfile("sub-1", "ann@x.com")
	if _, err := svc.Resolve(ctx, verified); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	unverified := verified
	unverified.EmailVerified = false
	ident, err := svc.Resolve(ctx, unverified)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !ident.EmailVerified {
		t.Fatal("emailVerified must never reset to false")
	}
}

func TestResolveMissingProviderFields(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	if _, err := svc.Resolve(context.Background(), Profile{ProviderID: "sub"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing provider, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), Profile{Provider: ProviderGoogle}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing providerId, got %v", err)
	}
}

func TestResolveConcurrentFirstLoginsForSameEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const workers = 8
	results := make([]*Identity, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc := NewService(repo)
			provider := ProviderGoogle
			if i%2 == 1 {
				provider = ProviderGitHub
			}
			results[i], errs[i] = svc.Resolve(ctx, Profile{
				Provider:   provider,
				ProviderID: "sub-" + string(rune('a'+i)),
				Email:      "race@x.com",
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
	}

	canonical := results[0].ID
	for i, ident := range results {
		if ident.ID != canonical {
			t.Fatalf("worker %d resolved a second identity %s (want %s)", i, ident.ID, canonical)
		}
	}

	final, err := repo.FindByEmail(ctx, "race@x.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if final == nil {
		t.Fatal("expected identity for raced email")
	}
	if len(final.Providers) != workers {
		t.Fatalf("expected all %d provider links attached, got %d", workers, len(final.Providers))
	}
}

type failingRepo struct {
	*InMemoryRepository
	findByProviderErr error
	createErr         error
	createCalls       int
}

func (r *failingRepo) FindByProvider(ctx context.Context, provider Provider, providerID string) (*Identity, error) {
	if r.findByProviderErr != nil {
		return nil, r.findByProviderErr
	}
	return r.InMemoryRepository.FindByProvider(ctx, provider, providerID)
}

func (r *failingRepo) Create(ctx context.Context, ident Identity) (Identity, error) {
	r.createCalls++
	if r.createErr != nil {
		return Identity{}, r.createErr
	}
	return r.InMemoryRepository.Create(ctx, ident)
}

func TestResolveWrapsStoreErrors(t *testing.T) {
	repo := &failingRepo{InMemoryRepository: NewInMemoryRepository(), findByProviderErr: errors.New("boom")}
	svc := NewService(repo)

	_, err := svc.Resolve(context.Background(), googleProfile("sub-1", "ann@x.com"))
	if err == nil || !strings.Contains(err.Error(), "find identity by provider") {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestResolveGivesUpAfterPersistentConflict(t *testing.T) {
	repo := &failingRepo{InMemoryRepository: NewInMemoryRepository(), createErr: ErrEmailConflict}
	svc := NewService(repo)

	_, err := svc.Resolve(context.Background(), googleProfile("sub-1", "ann@x.com"))
	if err == nil || !strings.Contains(err.Error(), "contention") {
		t.Fatalf("expected contention error, got %v", err)
	}
	if repo.createCalls != createRetries {
		t.Fatalf("expected %d bounded create attempts, got %d", createRetries, repo.createCalls)
	}
}

func TestLookupMissingIdentity(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	_, err := svc.Lookup(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
