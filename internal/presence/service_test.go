package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestService(window time.Duration) (*Service, *time.Time) {
	svc := NewService(NewInMemoryRepository(), window)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestHeartbeatThenListOnline(t *testing.T) {
	svc, _ := newTestService(10 * time.Minute)
	ctx := context.Background()

	record, err := svc.Heartbeat(ctx, "A@X.com", "Ann")
	if err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}
	if record.Email != "a@x.com" {
		t.Fatalf("expected normalized email, got %q", record.Email)
	}
	if !record.Online {
		t.Fatal("expected record to be online")
	}

	online, err := svc.ListOnline(ctx)
	if err != nil {
		t.Fatalf("ListOnline returned error: %v", err)
	}
	if len(online) != 1 || online[0].Email != "a@x.com" || online[0].Name != "Ann" {
		t.Fatalf("expected Ann online, got %+v", online)
	}
}

func TestHeartbeatKeepsNameWhenOmitted(t *testing.T) {
	svc, _ := newTestService(10 * time.Minute)
	ctx := context.Background()

	if _, err := svc.Heartbeat(ctx, "a@x.com", "Ann"); err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}
	record, err := svc.Heartbeat(ctx, "a@x.com", "")
	if err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}
	if record.Name != "Ann" {
		t.Fatalf("expected stored name to survive, got %q", record.Name)
	}
}

func TestHeartbeatRequiresEmail(t *testing.T) {
	svc, _ := newTestService(10 * time.Minute)

	if _, err := svc.Heartbeat(context.Background(), "  ", "Ann"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkAwayExcludesRegardlessOfRecency(t *testing.T) {
	svc, _ := newTestService(10 * time.Minute)
	ctx := context.Background()

	if _, err := svc.Heartbeat(ctx, "a@x.com", "Ann"); err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}
	if err := svc.MarkAway(ctx, "a@x.com"); err != nil {
		t.Fatalf("MarkAway returned error: %v", err)
	}

	online, err := svc.ListOnline(ctx)
	if err != nil {
		t.Fatalf("ListOnline returned error: %v", err)
	}
	if len(online) != 0 {
		t.Fatalf("expected nobody online after away, got %+v", online)
	}
}

func TestMarkAwayUnknownEmail(t *testing.T) {
	svc, _ := newTestService(10 * time.Minute)

	if err := svc.MarkAway(context.Background(), "ghost@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStaleHeartbeatFilteredWithoutMutation(t *testing.T) {
	svc, now := newTestService(10 * time.Minute)
	ctx := context.Background()

	if _, err := svc.Heartbeat(ctx, "a@x.com", "Ann"); err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}

	// Within the window the record shows up.
	*now = now.Add(5 * time.Second)
	online, err := svc.ListOnline(ctx)
	if err != nil {
		t.Fatalf("ListOnline returned error: %v", err)
	}
	if len(online) != 1 {
		t.Fatalf("expected record within window, got %+v", online)
	}

	// Past the window it disappears with no explicit away call.
	*now = now.Add(11 * time.Minute)
	online, err = svc.ListOnline(ctx)
	if err != nil {
		t.Fatalf("ListOnline returned error: %v", err)
	}
	if len(online) != 0 {
		t.Fatalf("expected stale record filtered, got %+v", online)
	}

	// Filtering is read-side only: a fresh heartbeat revives the record.
	if _, err := svc.Heartbeat(ctx, "a@x.com", ""); err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}
	online, err = svc.ListOnline(ctx)
	if err != nil {
		t.Fatalf("ListOnline returned error: %v", err)
	}
	if len(online) != 1 || online[0].Name != "Ann" {
		t.Fatalf("expected revived record with stored name, got %+v", online)
	}
}

func TestListOnlineOrdersByRecency(t *testing.T) {
	svc, now := newTestService(10 * time.Minute)
	ctx := context.Background()

	if _, err := svc.Heartbeat(ctx, "old@x.com", ""); err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}
	*now = now.Add(time.Minute)
	if _, err := svc.Heartbeat(ctx, "new@x.com", ""); err != nil {
		t.Fatalf("Heartbeat returned error: %v", err)
	}

	online, err := svc.ListOnline(ctx)
	if err != nil {
		t.Fatalf("ListOnline returned error: %v", err)
	}
	if len(online) != 2 || online[0].Email != "new@x.com" {
		t.Fatalf("expected most recent first, got %+v", online)
	}
}

func TestConcurrentHeartbeatsSingleRecord(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, 10*time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Heartbeat(ctx, "a@x.com", "Ann"); err != nil {
				t.Errorf("Heartbeat returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	online, err := svc.ListOnline(ctx)
	if err != nil {
		t.Fatalf("ListOnline returned error: %v", err)
	}
	if len(online) != 1 {
		t.Fatalf("expected exactly one record, got %+v", online)
	}
}
