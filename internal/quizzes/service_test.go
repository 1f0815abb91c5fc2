package quizzes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func newTestService() (*Service, *time.Time) {
	current := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(NewInMemoryRepository())
	svc.now = func() time.Time { return current }
	return svc, &current
}

func TestRecordStoresAttempt(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Record(context.Background(), RecordInput{
		Email:     " Student@Example.COM ",
		DomainID:  "biology",
		SessionID: "session-1",
		Payload:   json.RawMessage(`{"score": 80, "status": "Completed"}`),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if created.Email != "student@example.com" {
		t.Errorf("email = %q, want normalized lowercase", created.Email)
	}
	if created.ID.String() == "" || created.AttemptedAt.IsZero() {
		t.Error("expected id and timestamp to be assigned")
	}
}

func TestRecordAnonymousAllowed(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Record(context.Background(), RecordInput{
		DomainID:  "biology",
		SessionID: "session-1",
		Payload:   json.RawMessage(`{"score": 50}`),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if created.Email != "" {
		t.Errorf("email = %q, want empty for anonymous attempt", created.Email)
	}
}

func TestRecordValidation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name  string
		input RecordInput
	}{
		{"missing session", RecordInput{DomainID: "x", Payload: json.RawMessage(`{}`)}},
		{"missing payload", RecordInput{DomainID: "x", SessionID: "s"}},
		{"malformed payload", RecordInput{DomainID: "x", SessionID: "s", Payload: json.RawMessage(`{"score":`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Record(context.Background(), tc.input); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestListByDomainNewestFirst(t *testing.T) {
	svc, clock := newTestService()

	first, err := svc.Record(context.Background(), RecordInput{
		DomainID: "biology", SessionID: "s1", Payload: json.RawMessage(`{"score": 70}`),
	})
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	*clock = clock.Add(time.Minute)
	second, err := svc.Record(context.Background(), RecordInput{
		DomainID: "biology", SessionID: "s2", Payload: json.RawMessage(`{"score": 90}`),
	})
	if err != nil {
		t.Fatalf("record second: %v", err)
	}
	if _, err := svc.Record(context.Background(), RecordInput{
		DomainID: "chemistry", SessionID: "s3", Payload: json.RawMessage(`{}`),
	}); err != nil {
		t.Fatalf("record other domain: %v", err)
	}

	list, err := svc.ListByDomain(context.Background(), "biology")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d attempts, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("expected newest attempt first")
	}
}

func TestListByDomainRequiresDomain(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.ListByDomain(context.Background(), "  "); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
