package bank_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikitakapustkin/bankctl/internal/bank"
	"github.com/nikitakapustkin/bankctl/internal/session"
)

const userNotSyncedBody = `{"error":"NOT_FOUND","message":"User with id 42 not found"}`

func notSyncedHandler(calls *atomic.Int32, succeedAfter int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if succeedAfter > 0 && n > succeedAfter {
			_, _ = w.Write([]byte(`{"id":"u-42","login":"alice"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(userNotSyncedBody))
	})
}

func TestWithSyncRetry_ExhaustsAttemptsOnPersistentLag(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, notSyncedHandler(&calls, 0), testToken)

	err := client.WithSyncRetry(context.Background(), "test", func() error {
		_, meErr := client.Me(context.Background())
		return meErr
	})
	if !bank.IsUserNotSynced(err) {
		t.Fatalf("expected the final not-synced error to propagate, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected exactly MaxAttempts calls, got %d", calls.Load())
	}
}

func TestWithSyncRetry_SucceedsOnceLagResolves(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, notSyncedHandler(&calls, 2), testToken)

	err := client.WithSyncRetry(context.Background(), "test", func() error {
		_, meErr := client.Me(context.Background())
		return meErr
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected the third call to succeed, got %d calls", calls.Load())
	}
}

func TestWithSyncRetry_BackoffGrowsWithAttempt(t *testing.T) {
	sess := session.New(session.NewMemoryStore(testToken))
	baseDelay := 10 * time.Millisecond
	client := bank.NewClient("http://localhost", sess, time.Second,
		bank.RetryPolicy{MaxAttempts: 3, BaseDelay: baseDelay})

	var stamps []time.Time
	notSynced := &bank.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND",
		Message: "User with id 42 not found"}
	err := client.WithSyncRetry(context.Background(), "test", func() error {
		stamps = append(stamps, time.Now())
		return notSynced
	})
	if !bank.IsUserNotSynced(err) {
		t.Fatalf("expected the not-synced error to propagate, got %v", err)
	}
	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}

	firstWait := stamps[1].Sub(stamps[0])
	secondWait := stamps[2].Sub(stamps[1])
	if firstWait < baseDelay {
		t.Errorf("expected the first wait to be at least %v, got %v", baseDelay, firstWait)
	}
	if secondWait < 2*baseDelay {
		t.Errorf("expected the second wait to be at least %v, got %v", 2*baseDelay, secondWait)
	}
}

func TestWithSyncRetry_OtherErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"NOT_FOUND","message":"Account with id 7 not found"}`))
	})
	client, _ := newTestClient(t, handler, testToken)

	err := client.WithSyncRetry(context.Background(), "test", func() error {
		_, meErr := client.Me(context.Background())
		return meErr
	})
	if !bank.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected the 404 to propagate, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single call for a non-user 404, got %d", calls.Load())
	}
}

func TestWithSyncRetry_LocalErrorsAreNotRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	sess := session.New(session.NewMemoryStore(testToken))
	client := bank.NewClient(server.URL, sess, time.Second,
		bank.RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond})

	attempts := 0
	sentinel := errors.New("boom")
	err := client.WithSyncRetry(context.Background(), "test", func() error {
		attempts++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the sentinel to propagate, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected one attempt, got %d", attempts)
	}
}

func TestIsUserNotSynced(t *testing.T) {
	matching := &bank.APIError{Status: 404, Code: "NOT_FOUND", Message: "User with id 42 not found"}
	if !bank.IsUserNotSynced(matching) {
		t.Error("expected a 404 user-not-found to match")
	}

	wrongEntity := &bank.APIError{Status: 404, Code: "NOT_FOUND", Message: "Account with id 7 not found"}
	if bank.IsUserNotSynced(wrongEntity) {
		t.Error("expected a non-user 404 not to match")
	}

	wrongStatus := &bank.APIError{Status: 500, Message: "User with id 42 not found"}
	if bank.IsUserNotSynced(wrongStatus) {
		t.Error("expected a non-404 not to match")
	}

	if bank.IsUserNotSynced(errors.New("user with id 42 not found")) {
		t.Error("expected an unclassified error not to match")
	}
}
