package bank_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikitakapustkin/bankctl/internal/bank"
	"github.com/nikitakapustkin/bankctl/internal/session"
)

const testToken = "header.eyJzdWIiOiJhbGljZSIsInJvbGUiOiJDTElFTlQifQ.signature"

func newTestClient(t *testing.T, handler http.Handler, token string) (*bank.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.New(session.NewMemoryStore(token))
	client := bank.NewClient(server.URL, sess, 5*time.Second,
		bank.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})
	return client, server
}

func TestDo_SuccessReturnsDecodedPayload(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
			t.Errorf("expected bearer credential, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u-1","login":"alice"}`))
	})
	client, _ := newTestClient(t, handler, testToken)

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u-1" || user.Login != "alice" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestDo_NoTokenFailsWithoutNetwork(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	client, _ := newTestClient(t, handler, "")

	_, err := client.Me(context.Background())
	if err != bank.ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network calls, got %d", calls.Load())
	}
}

func TestDo_ErrorBodyMessageWins(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"ALREADY_EXISTS","message":"User already exists"}`))
	})
	client, _ := newTestClient(t, handler, testToken)

	_, err := client.Me(context.Background())
	apiErr, ok := bank.AsAPIError(err)
	if !ok {
		t.Fatalf("expected an APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", apiErr.Status)
	}
	if apiErr.Code != "ALREADY_EXISTS" {
		t.Errorf("expected code ALREADY_EXISTS, got %q", apiErr.Code)
	}
	if apiErr.Message != "User already exists" {
		t.Errorf("expected the message field to win, got %q", apiErr.Message)
	}
	if err.Error() != "[409] User already exists" {
		t.Errorf("unexpected rendered error %q", err.Error())
	}
}

func TestDo_ErrorBodyCodeFallsBackAsMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"INVALID_ARGUMENT"}`))
	})
	client, _ := newTestClient(t, handler, testToken)

	_, err := client.Me(context.Background())
	apiErr, ok := bank.AsAPIError(err)
	if !ok {
		t.Fatalf("expected an APIError, got %v", err)
	}
	if apiErr.Message != "INVALID_ARGUMENT" {
		t.Errorf("expected the code as message, got %q", apiErr.Message)
	}
}

func TestDo_PlainTextErrorBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("access denied"))
	})
	client, _ := newTestClient(t, handler, testToken)

	_, err := client.Me(context.Background())
	apiErr, ok := bank.AsAPIError(err)
	if !ok {
		t.Fatalf("expected an APIError, got %v", err)
	}
	if apiErr.Message != "access denied" {
		t.Errorf("expected the raw text as message, got %q", apiErr.Message)
	}
}

func TestDo_EmptyErrorBodyUsesStatusText(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, _ := newTestClient(t, handler, testToken)

	_, err := client.Me(context.Background())
	apiErr, ok := bank.AsAPIError(err)
	if !ok {
		t.Fatalf("expected an APIError, got %v", err)
	}
	if apiErr.Message != "Internal Server Error" {
		t.Errorf("expected the status phrase, got %q", apiErr.Message)
	}
}

func TestDo_NonSuccessStatusOutside4xx5xxIsClassified(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	})
	client, _ := newTestClient(t, handler, testToken)

	_, err := client.Me(context.Background())
	apiErr, ok := bank.AsAPIError(err)
	if !ok {
		t.Fatalf("expected a 304 to classify as an APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotModified {
		t.Errorf("expected the embedded status 304, got %d", apiErr.Status)
	}
	if apiErr.Message != "Not Modified" {
		t.Errorf("expected the status phrase, got %q", apiErr.Message)
	}
}

func TestDo_JSONShapedBodyWithoutContentType(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"id":"u-1","login":"alice"}`))
	})
	client, _ := newTestClient(t, handler, testToken)

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Login != "alice" {
		t.Errorf("expected the sniffed JSON to decode, got %+v", user)
	}
}

func TestDo_EmptySuccessBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	client, _ := newTestClient(t, handler, testToken)

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != "" {
		t.Errorf("expected a zero-value user from an empty body, got %+v", user)
	}
}

func TestLogin_StoresBareToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode login body: %v", err)
		}
		if req["username"] != "alice" || req["password"] != "secret" {
			t.Errorf("unexpected credentials %v", req)
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("abc.def.ghi"))
	})
	client, _ := newTestClient(t, handler, "")

	token, err := client.Login(context.Background(), " alice ", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("expected the bare token, got %q", token)
	}

	stored, err := client.Session().Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != "abc.def.ghi" {
		t.Errorf("expected the token to be stored, got %q", stored)
	}
}

func TestLogin_UnwrapsJSONQuotedToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"abc.def.ghi"`))
	})
	client, _ := newTestClient(t, handler, "")

	token, err := client.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("expected the unquoted token, got %q", token)
	}
}

func TestLogin_EmptyTokenRejected(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	client, _ := newTestClient(t, handler, "")

	_, err := client.Login(context.Background(), "alice", "secret")
	if err != bank.ErrEmptyToken {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}

func TestLogout_ClearsSessionEvenWhenUpstreamFails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, _ := newTestClient(t, handler, testToken)

	err := client.Logout(context.Background())
	if !bank.IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("expected the upstream failure to propagate, got %v", err)
	}

	stored, storeErr := client.Session().Token(context.Background())
	if storeErr != nil {
		t.Fatalf("unexpected error: %v", storeErr)
	}
	if stored != "" {
		t.Errorf("expected the session to be cleared, got %q", stored)
	}
}

func TestLogout_WithoutSessionIsNoop(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	client, _ := newTestClient(t, handler, "")

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("expected logout with no session to succeed, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network calls, got %d", calls.Load())
	}
}

func TestDeposit_RejectsNonPositiveAmountLocally(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	client, _ := newTestClient(t, handler, testToken)

	err := client.Deposit(context.Background(), "123e4567-e89b-12d3-a456-426614174000", 0)
	if err != bank.ErrAmountNotPositive {
		t.Fatalf("expected ErrAmountNotPositive, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network calls, got %d", calls.Load())
	}
}

func TestDeposit_RejectsNonUUIDAccountLocally(t *testing.T) {
	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	client, _ := newTestClient(t, handler, testToken)

	err := client.Deposit(context.Background(), "not-a-uuid", 10)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network calls, got %d", calls.Load())
	}
}

func TestEvents_LimitBounds(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("expected the default limit 100, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	client, _ := newTestClient(t, handler, testToken)
	ctx := context.Background()

	if _, err := client.Events(ctx, bank.EventFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.Events(ctx, bank.EventFilter{Limit: 501}); err == nil {
		t.Error("expected a limit above 500 to be rejected")
	}
	if _, err := client.Events(ctx, bank.EventFilter{Limit: -1}); err == nil {
		t.Error("expected a negative limit to be rejected")
	}
}

func TestTransactions_FilterReachesQuery(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if got := query.Get("type"); got != "DEPOSIT" {
			t.Errorf("expected upper-cased type, got %q", got)
		}
		if got := query.Get("accountId"); got != "123e4567-e89b-12d3-a456-426614174000" {
			t.Errorf("unexpected accountId %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	client, _ := newTestClient(t, handler, testToken)

	_, err := client.Transactions(context.Background(), bank.TransactionFilter{
		Type:      "deposit",
		AccountID: "123e4567-e89b-12d3-a456-426614174000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
