package cli

import (
	"strings"
	"testing"

	"github.com/nikitakapustkin/bankctl/internal/bank"
)

func TestRenderUsers_PrefersJoinedAccountCounts(t *testing.T) {
	users := []bank.User{
		{ID: "u-1", Login: "alice", Name: "Alice", Age: 30, Sex: "FEMALE", HairColor: "DARK"},
	}
	counts := map[string]int{"u-1": 3}

	var out strings.Builder
	if err := renderUsers(&out, users, counts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered := out.String()
	if !strings.Contains(rendered, "LOGIN") {
		t.Errorf("expected a header row, got %q", rendered)
	}
	if !strings.Contains(rendered, "alice") || !strings.Contains(rendered, "3") {
		t.Errorf("expected the user row with the joined count, got %q", rendered)
	}
}

func TestRenderAccounts_DashesBlankOwner(t *testing.T) {
	accounts := []bank.Account{{AccountID: "a-1", Balance: 10}}

	var out strings.Builder
	if err := renderAccounts(&out, accounts, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "-") {
		t.Errorf("expected a dash for the missing owner, got %q", out.String())
	}
}

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("12.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount != 12.5 {
		t.Errorf("expected 12.5, got %v", amount)
	}

	if _, err := parseAmount("twelve"); err == nil {
		t.Error("expected an error for a non-numeric amount")
	}
}
