package session_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/nikitakapustkin/bankctl/internal/session"
)

func buildToken(t *testing.T, payload map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return "header." + base64.RawURLEncoding.EncodeToString(raw) + ".signature"
}

func TestDecodeClaims_ValidToken(t *testing.T) {
	token := buildToken(t, map[string]any{
		"sub":    "alice",
		"role":   "CLIENT",
		"userId": "123e4567-e89b-12d3-a456-426614174000",
	})

	claims := session.DecodeClaims(token)
	if claims == nil {
		t.Fatal("expected claims, got nil")
	}
	if claims.Subject != "alice" {
		t.Errorf("expected subject alice, got %q", claims.Subject)
	}
	if claims.Role != session.RoleClient {
		t.Errorf("expected role CLIENT, got %q", claims.Role)
	}
	if claims.UserID != "123e4567-e89b-12d3-a456-426614174000" {
		t.Errorf("unexpected user id %q", claims.UserID)
	}
}

func TestDecodeClaims_TwoSegmentToken(t *testing.T) {
	full := buildToken(t, map[string]any{"sub": "alice", "role": "ADMIN"})
	twoSegments := full[:len(full)-len(".signature")]

	claims := session.DecodeClaims(twoSegments)
	if claims == nil {
		t.Fatal("expected claims from a two-segment token, got nil")
	}
	if claims.Role != session.RoleAdmin {
		t.Errorf("expected role ADMIN, got %q", claims.Role)
	}
}

func TestDecodeClaims_SingleSegmentToken(t *testing.T) {
	if claims := session.DecodeClaims("justonesegment"); claims != nil {
		t.Errorf("expected nil for a token without a payload segment, got %+v", claims)
	}
}

func TestDecodeClaims_EmptyToken(t *testing.T) {
	if claims := session.DecodeClaims(""); claims != nil {
		t.Errorf("expected nil for an empty token, got %+v", claims)
	}
}

func TestDecodeClaims_NotBase64(t *testing.T) {
	if claims := session.DecodeClaims("header.!!not-base64!!.signature"); claims != nil {
		t.Errorf("expected nil for a non-base64 payload, got %+v", claims)
	}
}

func TestDecodeClaims_NotJSON(t *testing.T) {
	segment := base64.RawURLEncoding.EncodeToString([]byte("plain text"))
	if claims := session.DecodeClaims("header." + segment + ".signature"); claims != nil {
		t.Errorf("expected nil for a non-JSON payload, got %+v", claims)
	}
}

func TestDecodeClaims_MissingRole(t *testing.T) {
	token := buildToken(t, map[string]any{"sub": "alice"})
	if claims := session.DecodeClaims(token); claims != nil {
		t.Errorf("expected nil when role is absent, got %+v", claims)
	}
}

func TestDecodeClaims_NonStringRole(t *testing.T) {
	token := buildToken(t, map[string]any{"sub": "alice", "role": 42})
	if claims := session.DecodeClaims(token); claims != nil {
		t.Errorf("expected nil for a non-string role, got %+v", claims)
	}
}

func TestDecodeClaims_BlankRole(t *testing.T) {
	token := buildToken(t, map[string]any{"sub": "alice", "role": "   "})
	if claims := session.DecodeClaims(token); claims != nil {
		t.Errorf("expected nil for a blank role, got %+v", claims)
	}
}

func TestDecodeClaims_RoleNormalized(t *testing.T) {
	token := buildToken(t, map[string]any{"sub": "alice", "role": " client "})

	claims := session.DecodeClaims(token)
	if claims == nil {
		t.Fatal("expected claims, got nil")
	}
	if claims.Role != session.RoleClient {
		t.Errorf("expected normalized role CLIENT, got %q", claims.Role)
	}
}

func TestDecodeClaims_PaddedSegment(t *testing.T) {
	raw, err := json.Marshal(map[string]any{"sub": "alice", "role": "SERVICE"})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	token := "header." + base64.URLEncoding.EncodeToString(raw) + ".signature"

	claims := session.DecodeClaims(token)
	if claims == nil {
		t.Fatal("expected claims from a padded payload segment, got nil")
	}
	if claims.Role != session.RoleService {
		t.Errorf("expected role SERVICE, got %q", claims.Role)
	}
}

func TestDecodeClaims_Deterministic(t *testing.T) {
	token := buildToken(t, map[string]any{"sub": "alice", "role": "ADMIN", "userId": "u-1"})

	first := session.DecodeClaims(token)
	second := session.DecodeClaims(token)
	if first == nil || second == nil {
		t.Fatal("expected claims on both decodes")
	}
	if *first != *second {
		t.Errorf("expected identical claims, got %+v and %+v", *first, *second)
	}
}
