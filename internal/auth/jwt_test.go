package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	actor := Actor{UserID: 42, ShopID: 7, Role: "OWNER", Name: "Asha"}

	token, err := GenerateToken("secret", actor, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if parsed != actor {
		t.Errorf("parsed = %+v, want %+v", parsed, actor)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", Actor{UserID: 1}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected rejection with wrong secret")
	}
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", Actor{UserID: 1}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected rejection of expired token")
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := ParseToken("secret", "not-a-token"); err == nil {
		t.Fatal("expected rejection of malformed token")
	}
}
