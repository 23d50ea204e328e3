package util

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(testSecret, 42, "hr", PurposeAccess, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(testSecret, token, PurposeAccess)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "hr" {
		t.Errorf("Role = %q, want hr", claims.Role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := GenerateToken(testSecret, 1, "user", PurposeAccess, time.Hour)

	if _, err := ParseToken("other-secret", token, PurposeAccess); err == nil {
		t.Error("ParseToken() with wrong secret error = nil, want error")
	}
}

func TestParseToken_WrongPurpose(t *testing.T) {
	token, _ := GenerateToken(testSecret, 1, "user", PurposeReset, time.Hour)

	if _, err := ParseToken(testSecret, token, PurposeAccess); err == nil {
		t.Error("a reset token must not pass as an access token")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _ := GenerateToken(testSecret, 1, "user", PurposeAccess, -time.Minute)

	if _, err := ParseToken(testSecret, token, PurposeAccess); err == nil {
		t.Error("ParseToken() with expired token error = nil, want error")
	}
}

func TestGenerateSessionToken_CarriesSessionID(t *testing.T) {
	token, err := GenerateSessionToken(testSecret, 7, "user", PurposeSession, "sess-123", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}

	claims, err := ParseToken(testSecret, token, PurposeSession)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.SessionID != "sess-123" {
		t.Errorf("SessionID = %q, want sess-123", claims.SessionID)
	}
}
