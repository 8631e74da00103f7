package auth

import (
	"net/http/httptest"
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "member")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "member" {
		t.Errorf("Role = %q, want %q", claims.Role, "member")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestFromRequest(t *testing.T) {
	token, err := GenerateToken(7, "")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims, err := FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest() error = %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
}

func TestFromRequestMissingHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	if _, err := FromRequest(req); err != ErrMissingToken {
		t.Errorf("error = %v, want ErrMissingToken", err)
	}

	req.Header.Set("Authorization", "Basic abc")
	if _, err := FromRequest(req); err != ErrMissingToken {
		t.Errorf("error = %v, want ErrMissingToken", err)
	}
}
