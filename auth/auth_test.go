package auth

import (
	"strings"
	"testing"
	"time"
)

func TestService_GenerateAndParse(t *testing.T) {
	svc, err := NewService(Config{Enabled: true, Secret: "test-secret", Issuer: "mediagate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := svc.Generate("client-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Subject != "client-1" {
		t.Errorf("expected subject 'client-1', got %q", claims.Subject)
	}
	if claims.Issuer != "mediagate" {
		t.Errorf("expected issuer 'mediagate', got %q", claims.Issuer)
	}
}

func TestService_ParseRejectsWrongSecret(t *testing.T) {
	svc1, _ := NewService(Config{Enabled: true, Secret: "secret-one"})
	svc2, _ := NewService(Config{Enabled: true, Secret: "secret-two"})

	token, err := svc1.Generate("client-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := svc2.Parse(token); err == nil {
		t.Error("expected error for token signed with different secret")
	}
}

func TestService_ParseRejectsExpired(t *testing.T) {
	svc, _ := NewService(Config{Enabled: true, Secret: "test-secret", TokenTTL: -time.Hour})

	token, err := svc.Generate("client-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := svc.Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestService_ParseRejectsGarbage(t *testing.T) {
	svc, _ := NewService(Config{Enabled: true, Secret: "test-secret"})
	if _, err := svc.Parse("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestConfig_ValidateRequiresSecret(t *testing.T) {
	cfg := Config{Enabled: true}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for enabled auth without secret")
	}
	if !strings.Contains(err.Error(), "secret") {
		t.Errorf("expected secret error, got %v", err)
	}
}

func TestConfig_DisabledNeedsNoSecret(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_ValidatorFunc(t *testing.T) {
	svc, _ := NewService(Config{Enabled: true, Secret: "test-secret"})
	token, _ := svc.Generate("client-9")

	validate := svc.ValidatorFunc()
	claims, err := validate(token)
	if err != nil {
		t.Fatalf("validator failed: %v", err)
	}
	if claims["subject"] != "client-9" {
		t.Errorf("expected subject 'client-9', got %v", claims["subject"])
	}
}
