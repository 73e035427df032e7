package auth

import (
	"strings"
	"testing"
)

func TestGenerateToken_Format(t *testing.T) {
	t.Parallel()

	generated, err := GenerateToken(EnvLive)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if !strings.HasPrefix(generated.Plaintext, "rk_live_") {
		t.Errorf("expected rk_live_ prefix, got %s", generated.Plaintext)
	}
	if !IsTokenFormat(generated.Plaintext) {
		t.Errorf("generated token should match format: %s", generated.Plaintext)
	}
	if len(generated.Prefix) != TokenPrefixLen {
		t.Errorf("expected prefix length %d, got %d", TokenPrefixLen, len(generated.Prefix))
	}
	if !strings.HasPrefix(generated.Hash, "$argon2id$") {
		t.Errorf("expected argon2id hash, got %s", generated.Hash)
	}
}

func TestGenerateToken_HashVerifies(t *testing.T) {
	t.Parallel()

	generated, err := GenerateToken(EnvTest)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	match, err := VerifyPassword(generated.Plaintext, generated.Hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !match {
		t.Error("plaintext should verify against its own hash")
	}
}

func TestGenerateToken_UnknownEnvDefaultsToLive(t *testing.T) {
	t.Parallel()

	generated, err := GenerateToken("staging")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if !strings.HasPrefix(generated.Plaintext, "rk_live_") {
		t.Errorf("expected live env fallback, got %s", generated.Plaintext)
	}
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	generated, err := GenerateToken(EnvLive)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := ParseToken(generated.Plaintext)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if parsed.Env != EnvLive {
		t.Errorf("expected env live, got %s", parsed.Env)
	}
	if parsed.Prefix != generated.Prefix {
		t.Errorf("expected prefix %s, got %s", generated.Prefix, parsed.Prefix)
	}
	if len(parsed.Secret) != TokenSecretLen {
		t.Errorf("expected secret length %d, got %d", TokenSecretLen, len(parsed.Secret))
	}
}

func TestParseToken_InvalidFormats(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"rk_live_short",
		"pk_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", // wrong product prefix
		"rk_staging_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
		"rk_live_ABC123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b", // uppercase hex
		"eyJhbGciOiJIUzI1NiJ9.e30.sig",                     // a JWT is not an opaque token
	}

	for _, token := range tests {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("expected error for %q", token)
		}
		if IsTokenFormat(token) {
			t.Errorf("IsTokenFormat(%q) should be false", token)
		}
	}
}
