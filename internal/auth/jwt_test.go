package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestMintAndParseTokens(t *testing.T) {
	id := Identity{AccountID: "acc-1", Email: "jane@example.com", Role: "contractor"}

	pair, err := MintTokens(id, "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		typ     string
		wantErr error
		anyErr  bool
	}{
		{name: "access as access", token: pair.AccessToken, secret: "secret", typ: TokenTypeAccess},
		{name: "refresh as refresh", token: pair.RefreshToken, secret: "secret", typ: TokenTypeRefresh},
		{name: "refresh as access", token: pair.RefreshToken, secret: "secret", typ: TokenTypeAccess, wantErr: ErrWrongTokenType},
		{name: "wrong secret", token: pair.AccessToken, secret: "other", typ: TokenTypeAccess, anyErr: true},
		{name: "garbage", token: "not-a-token", secret: "secret", typ: TokenTypeAccess, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseTyped(tt.token, tt.secret, tt.typ)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseTyped() error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.anyErr:
				if err == nil {
					t.Fatal("ParseTyped() expected error")
				}
				return
			case err != nil:
				t.Fatalf("ParseTyped() unexpected error = %v", err)
			}
			if claims.Identity() != id {
				t.Errorf("Identity() = %+v, want %+v", claims.Identity(), id)
			}
		})
	}
}

func TestExpiredToken(t *testing.T) {
	pair, err := MintTokens(Identity{AccountID: "a", Role: "user"}, "secret", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	if _, err := ParseTyped(pair.AccessToken, "secret", TokenTypeAccess); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("CheckPassword() should accept the original password")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("CheckPassword() should reject a different password")
	}
}

func TestSecretMatches(t *testing.T) {
	tests := []struct {
		got, want string
		match     bool
	}{
		{"abc", "abc", true},
		{" abc ", "abc", true},
		{"abd", "abc", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		if got := SecretMatches(tt.got, tt.want); got != tt.match {
			t.Errorf("SecretMatches(%q, %q) = %v, want %v", tt.got, tt.want, got, tt.match)
		}
	}
}
