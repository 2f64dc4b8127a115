package security

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"saodo/internal/models"
)

func TestHashPassword(t *testing.T) {
	password := "testPassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == password {
		t.Error("HashPassword() returned an unhashed value")
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes due to salt")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "mySecurePassword"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "correct password", password: password, hash: hash, want: true},
		{name: "incorrect password", password: "wrongPassword", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "no hash set", password: password, hash: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := CheckPassword(tt.password, tt.hash); result != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &models.User{ID: "u-1", Role: models.RoleReporter}

	token, session, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	parsed, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.UserID != "u-1" || parsed.Role != models.RoleReporter {
		t.Errorf("Parse() = %+v", parsed)
	}
	if parsed.ExpiresAt.Unix() != session.ExpiresAt.Unix() {
		t.Errorf("ExpiresAt = %v, want %v", parsed.ExpiresAt, session.ExpiresAt)
	}
}

func TestTokenIssuerRejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _, err := issuer.Issue(&models.User{ID: "u-1", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other", time.Hour)
		if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenIssuer("secret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := late.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := issuer.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestCSRFGenerator(t *testing.T) {
	g := NewCSRFGenerator("secret")
	token, err := g.GenerateToken("session-a")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if !g.ValidateToken("session-a", token) {
		t.Error("token should validate for its own session")
	}
	if g.ValidateToken("session-b", token) {
		t.Error("token should not validate for another session")
	}
	if NewCSRFGenerator("other").ValidateToken("session-a", token) {
		t.Error("token should not validate under another secret")
	}
	if _, err := g.GenerateToken(""); err == nil {
		t.Error("expected error for empty session")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IPs should have their own bucket")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, remote: "10.0.0.1:80", want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "5.6.7.8"}, remote: "10.0.0.1:80", want: "5.6.7.8"},
		{name: "remote addr", remote: "9.9.9.9:1234", want: "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if SessionToken(r) != "" {
		t.Error("expected empty token")
	}
	r.Header.Set("Authorization", "Bearer abc")
	if SessionToken(r) != "abc" {
		t.Errorf("SessionToken() = %q, want abc", SessionToken(r))
	}
	r.AddCookie(CreateSessionCookie(r, "cookie-token", time.Now().Add(time.Hour)))
	if SessionToken(r) != "cookie-token" {
		t.Errorf("SessionToken() = %q, want cookie-token", SessionToken(r))
	}
}
