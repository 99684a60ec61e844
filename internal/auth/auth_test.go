package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/teamtrack/teamtrack/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{ID: 12, Email: "bobpeeters@teamtrack.be", Role: domain.RoleCoach}
}

func TestIssueAndParse(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 12, 17, 10, 0, 0, 0, time.UTC))
	m := NewTokenManager("secret", "teamtrack", time.Hour, clock)

	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected a compact JWT, got %q", token)
	}

	p, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.UserID != 12 || p.Email != "bobpeeters@teamtrack.be" || p.Role != domain.RoleCoach {
		t.Errorf("unexpected principal %+v", p)
	}
}

func TestIssueSetsUniqueID(t *testing.T) {
	m := NewTokenManager("secret", "teamtrack", time.Hour, nil)

	a, _ := m.Issue(testUser())
	b, _ := m.Issue(testUser())
	if a == b {
		t.Error("tokens issued in the same second should still differ by jti")
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(a, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.ID == "" {
		t.Error("expected jti to be set")
	}
	if claims.Subject != "12" {
		t.Errorf("expected sub 12, got %q", claims.Subject)
	}
}

func TestIssueRequiresID(t *testing.T) {
	m := NewTokenManager("secret", "teamtrack", time.Hour, nil)
	if _, err := m.Issue(&domain.User{Email: "x"}); err == nil {
		t.Error("expected error for unsaved user")
	}
	if _, err := m.Issue(nil); err == nil {
		t.Error("expected error for nil user")
	}
}

func TestParseExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewTokenManager("secret", "teamtrack", time.Hour, clock)

	token, _ := m.Issue(testUser())
	clock.Advance(2 * time.Hour)

	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseWrongSecretOrIssuer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	issuer := NewTokenManager("secret", "teamtrack", time.Hour, clock)
	token, _ := issuer.Issue(testUser())

	otherSecret := NewTokenManager("other", "teamtrack", time.Hour, clock)
	if _, err := otherSecret.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: expected ErrInvalidToken, got %v", err)
	}

	otherIssuer := NewTokenManager("secret", "someone-else", time.Hour, clock)
	if _, err := otherIssuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong issuer: expected ErrInvalidToken, got %v", err)
	}

	if _, err := issuer.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: expected ErrInvalidToken, got %v", err)
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)

	digest, err := h.Hash("Bob123!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if digest == "Bob123!" {
		t.Fatal("digest must not equal plaintext")
	}
	if !h.Compare("Bob123!", digest) {
		t.Error("expected matching password to compare true")
	}
	if h.Compare("wrong", digest) {
		t.Error("expected wrong password to compare false")
	}
}

func TestBcryptHasherCostBounds(t *testing.T) {
	if h := NewBcryptHasher(0); h.Cost != 10 {
		t.Errorf("expected default cost 10 for out-of-range input, got %d", h.Cost)
	}
	if h := NewBcryptHasher(12); h.Cost != 12 {
		t.Errorf("expected cost 12, got %d", h.Cost)
	}
}

func TestPrincipalRoles(t *testing.T) {
	admin := &Principal{Role: domain.RoleAdmin}
	coach := &Principal{Role: domain.RoleCoach}
	var nobody *Principal

	if !admin.IsAdmin() || coach.IsAdmin() || nobody.IsAdmin() {
		t.Error("IsAdmin mismatch")
	}
	if !coach.HasRole(domain.RoleCoach, domain.RoleAdmin) {
		t.Error("coach should match coach/admin")
	}
	if coach.HasRole(domain.RolePlayer) || nobody.HasRole(domain.RoleAdmin) {
		t.Error("unexpected role match")
	}
}
