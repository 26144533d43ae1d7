package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/brightdesk/support-service/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:    42,
		Email: "ops@example.com",
		Role:  model.UserRoleAdmin,
	}
}

func TestIssuePairRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)
	pair, err := m.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair err: %v", err)
	}

	claims, err := m.ValidateAccess(pair.Access)
	if err != nil {
		t.Fatalf("ValidateAccess err: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "ops@example.com" || claims.Role != model.UserRoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := m.ValidateRefresh(pair.Refresh); err != nil {
		t.Fatalf("ValidateRefresh err: %v", err)
	}
}

func TestTokenTypeEnforced(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)
	pair, err := m.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair err: %v", err)
	}

	if _, err := m.ValidateAccess(pair.Refresh); !errors.Is(err, ErrWrongTokenUse) {
		t.Fatalf("refresh token on access path: got %v want ErrWrongTokenUse", err)
	}
	if _, err := m.ValidateRefresh(pair.Access); !errors.Is(err, ErrWrongTokenUse) {
		t.Fatalf("access token on refresh path: got %v want ErrWrongTokenUse", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	pair, err := NewManager("secret-a", time.Minute, time.Hour).IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair err: %v", err)
	}
	if _, err := NewManager("secret-b", time.Minute, time.Hour).ValidateAccess(pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature: got %v want ErrInvalidToken", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, time.Hour)
	pair, err := m.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair err: %v", err)
	}
	if _, err := m.ValidateAccess(pair.Access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got %v want ErrInvalidToken", err)
	}
}

func TestGarbageRejected(t *testing.T) {
	m := NewManager("test-secret", time.Minute, time.Hour)
	if _, err := m.ValidateAccess("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: got %v want ErrInvalidToken", err)
	}
}
