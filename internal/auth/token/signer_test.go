package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/AlibekovAA/recipebook/backend/internal/auth/domain"
	"github.com/AlibekovAA/recipebook/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/recipebook/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/recipebook/backend/internal/common/errors"
)

const (
	testAccessSecret  = "access-secret-key-that-is-at-least-32-bytes"
	testRefreshSecret = "refresh-secret-key-that-is-at-least-32-bytes"
)

var alicePayload = authdomain.TokenPayload{UserID: 1, Username: "alice"}

func newTestSigner(clk clock.Clock) *Signer {
	return NewSigner(Config{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, commoncrypto.NewUUIDGenerator(), clk)
}

func TestSigner_AccessTokenRoundTrip(t *testing.T) {
	s := newTestSigner(clock.NewMockClock(time.Now()))

	tok, err := s.IssueAccessToken(alicePayload)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	payload, err := s.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if payload != alicePayload {
		t.Errorf("expected %+v, got %+v", alicePayload, payload)
	}
}

func TestSigner_RefreshTokenRoundTrip(t *testing.T) {
	s := newTestSigner(clock.NewMockClock(time.Now()))

	tok, err := s.IssueRefreshToken(alicePayload)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	payload, err := s.VerifyRefreshToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if payload != alicePayload {
		t.Errorf("expected %+v, got %+v", alicePayload, payload)
	}
}

func TestSigner_KindsDoNotCrossVerify(t *testing.T) {
	s := newTestSigner(clock.NewMockClock(time.Now()))

	access, _ := s.IssueAccessToken(alicePayload)
	refresh, _ := s.IssueRefreshToken(alicePayload)

	if _, err := s.VerifyRefreshToken(authdomain.RawRefreshToken(access)); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("access token verified as refresh: %v", err)
	}
	if _, err := s.VerifyAccessToken(authdomain.AccessToken(refresh)); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("refresh token verified as access: %v", err)
	}
}

func TestSigner_WrongSecretRejected(t *testing.T) {
	clk := clock.NewMockClock(time.Now())
	s := newTestSigner(clk)
	other := NewSigner(Config{
		AccessSecret:  "another-access-secret-that-is-32-bytes-long",
		RefreshSecret: "another-refresh-secret-that-is-32-bytes-long",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}, nil, clk)

	tok, _ := other.IssueAccessToken(alicePayload)
	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSigner_ExpiredRejected(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	s := newTestSigner(clk)

	tok, _ := s.IssueAccessToken(alicePayload)
	clk.Advance(15*time.Minute + time.Second)

	if _, err := s.VerifyAccessToken(tok); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestSigner_TamperedRejected(t *testing.T) {
	s := newTestSigner(clock.NewMockClock(time.Now()))

	tok, _ := s.IssueAccessToken(alicePayload)
	parts := strings.Split(string(tok), ".")
	if len(parts) != 3 {
		t.Fatalf("expected three segments, got %d", len(parts))
	}
	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 2, "username": "mallory", "exp": time.Now().Add(time.Hour).Unix(),
	}).SigningString()
	tampered := strings.Split(forged, ".")[1]

	bad := authdomain.AccessToken(parts[0] + "." + tampered + "." + parts[2])
	if _, err := s.VerifyAccessToken(bad); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSigner_RejectsOtherAlgorithms(t *testing.T) {
	clk := clock.NewMockClock(time.Now())
	s := newTestSigner(clk)

	c := jwt.MapClaims{
		"userId":   1,
		"username": "alice",
		"iat":      clk.Now().Unix(),
		"exp":      clk.Now().Add(time.Hour).Unix(),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := s.VerifyAccessToken(authdomain.AccessToken(none)); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected alg none to be rejected, got %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte(testAccessSecret))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}
	if _, err := s.VerifyAccessToken(authdomain.AccessToken(hs512)); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected HS512 to be rejected, got %v", err)
	}
}

func TestSigner_MissingClaimsRejected(t *testing.T) {
	clk := clock.NewMockClock(time.Now())
	s := newTestSigner(clk)

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": clk.Now().Unix(),
		"exp": clk.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testAccessSecret))
	if _, err := s.VerifyAccessToken(authdomain.AccessToken(noUser)); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected missing claims to be rejected, got %v", err)
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": 1, "username": "alice",
	}).SignedString([]byte(testAccessSecret))
	if _, err := s.VerifyAccessToken(authdomain.AccessToken(noExp)); !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected token without exp to be rejected, got %v", err)
	}
}

func TestSigner_MalformedInput(t *testing.T) {
	s := newTestSigner(clock.NewMockClock(time.Now()))

	for _, raw := range []string{"", "not-a-jwt", "a.b.c", "Bearer x.y.z"} {
		if _, err := s.VerifyAccessToken(authdomain.AccessToken(raw)); !errors.Is(err, commonerrors.ErrInvalidToken) {
			t.Errorf("%q: expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestSigner_SameSecondTokensDiffer(t *testing.T) {
	s := newTestSigner(clock.NewMockClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))

	first, _ := s.IssueRefreshToken(alicePayload)
	second, _ := s.IssueRefreshToken(alicePayload)
	if first == second {
		t.Fatal("expected distinct refresh tokens within the same second")
	}
	if HashRefreshToken(first) == HashRefreshToken(second) {
		t.Fatal("expected distinct hashes")
	}
}

func TestHashRefreshToken(t *testing.T) {
	h := HashRefreshToken("token")
	if len(h) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h))
	}
	if h != HashRefreshToken("token") {
		t.Fatal("expected deterministic hash")
	}
}
