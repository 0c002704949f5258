package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"dashboard-gate/internal/domain"
)

var (
	// ErrTokenExpired indicates a well-formed token past its expiry instant.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed indicates a token that is unsigned, tampered with,
	// or not of the expected kind.
	ErrTokenMalformed = errors.New("token malformed")
)

// SessionClaims is the payload of a session token proving an
// authenticated identity and role.
type SessionClaims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	IsManager bool   `json:"is_manager"`
	jwt.RegisteredClaims
}

// EmbedUser identifies the viewer inside a dashboard-embedding token.
type EmbedUser struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// EmbedResource names a single resource the embedding token grants.
type EmbedResource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// EmbedClaims is the payload of a dashboard-embedding token handed to an
// external visualization embed.
type EmbedClaims struct {
	User      EmbedUser       `json:"user"`
	Resources []EmbedResource `json:"resources"`
	RLS       []any           `json:"rls"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the two token kinds with a single
// process-wide HMAC secret fixed at startup.
type TokenService struct {
	secret     []byte
	sessionTTL time.Duration
	embedTTL   time.Duration
}

func NewTokenService(secret string, sessionTTL, embedTTL time.Duration) *TokenService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if embedTTL <= 0 {
		embedTTL = time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		embedTTL:   embedTTL,
	}
}

// IssueSession signs a session token for the given user.
func (s *TokenService) IssueSession(user *domain.User) (string, error) {
	if user == nil || user.ID <= 0 {
		return "", errors.New("user is required")
	}
	claims := SessionClaims{
		UserID:    user.ID,
		Username:  user.Username,
		IsManager: user.IsManager,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.sessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// VerifySession checks signature and expiry and returns the session
// claims. An embedding token presented here fails as malformed.
func (s *TokenService) VerifySession(token string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}
	if claims.UserID <= 0 || claims.Username == "" {
		return nil, ErrTokenMalformed
	}
	return &claims, nil
}

// IssueEmbed signs a short-lived token scoped to a single dashboard.
// The user's display name is split on whitespace into first/last name;
// a name without a space leaves the last name empty.
func (s *TokenService) IssueEmbed(user *domain.User, dashboardID string) (string, error) {
	if user == nil || user.ID <= 0 {
		return "", errors.New("user is required")
	}
	if dashboardID == "" {
		return "", errors.New("dashboard id is required")
	}

	first, last := splitDisplayName(user.DisplayName)
	if first == "" {
		first = user.Username
	}

	claims := EmbedClaims{
		User: EmbedUser{
			Username:  user.Username,
			FirstName: first,
			LastName:  last,
		},
		Resources: []EmbedResource{{Type: "dashboard", ID: dashboardID}},
		RLS:       []any{},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.embedTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign embed token: %w", err)
	}
	return token, nil
}

// VerifyEmbed checks signature and expiry and returns the embedding
// claims. A session token presented here fails as malformed.
func (s *TokenService) VerifyEmbed(token string) (*EmbedClaims, error) {
	var claims EmbedClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}
	if claims.User.Username == "" || len(claims.Resources) == 0 {
		return nil, ErrTokenMalformed
	}
	return &claims, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenMalformed
	}
	if !parsed.Valid {
		return ErrTokenMalformed
	}
	return nil
}

func splitDisplayName(name string) (first, last string) {
	fields := strings.Fields(name)
	switch {
	case len(fields) == 0:
		return "", ""
	case len(fields) == 1:
		return fields[0], ""
	default:
		return fields[0], fields[len(fields)-1]
	}
}
