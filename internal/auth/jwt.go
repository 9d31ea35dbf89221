// Package auth issues and validates the JWT bearer tokens protecting the
// API. Role and admin claims are a snapshot taken at issuance: changing a
// user's roles takes effect on their next login, not on outstanding tokens.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/wordapi/pkg/models"
)

// Claims carried by access tokens. The subject is the user id.
type Claims struct {
	Name    string   `json:"name,omitempty"`
	IsAdmin bool     `json:"is_admin"`
	Roles   []string `json:"roles,omitempty"`
	Type    string   `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %v", err)
	}
	return id, nil
}

// HasRole reports whether the role name is in the claim set
func (c *Claims) HasRole(role string) bool {
	for _, name := range c.Roles {
		if name == role {
			return true
		}
	}
	return false
}

// Manager handles JWT token creation and validation
type Manager struct {
	secret         []byte
	accessTimeout  time.Duration
	refreshTimeout time.Duration
}

// NewManager creates a token manager. The secret must not be empty.
func NewManager(secret string, accessTimeout, refreshTimeout time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required but was empty")
	}
	return &Manager{
		secret:         []byte(secret),
		accessTimeout:  accessTimeout,
		refreshTimeout: refreshTimeout,
	}, nil
}

// GenerateAccess creates an access token carrying the user's first name,
// admin flag and role names as they are right now.
func (m *Manager) GenerateAccess(user *models.User) (string, error) {
	claims := &Claims{
		Name:    user.FirstName(),
		IsAdmin: user.IsAdmin,
		Roles:   user.RoleNames(),
		Type:    "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.accessTimeout)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	return m.sign(claims)
}

// GenerateRefresh creates a refresh token carrying only the user id
func (m *Manager) GenerateRefresh(userID int64) (string, error) {
	claims := &Claims{
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.refreshTimeout)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	return m.sign(claims)
}

func (m *Manager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

// ValidateAccess validates an access token and returns its claims
func (m *Manager) ValidateAccess(tokenString string) (*Claims, error) {
	return m.validate(tokenString, "access")
}

// ValidateRefresh validates a refresh token and returns its claims
func (m *Manager) ValidateRefresh(tokenString string) (*Claims, error) {
	return m.validate(tokenString, "refresh")
}

func (m *Manager) validate(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Type != wantType {
		return nil, fmt.Errorf("expected %s token, got %s", wantType, claims.Type)
	}
	return claims, nil
}
