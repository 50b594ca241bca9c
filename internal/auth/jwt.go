package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the closed set of account types carried in the token's "type" claim.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRegular Role = "regular"
)

// ParseRole accepts only the known roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleRegular:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Identity is the verified caller, decoded once by the auth middleware.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Manager signs and verifies the HS256 tokens issued by the account service.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. A zero ttl issues tokens without "exp",
// which is what the account service does.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a new JWT for the given identity.
func (m *Manager) GenerateToken(id Identity) (string, error) {
	// 1. The claims mirror the account service payload: { id, type }.
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   id.UserID,
		"type": string(id.Role),
		"iat":  now.Unix(),
	}
	if m.ttl > 0 {
		claims["exp"] = now.Add(m.ttl).Unix()
	}

	// 2. Sign with HS256 and our secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT token string and returns the
// identity it carries.
func (m *Manager) ValidateToken(tokenString string) (Identity, error) {
	// 1. Parse, rejecting anything not signed with HMAC.
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	// 2. "id" is the account service's subject claim; fall back to "sub".
	userID, _ := claims["id"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return Identity{}, errors.New("invalid subject claim")
	}

	// 3. Role must be one of the closed set.
	rawRole, _ := claims["type"].(string)
	role, err := ParseRole(rawRole)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: userID, Role: role}, nil
}
