package services

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

// Roles carried in bearer tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the acting user of a request.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the identity has the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// AuthService validates bearer tokens issued by the session service.
type AuthService struct {
	jwtSecret []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
	}
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// Authenticate validates a token and extracts the acting identity.
// Tokens without a role claim act as RoleUser.
func (s *AuthService) Authenticate(tokenString string) (*Identity, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("invalid token: missing user_id claim")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleUser
	}
	return &Identity{UserID: userID, Role: role}, nil
}
