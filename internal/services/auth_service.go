package services

import (
	"time"

	chat_errors "storefront-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the authenticated party on a request. Customers identify by
// email only; the admin role is granted through login.
type Identity struct {
	Email   string
	Name    string
	IsAdmin bool
}

type chatClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type AuthService struct {
	secret     []byte
	expiry     time.Duration
	adminEmail string
	adminHash  string
}

func NewAuthService(secret string, expiryMin int, adminEmail, adminPasswordHash string) *AuthService {
	if expiryMin <= 0 {
		expiryMin = 60
	}
	return &AuthService{
		secret:     []byte(secret),
		expiry:     time.Duration(expiryMin) * time.Minute,
		adminEmail: adminEmail,
		adminHash:  adminPasswordHash,
	}
}

// IssueCustomerToken creates the lightweight identity token a customer
// gets on first contact.
func (s *AuthService) IssueCustomerToken(email, name string) (string, error) {
	if email == "" {
		return "", chat_errors.ErrInvalidInput
	}
	return s.sign(email, name, "customer")
}

// AdminLogin checks the configured bcrypt hash and issues an admin token.
func (s *AuthService) AdminLogin(email, password string) (string, error) {
	if email != s.adminEmail || s.adminHash == "" {
		return "", chat_errors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminHash), []byte(password)); err != nil {
		return "", chat_errors.ErrUnauthorized
	}
	return s.sign(email, "Admin", "admin")
}

func (s *AuthService) ParseToken(token string) (Identity, error) {
	claims := &chatClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chat_errors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, chat_errors.ErrUnauthorized
	}
	return Identity{
		Email:   claims.Email,
		Name:    claims.Name,
		IsAdmin: claims.Role == "admin",
	}, nil
}

func (s *AuthService) sign(email, name, role string) (string, error) {
	now := time.Now()
	claims := chatClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		Email: email,
		Name:  name,
		Role:  role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
