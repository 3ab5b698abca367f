package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is stamped into every issued token
const TokenIssuer = "latencyviz"

// DefaultTokenExpiry is used when no expiry is configured
const DefaultTokenExpiry = 90 * 24 * time.Hour

// ErrAuthNotConfigured is returned when an AuthService has no secret
var ErrAuthNotConfigured = errors.New("auth service not configured")

// AuthService issues and validates websocket client tokens
type AuthService struct {
	secretKey   string
	tokenExpiry time.Duration
}

// ClientClaims represents the JWT claims structure
type ClientClaims struct {
	ClientName string `json:"client_name"`
	jwt.RegisteredClaims
}

// NewAuthService builds a service around secret. An empty secret is read
// from secretFile, or generated and persisted there when the file is absent.
func NewAuthService(secret, secretFile string, tokenExpiry time.Duration) (*AuthService, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		var err error
		secret, err = loadOrCreateSecret(secretFile)
		if err != nil {
			return nil, err
		}
	}

	if tokenExpiry <= 0 {
		tokenExpiry = DefaultTokenExpiry
	}

	// HMAC-SHA256 wants at least 32 bytes
	if len(secret) < 32 {
		log.Printf("[AUTH] ⚠️  Secret key is only %d bytes. Recommended minimum is 32 bytes for HMAC-SHA256", len(secret))
	}

	return &AuthService{
		secretKey:   secret,
		tokenExpiry: tokenExpiry,
	}, nil
}

// DefaultSecretFile is where a generated secret is kept between runs
func DefaultSecretFile() string {
	homeDir, _ := os.UserHomeDir()
	if homeDir == "" {
		return filepath.Join(os.TempDir(), ".latencyviz-secret-key")
	}
	return filepath.Join(homeDir, ".latencyviz-secret-key")
}

func loadOrCreateSecret(keyFile string) (string, error) {
	if keyFile == "" {
		keyFile = DefaultSecretFile()
	}

	if data, err := os.ReadFile(keyFile); err == nil && len(strings.TrimSpace(string(data))) > 0 {
		secret := strings.TrimSpace(string(data))
		log.Printf("[AUTH] ✓ Loaded persisted secret key from %s (length: %d bytes)", keyFile, len(secret))
		return secret, nil
	}

	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	secret := "latencyviz-" + hex.EncodeToString(randomBytes)

	if err := os.WriteFile(keyFile, []byte(secret), 0600); err != nil {
		log.Printf("[AUTH] ⚠️  Could not persist secret key to %s: %v", keyFile, err)
	} else {
		log.Printf("[AUTH] ✓ Generated and persisted secret key to %s", keyFile)
	}
	return secret, nil
}

// GenerateToken creates a signed token for a named client
func (a *AuthService) GenerateToken(clientName string) (string, error) {
	if a == nil || a.secretKey == "" {
		return "", ErrAuthNotConfigured
	}

	now := time.Now()
	claims := ClientClaims{
		ClientName: clientName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.secretKey))
}

// ValidateToken verifies and parses a token
func (a *AuthService) ValidateToken(tokenString string) (*ClientClaims, error) {
	if a == nil || a.secretKey == "" {
		return nil, ErrAuthNotConfigured
	}

	claims := &ClientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.secretKey), nil
	}, jwt.WithIssuer(TokenIssuer))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// TokenExpiry returns when a token issued now would expire
func (a *AuthService) TokenExpiry() time.Time {
	if a == nil {
		return time.Time{}
	}
	return time.Now().Add(a.tokenExpiry)
}
