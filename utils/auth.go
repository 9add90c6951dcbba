// utils/auth.go
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrSecretNotSet = errors.New("JWT_SECRET not set")
)

// JWTSettings is filled from configuration at startup.
type JWTSettings struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

var jwtSettings = JWTSettings{
	AccessTTL:  24 * time.Hour,
	RefreshTTL: 7 * 24 * time.Hour,
}

// BcryptCost is lowered by tests.
var BcryptCost = 14

func ConfigureJWT(s JWTSettings) {
	if s.AccessTTL <= 0 {
		s.AccessTTL = jwtSettings.AccessTTL
	}
	if s.RefreshTTL <= 0 {
		s.RefreshTTL = jwtSettings.RefreshTTL
	}
	jwtSettings = s
}

// NewJWTSecret returns 32 random bytes, base64 encoded, for JWT_SECRET.
func NewJWTSecret() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access           string
	Refresh          string
	RefreshID        string
	RefreshExpiresAt time.Time
}

// GenerateTokenPair issues an access token and a refresh token for the user.
func GenerateTokenPair(userID uuid.UUID, username, role string) (TokenPair, error) {
	now := time.Now()
	access, _, err := signToken(userID, username, role, TokenTypeAccess, now, jwtSettings.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, claims, err := signToken(userID, username, role, TokenTypeRefresh, now, jwtSettings.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:           access,
		Refresh:          refresh,
		RefreshID:        claims.ID,
		RefreshExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func signToken(userID uuid.UUID, username, role, typ string, now time.Time, ttl time.Duration) (string, *Claims, error) {
	if jwtSettings.Secret == "" {
		return "", nil, ErrSecretNotSet
	}
	claims := &Claims{
		Username: username,
		Role:     role,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    jwtSettings.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSettings.Secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken validates signature, expiry and token type.
func ParseToken(tokenString, expectedType string) (*Claims, error) {
	if jwtSettings.Secret == "" {
		return nil, ErrSecretNotSet
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSettings.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != expectedType {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Auth middleware
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header required"})
			return
		}

		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
			tokenString = tokenString[7:]
		}

		claims, err := ParseToken(tokenString, TokenTypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("userId", claims.Subject)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// CurrentUserID reads the authenticated user set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userId")
	if !exists {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

const randomAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomString returns n characters from an unambiguous upper-case alphabet.
func GenerateRandomString(n int) string {
	var sb strings.Builder
	max := big.NewInt(int64(len(randomAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("failed to read random bytes")
		}
		sb.WriteByte(randomAlphabet[idx.Int64()])
	}
	return sb.String()
}
