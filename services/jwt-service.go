package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HKazz/project-3-back-end/models"
)

// Claims is the session token payload: {userId, username, iat, exp}.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 session tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *JWTService) GenerateToken(identity models.Identity) (string, error) {
	issuedAt := s.now()
	claims := &Claims{
		UserID:   identity.ID.Hex(),
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the identity the token was issued to.
func (s *JWTService) ParseToken(tokenStr string) (models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, fmt.Errorf("token has expired: %w", models.ErrUnauthorized)
		}
		return models.Identity{}, fmt.Errorf("invalid token: %w", models.ErrUnauthorized)
	}
	if !token.Valid {
		return models.Identity{}, fmt.Errorf("invalid token: %w", models.ErrUnauthorized)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil || claims.Username == "" {
		return models.Identity{}, fmt.Errorf("token claims are incomplete: %w", models.ErrUnauthorized)
	}
	return models.Identity{ID: id, Username: claims.Username}, nil
}
