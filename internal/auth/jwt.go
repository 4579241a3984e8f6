package auth

import (
	"errors"
	"time"

	"hotspot/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(cfg *config.JWTConfig, userID, email, role string) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.AccessSecret))
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidCreds = errors.New("invalid email or password")
)

func ParseAccessToken(cfg *config.JWTConfig, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.AccessSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HotspotClaims is what the captive portal checks before opening a session.
type HotspotClaims struct {
	PaymentID string `json:"pid"`
	Minutes   int    `json:"min"`
	jwt.RegisteredClaims
}

// HotspotIssuer signs access tokens for approved payments.
type HotspotIssuer struct {
	cfg *config.JWTConfig
	now func() time.Time
}

func NewHotspotIssuer(cfg *config.JWTConfig) *HotspotIssuer {
	return &HotspotIssuer{cfg: cfg, now: time.Now}
}

// IssueAccessToken returns a token valid for the purchased duration.
func (i *HotspotIssuer) IssueAccessToken(userID, paymentID string, minutes int) (string, error) {
	now := i.now()
	claims := HotspotClaims{
		PaymentID: paymentID,
		Minutes:   minutes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(minutes) * time.Minute)),
			Issuer:    i.cfg.Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.HotspotSecret))
}

func ParseHotspotToken(cfg *config.JWTConfig, tokenString string) (*HotspotClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &HotspotClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.HotspotSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*HotspotClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CheckPassword compares a bcrypt hash with the submitted password.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCreds
	}
	return nil
}
