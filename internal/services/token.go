package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures. Expiry is reported separately so the
// caller can tell the scanner to mint a fresh code.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const authTokenExpDays = 365

// TokenService mints and verifies the HS256 tokens used by the system:
// long-lived auth tokens for logged-in members and short-lived QR
// tokens presented at the door. QR tokens are never persisted; expiry
// is their only invalidation mechanism.
type TokenService struct {
	secret []byte
	qrTTL  time.Duration
	now    func() time.Time
}

// NewTokenService creates a new token service
func NewTokenService(secret string, qrTTL time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		qrTTL:  qrTTL,
		now:    time.Now,
	}
}

// IssueQR mints a short-lived signed token binding a member id to an
// expiry of now + TTL
func (s *TokenService) IssueQR(memberID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"uid": memberID,
		"iat": now.Unix(),
		"exp": now.Add(s.qrTTL).Unix(),
		"qr":  true,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyQR verifies a QR token and returns the member id it was minted
// for. The expiry is checked twice: by the library during parsing and
// explicitly against the clock afterwards.
func (s *TokenService) VerifyQR(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}

	if isQR, ok := claims["qr"].(bool); !ok || !isQR {
		return "", ErrTokenInvalid
	}

	memberID, ok := claims["uid"].(string)
	if !ok || memberID == "" {
		return "", ErrTokenInvalid
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return "", ErrTokenInvalid
	}
	if !s.now().Before(time.Unix(int64(exp), 0)) {
		return "", ErrTokenExpired
	}

	return memberID, nil
}

// IssueAuth mints a long-lived session token for a member
func (s *TokenService) IssueAuth(memberID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"uid": memberID,
		"iat": now.Unix(),
		"exp": now.AddDate(0, 0, authTokenExpDays).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ParseAuth validates a session token and returns the member id
func (s *TokenService) ParseAuth(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}

	memberID, ok := claims["uid"].(string)
	if !ok || memberID == "" {
		return "", ErrTokenInvalid
	}

	return memberID, nil
}

func (s *TokenService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
