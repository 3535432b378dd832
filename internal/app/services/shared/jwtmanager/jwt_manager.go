package jwtmanager

import (
	"errors"
	"farmstay-service/internal/pkg/constvars"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const claimSessionID = "session_id"

// JWTManager issues and verifies HS256 session tokens.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

type CreateTokenInput struct {
	SessionID string
	ExpiresAt time.Time
}

type CreateTokenOutput struct {
	Token string
}

type VerifyTokenInput struct {
	Token string
}

type VerifyTokenOutput struct {
	SessionID string
	ExpiresAt time.Time
}

func NewJWTManager(secret string) (*JWTManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("JWT_SECRET is empty")
	}
	return &JWTManager{secret: []byte(secret), now: time.Now}, nil
}

func (m *JWTManager) CreateToken(in CreateTokenInput) (*CreateTokenOutput, error) {
	if in.SessionID == "" {
		return nil, errors.New("session id is required")
	}

	claims := jwt.MapClaims{
		claimSessionID: in.SessionID,
		"iat":          m.now().Unix(),
		"exp":          in.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &CreateTokenOutput{Token: signed}, nil
}

func (m *JWTManager) VerifyToken(in VerifyTokenInput) (*VerifyTokenOutput, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.Parse(in.Token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New(constvars.ErrDevAuthSigningMethod)
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New(constvars.ErrDevAuthTokenInvalid)
	}

	sessionID, ok := claims[claimSessionID].(string)
	if !ok || sessionID == "" {
		return nil, fmt.Errorf("%s: missing %s claim", constvars.ErrDevAuthTokenInvalid, claimSessionID)
	}

	out := &VerifyTokenOutput{SessionID: sessionID}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}
