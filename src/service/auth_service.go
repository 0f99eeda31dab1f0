package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ria-board/src/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthNotConfigured  = errors.New("authentication is not configured")
)

// TokenClaims JWT内のカスタムクレーム
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService 単一ユーザー認証サービスのインターフェース
type AuthService interface {
	Login(username, password string) (string, error)
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// authService 単一ユーザー認証サービスの実装
type authService struct {
	config *config.Config
}

// NewAuthService 認証サービスを作成
func NewAuthService(cfg *config.Config) AuthService {
	return &authService{config: cfg}
}

// Login 資格情報を検証してアクセストークンを発行
func (s *authService) Login(username, password string) (string, error) {
	auth := s.config.Auth
	if auth.JWTSecret == "" || auth.PasswordHash == "" {
		return "", ErrAuthNotConfigured
	}
	if username != auth.Username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(auth.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := &TokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(auth.JWTExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "ria-board",
			Subject:   fmt.Sprintf("user:%s", username),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(auth.JWTSecret))
}

// ValidateToken アクセストークンを検証
func (s *authService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Auth.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
