package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyai_go_backend/internal/kvstore"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserAlreadyExists  = errors.New("a user with this email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Identity is the resolved caller identity. Downstream components trust it
// for the remainder of the request.
type Identity struct {
	UserID string
	Email  string
}

// IdentityProvider creates user identities and verifies the tokens they
// present. The rest of the application consumes it only through this
// interface.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, name string) (Identity, error)
	VerifyCredentials(ctx context.Context, email, password string) (Identity, error)
	IssueToken(identity Identity) (string, error)
	VerifyToken(tokenString string) (Identity, error)
}

// credentialRecord is stored under "cred:{email}".
type credentialRecord struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// JWTProvider is the default IdentityProvider. It keeps bcrypt-hashed
// credentials in the KV store and signs HS256 access tokens.
type JWTProvider struct {
	store    kvstore.Store
	secret   []byte
	tokenTTL time.Duration
}

// NewJWTProvider returns a provider signing tokens with secret. Tokens expire
// after tokenTTL.
func NewJWTProvider(store kvstore.Store, secret []byte, tokenTTL time.Duration) *JWTProvider {
	return &JWTProvider{
		store:    store,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func credentialKey(email string) string {
	return "cred:" + strings.ToLower(strings.TrimSpace(email))
}

func (p *JWTProvider) CreateUser(ctx context.Context, email, password, name string) (Identity, error) {
	key := credentialKey(email)
	if _, err := p.store.Get(ctx, key); err == nil {
		return Identity{}, ErrUserAlreadyExists
	} else if !errors.Is(err, kvstore.ErrKeyNotFound) {
		return Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, err
	}

	record := credentialRecord{
		UserID:       uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.store.Set(ctx, key, record); err != nil {
		return Identity{}, err
	}

	return Identity{UserID: record.UserID, Email: record.Email}, nil
}

func (p *JWTProvider) VerifyCredentials(ctx context.Context, email, password string) (Identity, error) {
	raw, err := p.store.Get(ctx, credentialKey(email))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, err
	}

	var record credentialRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{UserID: record.UserID, Email: record.Email}, nil
}

func (p *JWTProvider) IssueToken(identity Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   identity.UserID,
		"email": identity.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(p.tokenTTL).Unix(),
	})
	return token.SignedString(p.secret)
}

func (p *JWTProvider) VerifyToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return Identity{UserID: sub, Email: email}, nil
}
