package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/utils"
)

const DefaultTokenTTL = 24 * time.Hour

type UserStore interface {
	FindByLogin(ctx context.Context, login string) (models.User, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, u models.User) (models.User, error)
}

// TokenClaims is the JWT payload issued at login.
type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService struct {
	Users     UserStore
	Secret    []byte
	TTL       time.Duration
	RequestID string
	Now       func() time.Time
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Username == "" {
		return models.User{}, domain.ValidationError{Field: "username", Msg: "is required"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "is not a valid address"}
	}
	if len(in.Password) < 8 {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}

	exists, err := s.Users.Exists(ctx, in.Email, in.Username)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email or username already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Users.Create(ctx, models.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	})
	if err != nil {
		return models.User{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%d", u.ID))
	return u, nil
}

// Login checks the password and issues a signed token.
func (s AuthService) Login(ctx context.Context, login, password string) (string, models.User, error) {
	u, err := s.Users.FindByLogin(ctx, login)
	if domain.IsNotFound(err) {
		return "", models.User{}, domain.UnauthorizedError{Msg: "wrong email/username or password"}
	}
	if err != nil {
		return "", models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, domain.UnauthorizedError{Msg: "wrong email/username or password"}
	}
	if u.Status != "" && u.Status != "active" {
		return "", models.User{}, domain.UnauthorizedError{Msg: "account is " + u.Status}
	}

	token, err := IssueToken(s.Secret, u.ID, u.Role, s.now().Add(s.ttl()))
	if err != nil {
		return "", models.User{}, fmt.Errorf("sign token: %w", err)
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))
	return token, u, nil
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTokenTTL
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func IssueToken(secret []byte, userID int64, role string, expires time.Time) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func ParseToken(secret []byte, raw string) (TokenClaims, error) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return TokenClaims{}, err
	}
	if claims.UserID <= 0 {
		return TokenClaims{}, errors.New("token has no user")
	}
	return claims, nil
}
