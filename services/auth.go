package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CrowderSoup/rosy-workroom/database"
	"github.com/CrowderSoup/rosy-workroom/logging"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL          = 7 * 24 * time.Hour
	minPasswordLength = 8
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*database.User, error)
	GetUserByUsername(ctx context.Context, username string) (*database.User, error)
}

// AuthService issues and verifies session tokens
type AuthService struct {
	users     UserStore
	limiter   LoginLimiter
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthService(users UserStore, limiter LoginLimiter, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		limiter:   limiter,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// Register creates an account and returns a session token for it
func (s *AuthService) Register(ctx context.Context, username, password string) (string, *database.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return "", nil, invalid("username must be 3-32 letters, digits, '.', '_' or '-'")
	}
	if len(password) < minPasswordLength {
		return "", nil, invalid("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, string(hash))
	if err != nil {
		return "", nil, err
	}

	token, err := s.CreateJWT(user)
	if err != nil {
		return "", nil, err
	}
	logging.Logger.WithField("user", user.Username).Info("User registered")
	return token, user, nil
}

// Login checks credentials. Failures count against limiterKey and the key
// is cleared on success.
func (s *AuthService) Login(ctx context.Context, username, password, limiterKey string) (string, *database.User, error) {
	if s.limiter.IsLimited(limiterKey) {
		return "", nil, ErrRateLimited
	}

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		s.limiter.Increment(limiterKey)
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.limiter.Increment(limiterKey)
		logging.Logger.WithField("user", user.Username).Warn("Failed login attempt")
		return "", nil, ErrInvalidCredentials
	}
	s.limiter.Clear(limiterKey)

	token, err := s.CreateJWT(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CreateJWT generates a JWT token for a user
func (s *AuthService) CreateJWT(user *database.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"exp":      s.now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// VerifyJWT verifies a JWT token and returns the caller it was issued to
func (s *AuthService) VerifyJWT(tokenString string) (Caller, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Caller{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Caller{}, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return Caller{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Caller{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return Caller{}, fmt.Errorf("%w: username claim missing", ErrInvalidToken)
	}

	return Caller{ID: id, Username: username}, nil
}
