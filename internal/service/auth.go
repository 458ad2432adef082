package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/perkdeck/perkdeck/internal/domain"
)

// bcrypt refuses inputs longer than 72 bytes.
const maxPasswordLength = 72

// AuthService handles user registration, login, and bearer token operations.
type AuthService struct {
	users       domain.UserRepository
	jwtSecret   []byte
	bcryptCost  int
	tokenTTL    time.Duration
	minPassword int
	dummyHash   []byte
}

// NewAuthService creates a new AuthService. Tokens are signed with
// HMAC-SHA256 using jwtSecret and expire after tokenTTL.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int, tokenTTL time.Duration, minPassword int) *AuthService {
	s := &AuthService{
		users:       users,
		jwtSecret:   []byte(jwtSecret),
		bcryptCost:  bcryptCost,
		tokenTTL:    tokenTTL,
		minPassword: minPassword,
	}

	// Hash a throwaway value at the configured cost so login can do the
	// same amount of work when the email is unknown.
	if hash, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer-not-a-password"), bcryptCost); err == nil {
		s.dummyHash = hash
	}

	return s
}

// NormalizeEmail returns the canonical form of an email address used for
// storage and lookups: trimmed of surrounding whitespace and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account after validating inputs and returns
// the stored user along with a signed session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: name, email, and password are required", domain.ErrInvalidInput)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, "", fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}

	if len(password) < s.minPassword {
		return nil, "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, s.minPassword)
	}
	if len(password) > maxPasswordLength {
		return nil, "", fmt.Errorf("%w: password must be %d characters or fewer", domain.ErrInvalidInput, maxPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", domain.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate jwt: %w", err)
	}

	return user, token, nil
}

// Login verifies credentials and returns the user along with a fresh signed
// token. Unknown emails and wrong passwords produce the same error so
// callers cannot probe which addresses are registered. Previously issued
// tokens remain valid.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Burn a comparison so this path costs the same as a
			// real password check.
			if s.dummyHash != nil {
				_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			}
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, "", fmt.Errorf("generate jwt: %w", err)
	}

	return user, token, nil
}

// ValidateToken parses and validates a JWT token string.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, domain.ErrUnauthenticated
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, domain.ErrUnauthenticated
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthenticated
	}

	return userID, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
