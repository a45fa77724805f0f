package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/kata/sweetshop/internal/core/domain"
	"github.com/kata/sweetshop/internal/core/ports"
)

const (
	defaultTokenTTL   = 7 * 24 * time.Hour
	minPasswordLength = 6
)

// Claims is the payload carried by session tokens.
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthOptions tunes token issuance and hashing.
type AuthOptions struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	// Revoker is optional; without it Logout is a no-op.
	Revoker ports.TokenRevoker
	Now     func() time.Time
}

// AuthService implements registration, login and token verification.
type AuthService struct {
	repo       ports.UserRepository
	revoker    ports.TokenRevoker
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, opts AuthOptions, log zerolog.Logger) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuthService{
		repo:       repo,
		revoker:    opts.Revoker,
		secret:     []byte(opts.Secret),
		tokenTTL:   opts.TokenTTL,
		bcryptCost: opts.BcryptCost,
		now:        opts.Now,
		log:        log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	verr := &domain.ValidationError{}
	name := strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		verr.Add("name", "Name must be between 2 and 50 characters")
	}
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		verr.Add("email", "Please provide a valid email")
	}
	if len(in.Password) < minPasswordLength {
		verr.Add("password", "Password must be at least 6 characters")
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		verr.Add("role", "Role must be either user or admin")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("jti", claims.ID).Msg("revocation check failed, accepting token")
		} else if revoked {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, domain.ErrTokenRevoked)
		}
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if s.revoker == nil || claims.ID == "" {
		return nil
	}
	until := s.now().Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revoker.Revoke(ctx, claims.ID, until); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if _, err := domain.ParseRole(string(claims.Role)); err != nil || claims.Role == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
