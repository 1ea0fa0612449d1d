package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/finance-tracker/internal/config"
	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"github.com/Dan9191/finance-tracker/internal/schedule"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for an unknown e-mail or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repository is the persistence boundary. Both repository.Repository and repository.Memory satisfy it.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	ListObligations(ctx context.Context, userID int64) ([]models.Obligation, error)
	GetObligation(ctx context.Context, userID, id int64) (*models.Obligation, error)
	CreateObligation(ctx context.Context, o *models.Obligation) error
	ReplaceObligation(ctx context.Context, o *models.Obligation) error
	DeleteObligation(ctx context.Context, userID, id int64) error
}

// FeedCache serves the last known obligations of a user when the repository is unavailable.
type FeedCache interface {
	Snapshot(userID int64) ([]models.Obligation, bool)
	RefreshedAt() time.Time
}

// Service handles business logic
type Service struct {
	repo   Repository
	log    *logrus.Logger
	config *config.Config
	buffer *schedule.EditBuffer
	cache  FeedCache
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock used to decide "today".
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithFeedCache enables the reminder feed fallback.
func WithFeedCache(c FeedCache) Option { return func(s *Service) { s.cache = c } }

// NewService initializes a new service
func NewService(repo Repository, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		log:    log,
		config: cfg,
		buffer: schedule.NewEditBuffer(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() date.Date {
	return date.FromTime(s.now())
}

// storageErr translates a repository failure into the error taxonomy.
func storageErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return schedule.NotFoundf("obligation")
	}
	return &schedule.TransientIOError{Op: op, Err: err}
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, schedule.Validationf("username is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, schedule.Validationf("invalid email %q", email)
	}
	if len(password) < 6 {
		return nil, schedule.Validationf("password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        strings.ToLower(addr.Address),
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, schedule.Validationf("email %s is already registered", user.Email)
		}
		return nil, &schedule.TransientIOError{Op: "create user", Err: err}
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", &schedule.TransientIOError{Op: "find user", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(s.config.TokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
