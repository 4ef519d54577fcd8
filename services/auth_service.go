package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"macrolog/apierr"
	"macrolog/logger"
	"macrolog/models"
	"macrolog/utils"
)

const (
	RoleUser          = "ROLE_USER"
	minPasswordLength = 8
)

type AuthService struct {
	credentials CredentialStore
	profiles    ProfileStore
	secret      []byte
	ttl         time.Duration
	log         *logger.Logger
}

func NewAuthService(credentials CredentialStore, profiles ProfileStore, secret []byte, ttl time.Duration, log *logger.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		profiles:    profiles,
		secret:      secret,
		ttl:         ttl,
		log:         log.With("service", "AuthService"),
	}
}

func invalidCredentials() *apierr.Error {
	return apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apierr.Invalid("invalid email address")
	}
	return email, nil
}

// Register creates the credential and its empty profile, then issues a token.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	if len(password) < minPasswordLength {
		return "", apierr.Invalid("password must have at least %d characters", minPasswordLength)
	}

	_, err = s.credentials.FindByEmail(ctx, email)
	if err == nil {
		return "", apierr.Conflict("email_taken", errors.New("email already registered"))
	}
	if !errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("register: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	profileID := uuid.New()
	cred := &models.Credential{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
		ProfileID:    profileID,
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	if err := s.ensureProfile(ctx, profileID, email); err != nil {
		return "", err
	}

	s.log.Info("user registered", "profile_id", profileID)
	return utils.GenerateJWT(profileID.String(), cred.Role, s.secret, s.ttl)
}

func (s *AuthService) ensureProfile(ctx context.Context, id uuid.UUID, email string) error {
	exists, err := s.profiles.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("profile lookup: %w", err)
	}
	if exists {
		return nil
	}
	p := &models.Profile{ID: id, Email: email, DayStart: models.DefaultDayStart}
	if err := s.profiles.Create(ctx, p); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", invalidCredentials()
	}
	cred, err := s.credentials.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return "", invalidCredentials()
	}
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if !utils.CheckPasswordHash(password, cred.PasswordHash) {
		s.log.Debug("login rejected", "profile_id", cred.ProfileID)
		return "", invalidCredentials()
	}
	// a credential created before its profile landed gets one now
	if err := s.ensureProfile(ctx, cred.ProfileID, cred.Email); err != nil {
		return "", err
	}
	return utils.GenerateJWT(cred.ProfileID.String(), cred.Role, s.secret, s.ttl)
}
