package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/model"
)

// Auth mints anonymous device identities. There are no credentials: a device
// registers once, receives a token pair, and everything it records is scoped
// to that identity.
type Auth struct {
	userStore     model.UserStore
	settingsStore model.SettingsStore
	tokens        *TokenService
	logger        *logger.Logger
}

func NewAuth(
	userStore model.UserStore,
	settingsStore model.SettingsStore,
	tokens *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:     userStore,
		settingsStore: settingsStore,
		tokens:        tokens,
		logger:        logger,
	}
}

// Session is the result of a registration: the new user and its token pair.
type Session struct {
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
}

// Register creates an anonymous user, seeds its default settings and issues
// the first token pair.
func (s *Auth) Register(ctx context.Context) (Session, error) {
	user, err := s.userStore.Create(ctx, model.User{ID: uuid.New()})
	if err != nil {
		return Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := s.settingsStore.Upsert(ctx, model.DefaultSettings(user.ID)); err != nil {
		return Session{}, fmt.Errorf("failed to seed settings: %w", err)
	}

	access, refresh, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.logger.Info("anonymous user registered", "user_id", user.ID)

	return Session{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
