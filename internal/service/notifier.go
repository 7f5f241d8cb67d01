package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/model"
)

// LogNotifier reports expired accounts to the structured log. It stands in
// for a push channel until one is wired up.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(l *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) NotifyExpired(ctx context.Context, userID uuid.UUID, expired []model.ExpiredAccount) error {
	if len(expired) == 0 {
		return nil
	}
	domains := make([]string, 0, len(expired))
	for _, e := range expired {
		domains = append(domains, e.Domain)
	}
	n.logger.Info("password expiry notification",
		"user_id", userID,
		"count", len(expired),
		"domains", domains)
	return nil
}
