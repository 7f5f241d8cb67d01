package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pwledger/server/internal/model"
	"github.com/pwledger/server/internal/testutil"
)

func TestLogNotifier_NotifyExpired(t *testing.T) {
	n := NewLogNotifier(testutil.MakeNoopLogger())

	err := n.NotifyExpired(context.Background(), uuid.New(), []model.ExpiredAccount{
		{Domain: "stale.com", ElapsedDays: 120},
	})
	require.NoError(t, err)
}

func TestLogNotifier_NotifyExpired_Empty(t *testing.T) {
	n := NewLogNotifier(testutil.MakeNoopLogger())

	require.NoError(t, n.NotifyExpired(context.Background(), uuid.New(), nil))
}
