package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pwledger/server/internal/metrics"
	"github.com/pwledger/server/internal/mocks"
	"github.com/pwledger/server/internal/model"
	"github.com/pwledger/server/internal/testutil"
)

func newTestImporter(accounts *mocks.AccountStore, settings *mocks.SettingsStore, storage *mocks.Storage) *Importer {
	var s model.Storage
	if storage != nil {
		s = storage
	}
	ledger := newTestLedger(accounts, settings)
	return NewImporter(ledger, s, metrics.New(prometheus.NewRegistry()), testutil.MakeNoopLogger())
}

// expectSignup wires the store calls one imported domain produces.
func expectSignup(accounts *mocks.AccountStore, settings *mocks.SettingsStore, ownerID uuid.UUID, domain string) {
	accounts.On("Get", mock.Anything, ownerID, domain).Return(model.Account{}, model.ErrNotFound).Once()
	accounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a model.Account) bool {
		return a.Domain == domain && a.SignUpDate != nil
	})).Return(model.Account{OwnerID: ownerID, Domain: domain}, nil).Once()
	settings.On("Get", mock.Anything, ownerID).Return(defaultSettingsFor(ownerID), nil)
}

func TestImportCSV_DeduplicatesDomains(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}

	expectSignup(accounts, settings, ownerID, "example.com")
	expectSignup(accounts, settings, ownerID, "another.org")

	csvData := strings.Join([]string{
		"name,url,username,password",
		"Example,https://example.com/login,user,secret",
		"Example again,https://www.example.com/signup,user,secret",
		"Another,https://another.org,user,secret",
	}, "\n")

	svc := newTestImporter(accounts, settings, nil)

	result, err := svc.ImportCSV(ctx, ownerID, "export.csv", strings.NewReader(csvData), now)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	accounts.AssertExpectations(t)
}

func TestImportCSV_HeaderColumnIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}
	expectSignup(accounts, settings, ownerID, "example.com")

	csvData := "Name,URL\nExample,https://example.com\n"

	svc := newTestImporter(accounts, settings, nil)

	result, err := svc.ImportCSV(ctx, ownerID, "export.csv", strings.NewReader(csvData), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestImportCSV_SkipsBadRows(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}
	expectSignup(accounts, settings, ownerID, "example.com")

	csvData := strings.Join([]string{
		"name,url",
		"Good,https://example.com",
		"Empty,",
		"Unparseable,https://exa mple.com",
	}, "\n")

	svc := newTestImporter(accounts, settings, nil)

	result, err := svc.ImportCSV(ctx, ownerID, "export.csv", strings.NewReader(csvData), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)
}

func TestImportCSV_MissingURLColumn(t *testing.T) {
	ctx := context.Background()

	svc := newTestImporter(&mocks.AccountStore{}, &mocks.SettingsStore{}, nil)

	_, err := svc.ImportCSV(ctx, uuid.New(), "export.csv", strings.NewReader("name,password\na,b\n"), time.Now().UTC())
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestImportCSV_EmptyFile(t *testing.T) {
	ctx := context.Background()

	svc := newTestImporter(&mocks.AccountStore{}, &mocks.SettingsStore{}, nil)

	_, err := svc.ImportCSV(ctx, uuid.New(), "export.csv", strings.NewReader(""), time.Now().UTC())
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestImportCSV_NoValidDomains(t *testing.T) {
	ctx := context.Background()

	svc := newTestImporter(&mocks.AccountStore{}, &mocks.SettingsStore{}, nil)

	_, err := svc.ImportCSV(ctx, uuid.New(), "export.csv", strings.NewReader("url\n\n"), time.Now().UTC())
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestImportCSV_ArchivesRawFile(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}
	storage := &mocks.Storage{}

	expectSignup(accounts, settings, ownerID, "example.com")
	storage.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "user-"+ownerID.String()+"/import-") &&
			strings.HasSuffix(key, "/export.csv")
	}), mock.Anything).Return(nil).Once()

	svc := newTestImporter(accounts, settings, storage)

	_, err := svc.ImportCSV(ctx, ownerID, "export.csv", strings.NewReader("url\nhttps://example.com\n"), now)
	require.NoError(t, err)
	storage.AssertExpectations(t)
}

// Archive failure must not fail the import itself.
func TestImportCSV_ArchiveFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	accounts := &mocks.AccountStore{}
	settings := &mocks.SettingsStore{}
	storage := &mocks.Storage{}

	expectSignup(accounts, settings, ownerID, "example.com")
	storage.On("Upload", ctx, mock.Anything, mock.Anything).Return(assert.AnError).Once()

	svc := newTestImporter(accounts, settings, storage)

	result, err := svc.ImportCSV(ctx, ownerID, "export.csv", strings.NewReader("url\nhttps://example.com\n"), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}
