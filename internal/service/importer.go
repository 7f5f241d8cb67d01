package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pwledger/server/internal/domainkey"
	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/metrics"
	"github.com/pwledger/server/internal/model"
)

// Importer turns an exported password CSV (Chrome password manager format)
// into signup events: one per unique canonical domain. The raw file is
// archived to object storage before processing so a bad import can be
// inspected afterwards.
type Importer struct {
	ledger  *Ledger
	storage model.Storage
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewImporter(ledger *Ledger, storage model.Storage, metrics *metrics.Metrics, logger *logger.Logger) *Importer {
	return &Importer{
		ledger:  ledger,
		storage: storage,
		metrics: metrics,
		logger:  logger,
	}
}

// ImportResult reports what one import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportCSV reads the file, requires a header column named "url"
// (case-insensitive), normalizes every row's url and applies one SIGNUP per
// unique domain. Rows that fail to parse or normalize are skipped, never
// fatal. Duplicate domains collapse to one event; signup idempotence makes
// re-imports harmless.
func (s *Importer) ImportCSV(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader, now time.Time) (ImportResult, error) {
	if now.IsZero() {
		return ImportResult{}, model.NewValidationError("now", "timestamp must be set")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to read import file: %w", err)
	}

	s.archive(ctx, ownerID, filename, data)

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, model.NewValidationError("file", "empty or unreadable CSV")
	}

	urlIndex := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "url") {
			urlIndex = i
			break
		}
	}
	if urlIndex == -1 {
		return ImportResult{}, model.NewValidationError("file", "CSV has no url column")
	}

	domains := make(map[string]struct{})
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(row) <= urlIndex {
			skipped++
			continue
		}

		rawURL := strings.Trim(strings.TrimSpace(row[urlIndex]), `"`)
		if rawURL == "" {
			skipped++
			continue
		}

		domain, ok := domainkey.Normalize(rawURL)
		if !ok {
			skipped++
			continue
		}
		domains[domain] = struct{}{}
	}

	if len(domains) == 0 {
		return ImportResult{Skipped: skipped}, model.NewValidationError("file", "no valid domains found")
	}

	imported := 0
	for domain := range domains {
		if _, err := s.ledger.ApplyEvent(ctx, ownerID, domain, model.EventSignup, now); err != nil {
			s.logger.Error("failed to import domain", "domain", domain, "error", err)
			skipped++
			continue
		}
		imported++
	}

	s.metrics.IncImports()
	s.metrics.AddImportedDomains(imported)
	s.logger.Info("import completed", "user_id", ownerID, "imported", imported, "skipped", skipped)

	return ImportResult{Imported: imported, Skipped: skipped}, nil
}

// archive stores the raw upload; failure is logged, not fatal, because the
// import itself can still proceed from the in-memory copy.
func (s *Importer) archive(ctx context.Context, ownerID uuid.UUID, filename string, data []byte) {
	if s.storage == nil {
		return
	}
	if filename == "" {
		filename = "import.csv"
	}
	key := fmt.Sprintf("user-%s/import-%s/%s", ownerID, uuid.New(), filename)
	if err := s.storage.Upload(ctx, key, strings.NewReader(string(data))); err != nil {
		s.logger.Error("failed to archive import file", "key", key, "error", err)
		return
	}
	s.logger.Info("import file archived", "key", key)
}
