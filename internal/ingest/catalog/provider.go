package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/meltforce/repforge/internal/ingest"
	"github.com/meltforce/repforge/internal/metrics"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/storage"
)

// Store is the storage used by the provider. *storage.DB satisfies it.
type Store interface {
	UpsertCatalog(ctx context.Context, rows []models.CatalogRow) (int64, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

var _ Store = (*storage.DB)(nil)

// batchSize keeps each upsert well under the Postgres parameter limit.
const batchSize = 1000

// Provider ingests exercise catalog CSV files.
type Provider struct {
	db      Store
	log     *slog.Logger
	metrics *metrics.Manager
}

// NewProvider creates a new catalog ingest provider. m may be nil.
func NewProvider(db Store, log *slog.Logger, m *metrics.Manager) *Provider {
	return &Provider{db: db, log: log, metrics: m}
}

// Ingest parses a catalog CSV and upserts its exercises by name.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	start := time.Now()
	logID, err := p.db.InsertImportLog(ctx, storage.ImportLog{UserID: userID, Source: "catalog_csv", Status: "running"})
	if err != nil {
		p.log.Warn("could not create import log", "error", err)
	}

	result, err := p.ingest(ctx, r)

	if logID != 0 {
		entry := storage.ImportLog{Status: "success"}
		ms := int(time.Since(start).Milliseconds())
		entry.DurationMs = &ms
		if result != nil {
			entry.ExercisesReceived = result.ExercisesReceived
			entry.ExercisesUpserted = result.ExercisesUpserted
		}
		if err != nil {
			entry.Status = "error"
			msg := err.Error()
			entry.ErrorMessage = &msg
		}
		if uerr := p.db.UpdateImportLog(ctx, logID, entry); uerr != nil {
			p.log.Warn("could not update import log", "id", logID, "error", uerr)
		}
	}
	if err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.CounterCatalogIngests.Add(float64(result.ExercisesUpserted))
	}
	p.log.Info("catalog ingested",
		"received", result.ExercisesReceived, "upserted", result.ExercisesUpserted,
		"duplicates", result.Duplicates, "duration", time.Since(start))
	return result, nil
}

func (p *Provider) ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{
		ExercisesReceived: len(parsed.Rows) + parsed.Duplicates,
		Duplicates:        parsed.Duplicates,
	}
	for start := 0; start < len(parsed.Rows); start += batchSize {
		end := min(start+batchSize, len(parsed.Rows))
		n, err := p.db.UpsertCatalog(ctx, parsed.Rows[start:end])
		if err != nil {
			return result, fmt.Errorf("upserting exercises %d-%d: %w", start+1, end, err)
		}
		result.ExercisesUpserted += n
	}
	return result, nil
}
