package repositories

import (
	"context"
	"strings"

	"github.com/flowfin/go-conciliador/internal/common"
	localstorage "github.com/flowfin/go-conciliador/internal/common/local_storage"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/monitoring"

	"go.uber.org/zap"
)

// LedgerRepository is the durable store of manual validation decisions,
// keyed by natural transaction identity. It is the only persistent shared
// resource of the engine: writes are upsert-by-natural-key so interleaved
// operator sessions against the same (company, date) cannot corrupt it.
type LedgerRepository interface {
	// Upsert records a decision. Identical replays are no-ops; a different
	// decision for an existing key wins but pushes the superseded decision
	// onto the entry history and logs the overwrite.
	Upsert(ctx context.Context, decision models.ValidationDecision) (entry models.LedgerEntry, overwritten bool, err error)

	Get(ctx context.Context, naturalKey string) (*models.LedgerEntry, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.LedgerEntry, error)

	// ClaimedCounterparts returns the counterpart ids already bound by a
	// SELECT_CORRESPONDENCE decision for the company, mapped to the natural
	// key that claimed them.
	ClaimedCounterparts(ctx context.Context, companyID string) (map[string]string, error)

	Close() error
}

type ledgerRepo struct {
	storage localstorage.LocalStorage[models.LedgerEntry]
}

var _ LedgerRepository = (*ledgerRepo)(nil)

func NewLedgerRepository(dir string) (LedgerRepository, error) {
	storage, err := localstorage.NewBadgerStorage[models.LedgerEntry](dir, "validationLedger")
	if err != nil {
		return nil, err
	}
	return &ledgerRepo{storage: storage}, nil
}

// NewLedgerRepositoryWithStorage wires an existing storage, used by tests.
func NewLedgerRepositoryWithStorage(storage localstorage.LocalStorage[models.LedgerEntry]) LedgerRepository {
	return &ledgerRepo{storage: storage}
}

func (r *ledgerRepo) Upsert(ctx context.Context, decision models.ValidationDecision) (entry models.LedgerEntry, overwritten bool, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	key := decision.NaturalKey()

	existing, found, err := r.storage.Get(key)
	if err != nil {
		return entry, false, err
	}

	if !found {
		entry = models.LedgerEntry{Key: key, Current: decision}
		return entry, false, r.storage.Set(key, entry)
	}

	if existing.Current.SameOutcome(decision) {
		// idempotent replay, keep the original timestamp
		return existing, false, nil
	}

	// last write wins, prior decision stays retrievable
	zap.L().Warn("[LEDGER] decision overwritten",
		zap.String("naturalKey", key),
		zap.String("previous", existing.Current.Decision.String()),
		zap.String("new", decision.Decision.String()))

	existing.History = append(existing.History, existing.Current)
	existing.Current = decision
	return existing, true, r.storage.Set(key, existing)
}

func (r *ledgerRepo) Get(ctx context.Context, naturalKey string) (*models.LedgerEntry, error) {
	entry, found, err := r.storage.Get(naturalKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ErrDataNotFound
	}
	return &entry, nil
}

func (r *ledgerRepo) ListByCompany(ctx context.Context, companyID string) (entries []models.LedgerEntry, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	err = r.storage.ForEachPrefix(companyID+"|", func(key string, value models.LedgerEntry) error {
		entries = append(entries, value)
		return nil
	})
	return entries, err
}

func (r *ledgerRepo) ClaimedCounterparts(ctx context.Context, companyID string) (map[string]string, error) {
	claimed := make(map[string]string)
	err := r.storage.ForEachPrefix(companyID+"|", func(key string, value models.LedgerEntry) error {
		if value.Current.Decision != models.DecisionSelectCorrespondence {
			return nil
		}
		if id := strings.TrimSpace(value.Current.SelectedCounterpartID); id != "" {
			claimed[id] = key
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *ledgerRepo) Close() error {
	return r.storage.Close()
}
