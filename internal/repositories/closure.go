package repositories

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/flowfin/go-conciliador/internal/common"
	"github.com/flowfin/go-conciliador/internal/models"
	"github.com/flowfin/go-conciliador/internal/monitoring"

	"github.com/shopspring/decimal"
)

// ClosureRepository persists the per-company day-closure table. The file
// format is an append-only CSV per company: re-closing (or reopening) a day
// appends a fresh row, and reads compact by keeping the last row per date.
type ClosureRepository interface {
	Append(ctx context.Context, companyID string, closure models.DayClosure) error

	// Load returns the compacted closure table sorted by date ascending.
	Load(ctx context.Context, companyID string) ([]models.DayClosure, error)

	// GetDay returns the effective closure row for a single date, or
	// common.ErrDataNotFound when the day was never closed.
	GetDay(ctx context.Context, companyID string, date time.Time) (*models.DayClosure, error)
}

type closureRepo struct {
	dir string
	mu  sync.Mutex
}

var _ ClosureRepository = (*closureRepo)(nil)

func NewClosureRepository(dir string) (ClosureRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &closureRepo{dir: dir}, nil
}

func (r *closureRepo) filePath(companyID string) string {
	return filepath.Join(r.dir, fmt.Sprintf("fechamento_%s.csv", companyID))
}

func (r *closureRepo) Append(ctx context.Context, companyID string, closure models.DayClosure) (err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.filePath(companyID)
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err = w.Write(models.CSVHeaderDayClosure); err != nil {
			return err
		}
	}
	if err = w.Write(closure.ToCSVRow()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (r *closureRepo) Load(ctx context.Context, companyID string) (closures []models.DayClosure, err error) {
	monitor := monitoring.New(ctx)
	defer monitor.Finish(monitoring.WithFinishCheckError(err))

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.filePath(companyID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	// compact: later rows supersede earlier ones for the same date
	byDate := make(map[string]models.DayClosure)
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		closure, parseErr := parseClosureRow(row)
		if parseErr != nil {
			return nil, fmt.Errorf("closure file for %s, line %d: %w", companyID, i+1, parseErr)
		}
		byDate[closure.Date.Format(common.DateFormatYYYYMMDD)] = closure
	}

	closures = make([]models.DayClosure, 0, len(byDate))
	for _, closure := range byDate {
		closures = append(closures, closure)
	}
	sort.Slice(closures, func(i, j int) bool {
		return closures[i].Date.Before(closures[j].Date)
	})
	return closures, nil
}

func (r *closureRepo) GetDay(ctx context.Context, companyID string, date time.Time) (*models.DayClosure, error) {
	closures, err := r.Load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	day := common.TruncateToDay(date)
	for i := range closures {
		if closures[i].Date.Equal(day) {
			return &closures[i], nil
		}
	}
	return nil, common.ErrDataNotFound
}

func parseClosureRow(row []string) (models.DayClosure, error) {
	if len(row) != len(models.CSVHeaderDayClosure) {
		return models.DayClosure{}, fmt.Errorf("expected %d columns, got %d", len(models.CSVHeaderDayClosure), len(row))
	}

	date, err := time.ParseInLocation(common.DateFormatYYYYMMDD, row[0], time.UTC)
	if err != nil {
		return models.DayClosure{}, err
	}
	closed, err := strconv.ParseBool(row[1])
	if err != nil {
		return models.DayClosure{}, err
	}
	matchedCount, err := strconv.Atoi(row[2])
	if err != nil {
		return models.DayClosure{}, err
	}
	pendingCount, err := strconv.Atoi(row[3])
	if err != nil {
		return models.DayClosure{}, err
	}
	matchedValue, err := decimal.NewFromString(row[4])
	if err != nil {
		return models.DayClosure{}, err
	}
	pendingValue, err := decimal.NewFromString(row[5])
	if err != nil {
		return models.DayClosure{}, err
	}

	return models.DayClosure{
		Date:         date,
		Closed:       closed,
		MatchedCount: matchedCount,
		PendingCount: pendingCount,
		MatchedValue: matchedValue,
		PendingValue: pendingValue,
	}, nil
}
