package progressapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/adapter/storage"
	progressstorage "github.com/burenotti/go_energy_balance/internal/adapter/storage/progress"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/burenotti/go_energy_balance/internal/domain/progress"
	"github.com/leporo/sqlf"
)

type ProgressStorage interface {
	Load(ctx context.Context, userID string, p profile.UserProfile) (*progress.UserProgress, error)
	AddRecord(ctx context.Context, userID string, r progress.DailyRecord) error
	PersistRecord(ctx context.Context, userID string, r progress.DailyRecord) error
	AddSession(ctx context.Context, userID string, s progress.Session) error
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx             context.Context
	db              storage.DBContext
	ProgressStorage ProgressStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.ProgressStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.ProgressStorage.CollectEvents()
}

// NewAtomicContextFactory binds the SQL placeholder dialect of the database
// the unit of work runs against.
func NewAtomicContextFactory(dialect *sqlf.Dialect) func(context.Context, storage.DBContext) (*AtomicContext, error) {
	return func(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
		return &AtomicContext{
			ctx:             ctx,
			db:              dbContext,
			ProgressStorage: progressstorage.NewSQLStorage(dbContext, dialect),
		}, nil
	}
}
