package unitofwork

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/adapter/storage"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"log/slog"
)

var (
	ErrRollback = errors.New("rollback")
)

type AtomicContext interface {
	Context() context.Context
	Commit() error
	Close() error
	CollectEvents() []domain.Event
}

type MessageBus interface {
	PublishEvents(events ...domain.Event) error
}

type Transactor interface {
	Begin(ctx context.Context) (storage.DBContext, error)
}

type UnitOfWork[T AtomicContext] struct {
	db         Transactor
	newContext func(context.Context, storage.DBContext) (T, error)
	msgBus     MessageBus
	logger     *slog.Logger
}

func New[T AtomicContext](
	db Transactor,
	newCtx func(context.Context, storage.DBContext) (T, error),
	msgBus MessageBus,
	logger *slog.Logger,
) *UnitOfWork[T] {
	return &UnitOfWork[T]{
		db:         db,
		newContext: newCtx,
		msgBus:     msgBus,
		logger:     logger,
	}
}

// Atomic runs do inside a transaction. do must call Commit on the context to
// keep its writes; anything left uncommitted is rolled back. Events are
// published only after do succeeds.
func (uow *UnitOfWork[T]) Atomic(
	ctx context.Context,
	do func(T) error,
) (err error) {
	tx, err := uow.db.Begin(ctx)
	if err != nil {
		return stateRollbackError(err)
	}

	txCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	atomicCtx, err := uow.newContext(txCtx, tx)
	if err != nil {
		uow.rollback(tx)
		return stateRollbackError(err)
	}

	defer func() {
		if err := atomicCtx.Close(); err != nil {
			uow.logger.Error("failed to close atomic context", "error", err)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			uow.rollback(tx)
			panic(r)
		}
	}()

	if err := do(atomicCtx); err != nil {
		uow.rollback(tx)
		return stateRollbackError(err)
	}
	uow.rollback(tx)

	if err := uow.msgBus.PublishEvents(atomicCtx.CollectEvents()...); err != nil {
		uow.logger.Error("failed to publish events", "error", err)
		return err
	}

	return nil
}

func (uow *UnitOfWork[T]) rollback(tx storage.DBContext) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		uow.logger.Error("failed to rollback transaction", "error", err)
	}
}

func stateRollbackError(err error) error {
	return errors.Join(fmt.Errorf("state rollback: %w", err), ErrRollback)
}

// Cause returns the error do failed with, stripped of the rollback wrapping
// added by Atomic.
func Cause(err error) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || !errors.Is(err, ErrRollback) {
		return err
	}
	for _, e := range joined.Unwrap() {
		if e == ErrRollback {
			continue
		}
		if inner := errors.Unwrap(e); inner != nil {
			return inner
		}
		return e
	}
	return err
}
