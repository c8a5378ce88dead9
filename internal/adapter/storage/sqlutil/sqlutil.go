package sqlutil

import (
	"database/sql"
	"errors"
	"github.com/burenotti/go_energy_balance/internal/adapter/storage"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
	"strings"
	"sync"
)

type EventSource interface {
	PopEvents() []domain.Event
}

// BaseStorage remembers the aggregates a unit of work touched so their
// events can be collected once it finishes.
type BaseStorage struct {
	DB      storage.DBContext
	Dialect *sqlf.Dialect
	seenMu  sync.Mutex
	seen    map[string]EventSource
}

func NewBaseStorage(db storage.DBContext, dialect *sqlf.Dialect) *BaseStorage {
	return &BaseStorage{
		DB:      db,
		Dialect: dialect,
		seen:    make(map[string]EventSource),
	}
}

func (s *BaseStorage) CollectEvents() []domain.Event {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()

	var events []domain.Event
	for _, src := range s.seen {
		events = append(events, src.PopEvents()...)
	}
	s.seen = make(map[string]EventSource)
	return events
}

func (s *BaseStorage) Close() {
	s.seenMu.Lock()
	s.seen = make(map[string]EventSource)
	s.seenMu.Unlock()
}

func (s *BaseStorage) MarkSeen(id string, src EventSource) {
	s.seenMu.Lock()
	s.seen[id] = src
	s.seenMu.Unlock()
}

// UniqueConstraint names a unique or primary key constraint the way each
// driver reports it: Postgres by constraint name, SQLite by the violated
// columns ("table.column", comma separated for composite keys).
type UniqueConstraint struct {
	Name    string
	Columns string
}

const sqliteUniqueFailed = "UNIQUE constraint failed: "

// ViolatesConstraint reports whether err is a violation of c. Other
// integrity errors, such as NOT NULL or foreign key failures, never match.
func ViolatesConstraint(err error, c UniqueConstraint) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == c.Name
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
			return false
		}
		_, cols, ok := strings.Cut(liteErr.Error(), sqliteUniqueFailed)
		if !ok {
			return false
		}
		cols, _, _ = strings.Cut(cols, " (")
		return cols == c.Columns
	}
	return false
}

// MakeUpdateQuery adds a SET clause for every changed top-level field. The
// diff tag of the field is the column name.
func MakeUpdateQuery(stmt *sqlf.Stmt, updates diff.Changelog) *sqlf.Stmt {
	for _, upd := range updates {
		if len(upd.Path) > 1 {
			panic("cannot process updates in nested structures")
		}

		switch upd.Type {
		case diff.UPDATE, diff.CREATE:
			stmt = stmt.Set(upd.Path[0], upd.To)
		case diff.DELETE:
			stmt = stmt.Set(upd.Path[0], nil)
		default:
			panic("invalid update type " + upd.Type)
		}
	}
	return stmt
}

func AssertUpdated(res sql.Result, err error, notUpdatedError error) error {
	if err != nil {
		return storage.InternalError(err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return storage.InternalError(err)
	}

	if affected == 0 {
		return notUpdatedError
	}
	return nil
}
