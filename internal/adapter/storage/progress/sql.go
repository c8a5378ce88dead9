package progressstorage

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/adapter/storage"
	"github.com/burenotti/go_energy_balance/internal/adapter/storage/sqlutil"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/burenotti/go_energy_balance/internal/domain/progress"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"time"
)

var (
	recordsPrimaryKey  = sqlutil.UniqueConstraint{Name: "daily_records_pkey", Columns: "daily_records.record_id"}
	sessionsPrimaryKey = sqlutil.UniqueConstraint{Name: "exercise_sessions_pkey", Columns: "exercise_sessions.session_id"}
)

type SQLStorage struct {
	base     *sqlutil.BaseStorage
	loaded   map[string]progress.DailyRecord
	loadedBy map[string]string
}

func NewSQLStorage(db storage.DBContext, dialect *sqlf.Dialect) *SQLStorage {
	return &SQLStorage{
		base:     sqlutil.NewBaseStorage(db, dialect),
		loaded:   make(map[string]progress.DailyRecord),
		loadedBy: make(map[string]string),
	}
}

// Load restores the user's tracked history. Records read here become the
// baseline PersistRecord diffs against.
func (s *SQLStorage) Load(ctx context.Context, userID string, p profile.UserProfile) (*progress.UserProgress, error) {
	records, err := s.listRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.listSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		s.loaded[r.ID] = r
		s.loadedBy[r.ID] = userID
	}

	u := progress.Restore(userID, p, records, sessions)
	s.base.MarkSeen(userID, u)
	return u, nil
}

func (s *SQLStorage) AddRecord(ctx context.Context, userID string, r progress.DailyRecord) error {
	q := s.base.Dialect.InsertInto("daily_records").
		Set("record_id", r.ID).
		Set("user_id", userID).
		Set("record_date", r.Date.Format(time.DateOnly)).
		Set("calories_consumed", r.CaloriesConsumed).
		Set("calories_target", r.CaloriesTarget).
		Set("weight_recorded", r.WeightRecorded).
		Set("notes", r.Notes).
		Set("created_at", time.Now().UTC())

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if sqlutil.ViolatesConstraint(err, recordsPrimaryKey) {
			return progress.ErrRecordExists
		}
		return storage.InternalError(err)
	}

	s.loaded[r.ID] = r
	s.loadedBy[r.ID] = userID
	return nil
}

// PersistRecord writes only the columns that changed since the record was
// loaded.
func (s *SQLStorage) PersistRecord(ctx context.Context, userID string, r progress.DailyRecord) error {
	old, ok := s.loaded[r.ID]
	if !ok || s.loadedBy[r.ID] != userID {
		return progress.ErrRecordNotFound
	}

	changes, err := diff.Diff(old, r)
	if err != nil {
		return storage.InternalError(err)
	}
	if len(changes) == 0 {
		return nil
	}

	q := s.base.Dialect.Update("daily_records").
		Where("record_id = ?", r.ID).
		Where("user_id = ?", userID)
	q = sqlutil.MakeUpdateQuery(q, changes)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := sqlutil.AssertUpdated(res, err, progress.ErrRecordNotFound); err != nil {
		return err
	}

	s.loaded[r.ID] = r
	return nil
}

func (s *SQLStorage) AddSession(ctx context.Context, userID string, sess progress.Session) error {
	q := s.base.Dialect.InsertInto("exercise_sessions").
		Set("session_id", sess.ID).
		Set("user_id", userID).
		Set("exercise_name", sess.ExerciseName).
		Set("duration_minutes", sess.DurationMinutes).
		Set("session_date", sess.Date.Format(time.DateOnly)).
		Set("calories_burned", sess.CaloriesBurned).
		Set("intensity", string(sess.Intensity)).
		Set("notes", sess.Notes).
		Set("created_at", time.Now().UTC())

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if sqlutil.ViolatesConstraint(err, sessionsPrimaryKey) {
			return progress.ErrSessionExists
		}
		return storage.InternalError(err)
	}
	return nil
}

func (s *SQLStorage) listRecords(ctx context.Context, userID string) ([]progress.DailyRecord, error) {
	var (
		tmp    progress.DailyRecord
		date   string
		weight sql.NullFloat64
	)

	q := s.base.Dialect.From("daily_records r").
		Select("r.record_id").To(&tmp.ID).
		Select("r.record_date").To(&date).
		Select("r.calories_consumed").To(&tmp.CaloriesConsumed).
		Select("r.calories_target").To(&tmp.CaloriesTarget).
		Select("r.weight_recorded").To(&weight).
		Select("r.notes").To(&tmp.Notes).
		Where("r.user_id = ?", userID).
		OrderBy("r.record_date", "r.created_at")

	var (
		result  []progress.DailyRecord
		scanErr error
	)
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			scanErr = fmt.Errorf("record %s: %w", tmp.ID, err)
			return
		}
		r := tmp
		r.Date = d
		r.WeightRecorded = nil
		if weight.Valid {
			w := weight.Float64
			r.WeightRecorded = &w
		}
		result = append(result, r)
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}
	if scanErr != nil {
		return nil, storage.InternalError(scanErr)
	}
	return result, nil
}

func (s *SQLStorage) listSessions(ctx context.Context, userID string) ([]progress.Session, error) {
	var (
		tmp       progress.Session
		date      string
		intensity string
	)

	q := s.base.Dialect.From("exercise_sessions e").
		Select("e.session_id").To(&tmp.ID).
		Select("e.exercise_name").To(&tmp.ExerciseName).
		Select("e.duration_minutes").To(&tmp.DurationMinutes).
		Select("e.session_date").To(&date).
		Select("e.calories_burned").To(&tmp.CaloriesBurned).
		Select("e.intensity").To(&intensity).
		Select("e.notes").To(&tmp.Notes).
		Where("e.user_id = ?", userID).
		OrderBy("e.session_date", "e.created_at")

	var (
		result  []progress.Session
		scanErr error
	)
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			scanErr = fmt.Errorf("session %s: %w", tmp.ID, err)
			return
		}
		sess := tmp
		sess.Date = d
		sess.Intensity = progress.Intensity(intensity)
		result = append(result, sess)
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}
	if scanErr != nil {
		return nil, storage.InternalError(scanErr)
	}
	return result, nil
}

func (s *SQLStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *SQLStorage) Close() error {
	s.base.Close()
	return nil
}
