package progress

import (
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/samber/lo"
	"slices"
	"time"
)

const (
	EventRecordAdded   = "progress.record_added"
	EventRecordUpdated = "progress.record_updated"
	EventSessionAdded  = "progress.session_added"
)

// UserProgress holds one user's history ordered by date. It belongs to a
// single request and is not safe for concurrent mutation.
type UserProgress struct {
	domain.Aggregate
	UserID   string
	Profile  profile.UserProfile
	records  []DailyRecord
	sessions []Session
}

func New(userID string, p profile.UserProfile) *UserProgress {
	return &UserProgress{
		UserID:  userID,
		Profile: p,
	}
}

// Restore rebuilds a tracker from stored history without emitting events.
func Restore(userID string, p profile.UserProfile, records []DailyRecord, sessions []Session) *UserProgress {
	u := New(userID, p)
	u.records = slices.Clone(records)
	u.sessions = slices.Clone(sessions)
	u.sortRecords()
	u.sortSessions()
	return u
}

func (u *UserProgress) AddRecord(r DailyRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.Date = Day(r.Date)
	u.records = append(u.records, r)
	u.sortRecords()

	u.PushEvent(RecordAddedEvent{
		At:       time.Now().UTC(),
		UserID:   u.UserID,
		RecordID: r.ID,
		Date:     r.Date,
		Deficit:  r.Deficit(),
		OnTrack:  r.OnTrack(),
		Streak:   u.CurrentStreak(),
	})
	return nil
}

func (u *UserProgress) UpdateRecord(id string, upd RecordUpdate) (DailyRecord, error) {
	idx := slices.IndexFunc(u.records, func(r DailyRecord) bool { return r.ID == id })
	if idx < 0 {
		return DailyRecord{}, ErrRecordNotFound
	}

	updated, err := u.records[idx].Apply(upd)
	if err != nil {
		return DailyRecord{}, err
	}
	u.records[idx] = updated

	u.PushEvent(RecordUpdatedEvent{
		At:       time.Now().UTC(),
		UserID:   u.UserID,
		RecordID: id,
	})
	return updated, nil
}

func (u *UserProgress) AddSession(s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.Date = Day(s.Date)
	if s.Intensity == "" {
		s.Intensity = IntensityModerate
	}
	u.sessions = append(u.sessions, s)
	u.sortSessions()

	u.PushEvent(SessionAddedEvent{
		At:             time.Now().UTC(),
		UserID:         u.UserID,
		SessionID:      s.ID,
		ExerciseName:   s.ExerciseName,
		CaloriesBurned: s.CaloriesBurned,
	})
	return nil
}

func (u *UserProgress) Records() []DailyRecord {
	return slices.Clone(u.records)
}

func (u *UserProgress) Sessions() []Session {
	return slices.Clone(u.sessions)
}

func (u *UserProgress) Record(id string) (DailyRecord, bool) {
	return lo.Find(u.records, func(r DailyRecord) bool { return r.ID == id })
}

// AverageDeficit is the mean deficit of the last n records. Fewer records
// average over what exists; no records yield 0.
func (u *UserProgress) AverageDeficit(n int) float64 {
	if n <= 0 || len(u.records) == 0 {
		return 0
	}
	recent := u.records[max(0, len(u.records)-n):]
	return lo.SumBy(recent, DailyRecord.Deficit) / float64(len(recent))
}

// AverageExerciseCalories spreads the calories of sessions from the last n
// days before now over all n days, not over the number of sessions.
func (u *UserProgress) AverageExerciseCalories(now time.Time, n int) float64 {
	if n <= 0 {
		return 0
	}
	recent := lo.Filter(u.sessions, func(s Session, _ int) bool {
		return daysBetween(s.Date, now) <= n
	})
	if len(recent) == 0 {
		return 0
	}
	return lo.SumBy(recent, func(s Session) float64 { return s.CaloriesBurned }) / float64(n)
}

// CurrentStreak counts consecutive on-track records ending at the latest one.
func (u *UserProgress) CurrentStreak() int {
	streak := 0
	for i := len(u.records) - 1; i >= 0; i-- {
		if !u.records[i].OnTrack() {
			break
		}
		streak++
	}
	return streak
}

type Stats struct {
	TotalRecords      int
	TotalSessions     int
	CurrentStreak     int
	AvgDeficit7d      float64
	AvgExerciseKcal7d float64
	LatestWeight      *float64
}

func (u *UserProgress) Stats(now time.Time) Stats {
	s := Stats{
		TotalRecords:      len(u.records),
		TotalSessions:     len(u.sessions),
		CurrentStreak:     u.CurrentStreak(),
		AvgDeficit7d:      u.AverageDeficit(7),
		AvgExerciseKcal7d: u.AverageExerciseCalories(now, 7),
	}
	for i := len(u.records) - 1; i >= 0; i-- {
		if w := u.records[i].WeightRecorded; w != nil {
			latest := *w
			s.LatestWeight = &latest
			break
		}
	}
	return s
}

func (u *UserProgress) sortRecords() {
	slices.SortStableFunc(u.records, func(a, b DailyRecord) int {
		return a.Date.Compare(b.Date)
	})
}

func (u *UserProgress) sortSessions() {
	slices.SortStableFunc(u.sessions, func(a, b Session) int {
		return a.Date.Compare(b.Date)
	})
}

type RecordAddedEvent struct {
	At       time.Time
	UserID   string
	RecordID string
	Date     time.Time
	Deficit  float64
	OnTrack  bool
	Streak   int
}

func (e RecordAddedEvent) Type() string {
	return EventRecordAdded
}

func (e RecordAddedEvent) PublishedAt() time.Time {
	return e.At
}

type RecordUpdatedEvent struct {
	At       time.Time
	UserID   string
	RecordID string
}

func (e RecordUpdatedEvent) Type() string {
	return EventRecordUpdated
}

func (e RecordUpdatedEvent) PublishedAt() time.Time {
	return e.At
}

type SessionAddedEvent struct {
	At             time.Time
	UserID         string
	SessionID      string
	ExerciseName   string
	CaloriesBurned float64
}

func (e SessionAddedEvent) Type() string {
	return EventSessionAdded
}

func (e SessionAddedEvent) PublishedAt() time.Time {
	return e.At
}
