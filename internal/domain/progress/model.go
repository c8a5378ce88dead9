package progress

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"math"
	"strings"
	"time"
)

var (
	ErrRecordNotFound   = errors.New("daily record not found")
	ErrRecordExists     = errors.New("daily record already exists")
	ErrSessionExists    = errors.New("exercise session already exists")
	ErrInvalidRecord    = fmt.Errorf("%w: daily record", domain.ErrInvalidInput)
	ErrInvalidSession   = fmt.Errorf("%w: exercise session", domain.ErrInvalidInput)
	ErrInvalidIntensity = fmt.Errorf("%w: unknown intensity", domain.ErrInvalidInput)
)

// OnTrackMargin is how far, in kcal, consumption may deviate from the target
// while the day still counts as on track.
const OnTrackMargin = 100.0

type DailyRecord struct {
	ID               string    `diff:"-"`
	Date             time.Time `diff:"-"`
	CaloriesConsumed float64   `diff:"calories_consumed"`
	CaloriesTarget   float64   `diff:"calories_target"`
	WeightRecorded   *float64  `diff:"weight_recorded"`
	Notes            string    `diff:"notes"`
}

func NewDailyRecord(id string, date time.Time, consumed, target float64, weight *float64, notes string) (DailyRecord, error) {
	r := DailyRecord{
		ID:               id,
		Date:             Day(date),
		CaloriesConsumed: consumed,
		CaloriesTarget:   target,
		WeightRecorded:   weight,
		Notes:            notes,
	}
	return r, r.Validate()
}

func (r DailyRecord) Validate() error {
	if r.CaloriesConsumed < 0 || r.CaloriesTarget < 0 {
		return fmt.Errorf("%w: calories must not be negative", ErrInvalidRecord)
	}
	if r.WeightRecorded != nil && *r.WeightRecorded <= 0 {
		return fmt.Errorf("%w: recorded weight must be positive", ErrInvalidRecord)
	}
	return nil
}

// Deficit is target minus consumed; positive means under-eating.
func (r DailyRecord) Deficit() float64 {
	return r.CaloriesTarget - r.CaloriesConsumed
}

func (r DailyRecord) OnTrack() bool {
	return math.Abs(r.Deficit()) <= OnTrackMargin
}

type RecordUpdate struct {
	CaloriesConsumed *float64
	CaloriesTarget   *float64
	WeightRecorded   *float64
	Notes            *string
}

// Apply returns a copy of r with the non-nil fields of u applied.
func (r DailyRecord) Apply(u RecordUpdate) (DailyRecord, error) {
	if u.CaloriesConsumed != nil {
		r.CaloriesConsumed = *u.CaloriesConsumed
	}
	if u.CaloriesTarget != nil {
		r.CaloriesTarget = *u.CaloriesTarget
	}
	if u.WeightRecorded != nil {
		w := *u.WeightRecorded
		r.WeightRecorded = &w
	}
	if u.Notes != nil {
		r.Notes = *u.Notes
	}
	return r, r.Validate()
}

type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityIntense  Intensity = "intense"
)

func ParseIntensity(s string) (Intensity, error) {
	switch i := Intensity(strings.ToLower(strings.TrimSpace(s))); i {
	case "":
		return IntensityModerate, nil
	case IntensityLight, IntensityModerate, IntensityIntense:
		return i, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidIntensity, s)
	}
}

type Session struct {
	ID              string
	ExerciseName    string
	DurationMinutes float64
	Date            time.Time
	CaloriesBurned  float64
	Intensity       Intensity
	Notes           string
}

func (s Session) Validate() error {
	if s.ExerciseName == "" {
		return fmt.Errorf("%w: exercise name is required", ErrInvalidSession)
	}
	if s.DurationMinutes < 0 || s.CaloriesBurned < 0 {
		return fmt.Errorf("%w: duration and calories must not be negative", ErrInvalidSession)
	}
	return nil
}

// Day strips the clock from t, keeping the calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}
