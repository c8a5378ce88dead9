package exercise

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownExercise = errors.New("unknown exercise")
)

// Calorie burn rates are measured at these two body weights.
const (
	LowReferenceWeight  = 57.0
	HighReferenceWeight = 80.0
)

type Category string

const (
	Cardio      Category = "cardio"
	Strength    Category = "strength"
	Flexibility Category = "flexibility"
	Sport       Category = "sport"
	General     Category = "general"
)

func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case Cardio, Strength, Flexibility, Sport:
		return c
	default:
		return General
	}
}

type Reference struct {
	Name                   string
	CaloriesPerHour57kg    float64
	CaloriesPerHour80kg    float64
	Category               Category
	DefaultDurationMinutes int
}

// RatePerHour interpolates the hourly burn rate linearly through the two
// reference points. Weights outside [57, 80] are extrapolated.
func (r Reference) RatePerHour(weightKg float64) float64 {
	m := (r.CaloriesPerHour80kg - r.CaloriesPerHour57kg) / (HighReferenceWeight - LowReferenceWeight)
	b := r.CaloriesPerHour57kg - m*LowReferenceWeight
	return m*weightKg + b
}

func (r Reference) CaloriesBurned(weightKg float64, durationMinutes float64) float64 {
	return r.RatePerHour(weightKg) * durationMinutes / 60
}

// UnknownExerciseError lists every exercise name that could not be resolved
// against the catalog.
type UnknownExerciseError struct {
	Names []string
}

func (e *UnknownExerciseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownExercise, strings.Join(e.Names, ", "))
}

func (e *UnknownExerciseError) Unwrap() error {
	return ErrUnknownExercise
}

// Plan is a recurring exercise: one session of DurationMinutes,
// SessionsPerWeek times a week.
type Plan struct {
	Name            string
	DurationMinutes float64
	SessionsPerWeek float64
}

func (p Plan) WeeklyCalories(weightKg float64, ref Reference) float64 {
	return ref.CaloriesBurned(weightKg, p.DurationMinutes) * p.SessionsPerWeek
}
