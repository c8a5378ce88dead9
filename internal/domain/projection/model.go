package projection

import (
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"math"
	"strings"
	"time"
)

// KcalPerKg is the energy content of one kilogram of body fat.
const KcalPerKg = 7700.0

// AdaptationDecay is the share of deficit efficacy lost linearly by the end
// of the horizon when metabolic adaptation is modeled.
const AdaptationDecay = 0.1

// MaxHorizonDays bounds a projection to ten years of daily points.
const MaxHorizonDays = 3650

type Mode string

const (
	ModePlain   Mode = "plain"
	ModeAdapted Mode = "adapted"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModePlain, nil
	case ModePlain, ModeAdapted:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown projection mode %q", domain.ErrInvalidInput, s)
	}
}

type Params struct {
	StartWeight  float64
	TargetWeight float64
	DailyDeficit float64
	HorizonDays  int
	Mode         Mode
	StartDate    time.Time
}

// Projection is a day-by-day weight trajectory. It is never modified after
// Project builds it; accessors hand out copies.
type Projection struct {
	startWeight  float64
	targetWeight float64
	dailyDeficit float64
	startDate    time.Time
	days         []int
	weights      []float64
	dates        []time.Time
}

// Project applies the daily deficit for days 0..HorizonDays inclusive.
// Day 0 already carries one day of loss. Weights never drop below the target.
func Project(p Params) (*Projection, error) {
	if p.HorizonDays < 0 {
		return nil, fmt.Errorf("%w: horizon must not be negative, got %d", domain.ErrInvalidInput, p.HorizonDays)
	}
	if p.HorizonDays > MaxHorizonDays {
		return nil, fmt.Errorf("%w: horizon must not exceed %d days, got %d", domain.ErrInvalidInput, MaxHorizonDays, p.HorizonDays)
	}
	if math.IsNaN(p.DailyDeficit) || math.IsInf(p.DailyDeficit, 0) {
		return nil, fmt.Errorf("%w: daily deficit is not a finite number", domain.ErrInvalidInput)
	}

	start := p.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}
	start = truncateDay(start)

	n := p.HorizonDays + 1
	pr := &Projection{
		startWeight:  p.StartWeight,
		targetWeight: p.TargetWeight,
		dailyDeficit: p.DailyDeficit,
		startDate:    start,
		days:         make([]int, n),
		weights:      make([]float64, n),
		dates:        make([]time.Time, n),
	}

	current := p.StartWeight
	for day := 0; day < n; day++ {
		deficit := p.DailyDeficit
		if p.Mode == ModeAdapted && p.HorizonDays > 0 {
			deficit *= 1 - float64(day)/float64(p.HorizonDays)*AdaptationDecay
		}

		current -= deficit / KcalPerKg
		current = max(current, p.TargetWeight)

		pr.days[day] = day
		pr.weights[day] = current
		pr.dates[day] = start.AddDate(0, 0, day)
	}

	return pr, nil
}

func (p *Projection) StartWeight() float64 {
	return p.startWeight
}

func (p *Projection) TargetWeight() float64 {
	return p.targetWeight
}

func (p *Projection) DailyDeficit() float64 {
	return p.dailyDeficit
}

func (p *Projection) StartDate() time.Time {
	return p.startDate
}

func (p *Projection) Len() int {
	return len(p.weights)
}

func (p *Projection) Days() []int {
	return append([]int(nil), p.days...)
}

func (p *Projection) Weights() []float64 {
	return append([]float64(nil), p.weights...)
}

func (p *Projection) Dates() []time.Time {
	return append([]time.Time(nil), p.dates...)
}

// DaysToGoal returns the first day index whose weight is at or below the
// target. ok is false when the target is not reached within the horizon.
func (p *Projection) DaysToGoal() (days int, ok bool) {
	for i, w := range p.weights {
		if w <= p.targetWeight {
			return p.days[i], true
		}
	}
	return 0, false
}

// MonthsToTarget is DaysToGoal in 30-day months rounded to one decimal, or
// nil when the target is not reached.
func (p *Projection) MonthsToTarget() *float64 {
	days, ok := p.DaysToGoal()
	if !ok {
		return nil
	}
	months := math.Round(float64(days)/30*10) / 10
	return &months
}

// TargetDate is the date the target is reached, or the last projected date
// when it is not.
func (p *Projection) TargetDate() time.Time {
	if days, ok := p.DaysToGoal(); ok {
		return p.dates[days]
	}
	return p.dates[len(p.dates)-1]
}

func (p *Projection) FinalWeight() float64 {
	return p.weights[len(p.weights)-1]
}

func (p *Projection) TotalLoss() float64 {
	return p.startWeight - p.FinalWeight()
}

// WeeklyRate is the loss over the first seven projected days.
func (p *Projection) WeeklyRate() float64 {
	if len(p.weights) < 7 {
		return 0
	}
	return p.startWeight - p.weights[6]
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
