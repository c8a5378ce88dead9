package profile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidProfile = errors.New("invalid profile")
)

type Gender string

// Mifflin-St Jeor only distinguishes two sexes. Anything else is rejected by
// Validate rather than silently mapped onto one of the branches.
const (
	Female Gender = "female"
	Male   Gender = "male"
)

func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case Female, Male:
		return g, nil
	default:
		return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, s)
	}
}

type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

// DefaultActivityFactor is used for empty or unrecognized activity levels.
const DefaultActivityFactor = 1.2

var activityFactors = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

var activityDescriptions = map[ActivityLevel]string{
	Sedentary:  "little or no exercise",
	Light:      "light exercise 1-3 days/week",
	Moderate:   "moderate exercise 3-5 days/week",
	Active:     "hard exercise 6-7 days/week",
	VeryActive: "very hard exercise, physical job",
}

// Factor returns the TDEE multiplier of the level, falling back to the
// sedentary factor for values outside the known set.
func (l ActivityLevel) Factor() float64 {
	if f, ok := activityFactors[l]; ok {
		return f
	}
	return DefaultActivityFactor
}

func (l ActivityLevel) Known() bool {
	_, ok := activityFactors[l]
	return ok
}

func (l ActivityLevel) Description() string {
	return activityDescriptions[l]
}

type UserProfile struct {
	Weight        float64
	Height        float64
	Age           float64
	Gender        Gender
	TargetWeight  float64
	ActivityLevel ActivityLevel
}

func New(
	weight float64,
	height float64,
	age float64,
	gender string,
	targetWeight float64,
	activityLevel string,
) (UserProfile, error) {
	g, err := ParseGender(gender)
	if err != nil {
		return UserProfile{}, err
	}

	level := ActivityLevel(strings.ToLower(strings.TrimSpace(activityLevel)))
	if level == "" {
		level = Sedentary
	}

	p := UserProfile{
		Weight:        weight,
		Height:        height,
		Age:           age,
		Gender:        g,
		TargetWeight:  targetWeight,
		ActivityLevel: level,
	}
	return p, p.Validate()
}

func (p UserProfile) Validate() error {
	switch {
	case p.Weight <= 0:
		return fmt.Errorf("%w: weight must be positive", ErrInvalidProfile)
	case p.Height <= 0:
		return fmt.Errorf("%w: height must be positive", ErrInvalidProfile)
	case p.Age <= 0:
		return fmt.Errorf("%w: age must be positive", ErrInvalidProfile)
	case p.TargetWeight <= 0:
		return fmt.Errorf("%w: target weight must be positive", ErrInvalidProfile)
	case p.Gender != Female && p.Gender != Male:
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, p.Gender)
	}
	return nil
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func (p UserProfile) BMR() float64 {
	base := 10*p.Weight + 6.25*p.Height - 5*p.Age
	if p.Gender == Female {
		return base - 161
	}
	return base + 5
}

func (p UserProfile) TDEE() float64 {
	return p.BMR() * p.ActivityLevel.Factor()
}

func (p UserProfile) WeightToLose() float64 {
	return max(0, p.Weight-p.TargetWeight)
}
