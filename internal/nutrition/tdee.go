// Package nutrition computes daily energy needs from a user's body profile.
package nutrition

import (
	"math"
	"strconv"
	"strings"
)

// Sex selects the Mifflin-St Jeor constant.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// DefaultActivityLevel is used when the form leaves activity empty.
const DefaultActivityLevel = "sedentary"

// ActivityMultipliers maps activity level names to their TDEE multiplier.
// The form posts either the name or the multiplier itself ("1.375").
var ActivityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
}

// ActivityLevels lists the level names in ascending order for rendering.
var ActivityLevels = []string{"sedentary", "light", "moderate", "active"}

// Plausible input ranges. Outside of them the formula stops meaning anything
// (and can go negative for tiny, very old profiles).
const (
	minAge      = 1
	maxAge      = 120
	minHeightCM = 50
	maxHeightCM = 250
	minWeightKG = 10
	maxWeightKG = 400
)

// Profile is a validated body profile.
type Profile struct {
	Age           int     `json:"age"`
	HeightCM      float64 `json:"height_cm"`
	WeightKG      float64 `json:"weight_kg"`
	Sex           Sex     `json:"sex"`
	ActivityLevel string  `json:"activity_level"`
}

// Multiplier returns the profile's activity multiplier.
func (p Profile) Multiplier() float64 {
	return ActivityMultipliers[p.ActivityLevel]
}

// Input is the raw form input, exactly as typed. Empty strings mean "not provided".
type Input struct {
	Age      string `json:"age" form:"age"`
	Height   string `json:"height" form:"height"`
	Weight   string `json:"weight" form:"weight"`
	Sex      string `json:"sex" form:"sex"`
	Activity string `json:"activity" form:"activity"`
}

// Result is the outcome of one calculation.
type Result struct {
	BMR           float64 `json:"bmr"`
	Calories      int     `json:"calories"`
	PerMealTarget int     `json:"per_meal_target"`
}

// ParseProfile validates raw input. Age, height and weight are required; sex
// and activity fall back to male / sedentary. Non-numeric values are rejected
// rather than coerced.
func ParseProfile(in Input) (Profile, error) {
	age := strings.TrimSpace(in.Age)
	height := strings.TrimSpace(in.Height)
	weight := strings.TrimSpace(in.Weight)

	// All three required fields are checked before anything else so a partly
	// filled form gets the single "fill everything" notice.
	var missing []string
	if age == "" {
		missing = append(missing, "age")
	}
	if height == "" {
		missing = append(missing, "height")
	}
	if weight == "" {
		missing = append(missing, "weight")
	}
	if len(missing) > 0 {
		return Profile{}, &ValidationError{Field: strings.Join(missing, ","), Reason: reasonMissing}
	}

	var p Profile
	n, err := strconv.Atoi(age)
	if err != nil {
		return Profile{}, &ValidationError{Field: "age", Reason: reasonNotNumber}
	}
	p.Age = n

	if p.HeightCM, err = parseNumber("height", height); err != nil {
		return Profile{}, err
	}
	if p.WeightKG, err = parseNumber("weight", weight); err != nil {
		return Profile{}, err
	}

	switch Sex(strings.ToLower(strings.TrimSpace(in.Sex))) {
	case "", Male:
		p.Sex = Male
	case Female:
		p.Sex = Female
	default:
		return Profile{}, &ValidationError{Field: "sex", Reason: reasonUnknown}
	}

	level, ok := LookupActivity(in.Activity)
	if !ok {
		return Profile{}, &ValidationError{Field: "activity", Reason: reasonUnknown}
	}
	p.ActivityLevel = level

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks a profile against the plausible ranges.
func (p Profile) Validate() error {
	if p.Age < minAge || p.Age > maxAge {
		return &ValidationError{Field: "age", Reason: reasonOutOfRange}
	}
	if p.HeightCM < minHeightCM || p.HeightCM > maxHeightCM {
		return &ValidationError{Field: "height", Reason: reasonOutOfRange}
	}
	if p.WeightKG < minWeightKG || p.WeightKG > maxWeightKG {
		return &ValidationError{Field: "weight", Reason: reasonOutOfRange}
	}
	if p.Sex != Male && p.Sex != Female {
		return &ValidationError{Field: "sex", Reason: reasonUnknown}
	}
	if _, ok := ActivityMultipliers[p.ActivityLevel]; !ok {
		return &ValidationError{Field: "activity", Reason: reasonUnknown}
	}
	return nil
}

// parseNumber accepts finite decimal numbers only; "NaN" and "Inf" parse
// fine with strconv but are not body measurements.
func parseNumber(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Field: field, Reason: reasonNotNumber}
	}
	return f, nil
}

// LookupActivity resolves a level name or a multiplier string ("1.375") to a
// level name. Empty input gives the default level.
func LookupActivity(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultActivityLevel, true
	}
	if _, ok := ActivityMultipliers[s]; ok {
		return s, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	for name, mult := range ActivityMultipliers {
		if mult == f {
			return name, true
		}
	}
	return "", false
}

// BMR computes basal metabolic rate via Mifflin-St Jeor: different constant
// for male vs female.
func BMR(p Profile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if p.Sex == Male {
		bmr += 5
	} else {
		bmr -= 161
	}
	return bmr
}

// Calculate computes BMR, TDEE (rounded to whole kcal) and the per-meal
// target for a validated profile.
func Calculate(p Profile) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	bmr := BMR(p)
	tdeeF := bmr * p.Multiplier()
	if math.IsNaN(tdeeF) || math.IsInf(tdeeF, 0) || math.Round(tdeeF) <= 0 {
		return Result{}, &ValidationError{Field: "profile", Reason: reasonImplausible}
	}
	tdee := int(math.Round(tdeeF))
	return Result{
		BMR:           bmr,
		Calories:      tdee,
		PerMealTarget: PerMealTarget(tdee),
	}, nil
}

// CalculateInput parses and calculates in one step. Nothing is computed when
// parsing fails.
func CalculateInput(in Input) (Profile, Result, error) {
	p, err := ParseProfile(in)
	if err != nil {
		return Profile{}, Result{}, err
	}
	r, err := Calculate(p)
	if err != nil {
		return Profile{}, Result{}, err
	}
	return p, r, nil
}

// PerMealTarget splits a daily budget over three meals.
func PerMealTarget(tdee int) int {
	return int(math.Round(float64(tdee) / 3))
}
