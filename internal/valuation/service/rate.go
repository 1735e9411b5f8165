package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/smallbiznis/docflow/internal/valuation/domain"
)

// PercentToFraction converts 20 into 0.20.
func PercentToFraction(percent float64) float64 {
	return percent / 100
}

// FractionToPercent converts 0.20 into 20.
func FractionToPercent(fraction float64) float64 {
	return fraction * 100
}

// ParseConvention accepts "fraction" or "percent" (case-insensitive).
// An empty value yields def.
func ParseConvention(raw string, def domain.RateConvention) (domain.RateConvention, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return def, nil
	case string(domain.RateConventionFraction):
		return domain.RateConventionFraction, nil
	case string(domain.RateConventionPercent):
		return domain.RateConventionPercent, nil
	default:
		return "", domain.ErrInvalidConvention
	}
}

// NormalizeRate turns a caller-supplied rate into a fraction in [0,1].
// A nil rate resolves to defaultRate, which is already a fraction.
// The convention is never guessed from the magnitude of the value.
func NormalizeRate(raw *float64, convention domain.RateConvention, defaultRate float64) (float64, error) {
	if raw == nil {
		return checkFraction(defaultRate)
	}
	value := *raw
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: rate is not finite", domain.ErrInvalidInput)
	}
	switch convention {
	case domain.RateConventionFraction:
	case domain.RateConventionPercent:
		value = PercentToFraction(value)
	default:
		return 0, domain.ErrInvalidConvention
	}
	return checkFraction(value)
}

func checkFraction(rate float64) (float64, error) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return 0, fmt.Errorf("%w: %v is outside [0,1]", domain.ErrInvalidRate, rate)
	}
	return rate, nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
