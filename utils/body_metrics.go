package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CheckBodyMetrics expects height in centimeters and weight in kilograms.
func CheckBodyMetrics(age int, heightCm, weightKg float64) error {
	if age <= 0 || heightCm <= 0 || weightKg <= 0 {
		return errors.New("age, height and weight must be positive")
	}
	// Sanity checks to avoid garbage input
	if age < 14 || age > 120 {
		return fmt.Errorf("age %d out of plausible range", age)
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return errors.New("height/weight out of plausible range")
	}
	return nil
}

func CalculateBMI(heightCm, weightKg float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	h := heightCm / 100.0 // to meters
	return weightKg / (h * h)
}

// ParseDayStart validates an "HH:MM" time of day and returns the minutes
// since midnight. An empty value means midnight.
func ParseDayStart(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("day start %q must be HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
