package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"macrolog/apierr"
	"macrolog/logger"
	"macrolog/models"
	"macrolog/utils"
)

// Clock returns the current time in the application's time zone.
type Clock func() time.Time

type WholeMacros struct {
	Protein int `json:"protein"`
	Carb    int `json:"carb"`
	Fat     int `json:"fat"`
}

// Summary is a day's goals, consumption and what is left, in whole numbers.
type Summary struct {
	Date              string      `json:"date"`
	TargetCalories    int         `json:"target_calories"`
	ConsumedCalories  int         `json:"consumed_calories"`
	RemainingCalories int         `json:"remaining_calories"`
	TargetMacros      WholeMacros `json:"target_macros"`
	ConsumedMacros    WholeMacros `json:"consumed_macros"`
	RemainingMacros   WholeMacros `json:"remaining_macros"`
	AdviceCount       int         `json:"advice_count"`
}

// Consumption is a macro delta applied to the current day.
type Consumption struct {
	Protein  float64 `json:"protein" binding:"gte=0"`
	Carb     float64 `json:"carb" binding:"gte=0"`
	Fat      float64 `json:"fat" binding:"gte=0"`
	Calories float64 `json:"calories" binding:"gte=0"`
}

type LedgerService struct {
	profiles    ProfileStore
	log         *logger.Logger
	now         Clock
	adviceLimit int
}

func NewLedgerService(profiles ProfileStore, log *logger.Logger, now Clock, adviceLimit int) *LedgerService {
	if now == nil {
		now = time.Now
	}
	return &LedgerService{
		profiles:    profiles,
		log:         log.With("service", "LedgerService"),
		now:         now,
		adviceLimit: adviceLimit,
	}
}

func whole(v float64) int { return int(utils.RoundWhole(v)) }

func remaining(target, consumed float64) int {
	if consumed >= target {
		return 0
	}
	return whole(target - consumed)
}

// BuildSummary summarizes day against the profile's goals; unset goals
// count as zero.
func BuildSummary(p *models.Profile, day *models.NutritionDay) Summary {
	target := p.TargetMacros
	calTarget := float64(p.TargetCalories)
	return Summary{
		Date:              day.Date,
		TargetCalories:    whole(calTarget),
		ConsumedCalories:  whole(day.Calories),
		RemainingCalories: remaining(calTarget, day.Calories),
		TargetMacros: WholeMacros{
			Protein: whole(target.Protein),
			Carb:    whole(target.Carb),
			Fat:     whole(target.Fat),
		},
		ConsumedMacros: WholeMacros{
			Protein: whole(day.Protein),
			Carb:    whole(day.Carb),
			Fat:     whole(day.Fat),
		},
		RemainingMacros: WholeMacros{
			Protein: remaining(target.Protein, day.Protein),
			Carb:    remaining(target.Carb, day.Carb),
			Fat:     remaining(target.Fat, day.Fat),
		},
		AdviceCount: day.AdviceCount,
	}
}

func (s *LedgerService) currentDay(p *models.Profile) (*models.NutritionDay, error) {
	day, err := p.CurrentDay(s.now())
	if err != nil {
		return nil, apierr.Invalid("profile day start: %v", err)
	}
	return day, nil
}

// Summary reports the current effective day. A day not seen yet is
// summarized as empty without being persisted.
func (s *LedgerService) Summary(ctx context.Context, profileID uuid.UUID) (*Summary, error) {
	p, err := loadProfile(ctx, s.profiles, profileID)
	if err != nil {
		return nil, err
	}
	day, err := s.currentDay(p)
	if err != nil {
		return nil, err
	}
	sum := BuildSummary(p, day)
	return &sum, nil
}

// RecordConsumption adds every delta to the current day in a single save.
// Consumed totals only grow, so negative deltas are rejected.
func (s *LedgerService) RecordConsumption(ctx context.Context, profileID uuid.UUID, entries ...Consumption) (*Summary, error) {
	for _, e := range entries {
		if e.Protein < 0 || e.Carb < 0 || e.Fat < 0 || e.Calories < 0 {
			return nil, apierr.Invalid("consumption must not be negative")
		}
	}
	var sum Summary
	_, err := mutateProfile(ctx, s.profiles, profileID, func(p *models.Profile) error {
		day, err := s.currentDay(p)
		if err != nil {
			return err
		}
		for _, e := range entries {
			day.ApplyConsumption(e.Protein, e.Carb, e.Fat, e.Calories)
		}
		sum = BuildSummary(p, day)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record consumption: %w", err)
	}
	s.log.Debug("consumption recorded", "profile_id", profileID, "entries", len(entries), "date", sum.Date)
	return &sum, nil
}

// RequestAdvice consumes one of the day's advice requests.
func (s *LedgerService) RequestAdvice(ctx context.Context, profileID uuid.UUID) (*Summary, error) {
	var sum Summary
	_, err := mutateProfile(ctx, s.profiles, profileID, func(p *models.Profile) error {
		day, err := s.currentDay(p)
		if err != nil {
			return err
		}
		if day.AdviceCount >= s.adviceLimit {
			return apierr.CapacityExceeded("advice_limit_reached",
				fmt.Sprintf("daily advice limit of %d reached", s.adviceLimit))
		}
		day.AdviceCount++
		sum = BuildSummary(p, day)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// History summarizes every recorded day against the current goals, newest first.
func (s *LedgerService) History(ctx context.Context, profileID uuid.UUID) ([]Summary, error) {
	p, err := loadProfile(ctx, s.profiles, profileID)
	if err != nil {
		return nil, err
	}
	days := make([]models.NutritionDay, len(p.Days))
	copy(days, p.Days)
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })

	out := make([]Summary, 0, len(days))
	for i := range days {
		out = append(out, BuildSummary(p, &days[i]))
	}
	return out, nil
}
