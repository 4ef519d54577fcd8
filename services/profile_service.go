package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"macrolog/apierr"
	"macrolog/logger"
	"macrolog/models"
	"macrolog/utils"
)

type BasicsInput struct {
	Name     string  `json:"name"`
	Age      int     `json:"age" binding:"required"`
	Sex      string  `json:"sex" binding:"required"`
	HeightCm float64 `json:"height_cm" binding:"required"`
	WeightKg float64 `json:"weight_kg" binding:"required"`
	DayStart string  `json:"day_start"`
}

type PreferencesInput struct {
	Preferences []string `json:"preferences"`
	Allergies   []string `json:"allergies"`
}

// ProfileInput is a full profile edit outside onboarding. Empty fields keep
// their stored value.
type ProfileInput struct {
	Name          string   `json:"name"`
	Age           int      `json:"age"`
	Sex           string   `json:"sex"`
	HeightCm      float64  `json:"height_cm"`
	WeightKg      float64  `json:"weight_kg"`
	DayStart      string   `json:"day_start"`
	ActivityLevel string   `json:"activity_level"`
	Objective     string   `json:"objective"`
	Preferences   []string `json:"preferences"`
	Allergies     []string `json:"allergies"`
}

type ProfileStatus struct {
	Steps           models.OnboardingProgress `json:"steps"`
	ProfileComplete bool                      `json:"profile_complete"`
}

type ProfileService struct {
	profiles ProfileStore
	log      *logger.Logger
}

func NewProfileService(profiles ProfileStore, log *logger.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, log: log.With("service", "ProfileService")}
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return loadProfile(ctx, s.profiles, id)
}

func (s *ProfileService) Status(ctx context.Context, id uuid.UUID) (*ProfileStatus, error) {
	p, err := loadProfile(ctx, s.profiles, id)
	if err != nil {
		return nil, err
	}
	return &ProfileStatus{Steps: p.Steps, ProfileComplete: p.ProfileComplete}, nil
}

// finishTransition re-derives completeness and, once every step is done,
// recomputes the goals.
func finishTransition(p *models.Profile) error {
	p.ProfileComplete = p.Steps.Complete()
	if p.ProfileComplete {
		return ComputeGoals(p)
	}
	return nil
}

func (s *ProfileService) transition(ctx context.Context, id uuid.UUID, step string, fn func(p *models.Profile) error) (*models.Profile, error) {
	p, err := mutateProfile(ctx, s.profiles, id, func(p *models.Profile) error {
		if err := fn(p); err != nil {
			return err
		}
		return finishTransition(p)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("onboarding step completed", "profile_id", id, "step", step, "complete", p.ProfileComplete)
	return p, nil
}

func applyBasics(p *models.Profile, in BasicsInput) error {
	if err := utils.CheckBodyMetrics(in.Age, in.HeightCm, in.WeightKg); err != nil {
		return apierr.Invalid("%v", err)
	}
	sex, err := ParseSex(in.Sex)
	if err != nil {
		return err
	}
	dayStart := strings.TrimSpace(in.DayStart)
	if dayStart == "" {
		dayStart = models.DefaultDayStart
	}
	if _, err := utils.ParseDayStart(dayStart); err != nil {
		return apierr.Invalid("%v", err)
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = name
	}
	p.Age = in.Age
	p.Sex = string(sex)
	p.HeightCm = in.HeightCm
	p.WeightKg = in.WeightKg
	p.DayStart = dayStart
	return nil
}

func (s *ProfileService) CompleteBasics(ctx context.Context, id uuid.UUID, in BasicsInput) (*models.Profile, error) {
	return s.transition(ctx, id, "basics", func(p *models.Profile) error {
		if err := applyBasics(p, in); err != nil {
			return err
		}
		p.Steps.Basics = true
		return nil
	})
}

func (s *ProfileService) CompleteActivity(ctx context.Context, id uuid.UUID, level string) (*models.Profile, error) {
	l, err := ParseActivityLevel(level)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, "activity", func(p *models.Profile) error {
		p.ActivityLevel = string(l)
		p.Steps.Activity = true
		return nil
	})
}

// CompleteObjective needs the basics and activity data, since goals are
// computed from them as part of this step.
func (s *ProfileService) CompleteObjective(ctx context.Context, id uuid.UUID, objective string) (*models.Profile, error) {
	o, err := ParseObjective(objective)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, "objective", func(p *models.Profile) error {
		p.Objective = string(o)
		if err := ComputeGoals(p); err != nil {
			return err
		}
		p.Steps.Objective = true
		return nil
	})
}

func (s *ProfileService) CompletePreferences(ctx context.Context, id uuid.UUID, in PreferencesInput) (*models.Profile, error) {
	return s.transition(ctx, id, "preferences", func(p *models.Profile) error {
		p.Preferences = cleanList(in.Preferences)
		p.Allergies = cleanList(in.Allergies)
		p.Steps.Preferences = true
		return nil
	})
}

// RecalculateGoals recomputes goals from the stored data without touching
// any step. Without an activity level and objective there is nothing to
// compute and the profile is returned as is.
func (s *ProfileService) RecalculateGoals(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := loadProfile(ctx, s.profiles, id)
	if err != nil {
		return nil, err
	}
	if p.ActivityLevel == "" || p.Objective == "" {
		return p, nil
	}
	return mutateProfile(ctx, s.profiles, id, ComputeGoals)
}

// Update edits profile data without touching the onboarding steps. A
// complete profile gets its goals recomputed.
func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, in ProfileInput) (*models.Profile, error) {
	var level ActivityLevel
	var objective Objective
	var err error
	if in.ActivityLevel != "" {
		if level, err = ParseActivityLevel(in.ActivityLevel); err != nil {
			return nil, err
		}
	}
	if in.Objective != "" {
		if objective, err = ParseObjective(in.Objective); err != nil {
			return nil, err
		}
	}

	p, err := mutateProfile(ctx, s.profiles, id, func(p *models.Profile) error {
		basics := BasicsInput{
			Name:     in.Name,
			Age:      firstInt(in.Age, p.Age),
			Sex:      firstString(in.Sex, p.Sex),
			HeightCm: firstFloat(in.HeightCm, p.HeightCm),
			WeightKg: firstFloat(in.WeightKg, p.WeightKg),
			DayStart: firstString(in.DayStart, p.DayStart),
		}
		if basicsChanged(in) {
			if err := applyBasics(p, basics); err != nil {
				return err
			}
		} else if name := strings.TrimSpace(in.Name); name != "" {
			p.Name = name
		}
		if level != "" {
			p.ActivityLevel = string(level)
		}
		if objective != "" {
			p.Objective = string(objective)
		}
		if in.Preferences != nil {
			p.Preferences = cleanList(in.Preferences)
		}
		if in.Allergies != nil {
			p.Allergies = cleanList(in.Allergies)
		}
		return finishTransition(p)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("profile updated", "profile_id", id)
	return p, nil
}

func basicsChanged(in ProfileInput) bool {
	return in.Age != 0 || in.Sex != "" || in.HeightCm != 0 || in.WeightKg != 0 || in.DayStart != ""
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstString(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func firstInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func firstFloat(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}
