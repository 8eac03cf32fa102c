package ratelimit

import (
	"testing"

	"github.com/SPAN-LLC/langfuse/internal/domain"
)

func TestEffectiveConfig_OverrideWinsOverPlanGroup(t *testing.T) {
	points := 7
	duration := 60
	key := &domain.OrgEnrichedApiKey{
		Plan: domain.PlanCloudHobby,
		RateLimits: []domain.RateLimitConfig{
			{Resource: domain.ResourceIngestion, Points: &points, DurationSeconds: &duration},
		},
	}

	cfg, err := effectiveConfig(key, domain.ResourceIngestion)
	if err != nil {
		t.Fatalf("effectiveConfig() error = %v", err)
	}
	if *cfg.Points != 7 {
		t.Errorf("Points = %v, want override value 7", *cfg.Points)
	}
}

func TestEffectiveConfig_FallsBackToPlanGroup(t *testing.T) {
	key := &domain.OrgEnrichedApiKey{Plan: domain.PlanCloudTeam}

	cfg, err := effectiveConfig(key, domain.ResourceIngestion)
	if err != nil {
		t.Fatalf("effectiveConfig() error = %v", err)
	}
	if *cfg.Points != 1000 {
		t.Errorf("Points = %v, want team-group default 1000", *cfg.Points)
	}
}

func TestEffectiveConfig_UnknownPlanIsConfigError(t *testing.T) {
	key := &domain.OrgEnrichedApiKey{Plan: domain.Plan("mystery")}

	_, err := effectiveConfig(key, domain.ResourceIngestion)
	de := domain.AsDomainError(err)
	if de == nil || de.Kind != domain.ErrorKindConfig {
		t.Fatalf("effectiveConfig() error = %v, want ConfigError", err)
	}
}

func TestEffectiveConfig_TeamPublicAPIIsUnlimited(t *testing.T) {
	key := &domain.OrgEnrichedApiKey{Plan: domain.PlanCloudTeam}

	cfg, err := effectiveConfig(key, domain.ResourcePublicAPI)
	if err != nil {
		t.Fatalf("effectiveConfig() error = %v", err)
	}
	if !cfg.Unlimited() {
		t.Errorf("Unlimited() = false, want true for team public-api")
	}
}
