package ratelimit

import "github.com/SPAN-LLC/langfuse/internal/domain"

// planGroup is the equivalence class of billing plans sharing rate-limit
// config (spec §4.1, glossary "Plan group").
type planGroup string

const (
	planGroupDefault planGroup = "default"
	planGroupTeam    planGroup = "team"
)

// planGroups maps each known plan to its group.
var planGroups = map[domain.Plan]planGroup{
	domain.PlanDefault:              planGroupDefault,
	domain.PlanCloudHobby:           planGroupDefault,
	domain.PlanCloudPro:             planGroupDefault,
	domain.PlanCloudTeam:            planGroupTeam,
	domain.PlanSelfHostedEnterprise: planGroupTeam,
}

func intPtr(v int) *int { return &v }

// defaultConfigs is the static plan-group -> resource -> budget table
// (spec §4.1 "plan config is static").
var defaultConfigs = map[planGroup]map[domain.Resource]domain.RateLimitConfig{
	planGroupDefault: {
		domain.ResourceIngestion:       {Resource: domain.ResourceIngestion, Points: intPtr(100), DurationSeconds: intPtr(60)},
		domain.ResourcePrompts:         {Resource: domain.ResourcePrompts, Points: intPtr(30), DurationSeconds: intPtr(60)},
		domain.ResourcePublicAPI:       {Resource: domain.ResourcePublicAPI, Points: intPtr(1000), DurationSeconds: intPtr(60)},
		domain.ResourcePublicAPIMetric: {Resource: domain.ResourcePublicAPIMetric, Points: intPtr(10), DurationSeconds: intPtr(60)},
	},
	planGroupTeam: {
		domain.ResourceIngestion:       {Resource: domain.ResourceIngestion, Points: intPtr(1000), DurationSeconds: intPtr(60)},
		domain.ResourcePrompts:         {Resource: domain.ResourcePrompts, Points: intPtr(300), DurationSeconds: intPtr(60)},
		domain.ResourcePublicAPI:       {Resource: domain.ResourcePublicAPI, Points: nil, DurationSeconds: nil}, // unlimited
		domain.ResourcePublicAPIMetric: {Resource: domain.ResourcePublicAPIMetric, Points: intPtr(100), DurationSeconds: intPtr(60)},
	},
}

// effectiveConfig resolves the budget for (apiKey, resource): override >
// plan group > default (spec §4.1, §3 invariants).
func effectiveConfig(apiKey *domain.OrgEnrichedApiKey, resource domain.Resource) (domain.RateLimitConfig, error) {
	if override, ok := apiKey.RateLimitOverride(resource); ok {
		return override, nil
	}

	group, ok := planGroups[apiKey.Plan]
	if !ok {
		return domain.RateLimitConfig{}, domain.ConfigError("unknown plan: " + string(apiKey.Plan))
	}

	cfg, ok := defaultConfigs[group][resource]
	if !ok {
		return domain.RateLimitConfig{}, domain.ConfigError("no default rate limit for resource: " + string(resource))
	}
	return cfg, nil
}
