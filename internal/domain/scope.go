package domain

// Plan is the closed set of billing plans carried on an org's API key (spec §3).
type Plan string

const (
	PlanDefault               Plan = "default"
	PlanCloudHobby            Plan = "cloud:hobby"
	PlanCloudPro              Plan = "cloud:pro"
	PlanCloudTeam             Plan = "cloud:team"
	PlanSelfHostedEnterprise  Plan = "self-hosted:enterprise"
)

// Resource is the closed set of rate-limited resources (spec §3, §6).
type Resource string

const (
	ResourceIngestion       Resource = "ingestion"
	ResourcePrompts         Resource = "prompts"
	ResourcePublicAPI       Resource = "public-api"
	ResourcePublicAPIMetric Resource = "public-api-metrics"
)

// AccessLevel is the closed set of scope access levels (spec §3).
type AccessLevel string

const (
	AccessLevelAll    AccessLevel = "all"
	AccessLevelScores AccessLevel = "scores"
)

// RateLimitConfig is one resource's budget (spec §3). Nil Points or Duration
// means unlimited.
type RateLimitConfig struct {
	Resource        Resource
	Points          *int
	DurationSeconds *int
}

// Unlimited reports whether this config carries no effective budget.
func (c RateLimitConfig) Unlimited() bool {
	return c.Points == nil || c.DurationSeconds == nil
}

// OrgEnrichedApiKey is the authenticated org's key record (spec §3).
type OrgEnrichedApiKey struct {
	OrgID       string
	ProjectID   string
	PublicKey   string
	SecretHash  string
	Plan        Plan
	AccessLevel AccessLevel
	RateLimits  []RateLimitConfig // overrides, keyed by Resource
}

// RateLimitOverride returns the org-specific override for resource, if any.
func (k *OrgEnrichedApiKey) RateLimitOverride(resource Resource) (RateLimitConfig, bool) {
	for _, c := range k.RateLimits {
		if c.Resource == resource {
			return c, true
		}
	}
	return RateLimitConfig{}, false
}

// Scope is the result of authenticating a request (spec §3).
type Scope struct {
	ValidKey    bool
	APIKey      *OrgEnrichedApiKey
	ProjectID   string
	AccessLevel AccessLevel
	Error       string
}

// CanSubmit reports whether an event of type et may be submitted under this
// scope's access level (spec §4.3: scores-only scopes may submit only
// SCORE_CREATE).
func (s *Scope) CanSubmit(et EventType) bool {
	if s.AccessLevel == AccessLevelAll {
		return true
	}
	return et == EventScoreCreate
}
