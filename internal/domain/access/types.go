package access

import "time"

// Feature is a named capability a client may ask to perform.
type Feature string

// Free-tier features: viewing and browsing.
const (
	FeatureBrowseIdeas     Feature = "browse_ideas"
	FeatureViewIdea        Feature = "view_idea"
	FeatureViewProfile     Feature = "view_profile"
	FeatureSearch          Feature = "search"
	FeatureViewLeaderboard Feature = "view_leaderboard"
	FeatureViewEvents      Feature = "view_events"
	FeatureViewJobs        Feature = "view_jobs"
	FeatureViewPricing     Feature = "view_pricing"
)

// Paid features: anything that mutates shared state or earns rewards.
const (
	FeatureCreatePost  Feature = "create_post"
	FeatureComment     Feature = "comment"
	FeatureLike        Feature = "like"
	FeatureSendMessage Feature = "send_message"
	FeatureConnect     Feature = "connect"
	FeatureEarnRewards Feature = "earn_rewards"
	FeatureBookSession Feature = "book_session"
	FeatureApplyJob    Feature = "apply_job"
)

// EntitlementState is the snapshot the policy decides on.
type EntitlementState struct {
	HasPaid       bool
	PaymentDate   *time.Time
	RewardBalance int64
}

type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)
