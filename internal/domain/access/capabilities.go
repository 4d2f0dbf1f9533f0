package access

var freeCatalog = []Feature{
	FeatureBrowseIdeas,
	FeatureViewIdea,
	FeatureViewProfile,
	FeatureSearch,
	FeatureViewLeaderboard,
	FeatureViewEvents,
	FeatureViewJobs,
	FeatureViewPricing,
}

var paidCatalog = []Feature{
	FeatureCreatePost,
	FeatureComment,
	FeatureLike,
	FeatureSendMessage,
	FeatureConnect,
	FeatureEarnRewards,
	FeatureBookSession,
	FeatureApplyJob,
}

var freeSet = func() map[Feature]bool {
	m := make(map[Feature]bool, len(freeCatalog))
	for _, f := range freeCatalog {
		m[f] = true
	}
	return m
}()

// IsFree reports whether f is reachable without entitlement.
func IsFree(f Feature) bool {
	return freeSet[f]
}

// Known reports whether f is in either catalog.
func Known(f Feature) bool {
	if freeSet[f] {
		return true
	}
	for _, p := range paidCatalog {
		if p == f {
			return true
		}
	}
	return false
}

func CapabilitiesFor(state EntitlementState) []Feature {
	out := append([]Feature{}, freeCatalog...)
	if state.HasPaid {
		out = append(out, paidCatalog...)
	}
	return out
}
