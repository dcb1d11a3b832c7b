package access

type AccessState string

const (
	AccessFull AccessState = "full"
	AccessFree AccessState = "free"
)

// Capabilities returned to clients and checked by guards.
const (
	CapGeneration       = "ai_generation"
	CapChat             = "ai_chat"
	CapProgressTracking = "progress_tracking"
	CapAIInsights       = "ai_insights"
	CapPrograms         = "programs"
	CapEarlyFeatures    = "early_features"
)
