package domain

// RateLimitDecision is the verdict for one counted request.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
}
