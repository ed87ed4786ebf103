package model

// ActionRecord is appended to both histories after each reaction.
type ActionRecord struct {
	Turn       int
	AttackerID string
	DefenderID string
	SkillID    string
	Impression Impression
	// Divergent is set when the skill impression differs from the
	// attacker's default impression.
	Divergent bool
	Success   bool
	// Penalized marks divergent records already consumed by the
	// divergence penalty.
	Penalized bool
}
