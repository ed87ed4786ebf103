package model

// AdaptationRecord is a defender's familiarity with one impression.
type AdaptationRecord struct {
	Impression Impression
	// Count may drop below zero while decaying; effects floor it at 0.
	Count    float64
	Users    map[string]struct{}
	PeakHit  float64
	LastTurn int
}

// HasUser reports whether attackerID already used the impression.
func (r *AdaptationRecord) HasUser(attackerID string) bool {
	_, ok := r.Users[attackerID]
	return ok
}

// EffectiveCount is the floored, non-negative memory count.
func (r *AdaptationRecord) EffectiveCount() float64 {
	if r.Count <= 0 {
		return 0
	}
	return float64(int(r.Count))
}

// AdaptationMemory holds every record of one defender.
type AdaptationMemory struct {
	Records  map[Impression]*AdaptationRecord
	LastTurn int
	// Persistent survives battle end at a reduced rate.
	Persistent map[Impression]float64
}

// NewAdaptationMemory creates an empty memory.
func NewAdaptationMemory() *AdaptationMemory {
	return &AdaptationMemory{
		Records:    make(map[Impression]*AdaptationRecord),
		Persistent: make(map[Impression]float64),
	}
}
