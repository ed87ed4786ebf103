package model

// Skill is the read-only descriptor of the skill being resolved. The
// attacker owns it for one action; the defender never mutates it.
type Skill struct {
	ID         string
	Name       string
	Impression Impression

	IsMagic     bool
	IsBlade     bool
	IsExplosion bool
	CannotKill  bool
	TLOA        bool

	Power       float64
	MentalPower float64

	// DefenseIgnoreRatio in [0, 1] is the share of DEF the skill ignores.
	DefenseIgnoreRatio float64
	AimStyle           AimStyle
	Property           PhysicalProperty

	// Accuracy is the skill's own hit chance in percent (0 means 100).
	Accuracy float64
	// CritRate is the base critical chance in percent.
	CritRate float64

	// AbilityWeights selects which attacker abilities feed the damage.
	AbilityWeights AbilityVector

	// ConsecutiveIndex is the 0-based hit number inside a consecutive
	// sequence; ConsecutiveCount is the sequence length (1 = single hit).
	ConsecutiveIndex int
	ConsecutiveCount int

	AddPassives    []string
	RemovePassives []string
	AddLayers      []string
	RemoveLayers   []string

	// PassThroughPassive is handed to one of the defender's squadmates.
	PassThroughPassive string
}

// IsConsecutive reports whether the hit belongs to a multi-hit sequence.
func (s *Skill) IsConsecutive() bool {
	return s.ConsecutiveCount > 1
}

// HitAccuracy returns the skill accuracy with the zero value meaning 100%.
func (s *Skill) HitAccuracy() float64 {
	if s.Accuracy <= 0 {
		return 100
	}
	return s.Accuracy
}
