package model

// DefenseStyleMemory tracks the aim style a defender postures against and
// its progress toward a new posture under repeated mismatched attacks.
type DefenseStyleMemory struct {
	Posture   AimStyle
	Toward    AimStyle
	Progress  int
	Threshold int
}

// ProgressRatio returns Progress/Threshold in [0, 1].
func (m DefenseStyleMemory) ProgressRatio() float64 {
	if m.Threshold <= 0 || m.Toward == AimNone {
		return 0
	}
	r := float64(m.Progress) / float64(m.Threshold)
	if r > 1 {
		return 1
	}
	return r
}
