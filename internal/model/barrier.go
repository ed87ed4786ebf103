package model

// BarrierLayer is one depletable absorption buffer in front of HP.
type BarrierLayer struct {
	ID    string
	HP    float64
	MaxHP float64

	// Resist maps a physical property to the damage ratio that reaches the
	// layer. Properties absent from the map use 1.0.
	Resist map[PhysicalProperty]float64

	// MentalPassRatio is the share of the layer HP that does not block
	// mental damage.
	MentalPassRatio float64
	Mode            ResistMode
}

// ResistFor returns the resistance ratio for p.
func (l *BarrierLayer) ResistFor(p PhysicalProperty) float64 {
	if r, ok := l.Resist[p]; ok {
		return r
	}
	return 1.0
}

// Clone returns a deep copy.
func (l *BarrierLayer) Clone() *BarrierLayer {
	c := *l
	if l.Resist != nil {
		c.Resist = make(map[PhysicalProperty]float64, len(l.Resist))
		for k, v := range l.Resist {
			c.Resist[k] = v
		}
	}
	return &c
}
