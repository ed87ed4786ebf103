package model

import "fmt"

// Kind is the species class of a combatant.
type Kind int8

const (
	KindLife Kind = iota
	KindMachine
	KindSpirit
)

var kindNames = []string{"life", "machine", "spirit"}

func (k Kind) String() string { return enumName(kindNames, int(k), "kind") }

// UnmarshalText parses a data-table value.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := parseEnum(kindNames, string(b), "kind")
	*k = Kind(v)
	return err
}

// Temperament is a combatant's core personality. Most tables are keyed by it.
type Temperament int8

const (
	TemperamentStoic Temperament = iota
	TemperamentCheerful
	TemperamentTimid
	TemperamentCruel
	TemperamentCurious
	TemperamentProud
	TemperamentGentle
	TemperamentReckless
	TemperamentCunning
	TemperamentDevout

	TemperamentCount
)

var temperamentNames = []string{
	"stoic", "cheerful", "timid", "cruel", "curious",
	"proud", "gentle", "reckless", "cunning", "devout",
}

func (t Temperament) String() string { return enumName(temperamentNames, int(t), "temperament") }

// UnmarshalText parses a data-table value.
func (t *Temperament) UnmarshalText(b []byte) error {
	v, err := parseEnum(temperamentNames, string(b), "temperament")
	*t = Temperament(v)
	return err
}

// Condition is the current emotional condition.
type Condition int8

const (
	ConditionNormal Condition = iota
	ConditionAngry
	ConditionCalm
	ConditionFear
	ConditionJoy
	ConditionFrenzy
)

var conditionNames = []string{"normal", "angry", "calm", "fear", "joy", "frenzy"}

func (c Condition) String() string { return enumName(conditionNames, int(c), "condition") }

// UnmarshalText parses a data-table value.
func (c *Condition) UnmarshalText(b []byte) error {
	v, err := parseEnum(conditionNames, string(b), "condition")
	*c = Condition(v)
	return err
}

// PowerLevel is a coarse strength tier.
type PowerLevel int8

const (
	PowerLowest PowerLevel = iota
	PowerLow
	PowerMedium
	PowerHigh
)

var powerNames = []string{"lowest", "low", "medium", "high"}

func (p PowerLevel) String() string { return enumName(powerNames, int(p), "power") }

// UnmarshalText parses a data-table value.
func (p *PowerLevel) UnmarshalText(b []byte) error {
	v, err := parseEnum(powerNames, string(b), "power")
	*p = PowerLevel(v)
	return err
}

// Impression is the spiritual/elemental tag of a skill or combatant.
type Impression string

const (
	ImpressionNone   Impression = ""
	ImpressionFlame  Impression = "flame"
	ImpressionFrost  Impression = "frost"
	ImpressionStorm  Impression = "storm"
	ImpressionLight  Impression = "light"
	ImpressionShadow Impression = "shadow"
	ImpressionBeast  Impression = "beast"
	ImpressionSteel  Impression = "steel"
	ImpressionMind   Impression = "mind"
)

// AimStyle is the attack style a defender can posture against.
type AimStyle int8

const (
	AimNone AimStyle = iota
	AimMelee
	AimRanged
	AimAerial
)

var aimNames = []string{"none", "melee", "ranged", "aerial"}

func (a AimStyle) String() string { return enumName(aimNames, int(a), "aim") }

// ParseAimStyle resolves an aim style name.
func ParseAimStyle(s string) (AimStyle, error) {
	v, err := parseEnum(aimNames, s, "aim")
	return AimStyle(v), err
}

// UnmarshalText parses a data-table value.
func (a *AimStyle) UnmarshalText(b []byte) error {
	v, err := ParseAimStyle(string(b))
	*a = v
	return err
}

// PhysicalProperty is the physical nature of an attack.
type PhysicalProperty int8

const (
	PropertyNone PhysicalProperty = iota
	PropertyHeavy
	PropertyVolten
	PropertyPierce
	PropertySlash

	PropertyCount
)

var propertyNames = []string{"none", "heavy", "volten", "pierce", "slash"}

func (p PhysicalProperty) String() string { return enumName(propertyNames, int(p), "property") }

// UnmarshalText parses a data-table value.
func (p *PhysicalProperty) UnmarshalText(b []byte) error {
	v, err := parseEnum(propertyNames, string(b), "property")
	*p = PhysicalProperty(v)
	return err
}

// ResistMode decides what a broken barrier layer passes on.
type ResistMode int8

const (
	ResistA        ResistMode = iota // overkill passes raw, nothing restored
	ResistB                          // overkill restored to pre-resistance magnitude
	ResistCCurrent                   // original damage minus current layer HP
	ResistCMax                       // original damage minus max layer HP
)

var resistNames = []string{"a", "b", "c_current", "c_max"}

func (m ResistMode) String() string { return enumName(resistNames, int(m), "resist") }

// UnmarshalText parses a data-table value.
func (m *ResistMode) UnmarshalText(b []byte) error {
	v, err := parseEnum(resistNames, string(b), "resist mode")
	*m = ResistMode(v)
	return err
}

func enumName(names []string, i int, what string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("%s(%d)", what, i)
	}
	return names[i]
}

func parseEnum(names []string, s, what string) (int, error) {
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}
