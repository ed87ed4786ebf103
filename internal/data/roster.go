package data

import (
	"fmt"
	"io/fs"

	"github.com/udisondev/battlecore/internal/model"
)

type statsDef struct {
	ATK       float64 `yaml:"atk"`
	DEF       float64 `yaml:"def"`
	EYE       float64 `yaml:"eye"`
	AGI       float64 `yaml:"agi"`
	Spiritual float64 `yaml:"spiritual"`
	Keren     float64 `yaml:"keren"`
	Overkill  float64 `yaml:"overkill_cap"`
}

type combatantDef struct {
	ID             string                             `yaml:"id"`
	Name           string                             `yaml:"name"`
	Kind           model.Kind                         `yaml:"kind"`
	Temperament    model.Temperament                  `yaml:"temperament"`
	Condition      model.Condition                    `yaml:"condition"`
	Power          model.PowerLevel                   `yaml:"power"`
	Impression     model.Impression                   `yaml:"impression"`
	MaxHP          float64                            `yaml:"max_hp"`
	MaxMentalHP    float64                            `yaml:"max_mental_hp"`
	HPFloor        float64                            `yaml:"hp_floor"`
	Vanguard       bool                               `yaml:"vanguard"`
	Stats          statsDef                           `yaml:"stats"`
	Abilities      map[model.Ability]float64          `yaml:"abilities"`
	PhysicalResist map[model.PhysicalProperty]float64 `yaml:"physical_resist"`
	Layers         []string                           `yaml:"layers"`
	Passives       []string                           `yaml:"passives"`
	Skills         []string                           `yaml:"skills"`
}

type skillDef struct {
	ID            string                    `yaml:"id"`
	Name          string                    `yaml:"name"`
	Impression    model.Impression          `yaml:"impression"`
	Magic         bool                      `yaml:"magic"`
	Blade         bool                      `yaml:"blade"`
	Explosion     bool                      `yaml:"explosion"`
	CannotKill    bool                      `yaml:"cannot_kill"`
	TLOA          bool                      `yaml:"tloa"`
	Power         float64                   `yaml:"power"`
	MentalPower   float64                   `yaml:"mental_power"`
	DefenseIgnore float64                   `yaml:"defense_ignore"`
	Aim           model.AimStyle            `yaml:"aim"`
	Property      model.PhysicalProperty    `yaml:"property"`
	Accuracy      float64                   `yaml:"accuracy"`
	CritRate      float64                   `yaml:"crit_rate"`
	Consecutive   int                       `yaml:"consecutive"`
	Weights       map[model.Ability]float64 `yaml:"weights"`
	AddPassives   []string                  `yaml:"add_passives"`
	RemovePassive []string                  `yaml:"remove_passives"`
	AddLayers     []string                  `yaml:"add_layers"`
	RemoveLayers  []string                  `yaml:"remove_layers"`
	PassThrough   string                    `yaml:"pass_through"`
}

// Squad is a named group of roster combatants that fights together.
type Squad struct {
	ID      string   `yaml:"id"`
	Members []string `yaml:"members"`
}

// Roster is a set of sample combatants, skills and squads used by the
// simulator.
type Roster struct {
	combatants []combatantDef
	skills     map[string]skillDef
	squads     []Squad
}

// LoadRoster reads the embedded roster.yaml.
func LoadRoster() (*Roster, error) {
	return LoadRosterFS(tablesFS, "tables/roster.yaml")
}

// LoadRosterFS reads a roster file from fsys.
func LoadRosterFS(fsys fs.FS, path string) (*Roster, error) {
	var raw struct {
		Combatants []combatantDef `yaml:"combatants"`
		Skills     []skillDef     `yaml:"skills"`
		Squads     []Squad        `yaml:"squads"`
	}
	if err := decodeFile(fsys, path, &raw); err != nil {
		return nil, err
	}
	r := &Roster{
		combatants: raw.Combatants,
		skills:     make(map[string]skillDef, len(raw.Skills)),
		squads:     raw.Squads,
	}
	for _, s := range raw.Skills {
		if s.ID == "" {
			return nil, fmt.Errorf("%s: skill missing id", path)
		}
		r.skills[s.ID] = s
	}
	for _, c := range raw.Combatants {
		if c.MaxHP <= 0 {
			return nil, fmt.Errorf("%s: combatant %q needs positive max_hp", path, c.ID)
		}
		for _, id := range c.Skills {
			if _, ok := r.skills[id]; !ok {
				return nil, fmt.Errorf("%s: combatant %q references unknown skill %q", path, c.ID, id)
			}
		}
	}
	members := make(map[string]string)
	for _, sq := range raw.Squads {
		if sq.ID == "" || len(sq.Members) == 0 {
			return nil, fmt.Errorf("%s: squad %q needs an id and members", path, sq.ID)
		}
		for _, id := range sq.Members {
			if !r.has(id) {
				return nil, fmt.Errorf("%s: squad %q references unknown combatant %q", path, sq.ID, id)
			}
			if other, dup := members[id]; dup {
				return nil, fmt.Errorf("%s: combatant %q is in squads %q and %q", path, id, other, sq.ID)
			}
			members[id] = sq.ID
		}
	}
	return r, nil
}

func (r *Roster) has(id string) bool {
	for _, c := range r.combatants {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Squads returns the squads in file order. Every combatant belongs to at
// most one squad.
func (r *Roster) Squads() []Squad {
	return r.squads
}

// IDs returns the combatant IDs in file order.
func (r *Roster) IDs() []string {
	ids := make([]string, 0, len(r.combatants))
	for _, c := range r.combatants {
		ids = append(ids, c.ID)
	}
	return ids
}

// Combatant builds a fresh combatant and its skills. Layers and passives
// are resolved through reg; unknown IDs are skipped with a warning by the
// caller's registry.
func (r *Roster) Combatant(id string, reg *Registry) (*model.Combatant, []*model.Skill, error) {
	for _, def := range r.combatants {
		if def.ID != id {
			continue
		}
		c := model.NewCombatant(def.ID, def.Name, def.MaxHP, def.MaxMentalHP)
		c.Kind = def.Kind
		c.Temperament = def.Temperament
		c.Condition = def.Condition
		c.Power = def.Power
		c.Impression = def.Impression
		c.HPFloor = def.HPFloor
		c.Vanguard = def.Vanguard
		c.Stats = model.Stats{
			ATK:                def.Stats.ATK,
			DEF:                def.Stats.DEF,
			EYE:                def.Stats.EYE,
			AGI:                def.Stats.AGI,
			SpiritualPotential: def.Stats.Spiritual,
			KerenRate:          def.Stats.Keren,
			OverkillCap:        def.Stats.Overkill,
		}
		for k, v := range def.Abilities {
			c.Abilities[k] = v
		}
		c.PhysicalResist = def.PhysicalResist
		for _, lid := range def.Layers {
			if l, ok := reg.Layer(lid); ok {
				c.Layers = append(c.Layers, l)
			}
		}
		for _, pid := range def.Passives {
			if p, ok := reg.Passive(pid); ok {
				c.AddPassive(p)
			}
		}

		skills := make([]*model.Skill, 0, len(def.Skills))
		for _, sid := range def.Skills {
			skills = append(skills, r.skill(sid))
		}
		return c, skills, nil
	}
	return nil, nil, fmt.Errorf("unknown combatant %q", id)
}

func (r *Roster) skill(id string) *model.Skill {
	def := r.skills[id]
	s := &model.Skill{
		ID:                 def.ID,
		Name:               def.Name,
		Impression:         def.Impression,
		IsMagic:            def.Magic,
		IsBlade:            def.Blade,
		IsExplosion:        def.Explosion,
		CannotKill:         def.CannotKill,
		TLOA:               def.TLOA,
		Power:              def.Power,
		MentalPower:        def.MentalPower,
		DefenseIgnoreRatio: def.DefenseIgnore,
		AimStyle:           def.Aim,
		Property:           def.Property,
		Accuracy:           def.Accuracy,
		CritRate:           def.CritRate,
		ConsecutiveCount:   def.Consecutive,
		AddPassives:        def.AddPassives,
		RemovePassives:     def.RemovePassive,
		AddLayers:          def.AddLayers,
		RemoveLayers:       def.RemoveLayers,
		PassThroughPassive: def.PassThrough,
	}
	for k, v := range def.Weights {
		s.AbilityWeights[k] = v
	}
	return s
}
