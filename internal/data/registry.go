package data

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/battlecore/internal/game/modifier"
	"github.com/udisondev/battlecore/internal/model"
)

//go:embed tables/*.yaml
var tablesFS embed.FS

// passiveDef is one row of passives.yaml.
type passiveDef struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Bad           bool          `yaml:"bad"`
	Immunity      bool          `yaml:"immunity"`
	FlatReduction float64       `yaml:"flat_reduction"`
	Modifiers     []modifierDef `yaml:"modifiers"`
	Turns         int           `yaml:"turns"`
}

// modifierDef is one stat correction a passive applies while active.
type modifierDef struct {
	Stat  modifier.Stat `yaml:"stat"`
	Type  modifier.Type `yaml:"type"`
	Value float64       `yaml:"value"`
}

// layerDef is one row of layers.yaml.
type layerDef struct {
	ID              string                             `yaml:"id"`
	MaxHP           float64                            `yaml:"max_hp"`
	Resist          map[model.PhysicalProperty]float64 `yaml:"resist"`
	MentalPassRatio float64                            `yaml:"mental_pass_ratio"`
	Mode            model.ResistMode                   `yaml:"mode"`
}

// Registry holds the static tables consulted by the pipeline: temperament
// profiles, passive templates and vital-layer templates. It implements the
// passive and vital-layer lookup capabilities.
//
// Registry is immutable after Load and safe for concurrent reads.
type Registry struct {
	profiles map[model.Temperament]*TemperamentProfile
	passives map[string]passiveDef
	layers   map[string]layerDef
}

// Load reads the embedded tables.
func Load() (*Registry, error) {
	return LoadFS(tablesFS, "tables")
}

// LoadFS reads temperaments.yaml, passives.yaml and layers.yaml from dir.
func LoadFS(fsys fs.FS, dir string) (*Registry, error) {
	r := &Registry{
		profiles: make(map[model.Temperament]*TemperamentProfile, model.TemperamentCount),
		passives: make(map[string]passiveDef),
		layers:   make(map[string]layerDef),
	}

	var profiles struct {
		Profiles []*TemperamentProfile `yaml:"profiles"`
	}
	if err := decodeFile(fsys, dir+"/temperaments.yaml", &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles.Profiles {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("temperaments.yaml: %w", err)
		}
		if _, dup := r.profiles[p.Temperament]; dup {
			return nil, fmt.Errorf("temperaments.yaml: duplicate temperament %s", p.Temperament)
		}
		r.profiles[p.Temperament] = p
	}

	var passives struct {
		Passives []passiveDef `yaml:"passives"`
	}
	if err := decodeFile(fsys, dir+"/passives.yaml", &passives); err != nil {
		return nil, err
	}
	for _, p := range passives.Passives {
		if p.ID == "" {
			return nil, fmt.Errorf("passives.yaml: passive missing id")
		}
		if _, dup := r.passives[p.ID]; dup {
			return nil, fmt.Errorf("passives.yaml: duplicate passive %q", p.ID)
		}
		for _, m := range p.Modifiers {
			if m.Type == modifier.Mul && m.Value <= 0 {
				return nil, fmt.Errorf("passives.yaml: passive %q has a non-positive %s multiplier", p.ID, m.Stat)
			}
		}
		r.passives[p.ID] = p
	}

	var layers struct {
		Layers []layerDef `yaml:"layers"`
	}
	if err := decodeFile(fsys, dir+"/layers.yaml", &layers); err != nil {
		return nil, err
	}
	for _, l := range layers.Layers {
		if l.ID == "" || l.MaxHP <= 0 {
			return nil, fmt.Errorf("layers.yaml: layer %q needs an id and positive max_hp", l.ID)
		}
		if _, dup := r.layers[l.ID]; dup {
			return nil, fmt.Errorf("layers.yaml: duplicate layer %q", l.ID)
		}
		r.layers[l.ID] = l
	}

	slog.Debug("data tables loaded",
		"profiles", len(r.profiles),
		"passives", len(r.passives),
		"layers", len(r.layers))
	return r, nil
}

func decodeFile(fsys fs.FS, path string, out any) error {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Profile returns the profile for t. A missing row logs a warning and
// yields NeutralProfile.
func (r *Registry) Profile(t model.Temperament) *TemperamentProfile {
	if r != nil {
		if p, ok := r.profiles[t]; ok {
			return p
		}
	}
	slog.Warn("temperament profile missing, using neutral profile", "temperament", t)
	return NeutralProfile(t)
}

// Passive returns a fresh passive instance for id.
func (r *Registry) Passive(id string) (*model.Passive, bool) {
	def, ok := r.passives[id]
	if !ok {
		return nil, false
	}
	p := &model.Passive{
		ID:            def.ID,
		Name:          def.Name,
		IsBad:         def.Bad,
		Immunity:      def.Immunity,
		FlatReduction: def.FlatReduction,
		Turns:         def.Turns,
	}
	for _, m := range def.Modifiers {
		p.Modifiers = append(p.Modifiers, modifier.Modifier{Stat: m.Stat, Type: m.Type, Value: m.Value})
	}
	return p, true
}

// IsBad reports whether id names a debuff.
func (r *Registry) IsBad(id string) bool {
	def, ok := r.passives[id]
	return ok && def.Bad
}

// IsGood reports whether id names a known, non-debuff passive.
func (r *Registry) IsGood(id string) bool {
	def, ok := r.passives[id]
	return ok && !def.Bad
}

// Layer returns a fresh full-HP barrier layer for id.
func (r *Registry) Layer(id string) (*model.BarrierLayer, bool) {
	def, ok := r.layers[id]
	if !ok {
		return nil, false
	}
	l := &model.BarrierLayer{
		ID:              def.ID,
		HP:              def.MaxHP,
		MaxHP:           def.MaxHP,
		MentalPassRatio: def.MentalPassRatio,
		Mode:            def.Mode,
	}
	if len(def.Resist) > 0 {
		l.Resist = make(map[model.PhysicalProperty]float64, len(def.Resist))
		for k, v := range def.Resist {
			l.Resist[k] = v
		}
	}
	return l, true
}
