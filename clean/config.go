package clean

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TuftsBCB/pdbclean/pdb"
	"github.com/TuftsBCB/pdbclean/vocab"
)

// Config selects which transforms are applied to a file. It is passed by
// value and a Session keeps its own copy, so changing a Config after
// creating a Session has no effect on it.
type Config struct {
	ReplaceResiduesAtoms bool `yaml:"replace_residues_atoms"`
	RemoveHetatm         bool `yaml:"remove_hetatm"`
	RemoveWaters         bool `yaml:"remove_waters"`
	RemoveAlternates     bool `yaml:"remove_alternates"`
	NormalizeOccupancy   bool `yaml:"normalize_occupancy"`
	CheckUnrecognized    bool `yaml:"check_unrecognized"`

	// Extra renames, layered on top of pdb.DefaultRenames.
	Renames pdb.Renames `yaml:"renames"`

	Vocabulary VocabConfig `yaml:"vocabulary"`
}

// VocabConfig says where residue codes come from. Codes from every source
// given are merged into vocab.Standard().
type VocabConfig struct {
	// A Rosetta database directory and residue type set. (See
	// vocab.LoadDatabase.) Database may be empty.
	Database string `yaml:"database"`
	TypeSet  string `yaml:"type_set"`

	// Extra codes. Enabled codes are also recognized.
	Recognized []string `yaml:"recognized"`
	Enabled    []string `yaml:"enabled"`
}

// DefaultConfig returns the configuration used when nothing is specified:
// residues/atoms are renamed, waters are removed, occupancies are set to 1
// and residues are checked. HETATM residues and alternate locations are
// left alone.
func DefaultConfig() Config {
	return Config{
		ReplaceResiduesAtoms: true,
		RemoveHetatm:         false,
		RemoveWaters:         true,
		RemoveAlternates:     false,
		NormalizeOccupancy:   true,
		CheckUnrecognized:    true,
		Vocabulary: VocabConfig{
			TypeSet: vocab.DefaultTypeSet,
		},
	}
}

// LoadConfig reads a YAML config file. Settings missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("Could not read config '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return Config{}, fmt.Errorf("Could not parse config '%s': %w", path, err)
	}
	return conf, conf.Validate()
}

// Validate checks that rename targets aren't empty.
func (c Config) Validate() error {
	for from, to := range c.Renames.Residues {
		if len(to) == 0 {
			return fmt.Errorf("renames.residues: '%s' has no replacement", from)
		}
	}
	for from, to := range c.Renames.Atoms {
		if len(to) == 0 {
			return fmt.Errorf("renames.atoms: '%s' has no replacement", from)
		}
	}
	for res, atoms := range c.Renames.ResidueAtoms {
		for from, to := range atoms {
			if len(to) == 0 {
				return fmt.Errorf("renames.residue_atoms.%s: '%s' has no "+
					"replacement", res, from)
			}
		}
	}
	return nil
}

// Vocab builds the residue vocabulary described by c.Vocabulary.
func (c Config) Vocab() (*vocab.Table, error) {
	t := vocab.Standard()
	if len(c.Vocabulary.Database) > 0 {
		db, err := vocab.LoadDatabase(c.Vocabulary.Database,
			c.Vocabulary.TypeSet)
		if err != nil {
			return nil, err
		}
		t.Merge(db)
	}
	for _, code := range c.Vocabulary.Recognized {
		t.Add(code, false)
	}
	for _, code := range c.Vocabulary.Enabled {
		t.Add(code, true)
	}
	return t, nil
}
