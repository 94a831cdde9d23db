package pdb

import "strings"

// Renames describes residue and atom names that should be replaced with
// names Rosetta understands.
//
// Atom renames in ResidueAtoms are keyed by the residue's name *after* any
// residue rename has been applied, and take precedence over Atoms.
type Renames struct {
	Residues     map[string]string            `yaml:"residues"`
	Atoms        map[string]string            `yaml:"atoms"`
	ResidueAtoms map[string]map[string]string `yaml:"residue_atoms"`
}

// DefaultRenames covers the CHARMM/AMBER protonation state names,
// selenomethionine and the usual terminal and phosphate atom names.
// Water is always renamed to WaterCode and is not listed here.
var DefaultRenames = Renames{
	Residues: map[string]string{
		"HSD": "HIS", "HSE": "HIS", "HSP": "HIS",
		"HID": "HIS", "HIE": "HIS", "HIP": "HIS",
		"CYX": "CYS", "CYM": "CYS",
		"LYN": "LYS", "ASH": "ASP", "GLH": "GLU",
		"MSE": "MET",
	},
	Atoms: map[string]string{
		"OT1": "O", "OT2": "OXT",
		"O1P": "OP1", "O2P": "OP2",
		"HN": "H",
	},
	ResidueAtoms: map[string]map[string]string{
		"ILE": {"CD": "CD1"},
		"MET": {"SE": "SD"},
	},
}

// Merge returns a new set of renames with the entries of other layered on
// top of rn. Neither rn nor other is modified.
func (rn Renames) Merge(other Renames) Renames {
	merged := Renames{
		Residues:     mergeNames(rn.Residues, other.Residues),
		Atoms:        mergeNames(rn.Atoms, other.Atoms),
		ResidueAtoms: make(map[string]map[string]string),
	}
	for res, atoms := range rn.ResidueAtoms {
		merged.ResidueAtoms[res] = mergeNames(atoms, nil)
	}
	for res, atoms := range other.ResidueAtoms {
		merged.ResidueAtoms[res] = mergeNames(merged.ResidueAtoms[res], atoms)
	}
	return merged
}

func mergeNames(a, b map[string]string) map[string]string {
	m := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		m[k] = v
	}
	for k, v := range b {
		m[k] = v
	}
	return m
}

// Rename replaces residue and atom names according to rn, and renames every
// water residue to WaterCode. A residue renamed to a canonical amino acid is
// turned into ATOM records. The number of residues that changed in any way
// is returned.
func (e *Entry) Rename(rn Renames) int {
	changed := 0
	for _, r := range e.Residues {
		touched := false
		switch {
		case IsWater(r.Name):
			if r.Name != WaterCode {
				r.Name = WaterCode
				touched = true
			}
		case len(rn.Residues[r.Name]) > 0:
			r.Name = rn.Residues[r.Name]
			touched = true
			if r.Het && IsAmino(r.Name) {
				r.Het = false
			}
		}

		specific := rn.ResidueAtoms[r.Name]
		for i := range r.Atoms {
			a := &r.Atoms[i]
			to, ok := specific[a.Name]
			if !ok {
				to, ok = rn.Atoms[a.Name]
			}
			if !ok || to == a.Name || len(to) == 0 {
				continue
			}
			a.Name = to
			if len(a.Element) > 0 && !strings.HasPrefix(to, a.Element) {
				a.Element = to[0:1]
			}
			touched = true
		}
		if touched {
			changed++
		}
	}
	return changed
}

// RemoveHetatm removes every residue read from HETATM records and returns
// the number of residues removed.
func (e *Entry) RemoveHetatm() int {
	return e.filter(func(r *Residue) bool { return !r.Het })
}

// RemoveWaters removes every water residue and returns the number of
// residues removed.
func (e *Entry) RemoveWaters() int {
	return e.filter(func(r *Residue) bool { return !r.IsWater() })
}

// RemoveAlternates collapses alternate locations and renumbers chains with
// insertions.
//
// Alternates are resolved per position (model, chain, sequence number and
// insertion code). The first alternate location indicator seen at a
// position is kept. Files with microheterogeneity may interleave the atoms
// of two residue types at one position, which the reader splits into
// several residues. A later residue at an earlier position that consists
// only of alternate atoms is merged into the first residue at that
// position: atoms with the kept indicator are appended to it, and the rest
// are discarded. All alternate location indicators are then blanked.
//
// Finally, every chain containing an insertion code is renumbered
// sequentially from 1, in file order, and its insertion codes are cleared.
//
// The number of residues removed (merged or dropped) and the number of
// chains renumbered are returned.
func (e *Entry) RemoveAlternates() (dropped, renumbered int) {
	type position struct {
		model  int
		chain  byte
		seqNum int
		icode  byte
	}
	posOf := func(r *Residue) position {
		return position{r.Model, r.Chain, r.SequenceNum, r.InsertionCode}
	}
	first := make(map[position]*Residue, len(e.Residues))
	kept := make(map[position]byte, 8)
	dropped = e.filter(func(r *Residue) bool {
		pos := posOf(r)
		head, ok := first[pos]
		if !ok {
			first[pos] = r
			if alt := r.firstAltLoc(); alt != 0 {
				kept[pos] = alt
			}
			return true
		}
		if !r.allAlternate() {
			return true
		}
		if _, ok := kept[pos]; !ok {
			kept[pos] = r.firstAltLoc()
		}
		for _, a := range r.Atoms {
			if a.AltLoc == kept[pos] {
				head.Atoms = append(head.Atoms, a)
			}
		}
		return false
	})

	for _, r := range e.Residues {
		r.collapseAlternates(kept[posOf(r)])
	}

	type chainKey struct {
		model int
		chain byte
	}
	inserted := make(map[chainKey]bool, 2)
	for _, r := range e.Residues {
		if r.InsertionCode != ' ' && r.InsertionCode != 0 {
			inserted[chainKey{r.Model, r.Chain}] = true
		}
	}
	next := make(map[chainKey]int, len(inserted))
	for _, r := range e.Residues {
		key := chainKey{r.Model, r.Chain}
		if !inserted[key] {
			continue
		}
		next[key]++
		r.SequenceNum = next[key]
		r.InsertionCode = ' '
	}
	return dropped, len(inserted)
}

// SetOccupancy sets the occupancy of every atom to v.
func (e *Entry) SetOccupancy(v float64) {
	for _, r := range e.Residues {
		for i := range r.Atoms {
			r.Atoms[i].Occupancy = v
		}
	}
}

// filter keeps only residues for which keep returns true, and returns the
// number of residues removed.
func (e *Entry) filter(keep func(r *Residue) bool) int {
	kept := e.Residues[:0]
	for _, r := range e.Residues {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	removed := len(e.Residues) - len(kept)
	for i := len(kept); i < len(e.Residues); i++ {
		e.Residues[i] = nil
	}
	e.Residues = kept
	return removed
}

func (r *Residue) allAlternate() bool {
	for _, a := range r.Atoms {
		if a.AltLoc == ' ' || a.AltLoc == 0 {
			return false
		}
	}
	return len(r.Atoms) > 0
}

// firstAltLoc returns the first alternate location indicator in r, or 0 if
// it has none.
func (r *Residue) firstAltLoc() byte {
	for _, a := range r.Atoms {
		if a.AltLoc != ' ' && a.AltLoc != 0 {
			return a.AltLoc
		}
	}
	return 0
}

// collapseAlternates keeps atoms without an indicator and atoms with the
// indicator keep. If keep is 0, the first indicator in r is kept.
func (r *Residue) collapseAlternates(keep byte) {
	atoms := r.Atoms[:0]
	for _, a := range r.Atoms {
		if a.AltLoc != ' ' && a.AltLoc != 0 {
			if keep == 0 {
				keep = a.AltLoc
			}
			if a.AltLoc != keep {
				continue
			}
		}
		a.AltLoc = ' '
		atoms = append(atoms, a)
	}
	r.Atoms = atoms
}
