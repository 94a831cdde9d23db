package pdb

import (
	"fmt"
	"path"
	"strings"

	"github.com/TuftsBCB/seq"
	"github.com/TuftsBCB/structure"
)

// Entry represents the coordinate records of a single PDB file.
type Entry struct {
	Path   string
	IdCode string

	// Verbatim records found before the first and after the last
	// ATOM/HETATM record.
	Header []string
	Footer []string

	// All residues in file order. Residues from every model and chain are
	// kept in this single slice.
	Residues []*Residue
}

// Residue is a group of consecutive ATOM/HETATM records sharing a model,
// chain, residue sequence number, insertion code and residue name.
type Residue struct {
	Model         int
	Chain         byte
	Name          string
	SequenceNum   int
	InsertionCode byte

	// Het is true when the residue was read from HETATM records.
	Het   bool
	Atoms []Atom
}

// Atom corresponds to the per-atom columns of an ATOM or HETATM record.
type Atom struct {
	Serial     int
	Name       string
	AltLoc     byte
	Occupancy  float64
	TempFactor float64
	Element    string
	Charge     string
	structure.Coords
}

// Name returns the base name of the path of this PDB entry.
func (e *Entry) Name() string {
	return path.Base(e.Path)
}

// Codes returns the three letter code of every residue, in order.
func (e *Entry) Codes() []string {
	codes := make([]string, len(e.Residues))
	for i, r := range e.Residues {
		codes[i] = r.Name
	}
	return codes
}

// Chains returns the distinct chain identifiers in the order they first
// appear.
func (e *Entry) Chains() []byte {
	var idents []byte
	seen := make(map[byte]bool, 4)
	for _, r := range e.Residues {
		if !seen[r.Chain] {
			seen[r.Chain] = true
			idents = append(idents, r.Chain)
		}
	}
	return idents
}

// Sequence returns the one letter amino acid sequence of the given chain
// in the first model. Residues that aren't amino acids are skipped.
func (e *Entry) Sequence(chain byte) []seq.Residue {
	rs := make([]seq.Residue, 0, 50)
	model := e.firstModel()
	for _, r := range e.Residues {
		if r.Model != model || r.Chain != chain || !IsAmino(r.Name) {
			continue
		}
		rs = append(rs, getAmino(r.Name))
	}
	return rs
}

// Sequences returns the amino acid sequence of every chain in the first
// model, named "<id>_<chain>". Chains without amino acids are included with
// no residues.
func (e *Entry) Sequences() []seq.Sequence {
	id := e.IdCode
	if len(id) == 0 {
		id = strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
	}
	chains := e.Chains()
	seqs := make([]seq.Sequence, len(chains))
	for i, chain := range chains {
		seqs[i] = seq.Sequence{
			Name:     fmt.Sprintf("%s_%c", id, blank(chain)),
			Residues: e.Sequence(chain),
		}
	}
	return seqs
}

// CaAtoms returns the alpha-carbon coordinates of every residue read from
// ATOM records in the first model. Only the first CA of each residue is
// used.
func (e *Entry) CaAtoms() []structure.Coords {
	cas := make([]structure.Coords, 0, len(e.Residues))
	model := e.firstModel()
	for _, r := range e.Residues {
		if r.Model != model || r.Het {
			continue
		}
		if ca := r.Ca(); ca != nil {
			cas = append(cas, ca.Coords)
		}
	}
	return cas
}

func (e *Entry) firstModel() int {
	if len(e.Residues) == 0 {
		return 0
	}
	return e.Residues[0].Model
}

// Ca returns the alpha-carbon atom in this residue.
// If one does not exist, nil is returned.
func (r *Residue) Ca() *Atom {
	for i := range r.Atoms {
		if r.Atoms[i].Name == "CA" {
			return &r.Atoms[i]
		}
	}
	return nil
}

// IsWater returns true if this residue is a water molecule.
func (r *Residue) IsWater() bool {
	return IsWater(r.Name)
}

// String returns a short identifier like "ALA A 12B".
func (r *Residue) String() string {
	s := fmt.Sprintf("%s %c %d", r.Name, blank(r.Chain), r.SequenceNum)
	if r.InsertionCode != ' ' && r.InsertionCode != 0 {
		s += string(r.InsertionCode)
	}
	return strings.TrimSpace(s)
}

func blank(c byte) byte {
	if c == 0 {
		return ' '
	}
	return c
}
