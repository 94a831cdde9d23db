package clean

import (
	"github.com/TuftsBCB/pdbclean/pdb"
)

// Set is a set of three letter residue codes.
type Set map[string]bool

// NewSet creates a set from a list of codes.
func NewSet(codes []string) Set {
	s := make(Set, len(codes))
	for _, code := range codes {
		s[code] = true
	}
	return s
}

// Classify checks the code of every residue in e against recognized and
// defaultEnabled. Codes are compared exactly (case sensitive).
//
// A code missing from recognized is appended to unrecognized, and a code
// missing from defaultEnabled is appended to offByDefault. The two checks
// are independent, so a code may end up in both. Codes are appended once
// per residue, in residue order; duplicates are not removed.
func Classify(e *pdb.Entry, recognized, defaultEnabled Set) (
	unrecognized, offByDefault []string) {

	for _, r := range e.Residues {
		if !recognized[r.Name] {
			unrecognized = append(unrecognized, r.Name)
		}
		if !defaultEnabled[r.Name] {
			offByDefault = append(offByDefault, r.Name)
		}
	}
	return unrecognized, offByDefault
}
