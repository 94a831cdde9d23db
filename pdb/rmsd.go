package pdb

import (
	"fmt"

	"github.com/TuftsBCB/structure"
)

// CaRMSD computes the RMSD between the alpha-carbon atoms of two entries
// (see Entry.CaAtoms). It is mostly useful for checking that an edited entry
// still has the same backbone as the entry it was derived from, in which
// case the RMSD should be 0.
//
// An error is returned if either entry has no alpha-carbons, or if the
// entries don't have the same number of alpha-carbons.
func CaRMSD(entry1, entry2 *Entry) (float64, error) {
	struct1, struct2 := entry1.CaAtoms(), entry2.CaAtoms()
	if len(struct1) == 0 {
		return 0.0, fmt.Errorf("'%s' has no carbon-alpha ATOM records.",
			entry1.Path)
	}
	if len(struct2) == 0 {
		return 0.0, fmt.Errorf("'%s' has no carbon-alpha ATOM records.",
			entry2.Path)
	}
	if len(struct1) != len(struct2) {
		return 0.0, fmt.Errorf("'%s' has %d carbon-alpha atoms but '%s' "+
			"has %d.", entry1.Path, len(struct1), entry2.Path, len(struct2))
	}
	return structure.RMSD(struct1, struct2), nil
}
