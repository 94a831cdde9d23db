package vocab

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/TuftsBCB/pdbclean/pdb"
)

// FixedCodes are always recognized and on by default, regardless of where
// the rest of a vocabulary comes from.
var FixedCodes = []string{"DA", "DT", "DG", "DC", "WAT", "TP3"}

// Provider supplies the two read-only lists of three letter codes a PDB
// file is classified against. DefaultEnabled is expected to be a subset of
// Recognized, but this is not required.
type Provider interface {
	Recognized() []string
	DefaultEnabled() []string
}

// Table is a Provider backed by two sets. The zero value is not usable; use
// NewTable.
type Table struct {
	recognized map[string]bool
	enabled    map[string]bool
}

// NewTable creates a table from the given codes. FixedCodes are added to
// both sets.
func NewTable(recognized, enabled []string) *Table {
	t := &Table{
		recognized: make(map[string]bool, len(recognized)+len(FixedCodes)),
		enabled:    make(map[string]bool, len(enabled)+len(FixedCodes)),
	}
	for _, code := range recognized {
		t.recognized[code] = true
	}
	for _, code := range enabled {
		t.enabled[code] = true
	}
	for _, code := range FixedCodes {
		t.recognized[code] = true
		t.enabled[code] = true
	}
	return t
}

// Standard returns a table with the canonical amino acids and FixedCodes,
// all of them on by default.
func Standard() *Table {
	aminos := pdb.AminoCodes()
	return NewTable(aminos, aminos)
}

// Add adds code to the recognized set, and also to the enabled set when
// enabled is true.
func (t *Table) Add(code string, enabled bool) {
	t.recognized[code] = true
	if enabled {
		t.enabled[code] = true
	}
}

// Merge adds every code of p to t.
func (t *Table) Merge(p Provider) {
	for _, code := range p.Recognized() {
		t.recognized[code] = true
	}
	for _, code := range p.DefaultEnabled() {
		t.enabled[code] = true
	}
}

// IsRecognized returns true if Rosetta can read residues named code.
func (t *Table) IsRecognized(code string) bool {
	return t.recognized[code]
}

// IsEnabled returns true if residues named code are read by default.
func (t *Table) IsEnabled(code string) bool {
	return t.enabled[code]
}

// Recognized returns every recognized code in sorted order.
func (t *Table) Recognized() []string {
	return sortedKeys(t.recognized)
}

// DefaultEnabled returns every enabled code in sorted order.
func (t *Table) DefaultEnabled() []string {
	return sortedKeys(t.enabled)
}

// Inconsistent returns the codes that are enabled but not recognized.
// A non-empty result means the vocabulary data disagrees with itself.
func (t *Table) Inconsistent() []string {
	var codes []string
	for code := range t.enabled {
		if !t.recognized[code] {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// ReadCodes reads a list of three letter codes, one per line. Blank lines
// and everything after a '#' are ignored. Only the first field of a line is
// used.
func ReadCodes(r io.Reader) ([]string, error) {
	var codes []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		codes = append(codes, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
