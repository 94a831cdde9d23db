package pdb

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/cif"
)

// ReadPDBx reads a PDBx/mmCIF file from disk. If the file name ends with
// ".gz", gzip decompression will be used.
func ReadPDBx(fp string) (*Entry, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.EqualFold(path.Ext(fp), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return ReadCIF(reader, fp)
}

// ReadCIF reads a PDBx/mmCIF file with exactly one data block into an Entry.
// Only the atom_site category (and the entry ID) is used. Author supplied
// chain identifiers, residue names and sequence numbers are preferred over
// the label_* ones, since those are what a PDB formatted file would contain.
//
// No header or footer records are produced.
func ReadCIF(r io.Reader, fp string) (*Entry, error) {
	cf, err := cif.Read(r)
	if err != nil {
		return nil, err
	}
	if len(cf.Blocks) != 1 {
		return nil, fmt.Errorf("Expected one data block in '%s' but got %d.",
			fp, len(cf.Blocks))
	}
	for _, block := range cf.Blocks {
		e := &Entry{Path: fp}
		if err := e.readAtomSites(block); err != nil {
			return nil, fmt.Errorf("Could not read '%s': %s", fp, err)
		}
		if id, ok := block.Items["entry.id"]; ok {
			e.IdCode = id.String()
		} else {
			e.IdCode = guessIdCode(fp)
		}
		return e, nil
	}
	return nil, fmt.Errorf("The file '%s' has no data blocks.", fp)
}

func (e *Entry) readAtomSites(b *cif.DataBlock) error {
	loop := asLoop(b, "atom_site.group_pdb",
		"atom_site.auth_atom_id", "atom_site.label_atom_id",
		"atom_site.auth_comp_id", "atom_site.label_comp_id",
		"atom_site.auth_asym_id", "atom_site.label_asym_id",
		"atom_site.auth_seq_id", "atom_site.label_seq_id",
		"atom_site.label_alt_id", "atom_site.pdbx_pdb_ins_code",
		"atom_site.cartn_x", "atom_site.cartn_y", "atom_site.cartn_z",
		"atom_site.occupancy", "atom_site.b_iso_or_equiv",
		"atom_site.type_symbol", "atom_site.pdbx_pdb_model_num",
		"atom_site.id")
	groups := loop[0].Strings()
	atoms := orStrings(loop[1].Strings(), loop[2].Strings())
	comps := orStrings(loop[3].Strings(), loop[4].Strings())
	chains := orStrings(loop[5].Strings(), loop[6].Strings())
	seqNums := orInts(loop[7].Ints(), loop[8].Ints())
	alts, icodes := loop[9].Strings(), loop[10].Strings()
	xs, ys, zs := loop[11].Floats(), loop[12].Floats(), loop[13].Floats()
	occs, bs := loop[14].Floats(), loop[15].Floats()
	elements, models, serials := loop[16].Strings(), loop[17].Ints(), loop[18].Ints()
	if groups == nil || atoms == nil || comps == nil || chains == nil ||
		seqNums == nil || xs == nil || ys == nil || zs == nil {
		return fmt.Errorf("The given PDBx/mmCIF data has no ATOM/HETATM records.")
	}

	p := pdbParser{entry: e, curModel: 1}
	for i := range groups {
		if models != nil {
			p.curModel = models[i]
		}
		res := p.getResidue(firstByte(chains[i]), comps[i], seqNums[i],
			firstByte(index(icodes, i)), groups[i] == "HETATM")
		atom := Atom{
			Name:      atoms[i],
			AltLoc:    firstByte(index(alts, i)),
			Element:   nullable(index(elements, i)),
			Occupancy: 1.0,
		}
		atom.X, atom.Y, atom.Z = xs[i], ys[i], zs[i]
		if occs != nil {
			atom.Occupancy = occs[i]
		}
		if bs != nil {
			atom.TempFactor = bs[i]
		}
		if serials != nil {
			atom.Serial = serials[i]
		}
		res.Atoms = append(res.Atoms, atom)
	}
	if len(e.Residues) == 0 {
		return fmt.Errorf("The given PDBx/mmCIF data has no ATOM/HETATM records.")
	}
	return nil
}

// value returns the data value tagged by "key". If it does not exist, then
// an empty string is returned (wrapped in a cif.Value).
func value(b *cif.DataBlock, key string) cif.Value {
	if v, ok := b.Items[key]; ok {
		return v
	}
	return cif.AsValue("")
}

// asLoop retrieves the Loop containing the data tag "key". If a loop does
// not exist, then one is created with a single row with columns corresponding
// to "key" and each of the tags in "others". Tags that don't exist get an
// empty column.
//
// This abstracts over whether atom_site is a loop or not. (A file with a
// single atom declares atom_site.* as plain items.)
func asLoop(b *cif.DataBlock, key string, others ...string) []cif.ValueLoop {
	tags := append([]string{key}, others...)
	asColumns := func(loop *cif.Loop) []cif.ValueLoop {
		vloop := make([]cif.ValueLoop, len(tags))
		for i, tag := range tags {
			if _, ok := loop.Columns[tag]; ok {
				vloop[i] = loop.Get(tag)
			} else {
				vloop[i] = cif.AsValues([]string(nil))
			}
		}
		return vloop
	}

	if loop, ok := b.Loops[key]; ok {
		return asColumns(loop)
	}
	loop := &cif.Loop{
		Columns: make(map[string]int, len(tags)),
		Values:  make([]cif.ValueLoop, len(tags)),
	}
	for i, tag := range tags {
		loop.Columns[tag] = i
		if _, ok := b.Items[tag]; !ok {
			loop.Values[i] = cif.AsValues([]string(nil))
			continue
		}
		switch v := value(b, tag).Raw().(type) {
		case string:
			loop.Values[i] = cif.AsValues([]string{v})
		case int:
			loop.Values[i] = cif.AsValues([]int{v})
		case float64:
			loop.Values[i] = cif.AsValues([]float64{v})
		default:
			loop.Values[i] = cif.AsValues([]string{""})
		}
	}
	return asColumns(loop)
}

func orStrings(a, b []string) []string {
	if a != nil {
		return a
	}
	return b
}

func orInts(a, b []int) []int {
	if a != nil {
		return a
	}
	return b
}

func index(vals []string, i int) string {
	if vals == nil || i >= len(vals) {
		return ""
	}
	return vals[i]
}

// nullable maps the CIF "unknown" and "inapplicable" markers to "".
func nullable(s string) string {
	if s == "?" || s == "." {
		return ""
	}
	return s
}

func firstByte(s string) byte {
	s = nullable(s)
	if len(s) == 0 {
		return ' '
	}
	return s[0]
}
