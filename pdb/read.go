package pdb

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// Records that are dropped when reading. They're either regenerated by the
// writer or refer to atom serial numbers, which the writer renumbers.
var droppedRecords = map[string]bool{
	"TER": true, "MODEL": true, "ENDMDL": true, "END": true,
	"ANISOU": true, "SIGATM": true, "SIGUIJ": true,
	"CONECT": true, "MASTER": true,
}

type pdbParser struct {
	entry    *Entry
	lineNum  int
	line     []byte
	curModel int
	seenAtom bool
	last     *Residue
}

// ReadPDB reads a PDB file from disk. If the file name ends with ".gz",
// gzip decompression will be used.
func ReadPDB(fp string) (*Entry, error) {
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
	return Read(reader, fp)
}

// Read reads the PDB formatted data in r. The path given is only used to
// label the entry (and to guess its ID code).
//
// Residues are kept in the order they are read. A new residue begins whenever
// the model, chain, residue sequence number, insertion code or residue name
// changes between two consecutive ATOM/HETATM records.
func Read(r io.Reader, fp string) (*Entry, error) {
	entry := &Entry{
		Path:     fp,
		Residues: make([]*Residue, 0, 100),
	}
	parser := pdbParser{entry: entry, curModel: 1}

	buf := bufio.NewReader(r)
	for {
		line, err := buf.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) > 0 {
			parser.lineNum++
			parser.line = bytes.TrimRight(line, "\r\n")
			if perr := parser.parseLine(); perr != nil {
				return nil, fmt.Errorf("Error on line %d of '%s': %s",
					parser.lineNum, fp, perr)
			}
		}
		if err == io.EOF {
			break
		}
	}

	if len(entry.Residues) == 0 {
		return nil, fmt.Errorf("The file '%s' does not appear to be a valid "+
			"PDB file.", fp)
	}
	if len(entry.IdCode) == 0 {
		entry.IdCode = guessIdCode(fp)
	}
	return entry, nil
}

func (p *pdbParser) parseLine() error {
	record := p.cols(1, 6)
	switch record {
	case "ATOM", "HETATM":
		p.seenAtom = true
		return p.parseAtom(record == "HETATM")
	case "MODEL":
		num, err := p.atoi(11, 14)
		if err != nil {
			// Some programs don't right justify the model number.
			if num, err = strconv.Atoi(strings.TrimSpace(p.cols(7, 80))); err != nil {
				return fmt.Errorf("Invalid MODEL record: %s", err)
			}
		}
		p.curModel = num
		return nil
	case "HEADER":
		p.entry.IdCode = p.cols(63, 66)
	}
	if droppedRecords[record] {
		return nil
	}
	if p.seenAtom {
		p.entry.Footer = append(p.entry.Footer, string(p.line))
	} else {
		p.entry.Header = append(p.entry.Header, string(p.line))
	}
	return nil
}

func (p *pdbParser) parseAtom(het bool) error {
	var err error

	chain := p.at(22)
	name := p.cols(18, 21)
	icode := p.at(27)
	if icode == 0 {
		icode = ' '
	}
	seqNum, err := p.atoi(23, 26)
	if err != nil {
		return fmt.Errorf("Invalid residue sequence number: %s", err)
	}

	atom := Atom{
		Name:    p.cols(13, 16),
		AltLoc:  p.at(17),
		Element: p.cols(77, 78),
		Charge:  p.cols(79, 80),
	}
	if atom.AltLoc == 0 {
		atom.AltLoc = ' '
	}
	if s := p.cols(7, 11); len(s) > 0 {
		// Serials may overflow into hybrid-36 in large files. They're
		// renumbered on output, so an unparseable one is harmless.
		atom.Serial, _ = strconv.Atoi(s)
	}
	if atom.X, err = p.atof(31, 38); err != nil {
		return fmt.Errorf("Invalid x coordinate: %s", err)
	}
	if atom.Y, err = p.atof(39, 46); err != nil {
		return fmt.Errorf("Invalid y coordinate: %s", err)
	}
	if atom.Z, err = p.atof(47, 54); err != nil {
		return fmt.Errorf("Invalid z coordinate: %s", err)
	}
	if atom.Occupancy, err = p.optf(55, 60, 1.0); err != nil {
		return fmt.Errorf("Invalid occupancy: %s", err)
	}
	if atom.TempFactor, err = p.optf(61, 66, 0.0); err != nil {
		return fmt.Errorf("Invalid temperature factor: %s", err)
	}

	res := p.getResidue(chain, name, seqNum, icode, het)
	res.Atoms = append(res.Atoms, atom)
	return nil
}

func (p *pdbParser) getResidue(
	chain byte, name string, seqNum int, icode byte, het bool) *Residue {

	if l := p.last; l != nil && l.Model == p.curModel && l.Chain == chain &&
		l.Name == name && l.SequenceNum == seqNum && l.InsertionCode == icode {
		return l
	}
	res := &Residue{
		Model:         p.curModel,
		Chain:         chain,
		Name:          name,
		SequenceNum:   seqNum,
		InsertionCode: icode,
		Het:           het,
		Atoms:         make([]Atom, 0, 8),
	}
	p.entry.Residues = append(p.entry.Residues, res)
	p.last = res
	return res
}

func (p *pdbParser) atoi(start, end int) (int, error) {
	return strconv.Atoi(p.cols(start, end))
}

func (p *pdbParser) atof(start, end int) (float64, error) {
	return strconv.ParseFloat(p.cols(start, end), 64)
}

// optf is like atof, except an empty field yields def.
func (p *pdbParser) optf(start, end int, def float64) (float64, error) {
	s := p.cols(start, end)
	if len(s) == 0 {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

// cols returns the trimmed contents of the 1-indexed, inclusive column range.
func (p *pdbParser) cols(start, end int) string {
	rs, re := start-1, end
	if rs >= len(p.line) || rs < 0 {
		return ""
	}
	if re > len(p.line) {
		re = len(p.line)
	}
	if re < rs {
		return ""
	}
	return string(bytes.TrimSpace(p.line[rs:re]))
}

// at returns the byte at the 1-indexed column, or 0 if the line is too short.
func (p *pdbParser) at(column int) byte {
	i := column - 1
	if i < 0 || i >= len(p.line) {
		return 0
	}
	return p.line[i]
}

// guessIdCode inspects the base name of a file path for a PDB identifier.
func guessIdCode(fp string) string {
	name := path.Base(fp)
	switch {
	case len(name) >= 7 && name[0:3] == "pdb":
		return name[3:7]
	case len(name) == 7: // cath
		return name[0:4]
	}
	return ""
}
