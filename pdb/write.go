package pdb

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// WritePDB writes the entry to the file at fp in PDB format. If the file
// name ends with ".gz", the output is gzip compressed.
//
// The file is created (or truncated) before writing begins, so a failure
// part way through may leave a partially written file behind.
func WritePDB(fp string, e *Entry) (err error) {
	f, err := os.Create(fp)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if strings.EqualFold(path.Ext(fp), ".gz") {
		gz := gzip.NewWriter(f)
		if err := Write(gz, e); err != nil {
			return err
		}
		return gz.Close()
	}
	return Write(f, e)
}

// Write writes the entry to w in PDB format.
//
// Header records are written first, followed by every residue's ATOM/HETATM
// records, followed by footer records and a final END record. A TER record
// is written at the end of each chain. When the entry has more than one
// model, each model is wrapped in MODEL/ENDMDL records.
//
// Atom serial numbers are renumbered from 1 (in each model).
func Write(w io.Writer, e *Entry) error {
	buf := bufio.NewWriter(w)
	pw := pdbWriter{buf: buf, multiModel: e.multiModel()}

	for _, line := range e.Header {
		pw.printf("%s\n", line)
	}
	for _, r := range e.Residues {
		pw.residue(r)
	}
	pw.endChain()
	pw.endModel()
	for _, line := range e.Footer {
		pw.printf("%s\n", line)
	}
	pw.printf("END\n")

	if pw.err != nil {
		return pw.err
	}
	return buf.Flush()
}

func (e *Entry) multiModel() bool {
	for _, r := range e.Residues {
		if r.Model != e.Residues[0].Model {
			return true
		}
	}
	return false
}

type pdbWriter struct {
	buf        *bufio.Writer
	err        error
	multiModel bool

	inModel    bool
	terPending bool
	serial     int
	last       *Residue
}

func (pw *pdbWriter) printf(format string, v ...interface{}) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.buf, format, v...)
}

func (pw *pdbWriter) residue(r *Residue) {
	newModel := pw.last == nil || pw.last.Model != r.Model
	if pw.last != nil && (newModel || pw.last.Chain != r.Chain) {
		pw.endChain()
	}
	if newModel {
		pw.endModel()
		if pw.multiModel {
			pw.printf("MODEL     %4d\n", r.Model)
			pw.inModel = true
		}
		pw.serial = 0
	}

	record := "ATOM"
	if r.Het {
		record = "HETATM"
	}
	for _, a := range r.Atoms {
		pw.serial++

		// Serials only have five columns. Very large entries wrap around.
		pw.printf("%-6s%5d %s%c%s%c%4d%c   %8.3f%8.3f%8.3f%6.2f%6.2f"+
			"          %2s%-2s\n",
			record, pw.serial%100000, atomName(a), blank(a.AltLoc),
			residueName(r.Name), blank(r.Chain), r.SequenceNum,
			blank(r.InsertionCode), a.X, a.Y, a.Z, a.Occupancy, a.TempFactor,
			a.Element, a.Charge)
	}
	pw.terPending = true
	pw.last = r
}

// endChain writes a TER record for the last residue written, unless one
// has already been written.
func (pw *pdbWriter) endChain() {
	if !pw.terPending {
		return
	}
	r := pw.last
	pw.serial++
	pw.printf("TER   %5d      %s%c%4d%c\n",
		pw.serial%100000, residueName(r.Name), blank(r.Chain),
		r.SequenceNum, blank(r.InsertionCode))
	pw.terPending = false
}

func (pw *pdbWriter) endModel() {
	if pw.inModel {
		pw.printf("ENDMDL\n")
		pw.inModel = false
	}
}

// atomName lays out an atom name in columns 13-16. Names of four characters
// start in column 13, shorter names start in column 14, except when the
// atom's element has two letters (e.g., "FE").
func atomName(a Atom) string {
	switch {
	case len(a.Name) >= 4:
		return fmt.Sprintf("%-4s", a.Name[:4])
	case len(a.Element) == 2 && len(a.Name) >= 2 && a.Name[:2] == a.Element:
		return fmt.Sprintf("%-4s", a.Name)
	}
	return fmt.Sprintf(" %-3s", a.Name)
}

// residueName lays out a residue name in columns 18-21. Column 21 is only
// used by four letter names (e.g., CHARMM's TIP3).
func residueName(name string) string {
	if len(name) >= 4 {
		return name[:4]
	}
	return fmt.Sprintf("%3s ", name)
}
