package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/TuftsBCB/seq"
)

// A Writer writes sequences to a FASTA encoded file.
type Writer struct {
	// The number of columns to wrap a sequence at. By default, this
	// is set to 60. A value <= 0 will result in no wrapping.
	Columns int
	buf     *bufio.Writer
}

// NewWriter creates a new FASTA writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		Columns: 60,
		buf:     bufio.NewWriter(w),
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.buf.Flush()
}

// Write writes a single sequence. Empty sequences are skipped.
//
// You may need to call Flush in order for the changes to be written.
func (w *Writer) Write(s seq.Sequence) error {
	if len(s.Residues) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w.buf, ">%s\n", s.Name); err != nil {
		return err
	}
	cols := w.Columns
	if cols <= 0 {
		cols = len(s.Residues)
	}
	for start := 0; start < len(s.Residues); start += cols {
		end := start + cols
		if end > len(s.Residues) {
			end = len(s.Residues)
		}
		if _, err := fmt.Fprintf(w.buf, "%s\n",
			string(s.Residues[start:end])); err != nil {
			return err
		}
	}
	return nil
}

// WriteAll writes every sequence and calls Flush.
func (w *Writer) WriteAll(seqs []seq.Sequence) error {
	for _, s := range seqs {
		if err := w.Write(s); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteFile creates (or truncates) the file at fp and writes every
// sequence to it.
func WriteFile(fp string, seqs []seq.Sequence) (err error) {
	f, err := os.Create(fp)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return NewWriter(f).WriteAll(seqs)
}
