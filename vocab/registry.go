package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTypeSet is the residue type set used by full atom Rosetta.
const DefaultTypeSet = "fa_standard"

// An Opener opens a params file named in a residue type listing. Names are
// given exactly as they appear in the listing.
type Opener func(name string) (io.ReadCloser, error)

// LoadDatabase builds a table from a Rosetta database directory, using the
// residue_types.txt listing of the given residue type set.
// See ReadResidueTypes for the details.
func LoadDatabase(dir, typeSet string) (*Table, error) {
	if len(typeSet) == 0 {
		typeSet = DefaultTypeSet
	}
	setDir := filepath.Join(dir, "chemical", "residue_type_sets", typeSet)
	listing := filepath.Join(setDir, "residue_types.txt")
	f, err := os.Open(listing)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	open := func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(setDir, filepath.FromSlash(name)))
	}
	t, err := ReadResidueTypes(f, open)
	if err != nil {
		return nil, fmt.Errorf("Could not read '%s': %s", listing, err)
	}
	return t, nil
}

// ReadResidueTypes builds a table from a Rosetta residue_types.txt listing.
//
// Every line naming a ".params" file is a residue type that Rosetta
// recognizes. If the line is commented out with a single '#', the residue
// type is recognized but off by default. Lines starting with "##" and lines
// that don't name a params file (like TYPE_SET_MODE) are ignored.
//
// The three letter code of a residue type is the first field of the
// IO_STRING line in its params file. Params files without an IO_STRING are
// skipped. A params file for a commented out residue type that doesn't
// exist is skipped too, but a missing params file for a residue type that
// is on by default is an error.
func ReadResidueTypes(r io.Reader, open Opener) (*Table, error) {
	t := NewTable(nil, nil)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		name, enabled, ok := paramsLine(scanner.Text())
		if !ok {
			continue
		}

		code, err := readIOString(open, name)
		if err != nil {
			if !enabled && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("Line %d: %s", lineNum, err)
		}
		if len(code) > 0 {
			t.Add(code, enabled)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// paramsLine returns the params file named on a residue type listing line,
// and whether that residue type is on by default.
func paramsLine(line string) (name string, enabled bool, ok bool) {
	line = strings.TrimSpace(line)
	enabled = true
	switch {
	case strings.HasPrefix(line, "##"):
		return "", false, false
	case strings.HasPrefix(line, "#"):
		enabled = false
		line = line[1:]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasSuffix(fields[0], ".params") {
		return "", false, false
	}
	return fields[0], enabled, true
}

func readIOString(open Opener, name string) (string, error) {
	f, err := open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[0] == "IO_STRING" {
			return fields[1], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("Could not read '%s': %s", name, err)
	}
	return "", nil
}
