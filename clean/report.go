package clean

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
)

// ReportSuffix is appended to the stem of an input file name to name its
// diagnostics file.
const ReportSuffix = "_rosetta_check_log.txt"

// ReportName returns the name of the diagnostics file for the given input
// path, e.g., "1abc_rosetta_check_log.txt" for "/data/1abc.pdb.gz".
func ReportName(inputPath string) string {
	return stem(inputPath) + ReportSuffix
}

// WriteReport writes the "#unrecognized" section followed by the "#off"
// section. Each section lists its codes sorted and without duplicates, one
// per line.
func WriteReport(w io.Writer, unrecognized, offByDefault []string) error {
	buf := bufio.NewWriter(w)
	fmt.Fprintln(buf, "#unrecognized")
	for _, code := range Unique(unrecognized) {
		fmt.Fprintln(buf, code)
	}
	fmt.Fprintln(buf, "#off")
	for _, code := range Unique(offByDefault) {
		fmt.Fprintln(buf, code)
	}
	return buf.Flush()
}

// WriteReportFile is like WriteReport, but creates (or truncates) the file
// at path.
func WriteReportFile(path string, unrecognized, offByDefault []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteReport(f, unrecognized, offByDefault); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Unique returns a sorted copy of codes without duplicates.
func Unique(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	uniq := make([]string, 0, len(codes))
	for _, code := range codes {
		if !seen[code] {
			seen[code] = true
			uniq = append(uniq, code)
		}
	}
	sort.Strings(uniq)
	return uniq
}
