package clean

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/TuftsBCB/pdbclean/pdb"
	"github.com/TuftsBCB/pdbclean/vocab"
)

// OutputDirName is the name of the directory, created next to the input,
// that Run writes cleaned files to.
const OutputDirName = "CLEANED"

// InputKind classifies an input path by its file name.
type InputKind int

const (
	KindUnsupported InputKind = iota
	KindPDB
	KindPDBx
	KindManifest
)

func (k InputKind) String() string {
	switch k {
	case KindPDB:
		return "PDB"
	case KindPDBx:
		return "PDBx/mmCIF"
	case KindManifest:
		return "manifest"
	}
	return "unsupported"
}

// KindOf returns the kind of input named by path. Extensions are compared
// case insensitively, and a trailing ".gz" is ignored for structural files.
//
//	.pdb .ent   PDB
//	.cif        PDBx/mmCIF
//	.txt        manifest (one structural file per line)
func KindOf(path string) InputKind {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, ".txt") {
		return KindManifest
	}
	name = strings.TrimSuffix(name, ".gz")
	switch filepath.Ext(name) {
	case ".pdb", ".ent":
		return KindPDB
	case ".cif":
		return KindPDBx
	}
	return KindUnsupported
}

// Session cleans files with a fixed configuration and vocabulary, and
// accumulates the residue codes found by checking them.
type Session struct {
	// Log receives a line for every step taken. If nil, nothing is logged.
	Log *log.Logger

	conf         Config
	renames      pdb.Renames
	recognized   Set
	enabled      Set
	unrecognized []string
	offByDefault []string
}

// NewSession creates a session that checks residues against v. The lists
// of v are read once, here.
func NewSession(v vocab.Provider, conf Config) *Session {
	return &Session{
		conf:       conf,
		renames:    pdb.DefaultRenames.Merge(conf.Renames),
		recognized: NewSet(v.Recognized()),
		enabled:    NewSet(v.DefaultEnabled()),
	}
}

// Config returns the session's configuration.
func (s *Session) Config() Config {
	return s.conf
}

// Unrecognized returns the codes of every residue found so far that isn't
// recognized, sorted and without duplicates.
func (s *Session) Unrecognized() []string {
	return Unique(s.unrecognized)
}

// OffByDefault returns the codes of every residue found so far that isn't
// on by default, sorted and without duplicates.
func (s *Session) OffByDefault() []string {
	return Unique(s.offByDefault)
}

// EnableCandidates returns the off by default codes found so far that are
// recognized. Enabling these (e.g., in the Rosetta database) lets Rosetta
// read the files without ignoring any residues.
func (s *Session) EnableCandidates() []string {
	var codes []string
	for _, code := range s.OffByDefault() {
		if s.recognized[code] {
			codes = append(codes, code)
		}
	}
	return codes
}

// WriteReport writes the codes accumulated so far. See the WriteReport
// function.
func (s *Session) WriteReport(w io.Writer) error {
	return WriteReport(w, s.unrecognized, s.offByDefault)
}

// Clean cleans a single structural file and writes the result to outputDir
// (which must exist), returning the path of the cleaned file.
//
// The cleaned file has the same name as the input, except that PDBx/mmCIF
// input is written in PDB format and named "<stem>.pdb".
//
// When residue checking is enabled, the residues of the cleaned entry are
// classified and the diagnostics file (see ReportName) is written to
// outputDir, listing every code accumulated by the session so far.
func (s *Session) Clean(inputPath, outputDir string) (string, error) {
	out, err := s.clean(inputPath, outputDir)
	if err != nil {
		return "", err
	}
	if s.conf.CheckUnrecognized {
		if _, err := s.writeReport(outputDir, inputPath); err != nil {
			return "", err
		}
	}
	return out, nil
}

// CleanedFile pairs an input path with the path of its cleaned copy.
type CleanedFile struct {
	Input  string
	Output string
}

// BatchResult is the outcome of cleaning a list of files. Files are
// processed independently; a failure on one doesn't stop the others.
type BatchResult struct {
	Cleaned  []CleanedFile
	Failures []*EntryError
}

// CleanAll cleans every file in paths, writing results to outputDir.
// Unlike Clean, no diagnostics file is written; the residue codes of every
// file are accumulated in the session.
func (s *Session) CleanAll(paths []string, outputDir string) *BatchResult {
	res := &BatchResult{}
	for _, p := range paths {
		out, err := s.clean(p, outputDir)
		if err != nil {
			s.logf("Could not clean '%s': %s", p, err)
			res.Failures = append(res.Failures, &EntryError{Path: p, Err: err})
			continue
		}
		res.Cleaned = append(res.Cleaned, CleanedFile{Input: p, Output: out})
	}
	return res
}

// RunResult describes what Run produced.
type RunResult struct {
	Kind      InputKind
	OutputDir string
	Cleaned   []CleanedFile
	Failures  []*EntryError

	// Path of the diagnostics file, or "" if none was written.
	Report string
}

// Run cleans the structural file or manifest at inputPath. Output goes to
// a CLEANED directory next to inputPath, which is created if it doesn't
// exist.
//
// A manifest lists one structural file per line (see ReadManifest).
// Relative paths in a manifest are relative to the manifest's directory.
// Manifest entries that fail are reported in RunResult.Failures, and don't
// make Run return an error. With residue checking enabled, a single
// diagnostics file named after the manifest is written for the whole batch.
func (s *Session) Run(inputPath string) (*RunResult, error) {
	if err := checkExists(inputPath); err != nil {
		return nil, err
	}
	kind := KindOf(inputPath)
	if kind == KindUnsupported {
		return nil, fmt.Errorf("%w: '%s' is not a .pdb, .ent, .cif or .txt "+
			"file", ErrUnsupportedInputKind, inputPath)
	}

	var paths []string
	if kind == KindManifest {
		var err error
		if paths, err = ReadManifestFile(inputPath); err != nil {
			return nil, err
		}
	}

	outDir := filepath.Join(filepath.Dir(inputPath), OutputDirName)
	if err := os.MkdirAll(outDir, 0777); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputDirUnwritable, err)
	}
	s.logf("Saving cleaned PDB(s) to %s", outDir)

	res := &RunResult{Kind: kind, OutputDir: outDir}
	if kind != KindManifest {
		out, err := s.Clean(inputPath, outDir)
		if err != nil {
			return nil, err
		}
		res.Cleaned = []CleanedFile{{Input: inputPath, Output: out}}
		if s.conf.CheckUnrecognized {
			res.Report = filepath.Join(outDir, ReportName(inputPath))
		}
		return res, nil
	}

	s.logf("Fixing all %d PDBs in '%s'", len(paths), inputPath)
	batch := s.CleanAll(paths, outDir)
	res.Cleaned, res.Failures = batch.Cleaned, batch.Failures
	if s.conf.CheckUnrecognized {
		report, err := s.writeReport(outDir, inputPath)
		if err != nil {
			return nil, err
		}
		res.Report = report
	}
	return res, nil
}

func (s *Session) clean(inputPath, outputDir string) (string, error) {
	if err := checkExists(inputPath); err != nil {
		return "", err
	}

	e, err := ReadEntry(inputPath)
	if err != nil {
		return "", err
	}

	s.Transform(e)

	out := filepath.Join(outputDir, OutputName(inputPath))
	if err := pdb.WritePDB(out, e); err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutputDirUnwritable, err)
	}
	s.logf("Saved '%s'", out)

	if s.conf.CheckUnrecognized {
		unrec, off := Classify(e, s.recognized, s.enabled)
		s.unrecognized = append(s.unrecognized, unrec...)
		s.offByDefault = append(s.offByDefault, off...)
		if len(unrec) == 0 && len(off) == 0 {
			s.logf("'%s' has no unrecognized residues, and all residues "+
				"found are on by default", inputPath)
		}
	}
	return out, nil
}

// Transform applies the enabled transforms to e, in order. Clean calls it
// between reading and writing a file.
func (s *Session) Transform(e *pdb.Entry) {
	if s.conf.ReplaceResiduesAtoms {
		n := e.Rename(s.renames)
		s.logf("Changed residue names, atom names and water in %d residues", n)
	}
	if s.conf.RemoveHetatm {
		n := e.RemoveHetatm()
		s.logf("Removed %d HETATM residues", n)
	}
	if s.conf.RemoveWaters {
		n := e.RemoveWaters()
		s.logf("Removed %d waters", n)
	}
	if s.conf.RemoveAlternates {
		dropped, renumbered := e.RemoveAlternates()
		s.logf("Removed %d alternate residues; renumbered %d chains with "+
			"insertions from 1", dropped, renumbered)
	}
	if s.conf.NormalizeOccupancy {
		e.SetOccupancy(1.0)
		s.logf("Changed all occupancies to 1")
	}
}

func (s *Session) writeReport(outputDir, inputPath string) (string, error) {
	report := filepath.Join(outputDir, ReportName(inputPath))
	err := WriteReportFile(report, s.unrecognized, s.offByDefault)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutputDirUnwritable, err)
	}
	if codes := s.Unrecognized(); len(codes) > 0 {
		s.logf("unrecognized: %s", strings.Join(codes, " "))
	}
	if codes := s.OffByDefault(); len(codes) > 0 {
		s.logf("off-by-default: %s", strings.Join(codes, " "))
	}
	s.logf("Please see %s", report)
	return report, nil
}

func (s *Session) logf(format string, v ...interface{}) {
	if s.Log != nil {
		s.Log.Printf(format, v...)
	}
}

// ReadEntry reads a PDB or PDBx/mmCIF file, depending on its name (see
// KindOf).
func ReadEntry(path string) (*pdb.Entry, error) {
	switch KindOf(path) {
	case KindPDB:
		return pdb.ReadPDB(path)
	case KindPDBx:
		return pdb.ReadPDBx(path)
	}
	return nil, fmt.Errorf("%w: '%s' is not a structural file",
		ErrUnsupportedInputKind, path)
}

// OutputName returns the file name a cleaned copy of inputPath is written
// to.
func OutputName(inputPath string) string {
	if KindOf(inputPath) == KindPDBx {
		return stem(inputPath) + ".pdb"
	}
	return filepath.Base(inputPath)
}

// ReadManifest reads a list of file paths, one per line. Leading and
// trailing whitespace is trimmed. Blank lines and lines starting with '#'
// are skipped.
func ReadManifest(r io.Reader) ([]string, error) {
	var paths []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// ReadManifestFile reads the manifest at path. Relative entries are
// resolved against the manifest's directory.
func ReadManifestFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	paths, err := ReadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("Could not read manifest '%s': %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			paths[i] = filepath.Join(dir, p)
		}
	}
	return paths, nil
}

func checkExists(path string) error {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: '%s'", ErrInputNotFound, path)
	}
	return err
}

// stem returns the base name of path without ".gz" and its extension.
func stem(path string) string {
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
