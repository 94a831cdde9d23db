package clean

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/TuftsBCB/pdbclean/pdb"
	"github.com/TuftsBCB/pdbclean/vocab"
)

// newEntry creates an entry with one residue per code, each with a single
// atom. Waters and codes that aren't amino acids are HETATM residues.
func newEntry(codes ...string) *pdb.Entry {
	e := &pdb.Entry{}
	for i, code := range codes {
		r := &pdb.Residue{
			Model:       1,
			Chain:       'A',
			Name:        code,
			SequenceNum: i + 1,
			Het:         !pdb.IsAmino(code),
		}
		atom := pdb.Atom{Name: "CA", Element: "C", Occupancy: 0.5}
		if pdb.IsWater(code) {
			atom.Name, atom.Element = "O", "O"
		}
		atom.X, atom.Y, atom.Z = float64(i), float64(2*i), float64(3*i)
		r.Atoms = append(r.Atoms, atom)
		e.Residues = append(e.Residues, r)
	}
	return e
}

func writeEntry(t *testing.T, dir, name string, codes ...string) string {
	fp := filepath.Join(dir, name)
	if err := pdb.WritePDB(fp, newEntry(codes...)); err != nil {
		t.Fatalf("Could not write '%s': %s", fp, err)
	}
	return fp
}

func readFile(t *testing.T, fp string) string {
	data, err := os.ReadFile(fp)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// testVocab recognizes ORN, but doesn't enable it.
func testVocab() *vocab.Table {
	t := vocab.Standard()
	t.Add("ORN", false)
	return t
}

func TestClassify(t *testing.T) {
	e := newEntry("ALA", "HOH", "XYZ")
	recognized := NewSet([]string{"ALA", "HOH", "DA", "DT", "DG", "DC",
		"WAT", "TP3"})
	enabled := NewSet([]string{"ALA", "HOH"})

	unrec, off := Classify(e, recognized, enabled)
	if !reflect.DeepEqual(unrec, []string{"XYZ"}) {
		t.Fatalf("Expected unrecognized [XYZ] but got %v.", unrec)
	}
	if !reflect.DeepEqual(off, []string{"XYZ"}) {
		t.Fatalf("Expected off by default [XYZ] but got %v.", off)
	}
}

func TestClassifyDuplicates(t *testing.T) {
	e := newEntry("XYZ", "ALA", "ORN", "XYZ", "ala")
	recognized := NewSet([]string{"ALA", "ORN"})
	enabled := NewSet([]string{"ALA"})

	unrec, off := Classify(e, recognized, enabled)
	if !reflect.DeepEqual(unrec, []string{"XYZ", "XYZ", "ala"}) {
		t.Fatalf("Unexpected unrecognized codes: %v", unrec)
	}
	if !reflect.DeepEqual(off, []string{"XYZ", "ORN", "XYZ", "ala"}) {
		t.Fatalf("Unexpected off by default codes: %v", off)
	}

	// Every code of every residue is classified the same way.
	for _, r := range e.Residues {
		if recognized[r.Name] == contains(unrec, r.Name) {
			t.Fatalf("%s misclassified as unrecognized.", r.Name)
		}
		if enabled[r.Name] == contains(off, r.Name) {
			t.Fatalf("%s misclassified as off by default.", r.Name)
		}
	}
}

func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func TestWriteReport(t *testing.T) {
	buf := new(bytes.Buffer)
	err := WriteReport(buf, []string{"XYZ", "ABC", "XYZ"},
		[]string{"ORN", "XYZ", "ABC", "ORN"})
	if err != nil {
		t.Fatal(err)
	}
	expected := "#unrecognized\nABC\nXYZ\n#off\nABC\nORN\nXYZ\n"
	if buf.String() != expected {
		t.Fatalf("Expected report:\n%s\nGot:\n%s", expected, buf.String())
	}

	// Input order doesn't matter.
	again := new(bytes.Buffer)
	WriteReport(again, []string{"ABC", "XYZ"}, []string{"XYZ", "ORN", "ABC"})
	if again.String() != expected {
		t.Fatalf("Report depends on input order:\n%s", again.String())
	}

	empty := new(bytes.Buffer)
	WriteReport(empty, nil, nil)
	if empty.String() != "#unrecognized\n#off\n" {
		t.Fatalf("Unexpected empty report: %q", empty.String())
	}
}

func TestNames(t *testing.T) {
	kinds := []struct {
		path string
		kind InputKind
	}{
		{"/data/1abc.pdb", KindPDB},
		{"/data/1ABC.PDB", KindPDB},
		{"pdb1abc.ent.gz", KindPDB},
		{"1abc.cif", KindPDBx},
		{"1abc.cif.gz", KindPDBx},
		{"list.txt", KindManifest},
		{"1abc.mol", KindUnsupported},
		{"1abc", KindUnsupported},
		{"1abc.gz", KindUnsupported},
	}
	for _, test := range kinds {
		if kind := KindOf(test.path); kind != test.kind {
			t.Fatalf("KindOf(%s): expected %s but got %s.",
				test.path, test.kind, kind)
		}
	}

	names := []struct {
		path, output, report string
	}{
		{"/data/1abc.pdb", "1abc.pdb", "1abc_rosetta_check_log.txt"},
		{"/data/1abc.pdb.gz", "1abc.pdb.gz", "1abc_rosetta_check_log.txt"},
		{"1abc.cif.gz", "1abc.pdb", "1abc_rosetta_check_log.txt"},
		{"batch/list.txt", "list.txt", "list_rosetta_check_log.txt"},
	}
	for _, test := range names {
		if out := OutputName(test.path); out != test.output {
			t.Fatalf("OutputName(%s): expected %s but got %s.",
				test.path, test.output, out)
		}
		if report := ReportName(test.path); report != test.report {
			t.Fatalf("ReportName(%s): expected %s but got %s.",
				test.path, test.report, report)
		}
	}
}

func TestReadManifest(t *testing.T) {
	input := "a.pdb\n\n   \n  b.pdb  \n# skipped.pdb\n/abs/c.cif\n"
	paths, err := ReadManifest(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(paths, []string{"a.pdb", "b.pdb", "/abs/c.cif"}) {
		t.Fatalf("Unexpected manifest entries: %q", paths)
	}

	dir := t.TempDir()
	manifest := filepath.Join(dir, "list.txt")
	if err := os.WriteFile(manifest, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}
	paths, err = ReadManifestFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if paths[0] != filepath.Join(dir, "a.pdb") || paths[2] != "/abs/c.cif" {
		t.Fatalf("Relative entries were not resolved: %q", paths)
	}
}

// Scenario: a file with one water, cleaned with the default configuration.
func TestRunSingle(t *testing.T) {
	dir := t.TempDir()
	input := writeEntry(t, dir, "protein.pdb", "ALA", "HOH", "GLY", "XYZ")

	s := NewSession(testVocab(), DefaultConfig())
	res, err := s.Run(input)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != KindPDB || res.OutputDir != filepath.Join(dir, OutputDirName) {
		t.Fatalf("Unexpected result: %#v", res)
	}
	if len(res.Cleaned) != 1 {
		t.Fatalf("Expected 1 cleaned file but got %d.", len(res.Cleaned))
	}

	cleaned, err := pdb.ReadPDB(res.Cleaned[0].Output)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cleaned.Codes(), []string{"ALA", "GLY", "XYZ"}) {
		t.Fatalf("Expected the water to be removed but got %v.",
			cleaned.Codes())
	}
	for _, r := range cleaned.Residues {
		if r.Atoms[0].Occupancy != 1.0 {
			t.Fatalf("Expected occupancy 1 in %s.", r)
		}
	}

	expected := filepath.Join(res.OutputDir, "protein_rosetta_check_log.txt")
	if res.Report != expected {
		t.Fatalf("Expected report '%s' but got '%s'.", expected, res.Report)
	}
	report := readFile(t, res.Report)
	if report != "#unrecognized\nXYZ\n#off\nXYZ\n" {
		t.Fatalf("Unexpected report:\n%s", report)
	}
	if !reflect.DeepEqual(s.Unrecognized(), []string{"XYZ"}) {
		t.Fatalf("Unexpected accumulated codes: %v", s.Unrecognized())
	}
}

func TestRunTransforms(t *testing.T) {
	dir := t.TempDir()
	input := writeEntry(t, dir, "1abc.pdb", "ALA", "HSD", "WAT", "XYZ")

	conf := DefaultConfig()
	conf.RemoveWaters = false
	conf.RemoveHetatm = true
	conf.NormalizeOccupancy = false
	conf.CheckUnrecognized = false
	conf.Renames = pdb.Renames{
		Residues: map[string]string{"XYZ": "ORN"},
	}

	s := NewSession(testVocab(), conf)
	res, err := s.Run(input)
	if err != nil {
		t.Fatal(err)
	}
	if res.Report != "" {
		t.Fatalf("Expected no report but got '%s'.", res.Report)
	}
	if _, err := os.Stat(filepath.Join(res.OutputDir, ReportName(input))); err == nil {
		t.Fatalf("A report was written with checking disabled.")
	}

	cleaned, err := pdb.ReadPDB(res.Cleaned[0].Output)
	if err != nil {
		t.Fatal(err)
	}

	// HSD becomes HIS (an ATOM record), WAT becomes TP3 and is removed
	// with the other HETATM residues.
	if !reflect.DeepEqual(cleaned.Codes(), []string{"ALA", "HIS"}) {
		t.Fatalf("Unexpected residues: %v", cleaned.Codes())
	}
	if occ := cleaned.Residues[0].Atoms[0].Occupancy; occ != 0.5 {
		t.Fatalf("Expected occupancy to be left alone but got %f.", occ)
	}
}

func TestRunGzipUpperCase(t *testing.T) {
	dir := t.TempDir()
	input := writeEntry(t, dir, "1ABC.PDB.GZ", "ALA", "HOH", "GLY")

	res, err := NewSession(testVocab(), DefaultConfig()).Run(input)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != KindPDB {
		t.Fatalf("Expected a PDB file but got %s.", res.Kind)
	}
	cleaned, err := pdb.ReadPDB(res.Cleaned[0].Output)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cleaned.Codes(), []string{"ALA", "GLY"}) {
		t.Fatalf("Unexpected residues: %v", cleaned.Codes())
	}
	if filepath.Base(res.Report) != "1ABC_rosetta_check_log.txt" {
		t.Fatalf("Unexpected report name '%s'.", res.Report)
	}
}

// Renaming turns MSE into MET ATOM records, so the cleaned output only
// lines up with the input after the same transforms.
func TestTransformMatchesOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeEntry(t, dir, "1abc.pdb", "ALA", "MSE", "HOH", "GLY")

	s := NewSession(testVocab(), DefaultConfig())
	res, err := s.Run(input)
	if err != nil {
		t.Fatal(err)
	}
	after, err := pdb.ReadPDB(res.Cleaned[0].Output)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := ReadEntry(input)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pdb.CaRMSD(raw, after); err == nil {
		t.Fatalf("Expected a CA count mismatch against the raw input.")
	}

	before, err := ReadEntry(input)
	if err != nil {
		t.Fatal(err)
	}
	s.Transform(before)
	rmsd, err := pdb.CaRMSD(before, after)
	if err != nil {
		t.Fatal(err)
	}
	if rmsd > 1e-4 {
		t.Fatalf("Expected an RMSD of 0 but got %f.", rmsd)
	}
}

// Scenario: a manifest with two valid files produces one report.
func TestRunManifest(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "a.pdb", "ALA", "XYZ", "HOH")
	writeEntry(t, dir, "b.pdb", "GLY", "ORN", "XYZ")
	manifest := filepath.Join(dir, "batch.txt")
	err := os.WriteFile(manifest, []byte("a.pdb\n\nb.pdb\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	s := NewSession(testVocab(), DefaultConfig())
	res, err := s.Run(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != KindManifest {
		t.Fatalf("Expected a manifest but got %s.", res.Kind)
	}
	if len(res.Cleaned) != 2 || len(res.Failures) != 0 {
		t.Fatalf("Expected 2 cleaned files and no failures but got %d and %d.",
			len(res.Cleaned), len(res.Failures))
	}
	for _, name := range []string{"a.pdb", "b.pdb"} {
		if _, err := os.Stat(filepath.Join(res.OutputDir, name)); err != nil {
			t.Fatalf("Expected cleaned file '%s': %s", name, err)
		}
	}

	entries, err := os.ReadDir(res.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	reports := 0
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ReportSuffix) {
			reports++
		}
	}
	if reports != 1 {
		t.Fatalf("Expected exactly one report but found %d.", reports)
	}
	if filepath.Base(res.Report) != "batch_rosetta_check_log.txt" {
		t.Fatalf("Unexpected report name '%s'.", res.Report)
	}
	report := readFile(t, res.Report)
	if report != "#unrecognized\nXYZ\n#off\nORN\nXYZ\n" {
		t.Fatalf("Unexpected report:\n%s", report)
	}
	if !reflect.DeepEqual(s.EnableCandidates(), []string{"ORN"}) {
		t.Fatalf("Expected ORN as the only candidate but got %v.",
			s.EnableCandidates())
	}
}

func TestRunManifestFailures(t *testing.T) {
	dir := t.TempDir()
	writeEntry(t, dir, "good.pdb", "ALA")
	bad := filepath.Join(dir, "bad.pdb")
	if err := os.WriteFile(bad, []byte("REMARK nothing here\n"), 0644); err != nil {
		t.Fatal(err)
	}
	mol := filepath.Join(dir, "notes.mol")
	if err := os.WriteFile(mol, []byte("ligand\n"), 0644); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(dir, "list.txt")
	list := "missing.pdb\nbad.pdb\nnotes.mol\ngood.pdb\n"
	if err := os.WriteFile(manifest, []byte(list), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewSession(testVocab(), DefaultConfig()).Run(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Cleaned) != 1 || res.Cleaned[0].Input != filepath.Join(dir, "good.pdb") {
		t.Fatalf("Expected only good.pdb to be cleaned: %v", res.Cleaned)
	}
	if len(res.Failures) != 3 {
		t.Fatalf("Expected 3 failures but got %d.", len(res.Failures))
	}
	if !errors.Is(res.Failures[0], ErrInputNotFound) {
		t.Fatalf("Expected ErrInputNotFound but got %s.", res.Failures[0])
	}
	if !errors.Is(res.Failures[2], ErrUnsupportedInputKind) {
		t.Fatalf("Expected ErrUnsupportedInputKind but got %s.",
			res.Failures[2])
	}
	if res.Report == "" {
		t.Fatalf("Expected a report despite the failures.")
	}
}

// Scenario: the output directory already exists.
func TestRunExistingOutputDir(t *testing.T) {
	dir := t.TempDir()
	input := writeEntry(t, dir, "1abc.pdb", "ALA", "HOH")
	outDir := filepath.Join(dir, OutputDirName)
	if err := os.Mkdir(outDir, 0755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(outDir, "1abc.pdb")
	if err := os.WriteFile(stale, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewSession(testVocab(), DefaultConfig())
	for i := 0; i < 2; i++ {
		if _, err := s.Run(input); err != nil {
			t.Fatalf("Run %d: %s", i+1, err)
		}
	}
	if out := readFile(t, stale); !strings.HasPrefix(out, "ATOM") {
		t.Fatalf("Expected the stale file to be overwritten:\n%s", out)
	}
}

// Scenario: an unsupported input kind produces nothing.
func TestRunUnsupported(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ligand.mol")
	if err := os.WriteFile(input, []byte("ligand\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewSession(testVocab(), DefaultConfig()).Run(input)
	if !errors.Is(err, ErrUnsupportedInputKind) {
		t.Fatalf("Expected ErrUnsupportedInputKind but got %v.", err)
	}
	if _, err := os.Stat(filepath.Join(dir, OutputDirName)); err == nil {
		t.Fatalf("An output directory was created.")
	}
}

func TestRunNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := NewSession(testVocab(), DefaultConfig()).Run(
		filepath.Join(dir, "nope.pdb"))
	if !errors.Is(err, ErrInputNotFound) {
		t.Fatalf("Expected ErrInputNotFound but got %v.", err)
	}
	if _, err := os.Stat(filepath.Join(dir, OutputDirName)); err == nil {
		t.Fatalf("An output directory was created.")
	}
}

func TestRunUnwritable(t *testing.T) {
	dir := t.TempDir()
	input := writeEntry(t, dir, "1abc.pdb", "ALA")

	// A plain file where the output directory should be.
	blocker := filepath.Join(dir, OutputDirName)
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewSession(testVocab(), DefaultConfig()).Run(input)
	if !errors.Is(err, ErrOutputDirUnwritable) {
		t.Fatalf("Expected ErrOutputDirUnwritable but got %v.", err)
	}
}

func TestCleanAccumulates(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	a := writeEntry(t, dir, "a.pdb", "XYZ")
	b := writeEntry(t, dir, "b.pdb", "ABC")

	s := NewSession(testVocab(), DefaultConfig())
	for _, input := range []string{a, b} {
		if _, err := s.Clean(input, outDir); err != nil {
			t.Fatal(err)
		}
	}

	// The second report includes the codes found in the first file.
	report := readFile(t, filepath.Join(outDir, ReportName(b)))
	if report != "#unrecognized\nABC\nXYZ\n#off\nABC\nXYZ\n" {
		t.Fatalf("Unexpected report:\n%s", report)
	}

	// A fresh session starts from nothing.
	fresh := NewSession(testVocab(), DefaultConfig())
	if len(fresh.Unrecognized()) != 0 || len(fresh.OffByDefault()) != 0 {
		t.Fatalf("A new session has accumulated codes.")
	}
}

var testConfig = `
remove_hetatm: true
remove_waters: false
renames:
  residues:
    NLE: LEU
  residue_atoms:
    LEU:
      CE: CD1
vocabulary:
  recognized: [ORN]
  enabled: [HYP]
`

func TestLoadConfig(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "pdbclean.yaml")
	if err := os.WriteFile(fp, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}
	conf, err := LoadConfig(fp)
	if err != nil {
		t.Fatal(err)
	}

	expected := DefaultConfig()
	expected.RemoveHetatm = true
	expected.RemoveWaters = false
	if conf.ReplaceResiduesAtoms != expected.ReplaceResiduesAtoms ||
		conf.RemoveHetatm != expected.RemoveHetatm ||
		conf.RemoveWaters != expected.RemoveWaters ||
		conf.RemoveAlternates != expected.RemoveAlternates ||
		conf.NormalizeOccupancy != expected.NormalizeOccupancy ||
		conf.CheckUnrecognized != expected.CheckUnrecognized {
		t.Fatalf("Expected %+v but got %+v.", expected, conf)
	}
	if conf.Vocabulary.TypeSet != vocab.DefaultTypeSet {
		t.Fatalf("Expected the default type set but got '%s'.",
			conf.Vocabulary.TypeSet)
	}
	if conf.Renames.Residues["NLE"] != "LEU" ||
		conf.Renames.ResidueAtoms["LEU"]["CE"] != "CD1" {
		t.Fatalf("Unexpected renames: %+v", conf.Renames)
	}

	v, err := conf.Vocab()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsRecognized("ORN") || v.IsEnabled("ORN") {
		t.Fatalf("Expected ORN to be recognized but off by default.")
	}
	if !v.IsRecognized("HYP") || !v.IsEnabled("HYP") {
		t.Fatalf("Expected HYP to be recognized and enabled.")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("Expected an error for a missing config file.")
	}

	fp := filepath.Join(dir, "bad.yaml")
	bad := "renames:\n  atoms:\n    OT1: \"\"\n"
	if err := os.WriteFile(fp, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(fp); err == nil {
		t.Fatalf("Expected an error for an empty rename target.")
	}
}

func ExampleWriteReport() {
	e := newEntry("ALA", "ORN", "XYZ", "ORN")
	v := testVocab()
	unrec, off := Classify(e, NewSet(v.Recognized()), NewSet(v.DefaultEnabled()))
	WriteReport(os.Stdout, unrec, off)
	fmt.Println(len(off))
	// Output:
	// #unrecognized
	// XYZ
	// #off
	// ORN
	// XYZ
	// 3
}
