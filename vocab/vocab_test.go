package vocab

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var testResidueTypes = `## full-atom residue types
TYPE_SET_MODE full_atom

## L-amino acids
residue_types/l-caa/ALA.params
residue_types/l-caa/GLY.params
#residue_types/l-ncaa/ornithine.params
#residue_types/l-ncaa/missing.params
residue_types/l-ncaa/no_io_string.params
`

var testParams = map[string]string{
	"residue_types/l-caa/ALA.params": "NAME ALA\nIO_STRING ALA A\nTYPE POLYMER\n",
	"residue_types/l-caa/GLY.params": "NAME GLY\nIO_STRING GLY G\n",
	"residue_types/l-ncaa/ornithine.params": "NAME ORN\n" +
		"IO_STRING ORN X\n",
	"residue_types/l-ncaa/no_io_string.params": "NAME ZZZ\n",
}

func testOpener(name string) (io.ReadCloser, error) {
	contents, ok := testParams[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return io.NopCloser(strings.NewReader(contents)), nil
}

func TestNewTable(t *testing.T) {
	tab := NewTable([]string{"ORN"}, nil)
	for _, code := range FixedCodes {
		if !tab.IsRecognized(code) || !tab.IsEnabled(code) {
			t.Fatalf("Expected %s to be recognized and enabled.", code)
		}
	}
	if !tab.IsRecognized("ORN") || tab.IsEnabled("ORN") {
		t.Fatalf("Expected ORN to be recognized but off by default.")
	}
	if tab.IsRecognized("XYZ") {
		t.Fatalf("XYZ should not be recognized.")
	}

	tab.Add("HYP", true)
	if !tab.IsRecognized("HYP") || !tab.IsEnabled("HYP") {
		t.Fatalf("Expected HYP to be recognized and enabled after Add.")
	}
}

func TestStandard(t *testing.T) {
	tab := Standard()
	for _, code := range []string{"ALA", "TRP", "DA", "TP3"} {
		if !tab.IsEnabled(code) {
			t.Fatalf("Expected %s to be enabled in the standard table.", code)
		}
	}
	if n := len(tab.Recognized()); n != 20+len(FixedCodes) {
		t.Fatalf("Expected %d recognized codes but got %d.",
			20+len(FixedCodes), n)
	}
	if bad := tab.Inconsistent(); len(bad) > 0 {
		t.Fatalf("Standard table is inconsistent: %v", bad)
	}
}

func TestMergeInconsistent(t *testing.T) {
	tab := Standard()
	tab.Merge(&loose{recognized: []string{"ORN"}, enabled: []string{"QQQ"}})
	if !tab.IsRecognized("ORN") || tab.IsEnabled("ORN") {
		t.Fatalf("Expected ORN to be recognized but off by default.")
	}
	if bad := tab.Inconsistent(); !reflect.DeepEqual(bad, []string{"QQQ"}) {
		t.Fatalf("Expected [QQQ] to be inconsistent but got %v.", bad)
	}
}

type loose struct {
	recognized, enabled []string
}

func (l *loose) Recognized() []string     { return l.recognized }
func (l *loose) DefaultEnabled() []string { return l.enabled }

func TestReadResidueTypes(t *testing.T) {
	tab, err := ReadResidueTypes(strings.NewReader(testResidueTypes), testOpener)
	if err != nil {
		t.Fatal(err)
	}

	recognized := []string{"ALA", "DA", "DC", "DG", "DT", "GLY", "ORN", "TP3", "WAT"}
	if got := tab.Recognized(); !reflect.DeepEqual(got, recognized) {
		t.Fatalf("Expected recognized %v but got %v.", recognized, got)
	}
	enabled := []string{"ALA", "DA", "DC", "DG", "DT", "GLY", "TP3", "WAT"}
	if got := tab.DefaultEnabled(); !reflect.DeepEqual(got, enabled) {
		t.Fatalf("Expected enabled %v but got %v.", enabled, got)
	}
}

func TestReadResidueTypesMissing(t *testing.T) {
	listing := "residue_types/l-caa/ALA.params\nresidue_types/l-caa/nope.params\n"
	_, err := ReadResidueTypes(strings.NewReader(listing), testOpener)
	if err == nil || !strings.Contains(err.Error(), "Line 2") {
		t.Fatalf("Expected an error on line 2 but got %v.", err)
	}
}

func TestLoadDatabase(t *testing.T) {
	dir := t.TempDir()
	setDir := filepath.Join(dir, "chemical", "residue_type_sets", DefaultTypeSet)
	for name, contents := range testParams {
		fp := filepath.Join(setDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(fp, []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
	listing := filepath.Join(setDir, "residue_types.txt")
	if err := os.WriteFile(listing, []byte(testResidueTypes), 0644); err != nil {
		t.Fatal(err)
	}

	tab, err := LoadDatabase(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if !tab.IsRecognized("ORN") || tab.IsEnabled("ORN") || !tab.IsEnabled("GLY") {
		t.Fatalf("Unexpected table: %v / %v",
			tab.Recognized(), tab.DefaultEnabled())
	}

	if _, err := LoadDatabase(dir, "centroid"); err == nil {
		t.Fatalf("Expected an error for a missing residue type set.")
	}
}

func TestReadCodes(t *testing.T) {
	input := "ORN\n\n# comment line\nHYP   hydroxyproline\n  DAL # D-alanine\n"
	codes, err := ReadCodes(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(codes, []string{"ORN", "HYP", "DAL"}) {
		t.Fatalf("Unexpected codes: %v", codes)
	}
}

func ExampleTable_Inconsistent() {
	tab := NewTable([]string{"ORN"}, []string{"ORN", "HYP"})
	fmt.Println(tab.IsEnabled("ORN"), tab.Inconsistent())
	// Output:
	// true [HYP]
}
