package submat_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/tcrpdb/submat"
)

func TestA(t *testing.T) {
	smat, err := submat.Read("blosum62.txt")
	if err != nil {
		t.Fatal(err)
	}
	b := []byte{'a', 'C', 'w'}
	s := ""
	for _, x := range b {
		for _, y := range b {
			s += fmt.Sprint(string(x), " ", string(y), " ", smat.Score(x, y))
		}
	}
	if s != "a a 4a C 0a w -3C a 0C C 9C w -2w a -3w C -2w w 11" {
		t.Fatal("Got wrong score string from matrix", s)
	}
}

func TestBuiltIn(t *testing.T) {
	smat, err := submat.Blosum62()
	if err != nil {
		t.Fatal(err)
	}
	if smat.Score('W', 'W') != 11 || smat.Score('K', 'R') != 2 {
		t.Error("built-in matrix has the wrong values")
	}
	// characters outside the alphabet score like X
	if smat.Score('J', 'A') != smat.Score('X', 'A') || smat.Score(200, 'A') != 0 {
		t.Error("unknown characters not scored like X")
	}
	again, _ := submat.Blosum62()
	if again != smat {
		t.Error("built-in matrix read twice")
	}
	m := smat.ScoreSeqs([]byte("AW"), []byte("WAC"))
	if nr, nc := m.Size(); nr != 2 || nc != 3 {
		t.Fatalf("score matrix size %d x %d", nr, nc)
	}
	if m.Mat[0][1] != 4 || m.Mat[1][0] != 11 {
		t.Errorf("score matrix wrong %v", m.Mat)
	}
	if !strings.Contains(smat.String(), "The matrix") {
		t.Error("String() lost its header")
	}
}

var badMatrices = []struct {
	name, text string
}{
	{"empty", "# only a comment\n"},
	{"long symbol", "A BB\nA 1\nBB 1 1\n"},
	{"short", "A B\nA 1\n"},
	{"not a number", "A B\nA 1\nB x 1\n"},
	{"unknown row", "A B\nA 1\nC 1 1\n"},
}

func TestBad(t *testing.T) {
	for _, tt := range badMatrices {
		if _, err := submat.Parse(strings.NewReader(tt.text), tt.name); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
	fname := filepath.Join(t.TempDir(), "tri.txt")
	os.WriteFile(fname, []byte("  A B # comment\nA 1\nB -1 3\n"), 0644)
	smat, err := submat.Read(fname)
	if err != nil {
		t.Fatal(err)
	}
	if smat.Score('a', 'B') != -1 || smat.Score('b', 'b') != 3 {
		t.Error("lower triangle not filled in")
	}
	if _, err := submat.Read(filepath.Join(t.TempDir(), "nothere")); err == nil {
		t.Error("missing file should give an error")
	}
}
