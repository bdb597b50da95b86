package pdb_test

import (
	"bytes"
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/andrew-torda/tcrpdb/pdb"
	"github.com/andrew-torda/tcrpdb/pdb/pdbtest"
)

const smallPDB = `HEADER    IMMUNE SYSTEM                           01-JAN-20   1ABC
REMARK   2
REMARK   2 RESOLUTION.    2.50 ANGSTROMS.
HELIX    1   1 ALA A    1  GLY A    3  5                                   3
ATOM      1  N   ALA A   1      11.104   6.134  -6.504  1.00  0.00           N
ATOM      2  CA  ALA A   1      11.639   6.071  -5.147  1.00  0.00           C
ATOM      3  CA AGLY A   2      12.100   7.000  -4.000  0.50  0.00           C
ATOM      4  CA BGLY A   2      12.200   7.100  -4.100  0.50  0.00           C
ATOM      5  CA  SER A   4      13.000   8.000  -3.000  1.00  0.00           C
ATOM      6  CA  MSE A   5      14.000   9.000  -2.000  1.00  0.00           C
TER       7      MSE A   5
ATOM      8  CA  LYS B  10       1.000   2.000   3.000  1.00  0.00           C
ATOM      9  HA  LYS B  10       1.500   2.000   3.000  1.00  0.00           H
HETATM   10  O   HOH B 101       5.000   5.000   5.000  1.00  0.00           O
CONECT    1    2
END
`

func parseSmall(t *testing.T) *Structure {
	t.Helper()
	s, err := Parse(strings.NewReader(smallPDB), nil)
	if err != nil {
		t.Fatal("parsing small structure:", err)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	s := parseSmall(t)
	if got := s.String(); got != smallPDB {
		t.Errorf("round trip changed the text\ngot:\n%s\nwanted:\n%s", got, smallPDB)
	}
	if len(s.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", s.Warnings)
	}
}

func TestAtomFields(t *testing.T) {
	s := parseSmall(t)
	a := s.AtomBySerial(3)
	if a == nil {
		t.Fatal("no atom 3")
	}
	if a.Name != "CA" || a.AltLoc != 'A' || a.ResName != "GLY" || a.Chain != 'A' ||
		a.ResSeq != 2 || a.Occupancy != 0.5 || a.Element != "C" {
		t.Errorf("fields wrong: %+v", *a)
	}
	if a.Xyz.X != 12.1 || a.Xyz.Y != 7 || a.Xyz.Z != -4 {
		t.Errorf("coordinates wrong: %v", a.Xyz)
	}
	if b := s.AtomBySerial(4); !b.IsAltSecondary() || b.IsPrimary() {
		t.Error("atom 4 is at a secondary location")
	}
	if h := s.AtomBySerial(9); !h.IsHydrogen() {
		t.Error("atom 9 is a hydrogen")
	}
}

func TestFormatRegenerates(t *testing.T) {
	s := parseSmall(t)
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind != RecAtom {
			continue
		}
		if got := r.Atom.Format(r.Kind.String()); got != strings.TrimRight(r.Raw, " ") {
			t.Errorf("format from fields\ngot    %q\nwanted %q", got, r.Raw)
		}
	}
}

func TestSequence(t *testing.T) {
	s := parseSmall(t)
	if c := string(s.Chains()); c != "AB" {
		t.Errorf("chains %q", c)
	}
	// the B copy of residue 2 is not counted, MSE is unknown, residue 3
	// is missing
	if seq := s.Sequence('A'); seq != "AGSX" {
		t.Errorf("sequence %q", seq)
	}
	res := s.Residues('A')
	if res[2].Num != 4 {
		t.Errorf("residue numbers lost: %v", res)
	}
	if seq := s.Sequence('B'); seq != "K" {
		t.Errorf("chain B sequence %q", seq)
	}
	if s.FirstAtom('A').Serial != 1 || s.LastAtom('A').Serial != 6 {
		t.Error("first or last atom wrong")
	}
	if s.FirstAtom('Z') != nil {
		t.Error("no chain Z, but got an atom")
	}
}

func TestQueries(t *testing.T) {
	s := parseSmall(t)
	if id := s.PDBID(); id != "1abc" {
		t.Errorf("pdb id %q", id)
	}
	r, err := s.Resolution()
	if err != nil || r != 2.5 {
		t.Errorf("resolution %f, err %v", r, err)
	}
	d, err := s.Distance(8, 9)
	if err != nil || math.Abs(d-0.5) > 1e-9 {
		t.Errorf("distance %f, err %v", d, err)
	}
	if _, err := s.Distance(8, 999); err == nil {
		t.Error("distance to missing atom should fail")
	}
}

func TestMuteRestores(t *testing.T) {
	s := parseSmall(t)
	orig := s.String()
	for i := range s.Records {
		if s.Records[i].Kind == RecAtom {
			s.Records[i].Kind = RecMuted
		}
	}
	muted := s.String()
	if !strings.Contains(muted, "DEATOM      1  N   ALA A   1") {
		t.Errorf("mute did not rename\n%s", muted)
	}
	if len(s.Chains()) != 0 {
		t.Error("muted atoms still count as chains")
	}
	for i := range s.Records {
		if s.Records[i].Kind == RecMuted {
			s.Records[i].Kind = RecAtom
		}
	}
	if s.String() != orig {
		t.Error("unmute did not give back the same text")
	}
}

var partialTests = []struct {
	name  string
	line  string
	nwarn int
}{
	{"no element", "ATOM      2  CA  ALA A   1      11.639   6.071  -5.147  1.00  0.00", 1},
	{"no occ", "ATOM      2  CA  ALA A   1      11.639   6.071  -5.147", 3},
	{"full", "ATOM      2  CA  ALA A   1      11.639   6.071  -5.147  1.00  0.00           C", 0},
}

func TestPartial(t *testing.T) {
	for _, tt := range partialTests {
		a, warn, err := ParseAtom(tt.line, 1)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if len(warn) != tt.nwarn {
			t.Errorf("%s: got %d warnings, wanted %d: %v", tt.name, len(warn), tt.nwarn, warn)
		}
		if a.Occupancy != 1 {
			t.Errorf("%s: occupancy %f", tt.name, a.Occupancy)
		}
	}
	if _, err := Parse(strings.NewReader(partialTests[1].line), &ReadOpts{Strict: true}); err == nil {
		t.Error("strict parse should turn a warning into an error")
	}
}

func TestBadLine(t *testing.T) {
	bad := []string{
		"ATOM      2  CA  ALA A   1      11.639   6.071",
		"ATOM    xx  CA  ALA A   1      11.639   6.071  -5.147  1.00  0.00           C",
		"ATOM      2  CA  ALA A   1      11.6x9   6.071  -5.147  1.00  0.00           C",
	}
	for _, line := range bad {
		_, err := Parse(strings.NewReader("REMARK\n"+line+"\n"), nil)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("wanted a FormatError on %q, got %v", line, err)
			continue
		}
		if fe.Line != 2 {
			t.Errorf("error on line %d, wanted 2", fe.Line)
		}
	}
}

func TestNewTer(t *testing.T) {
	a := Atom{ResName: "SER", Chain: 'A', ResSeq: 53, ICode: ' '}
	r := NewTer(8, &a)
	if got := r.Line(); got != "TER       8      SER A  53" {
		t.Errorf("got %q", got)
	}
	if r.Serial() != 8 || r.ChainID() != 'A' {
		t.Errorf("serial %d chain %c", r.Serial(), r.ChainID())
	}
	a.ICode = 'B'
	r9 := NewTer(9, &a)
	if got := r9.Line(); got != "TER       9      SER A  53B" {
		t.Errorf("with insertion code got %q", got)
	}
	r1 := NewTer(1, nil)
	if got := r1.Line(); got != "TER" {
		t.Errorf("bare TER %q", got)
	}
}

// Reads and writes that die half way must say so.
func TestBrokenIO(t *testing.T) {
	for _, good := range []int{0, 100, len(smallPDB) - 10} {
		r := &pdbtest.BrokenReader{R: strings.NewReader(smallPDB), Good: good}
		if _, err := Parse(r, nil); !errors.Is(err, pdbtest.ErrBroken) {
			t.Errorf("reader broken after %d bytes gave %v", good, err)
		}
	}
	s := parseSmall(t)
	if _, err := s.WriteTo(&pdbtest.BrokenWriter{Good: 50}); !errors.Is(err, pdbtest.ErrBroken) {
		t.Errorf("broken writer gave %v", err)
	}
	if _, err := s.WriteTo(&pdbtest.BrokenWriter{Good: len(smallPDB)}); err != nil {
		t.Error(err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "x.pdb")
	if err := os.WriteFile(plain, []byte(smallPDB), 0644); err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	zw := gzip.NewWriter(&b)
	zw.Write([]byte(smallPDB))
	zw.Close()
	zipped := filepath.Join(dir, "x.pdb.gz")
	if err := os.WriteFile(zipped, b.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.pdb")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	for _, fname := range []string{plain, zipped} {
		s, err := ReadFile(fname, nil)
		if err != nil {
			t.Fatal(err)
		}
		if s.Path != fname || s.String() != smallPDB {
			t.Errorf("reading %s did not give the file back", fname)
		}
	}
	if s, err := ReadFile(empty, nil); err != nil || len(s.Records) != 0 {
		t.Errorf("empty file: %v", err)
	}
	if _, err := ReadFile(dir, nil); err == nil {
		t.Error("reading a directory should fail")
	}
	if _, err := ReadFile(filepath.Join(dir, "nothere"), nil); err == nil {
		t.Error("reading a missing file should fail")
	}

	s, _ := ReadFile(plain, nil)
	out := filepath.Join(dir, "out.pdb")
	if err := s.Flush(out); err != nil {
		t.Fatal(err)
	}
	if got, _ := os.ReadFile(out); string(got) != smallPDB {
		t.Error("flush did not write the same text")
	}
}

func TestClone(t *testing.T) {
	s := parseSmall(t)
	c := s.Clone()
	c.Records[4].Atom.Xyz.X = 99
	if s.Records[4].Atom.Xyz.X == 99 {
		t.Error("changing the clone changed the original")
	}
	if !strings.Contains(c.String(), "99.000") {
		t.Error("changed atom was not regenerated")
	}
}
