// Package pdbtest builds small synthetic structures for tests. A chain is
// a sequence laid out on a helix, four backbone atoms per residue, so
// nothing is collinear and fits and principal axes are well defined.
package pdbtest

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/tcrpdb/pdb"
	"github.com/andrew-torda/tcrpdb/pdb/cmmn"
)

var three = map[byte]string{
	'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS",
	'E': "GLU", 'Q': "GLN", 'G': "GLY", 'H': "HIS", 'I': "ILE",
	'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO",
	'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
}

// Chain says what to build.
type Chain struct {
	ID     byte
	Seq    string
	Origin cmmn.Xyz // axis of the helix
	First  int      // number of the first residue, 1 if zero
}

// backbone offsets from the alpha carbon
var backbone = []struct {
	name, elem string
	dx, dy, dz float64
}{
	{"N", "N", -0.5, 1.2, -0.4},
	{"CA", "C", 0, 0, 0},
	{"C", "C", 1.1, 0.6, 0.3},
	{"O", "O", 1.9, 0.2, 1.1},
}

// Atoms gives the atom records of one chain with serials from *serial on.
func Atoms(c Chain, serial *int) []pdb.Record {
	first := c.First
	if first == 0 {
		first = 1
	}
	const radius, rise = 2.3, 1.5
	turn := 100 * math.Pi / 180
	var recs []pdb.Record
	for i := 0; i < len(c.Seq); i++ {
		ca := cmmn.Xyz{
			X: c.Origin.X + radius*math.Cos(turn*float64(i)),
			Y: c.Origin.Y + radius*math.Sin(turn*float64(i)),
			Z: c.Origin.Z + rise*float64(i),
		}
		for _, b := range backbone {
			a := pdb.Atom{
				Serial: *serial, Name: b.name, AltLoc: ' ', ResName: three[c.Seq[i]],
				Chain: c.ID, ResSeq: first + i, ICode: ' ',
				Xyz:       ca.Add(cmmn.Xyz{X: b.dx, Y: b.dy, Z: b.dz}),
				Occupancy: 1, TempFactor: 20, HasTemp: true, Element: b.elem,
			}
			recs = append(recs, pdb.NewRecord(a.Format("ATOM")))
			*serial++
		}
	}
	return recs
}

// Build puts the chains one after another, with a TER after each.
func Build(chains ...Chain) *pdb.Structure {
	s := &pdb.Structure{}
	serial := 1
	for _, c := range chains {
		s.Records = append(s.Records, Atoms(c, &serial)...)
		s.Records = append(s.Records, pdb.NewRecord(fmt.Sprintf("TER   %5d", serial)))
		serial++
	}
	s.Records = append(s.Records, pdb.NewRecord("END"))
	return reparse(s)
}

// reparse goes through text so records carry both fields and raw lines,
// exactly like something read from a file.
func reparse(s *pdb.Structure) *pdb.Structure {
	r, err := pdb.Parse(strings.NewReader(s.String()), nil)
	if err != nil {
		panic("pdbtest built something it cannot read: " + err.Error())
	}
	return r
}

// Sequences of the complex. Alpha, beta, MHC and B2M are the default
// templates, the peptide is nine residues.
const (
	AlphaSeq = "KEVEQNSGPLSVPEGAIASLNCTYSDRGSQSFFTYRQYSGKSPELIMSIYSNGDKEDGRFTAQLNKASQYVSLLIRDSQPSDSATYLCAVTTDSTGKLQFGAGT" +
		"QVVVTPDIQNPDPAVYQLRDSKSSDKSVCLFTDFDSQTNVSQSKDSDVYITDKTVLDMRSMDFKSNSAVATSNKSDFACANAFNNSIIPEDTFFPSPESS"
	BetaSeq = "NAGVTQTPKFQVLKTGQSMTLQCAQDMNHEYMSTYRQDPGMGLRLIHYSVGAGITDQGEVPNGYNVSRSTTEDFPLRLLSAAPSQTSVYFCASRPGLAGGRPEQ" +
		"YFGPGTRLTVTEDLKNVFPPEVAVFEPSEAEISHTQKATLVCLATGFYPDHVELSTTVNGKEVHSGVSTDPQPLKEQPALNDSRYALSSRLRVSATFTQNPRNHF" +
		"RCQVQFYGLSENDETTQDRAKPVTQIVSAEATGRAD"
	MHCSeq = "GSHSMRYFFTSVSRPGRGEPRFIAVGYVDDTQFVRFDSDAASQRMEPRAPWIEQEGPEYWDGETRKVKAHSQTHRVDLGTLRGYYNQSEAGSHTV" +
		"QRMYGCDVGSDWRFLRGYHQYAYDGKDYIALKEDLRSWTAADMAAQTTKHKWEAAHVAEQLRAYLEGTCVEWLRRYLENGKETLQRTDAPKTHMT" +
		"HHAVSDHEATLRCWALSFYPAEITLTWQRDGEDQTQDTELVETRPAGDGTFQKWAAVVVPSGQEQRYTCHVQHEGLPKPLTLRWE"
	B2MSeq     = "MIQRTPKIQVYSRHPAENGKSNFLNCYVSGFHPSDIEVDLLKNGERIEKVEHSDLSFSKDWSFYLLYCTEFTPTEKDEYACRVNHVTLSQPCIVKWDRDM"
	PeptideSeq = "SLLMWITQC"
)

// ComplexChains are A MHC, B B2M, C peptide, D alpha, E beta. The peptide
// sits next to the start of the MHC.
var ComplexChains = []Chain{
	{ID: 'A', Seq: MHCSeq, Origin: cmmn.Xyz{}},
	{ID: 'B', Seq: B2MSeq, Origin: cmmn.Xyz{X: 25}},
	{ID: 'C', Seq: PeptideSeq, Origin: cmmn.Xyz{X: 10, Y: 10}},
	{ID: 'D', Seq: AlphaSeq, Origin: cmmn.Xyz{Y: 40}},
	{ID: 'E', Seq: BetaSeq, Origin: cmmn.Xyz{X: 20, Y: 40}},
}

// Complex is a whole TCR/pMHC file with the extra records real files have:
// HEADER, resolution remark, HELIX and SHEET, a water, CONECTs (one of
// them crossing chains) and MASTER.
func Complex() *pdb.Structure {
	s := &pdb.Structure{}
	add := func(line string) { s.Records = append(s.Records, pdb.NewRecord(line)) }
	add("HEADER    IMMUNE SYSTEM/RECEPTOR                  01-JAN-98   1AO7")
	add("REMARK   2")
	add("REMARK   2 RESOLUTION.    2.60 ANGSTROMS.")
	add("HELIX    1   1 ALA A   50  ALA A   60  1                                  11")
	add("HELIX    2   2 THR D   80  SER D   84  5                                   5")
	add("SHEET    1   A 2 VAL D   3  SER D   7  0")
	add("SHEET    2   A 2 ARG B   3  LYS B   7 -1")
	serial := 1
	var aEnd, dStart int
	for i, c := range ComplexChains {
		if c.ID == 'D' {
			dStart = serial
		}
		s.Records = append(s.Records, Atoms(c, &serial)...)
		if i == 0 {
			w := pdb.Atom{Serial: serial, Name: "O", AltLoc: ' ', ResName: "HOH", Chain: 'A',
				ResSeq: 501, ICode: ' ', Xyz: cmmn.Xyz{X: 3, Y: 3, Z: 3}, Occupancy: 1, Element: "O"}
			s.Records = append(s.Records, pdb.NewRecord(w.Format("HETATM")))
			aEnd = serial
			serial++
		}
		add(fmt.Sprintf("TER   %5d      %s %c%4d", serial, three[c.Seq[len(c.Seq)-1]], c.ID, len(c.Seq)))
		serial++
	}
	add(fmt.Sprintf("CONECT%5d%5d", 1, 2))
	add(fmt.Sprintf("CONECT%5d%5d%5d", 2, 1, dStart))
	add(fmt.Sprintf("CONECT%5d%5d", aEnd, 1))
	add("MASTER      228    0    0    2    2    0    0    6 3300    5    3   42")
	add("END")
	return reparse(s)
}

// WriteTemp writes s into the test's temporary directory and returns the
// file name.
func WriteTemp(t testing.TB, s *pdb.Structure, name string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), name)
	if err := s.Flush(fname); err != nil {
		t.Fatal(err)
	}
	return fname
}

// MustRead is ReadFile for tests.
func MustRead(t testing.TB, fname string) *pdb.Structure {
	t.Helper()
	s, err := pdb.ReadFile(fname, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// Exists is for tests that only care a file was written.
func Exists(fname string) bool {
	_, err := os.Stat(fname)
	return err == nil
}
