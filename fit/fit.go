// Package fit compares and moves whole structures: RMSD over aligned
// residues, least squares superposition of one structure on another and
// a canonical orientation along the principal axes.
//
// Chains are paired by the caller (target chain order against reference
// chain order). For each pair the sequences get a local alignment with a
// very high gap penalty, and only residues in the first gapless stretch
// of that alignment are compared.
package fit

import (
	"errors"
	"fmt"

	"github.com/andrew-torda/tcrpdb/gotoh"
	"github.com/andrew-torda/tcrpdb/pdb"
	"github.com/andrew-torda/tcrpdb/pdb/cmmn"
	"github.com/andrew-torda/tcrpdb/pdb/geom"
)

// EmptyComparisonError says no atom pairs were left to compare.
type EmptyComparisonError struct {
	Reason string
}

func (e *EmptyComparisonError) Error() string { return "nothing to compare: " + e.Reason }

// Params score the sequence alignment that picks the window.
type Params struct {
	Match    float32 `mapstructure:"match"`
	Mismatch float32 `mapstructure:"mismatch"`
	Gap      float32 `mapstructure:"gap"`
}

// DefaultParams make gaps so expensive that the window is one ungapped
// stretch.
func DefaultParams() Params { return Params{Match: 2, Mismatch: 0, Gap: 100} }

// window is a half open range of residue positions, counted from zero.
type window struct{ start, end int }

// windows aligns each chain pair and returns the target and reference
// windows, one per pair.
func windows(target, ref *pdb.Structure, tarChains, refChains string, p Params) ([]window, []window, error) {
	if len(tarChains) != len(refChains) {
		return nil, nil, fmt.Errorf("chain orders %q and %q differ in length", tarChains, refChains)
	}
	if len(tarChains) == 0 {
		return nil, nil, errors.New("no chains given")
	}
	sc := gotoh.AlScore{Pnlty: gotoh.Pnlty{Open: 0, Wdn: p.Gap}, AlType: gotoh.Local}
	ms := gotoh.MatchScr{Match: p.Match, Mismatch: p.Mismatch}
	tw := make([]window, len(tarChains))
	rw := make([]window, len(refChains))
	for k := range tarChains {
		ts, rs := target.Sequence(tarChains[k]), ref.Sequence(refChains[k])
		if ts == "" || rs == "" {
			continue // empty window, nothing collected for this pair
		}
		pairs, _ := gotoh.Align(gotoh.IdentScore([]byte(ts), []byte(rs), &ms), &sc)
		t0, t1, r0, r1, ok := gotoh.Window(pairs)
		if !ok {
			continue
		}
		tw[k], rw[k] = window{t0, t1}, window{r0, r1}
	}
	return tw, rw, nil
}

// alphaCarbons collects the CA of each residue in the window. The window
// is shifted by the number of the chain's first residue. When the
// numbering skips, the end of the window moves out by the size of the
// skip, so the window still covers the same number of residues.
func alphaCarbons(s *pdb.Structure, chain byte, w window) cmmn.XyzSl {
	var xs cmmn.XyzSl
	first := true
	var start, end, last int
	have := false
	for _, a := range s.Atoms(chain) {
		if a.Name != "CA" || a.ResName == "HOH" || !a.IsPrimary() {
			continue
		}
		if first {
			start, end = w.start+a.ResSeq, w.end+a.ResSeq
			first = false
		}
		if a.ResSeq < start || a.ResSeq >= end {
			continue
		}
		if have && a.ResSeq != last+1 {
			end += a.ResSeq - last - 1
		}
		xs = append(xs, a.Xyz)
		last, have = a.ResSeq, true
	}
	return xs
}

// windowAtoms collects non-hydrogen atoms, or only alpha carbons, of the
// residues whose position in the chain (counted from zero, one count per
// change of residue number) is in the window.
func windowAtoms(s *pdb.Structure, chain byte, w window, caOnly bool) cmmn.XyzSl {
	var xs cmmn.XyzSl
	count, last := -1, 0
	for _, a := range s.Atoms(chain) {
		if (caOnly && a.Name != "CA") || a.IsHydrogen() || a.IsAltSecondary() {
			continue
		}
		switch {
		case count == -1:
			count, last = 0, a.ResSeq
		case a.ResSeq != last:
			count++
			last = a.ResSeq
		}
		if count >= w.start && count < w.end {
			xs = append(xs, a.Xyz)
		}
	}
	return xs
}

func truncate(a, b cmmn.XyzSl) (cmmn.XyzSl, cmmn.XyzSl) {
	if len(a) > len(b) {
		return a[:len(b)], b
	}
	return a, b[:len(a)]
}

// RMSD compares target and reference as they stand, without moving
// anything. Hydrogens are always left out. If the two atom lists differ in
// length, the longer is cut to the shorter.
func RMSD(target, ref *pdb.Structure, tarChains, refChains string, caOnly bool, p Params) (float64, error) {
	tw, rw, err := windows(target, ref, tarChains, refChains, p)
	if err != nil {
		return 0, err
	}
	var txs, rxs cmmn.XyzSl
	for k := range tarChains {
		txs = append(txs, windowAtoms(target, tarChains[k], tw[k], caOnly)...)
		rxs = append(rxs, windowAtoms(ref, refChains[k], rw[k], caOnly)...)
	}
	txs, rxs = truncate(txs, rxs)
	if len(txs) == 0 {
		return 0, &EmptyComparisonError{"no atoms in the aligned windows"}
	}
	return geom.RMSD(txs, rxs)
}

// Superimpose moves a copy of target onto ref using the alpha carbons of
// the aligned windows. Every coordinate record of the copy is moved. The
// RMSD is over the fitted alpha carbons.
func Superimpose(target, ref *pdb.Structure, tarChains, refChains string, p Params) (*pdb.Structure, float64, error) {
	tw, rw, err := windows(target, ref, tarChains, refChains, p)
	if err != nil {
		return nil, 0, err
	}
	var txs, rxs cmmn.XyzSl
	for k := range tarChains {
		txs = append(txs, alphaCarbons(target, tarChains[k], tw[k])...)
		rxs = append(rxs, alphaCarbons(ref, refChains[k], rw[k])...)
	}
	txs, rxs = truncate(txs, rxs)
	if len(txs) == 0 {
		return nil, 0, &EmptyComparisonError{"no alpha carbons in the aligned windows"}
	}
	tr, err := geom.Kabsch(txs, rxs)
	if err != nil {
		return nil, 0, err
	}
	moved := make(cmmn.XyzSl, len(txs))
	for i, x := range txs {
		moved[i] = tr.Apply(x)
	}
	rmsd, err := geom.RMSD(moved, rxs)
	if err != nil {
		return nil, 0, err
	}
	out := target.Clone()
	for i := range out.Records {
		if r := &out.Records[i]; r.Kind.IsCoord() {
			r.Atom.Xyz = tr.Apply(r.Atom.Xyz)
		}
	}
	return out, rmsd, nil
}

// Orient returns a copy with the centroid of the coordinate records
// (ATOM, HETATM and muted atoms, everything that gets moved) at the
// origin and the principal axes along x, y and z, largest variance first.
// Two flips make the answer unique: the last atom must end up with
// positive y (else turn 180 degrees about x) and then positive x (else
// turn 180 degrees about y).
func Orient(s *pdb.Structure) (*pdb.Structure, error) {
	var xs cmmn.XyzSl
	for i := range s.Records {
		if r := &s.Records[i]; r.Kind.IsCoord() {
			xs = append(xs, r.Atom.Xyz)
		}
	}
	if len(xs) == 0 {
		return nil, &EmptyComparisonError{"no atoms to orient"}
	}
	c, axes, err := geom.PrincipalAxes(xs)
	if err != nil {
		return nil, err
	}
	last := xs[len(xs)-1].Sub(c)
	if axes.Project(last).Y < 0 {
		axes.Negate(1, 2)
	}
	if axes.Project(last).X < 0 {
		axes.Negate(0, 2)
	}
	out := s.Clone()
	for i := range out.Records {
		if r := &out.Records[i]; r.Kind.IsCoord() {
			r.Atom.Xyz = axes.Project(r.Atom.Xyz.Sub(c))
		}
	}
	return out, nil
}
