// Package transform holds the pipelines that renumber, split, clean and
// edit structures. They work on a *pdb.Structure in memory. Pipelines that
// change which records are there return a new structure and leave their
// input alone. Mute, Unmute and Relabel change the structure they are
// given. Nothing is written to disk here. Callers Flush when they are
// done.
//
// Chains are resolved through Roles every time they are needed, so a
// pipeline sees the structure as it is, not as it was classified before.
// Secondary alternate locations and atoms with an insertion code are
// skipped by every pipeline that rebuilds the atom list.
package transform

import (
	"strings"

	"github.com/andrew-torda/tcrpdb/pdb"
	"github.com/andrew-torda/tcrpdb/role"
)

// Roles finds chains by biological role. *role.Classifier is one.
type Roles interface {
	Chain(s *pdb.Structure, r role.Role) (byte, error)
	TCR(s *pdb.Structure) (alpha, beta byte, err error)
}

// Canonical chain letters written by CleanPDB and the TCR pipelines.
var Canonical = map[role.Role]byte{
	role.MHC:     'A',
	role.B2M:     'B',
	role.Peptide: 'C',
	role.Alpha:   'D',
	role.Beta:    'E',
}

const (
	dockingExpdta = "DOCKING MODEL           RENUMBERED"
	cleanExpdta   = "THEORETICAL MODEL    CLEAN TCR ALPHA:D BETA:E"
)

func hasChain(chains string) func(byte) bool {
	return func(c byte) bool { return strings.IndexByte(chains, c) >= 0 }
}

// subset keeps the records of chains that keep likes. Records with no
// chain pass unless they are MASTER, whose counts would be wrong. ANISOU
// records go with their atom. CONECT records lose references to atoms
// that have gone. With renumber set, atoms, TERs, HELIX and SHEET are
// numbered from 1 and CONECT follows.
func subset(s *pdb.Structure, keep func(byte) bool, renumber bool) *pdb.Structure {
	out := &pdb.Structure{Path: s.Path, Warnings: append([]pdb.Warning(nil), s.Warnings...)}
	lastKept := false
	for _, r := range s.Records {
		switch {
		case r.Kind == pdb.RecMaster:
			continue
		case r.Kind.IsCoord():
			lastKept = keep(r.Atom.Chain) && r.Atom.IsPrimary()
			if !lastKept {
				continue
			}
		case r.Kind == pdb.RecAnisou:
			if !lastKept {
				continue
			}
		case r.ChainID() != 0:
			if !keep(r.ChainID()) {
				continue
			}
		}
		out.Records = append(out.Records, r)
	}
	m := identity(out.Records)
	if renumber {
		m = Renumber(out)
	}
	RemapConect(out, m)
	return out
}

// Subset keeps only the listed chains and renumbers what is left.
func Subset(s *pdb.Structure, chains string) *pdb.Structure {
	return subset(s, hasChain(chains), true)
}

// KeepChains is Subset without renumbering.
func KeepChains(s *pdb.Structure, chains string) *pdb.Structure {
	return subset(s, hasChain(chains), false)
}

// RemoveChain drops one chain and keeps the numbering.
func RemoveChain(s *pdb.Structure, chain byte) *pdb.Structure {
	return subset(s, func(c byte) bool { return c != chain }, false)
}

func splitRole(s *pdb.Structure, rs Roles, r role.Role) (*pdb.Structure, error) {
	c, err := rs.Chain(s, r)
	if err != nil {
		return nil, err
	}
	return Subset(s, string(c)), nil
}

// SplitMHC is the MHC chain on its own, renumbered.
func SplitMHC(s *pdb.Structure, rs Roles) (*pdb.Structure, error) {
	return splitRole(s, rs, role.MHC)
}

// SplitPeptide is the peptide on its own, renumbered.
func SplitPeptide(s *pdb.Structure, rs Roles) (*pdb.Structure, error) {
	return splitRole(s, rs, role.Peptide)
}

// SplitPMHC keeps the MHC and the peptide with their old numbers.
func SplitPMHC(s *pdb.Structure, rs Roles) (*pdb.Structure, error) {
	mhc, err := rs.Chain(s, role.MHC)
	if err != nil {
		return nil, err
	}
	pep, err := rs.Chain(s, role.Peptide)
	if err != nil {
		return nil, err
	}
	return KeepChains(s, string([]byte{mhc, pep})), nil
}

// SplitTCR keeps the two receptor chains with their old numbers. If
// renamed is set the chains are taken to be D and E already, as after
// TrimTCR or CleanPDB, and nothing is classified.
func SplitTCR(s *pdb.Structure, rs Roles, renamed bool) (*pdb.Structure, error) {
	alpha, beta := Canonical[role.Alpha], Canonical[role.Beta]
	if !renamed {
		var err error
		if alpha, beta, err = rs.TCR(s); err != nil {
			return nil, err
		}
	}
	return KeepChains(s, string([]byte{alpha, beta})), nil
}

// headers are the HEADER records followed by an EXPDTA saying what was
// done.
func headers(s *pdb.Structure, expdta string) []pdb.Record {
	var recs []pdb.Record
	for _, r := range s.Records {
		if r.Kind == pdb.RecHeader {
			recs = append(recs, r)
		}
	}
	return pdb.WithExpdta(recs, expdta)
}

// finish puts TERs between chains, numbers everything and ends the file.
func finish(out *pdb.Structure) *pdb.Structure {
	out.Records = InsertTer(out.Records)
	Renumber(out)
	out.Records = append(out.Records, pdb.NewRecord("END"))
	return out
}

// blankAltLoc is for pipelines that have already thrown away the other
// locations, so the 'A' means nothing any more.
func blankAltLoc(a *pdb.Atom) {
	if a.AltLoc == 'A' {
		a.AltLoc = ' '
	}
}

// DockingRenumber gets a file ready for docking. Only the HEADER and the
// primary ATOM records survive. Atoms are numbered from 1 and residues are
// numbered from 1 through the whole file, with a TER after each chain.
func DockingRenumber(s *pdb.Structure) *pdb.Structure {
	out := &pdb.Structure{Path: s.Path, Records: headers(s, dockingExpdta)}
	var rc resCounter
	for _, r := range s.Records {
		if r.Kind != pdb.RecAtom || !r.Atom.IsPrimary() {
			continue
		}
		r.Atom.ResSeq = rc.next(&r.Atom)
		blankAltLoc(&r.Atom)
		out.Records = append(out.Records, r)
	}
	return finish(out)
}

// tcrOnly keeps the primary atoms of the two receptor chains, alpha first,
// as chains D and E. If cut is not nil, residues are numbered from 1 in
// each chain and those past cut[chain] are dropped.
func tcrOnly(s *pdb.Structure, alpha, beta byte, cut map[byte]int) *pdb.Structure {
	out := &pdb.Structure{Path: s.Path, Records: headers(s, cleanExpdta)}
	for i, ch := range []byte{alpha, beta} {
		to := Canonical[role.Alpha]
		if i == 1 {
			if ch == alpha {
				break // same chain twice, it is already in as alpha
			}
			to = Canonical[role.Beta]
		}
		var rc resCounter
		for _, r := range s.Records {
			if r.Kind != pdb.RecAtom || r.Atom.Chain != ch || !r.Atom.IsPrimary() {
				continue
			}
			if cut != nil {
				n := rc.next(&r.Atom)
				if c := cut[ch]; c > 0 && n > c {
					continue
				}
				r.Atom.ResSeq = n
			}
			r.Atom.Chain = to
			blankAltLoc(&r.Atom)
			out.Records = append(out.Records, r)
		}
	}
	return finish(out)
}

// TrimTCR keeps the receptor chains as D and E, numbers each from 1 and
// cuts alpha after alphaCut and beta after betaCut residues. A cutoff of
// zero keeps the whole chain.
func TrimTCR(s *pdb.Structure, rs Roles, alphaCut, betaCut int) (*pdb.Structure, error) {
	alpha, beta, err := rs.TCR(s)
	if err != nil {
		return nil, err
	}
	cut := map[byte]int{beta: betaCut, alpha: alphaCut}
	return tcrOnly(s, alpha, beta, cut), nil
}

// CleanTCR keeps the receptor chains as D and E with their residue
// numbers.
func CleanTCR(s *pdb.Structure, rs Roles) (*pdb.Structure, error) {
	alpha, beta, err := rs.TCR(s)
	if err != nil {
		return nil, err
	}
	return tcrOnly(s, alpha, beta, nil), nil
}

// CleanPDB keeps the five chains of the complex and nothing else, labelled
// A MHC, B B2M, C peptide, D alpha, E beta. The MHC, B2M and peptide come
// first in file order, the receptor chains after them. Every role must
// resolve.
func CleanPDB(s *pdb.Structure, rs Roles) (*pdb.Structure, error) {
	// first match wins when two roles land on one chain
	order := []role.Role{role.Alpha, role.Beta, role.MHC, role.B2M, role.Peptide}
	chainOf := make(map[role.Role]byte)
	for _, r := range order {
		c, err := rs.Chain(s, r)
		if err != nil {
			return nil, err
		}
		chainOf[r] = c
	}
	out := &pdb.Structure{Path: s.Path, Records: headers(s, cleanExpdta)}
	var tcr []pdb.Record
	for _, r := range s.Records {
		if r.Kind != pdb.RecAtom || !r.Atom.IsPrimary() {
			continue
		}
		for _, ro := range order {
			if r.Atom.Chain != chainOf[ro] {
				continue
			}
			r.Atom.Chain = Canonical[ro]
			blankAltLoc(&r.Atom)
			if ro == role.Alpha || ro == role.Beta {
				tcr = append(tcr, r)
			} else {
				out.Records = append(out.Records, r)
			}
			break
		}
	}
	out.Records = append(out.Records, tcr...)
	return finish(out), nil
}
