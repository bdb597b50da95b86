// Package role works out which chain of a TCR/peptide/MHC complex is
// which. Chains are aligned against template sequences and the best scorer
// gets the role. The peptide is found by length and distance instead.
// Nothing is cached. Every call looks at the structure as it is now.
package role

import (
	"errors"
	"fmt"
	"sort"

	"github.com/andrew-torda/tcrpdb/gotoh"
	"github.com/andrew-torda/tcrpdb/pdb"
	"github.com/andrew-torda/tcrpdb/pdb/geom"
	"github.com/andrew-torda/tcrpdb/submat"
)

// Role is a biological job a chain can have.
type Role string

const (
	Alpha   Role = "ALPHA"
	Beta    Role = "BETA"
	MHC     Role = "MHC"
	B2M     Role = "B2M"
	Peptide Role = "PEPTIDE"
)

// Roles in the order we usually print them.
var Roles = []Role{MHC, B2M, Peptide, Alpha, Beta}

// Assignment maps roles to chain identifiers.
type Assignment map[Role]byte

// String is like "MHC:A B2M:B PEPTIDE:C ALPHA:D BETA:E", leaving out
// roles that were not resolved.
func (a Assignment) String() string {
	var s string
	for _, r := range Roles {
		if c, ok := a[r]; ok {
			if s != "" {
				s += " "
			}
			s += string(r) + ":" + string(c)
		}
	}
	return s
}

// ResolutionError says a role could not be given to any chain.
type ResolutionError struct {
	Role   Role
	Reason string
}

func (e *ResolutionError) Error() string {
	return "cannot resolve " + string(e.Role) + " chain: " + e.Reason
}

// Params are the tunable parts of the heuristics.
type Params struct {
	Pnlty          gotoh.Pnlty // gaps in the global alignment
	PeptideMaxLen  int         // a peptide has fewer residues than this
	PeptideMaxDist float64     // Angstrom from the MHC's first atom
	B2MFrac        float64     // fraction of the best B2M score to stay in the running
}

// DefaultParams are the values the heuristics were tuned with.
func DefaultParams() Params {
	return Params{
		Pnlty:          gotoh.Pnlty{Open: 10, Wdn: 1},
		PeptideMaxLen:  20,
		PeptideMaxDist: 35,
		B2MFrac:        0.98,
	}
}

// Classifier holds the templates and the matrix. It is safe to share, since
// nothing in it changes after New.
type Classifier struct {
	refs   References
	params Params
	smat   *submat.Submat
}

// New makes a classifier. Empty references are taken from Default and a
// nil matrix means BLOSUM62.
func New(refs References, params Params, smat *submat.Submat) (*Classifier, error) {
	if smat == nil {
		var err error
		if smat, err = submat.Blosum62(); err != nil {
			return nil, err
		}
	}
	return &Classifier{refs: refs.merge(Default()), params: params, smat: smat}, nil
}

// Score is the global alignment score of a sequence against a template.
func (c *Classifier) Score(seq, ref string) float32 {
	if len(seq) == 0 || len(ref) == 0 {
		return 0
	}
	scrMat := c.smat.ScoreSeqs([]byte(seq), []byte(ref))
	_, s := gotoh.Align(scrMat, &gotoh.AlScore{Pnlty: c.params.Pnlty, AlType: gotoh.Global})
	return s
}

type scored struct {
	chain byte
	score float32
}

// best returns the first entry with the top score.
func best(cands []scored) scored {
	b := cands[0]
	for _, c := range cands[1:] {
		if c.score > b.score {
			b = c
		}
	}
	return b
}

func (c *Classifier) scoreAll(s *pdb.Structure, chains []byte, ref string) []scored {
	cands := make([]scored, len(chains))
	for i, ch := range chains {
		cands[i] = scored{ch, c.Score(s.Sequence(ch), ref)}
	}
	return cands
}

// TCR finds the alpha and beta chains. Every chain is scored against the
// alpha template. Beta scores are only taken for chains next to some other
// chain in file order, since the two receptor chains are expected to be
// neighbours. The two answers are not checked against each other.
func (c *Classifier) TCR(s *pdb.Structure) (alpha, beta byte, err error) {
	chains := s.Chains()
	if len(chains) == 0 {
		return 0, 0, &ResolutionError{Alpha, "no chains"}
	}
	alpha = best(c.scoreAll(s, chains, c.refs.Alpha)).chain

	neighbour := make([]bool, len(chains))
	for p := range chains {
		if p+1 < len(chains) {
			neighbour[p+1] = true
		}
		if p-1 >= 0 {
			neighbour[p-1] = true
		}
	}
	var bchains []byte
	for p, ch := range chains {
		if neighbour[p] {
			bchains = append(bchains, ch)
		}
	}
	if len(bchains) == 0 {
		return alpha, 0, &ResolutionError{Beta, "need at least two chains"}
	}
	beta = best(c.scoreAll(s, bchains, c.refs.Beta)).chain
	return alpha, beta, nil
}

// MHC is the chain with the best score against the MHC template.
func (c *Classifier) MHC(s *pdb.Structure) (byte, error) {
	chains := s.Chains()
	if len(chains) == 0 {
		return 0, &ResolutionError{MHC, "no chains"}
	}
	return best(c.scoreAll(s, chains, c.refs.MHC)).chain, nil
}

// B2M scores every chain against the B2M template. Chains within B2MFrac
// of the best score survive, and the alphabetically first of them wins.
// The best scorer always survives, whatever B2MFrac is.
// This picks one copy when a file has several near identical B2Ms.
func (c *Classifier) B2M(s *pdb.Structure) (byte, error) {
	chains := s.Chains()
	if len(chains) == 0 {
		return 0, &ResolutionError{B2M, "no chains"}
	}
	cands := c.scoreAll(s, chains, c.refs.B2M)
	b := best(cands)
	top := b.score
	keep := []byte{b.chain}
	for _, cd := range cands {
		switch {
		case cd.chain == b.chain:
		case top > 0 && float64(cd.score)/float64(top) >= c.params.B2MFrac:
			keep = append(keep, cd.chain)
		case top <= 0 && cd.score == top:
			keep = append(keep, cd.chain)
		}
	}
	sort.Slice(keep, func(i, j int) bool { return keep[i] < keep[j] })
	return keep[0], nil
}

// Peptide looks at chains shorter than PeptideMaxLen residues, in file
// order. The first one whose first or last atom is within PeptideMaxDist
// of the first atom of the MHC chain is the peptide.
func (c *Classifier) Peptide(s *pdb.Structure) (byte, error) {
	mhc, err := c.MHC(s)
	if err != nil {
		return 0, &ResolutionError{Peptide, err.Error()}
	}
	return c.peptide(s, mhc)
}

func (c *Classifier) peptide(s *pdb.Structure, mhc byte) (byte, error) {
	anchor := s.FirstAtom(mhc)
	if anchor == nil {
		return 0, &ResolutionError{Peptide, "MHC chain has no atoms"}
	}
	ncand := 0
	for _, ch := range s.Chains() {
		if ch == mhc || len(s.Residues(ch)) >= c.params.PeptideMaxLen {
			continue
		}
		ncand++
		first, last := s.FirstAtom(ch), s.LastAtom(ch)
		if geom.Dist(anchor.Xyz, first.Xyz) <= c.params.PeptideMaxDist ||
			geom.Dist(anchor.Xyz, last.Xyz) <= c.params.PeptideMaxDist {
			return ch, nil
		}
	}
	if ncand == 0 {
		return 0, &ResolutionError{Peptide,
			fmt.Sprintf("no chain shorter than %d residues", c.params.PeptideMaxLen)}
	}
	return 0, &ResolutionError{Peptide,
		fmt.Sprintf("none of %d short chains within %.1f A of the MHC", ncand, c.params.PeptideMaxDist)}
}

// Classify tries every role. Roles that resolve are in the assignment
// even if others fail. The error joins every failure.
func (c *Classifier) Classify(s *pdb.Structure) (Assignment, error) {
	a := make(Assignment)
	var errs []error
	if alpha, beta, err := c.TCR(s); err != nil {
		errs = append(errs, err)
		if alpha != 0 {
			a[Alpha] = alpha
		}
	} else {
		a[Alpha], a[Beta] = alpha, beta
	}
	mhc, err := c.MHC(s)
	if err != nil {
		errs = append(errs, err)
	} else {
		a[MHC] = mhc
		if p, err := c.peptide(s, mhc); err != nil {
			errs = append(errs, err)
		} else {
			a[Peptide] = p
		}
	}
	if b, err := c.B2M(s); err != nil {
		errs = append(errs, err)
	} else {
		a[B2M] = b
	}
	return a, errors.Join(errs...)
}

// Chain resolves a single role.
func (c *Classifier) Chain(s *pdb.Structure, r Role) (byte, error) {
	switch r {
	case Alpha:
		a, _, err := c.TCR(s)
		if a != 0 {
			return a, nil
		}
		return 0, err
	case Beta:
		_, b, err := c.TCR(s)
		return b, err
	case MHC:
		return c.MHC(s)
	case B2M:
		return c.B2M(s)
	case Peptide:
		return c.Peptide(s)
	}
	return 0, &ResolutionError{r, "unknown role"}
}
