package pdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrew-torda/tcrpdb/pdb/geom"
)

// Residue is one entry in the sequence of a chain.
type Residue struct {
	Num  int    // residue number from the file
	Name string // three letter name
	Code byte   // one letter code
}

// Chains returns the chain identifiers of ATOM records in the order they
// are first seen.
func (s *Structure) Chains() []byte {
	var chains []byte
	seen := make(map[byte]bool)
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind != RecAtom || seen[r.Atom.Chain] {
			continue
		}
		seen[r.Atom.Chain] = true
		chains = append(chains, r.Atom.Chain)
	}
	return chains
}

// Residues returns one entry per residue of a chain. A residue is counted
// on the first of its atoms whose number matches the running count, so
// repeated numbers (insertion codes) and secondary locations are not
// counted twice. A jump in numbering moves the count forward.
func (s *Structure) Residues(chain byte) []Residue {
	var res []Residue
	count, started := 0, false
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind != RecAtom || r.Atom.Chain != chain {
			continue
		}
		a := &r.Atom
		if !started {
			count, started = a.ResSeq, true
		}
		switch {
		case a.ResSeq == count:
			if !a.IsAltSecondary() {
				res = append(res, Residue{a.ResSeq, a.ResName, OneLetter(a.ResName)})
				count++
			}
		case a.ResSeq > count:
			count = a.ResSeq
			if !a.IsAltSecondary() {
				res = append(res, Residue{a.ResSeq, a.ResName, OneLetter(a.ResName)})
				count++
			}
		}
	}
	return res
}

// Sequence is the one letter sequence of a chain.
func (s *Structure) Sequence(chain byte) string {
	res := s.Residues(chain)
	b := make([]byte, len(res))
	for i, r := range res {
		b[i] = r.Code
	}
	return string(b)
}

// Atoms returns pointers to the ATOM records of a chain, so callers may
// change them in place.
func (s *Structure) Atoms(chain byte) []*Atom {
	var atoms []*Atom
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind == RecAtom && r.Atom.Chain == chain {
			atoms = append(atoms, &r.Atom)
		}
	}
	return atoms
}

// AllAtoms returns every ATOM record, whatever the chain.
func (s *Structure) AllAtoms() []*Atom {
	var atoms []*Atom
	for i := range s.Records {
		if r := &s.Records[i]; r.Kind == RecAtom {
			atoms = append(atoms, &r.Atom)
		}
	}
	return atoms
}

// FirstAtom returns the first ATOM of a chain, or nil.
func (s *Structure) FirstAtom(chain byte) *Atom {
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind == RecAtom && r.Atom.Chain == chain {
			return &r.Atom
		}
	}
	return nil
}

// LastAtom returns the last ATOM of a chain, or nil.
func (s *Structure) LastAtom(chain byte) *Atom {
	for i := len(s.Records) - 1; i >= 0; i-- {
		r := &s.Records[i]
		if r.Kind == RecAtom && r.Atom.Chain == chain {
			return &r.Atom
		}
	}
	return nil
}

// AtomBySerial finds the ATOM with serial number n.
func (s *Structure) AtomBySerial(n int) *Atom {
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind == RecAtom && r.Atom.Serial == n {
			return &r.Atom
		}
	}
	return nil
}

// Distance is the distance between two atoms given by serial number.
func (s *Structure) Distance(n1, n2 int) (float64, error) {
	a1, a2 := s.AtomBySerial(n1), s.AtomBySerial(n2)
	if a1 == nil || a2 == nil {
		return 0, fmt.Errorf("no atom with serial %d or %d", n1, n2)
	}
	return geom.Dist(a1.Xyz, a2.Xyz), nil
}

// PDBID is the four character code from the HEADER record, lower case.
// It is empty if there is no header or the header is short.
func (s *Structure) PDBID() string {
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind == RecHeader {
			return strings.ToLower(strings.TrimSpace(col(r.Raw, fIDCode)))
		}
	}
	return ""
}

// Resolution reads the value from the line after the first "REMARK   2".
func (s *Structure) Resolution() (float64, error) {
	found := false
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind != RecRemark {
			continue
		}
		if !found {
			found = col(r.Raw, fRemarkNum) == "   2"
			continue
		}
		v := strings.TrimSpace(col(r.Raw, fResolution))
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, &FormatError{Field: fResolution.name, Text: r.Raw, Err: err}
		}
		return x, nil
	}
	return 0, fmt.Errorf("no resolution remark in %s", s.Path)
}
