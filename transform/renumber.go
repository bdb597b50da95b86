package transform

import (
	"fmt"

	"github.com/andrew-torda/tcrpdb/pdb"
)

// Renumber gives atom and TER records serial numbers from 1, in file
// order, with one counter for both. ANISOU records follow their atom.
// HELIX and SHEET records are numbered from 1, each kind with its own
// counter. The returned map takes old atom serials to new ones. If an old
// serial was used twice, the first use wins.
func Renumber(s *pdb.Structure) map[int]int {
	m := make(map[int]int)
	var n, nhelix, nsheet int
	for i := range s.Records {
		r := &s.Records[i]
		switch {
		case r.Kind.IsCoord():
			n++
			if _, ok := m[r.Atom.Serial]; !ok {
				m[r.Atom.Serial] = n
			}
			r.SetSerial(n)
		case r.Kind == pdb.RecAnisou:
			if k, ok := m[r.Serial()]; ok {
				r.SetSerial(k)
			}
		case r.Kind == pdb.RecTer:
			n++
			r.SetSerial(n)
		case r.Kind == pdb.RecHelix:
			nhelix++
			r.SetSerial(nhelix)
		case r.Kind == pdb.RecSheet:
			nsheet++
			r.SetSerial(nsheet)
		}
	}
	return m
}

// InsertTer throws away the TER records and puts new ones wherever the
// chain changes between atoms and after the last atom. Serials of the new
// TERs are left for Renumber.
func InsertTer(recs []pdb.Record) []pdb.Record {
	lastIdx := -1
	for i := range recs {
		if recs[i].Kind.IsCoord() || recs[i].Kind == pdb.RecAnisou {
			lastIdx = i
		}
	}
	out := make([]pdb.Record, 0, len(recs))
	var prev *pdb.Atom
	for i := range recs {
		r := recs[i]
		if r.Kind == pdb.RecTer {
			continue
		}
		if r.Kind.IsCoord() {
			if prev != nil && prev.Chain != r.Atom.Chain {
				out = append(out, pdb.NewTer(0, prev))
			}
			prev = &recs[i].Atom
		}
		out = append(out, r)
		if i == lastIdx && prev != nil {
			out = append(out, pdb.NewTer(0, prev))
		}
	}
	return out
}

// remapConect rewrites CONECT records through m. A partner that is not in
// m is dropped from its record. If the atom itself is not in m, or no
// partner is left, the whole record goes.
func remapConect(recs []pdb.Record, m map[int]int) ([]pdb.Record, []pdb.Warning) {
	out := make([]pdb.Record, 0, len(recs))
	var warn []pdb.Warning
	for i := range recs {
		r := &recs[i]
		if r.Kind != pdb.RecConect {
			out = append(out, *r)
			continue
		}
		serials, err := pdb.ConectSerials(r)
		if err != nil || len(serials) == 0 {
			warn = append(warn, pdb.Warning{Msg: "dropped unreadable CONECT " + r.Raw})
			continue
		}
		base, ok := m[serials[0]]
		if !ok {
			warn = append(warn, pdb.Warning{Msg: fmt.Sprintf("dropped CONECT for atom %d, which is gone", serials[0])})
			continue
		}
		kept := []int{base}
		for _, p := range serials[1:] {
			if q, ok := m[p]; ok {
				kept = append(kept, q)
			} else {
				warn = append(warn, pdb.Warning{Msg: fmt.Sprintf("dropped bond %d-%d from CONECT", serials[0], p)})
			}
		}
		if len(kept) == 1 {
			continue
		}
		out = append(out, pdb.NewConect(kept))
	}
	return out, warn
}

// RemapConect rewrites the CONECT records of s through m, which is
// usually what Renumber returned. Anything dropped is noted in
// s.Warnings.
func RemapConect(s *pdb.Structure, m map[int]int) {
	var warn []pdb.Warning
	s.Records, warn = remapConect(s.Records, m)
	s.Warnings = append(s.Warnings, warn...)
}

// identity maps the serial of every atom record to itself, so that
// RemapConect only drops references to atoms that have gone.
func identity(recs []pdb.Record) map[int]int {
	m := make(map[int]int)
	for i := range recs {
		if recs[i].Kind.IsCoord() {
			m[recs[i].Atom.Serial] = recs[i].Atom.Serial
		}
	}
	return m
}

// resCounter numbers residues from 1. It moves on whenever the residue
// number or the chain changes.
type resCounter struct {
	n, last int
	chain   byte
}

func (c *resCounter) next(a *pdb.Atom) int {
	if c.n == 0 || a.ResSeq != c.last || a.Chain != c.chain {
		c.n++
		c.last, c.chain = a.ResSeq, a.Chain
	}
	return c.n
}
