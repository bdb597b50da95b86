package transform

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andrew-torda/tcrpdb/pdb"
)

// setKind changes records of one kind in a residue range of a chain to
// another kind. Ends are inclusive.
func setKind(s *pdb.Structure, chain byte, from, to int, old, nu pdb.Kind) int {
	n := 0
	for i := range s.Records {
		r := &s.Records[i]
		if r.Kind != old || r.Atom.Chain != chain || r.Atom.ResSeq < from || r.Atom.ResSeq > to {
			continue
		}
		r.Kind = nu
		n++
	}
	return n
}

// Mute turns the ATOM records of residues from..to of a chain into DEATOM
// records. They stay in the file, but chain and sequence queries and the
// pipelines no longer see them. It returns how many records were muted.
func Mute(s *pdb.Structure, chain byte, from, to int) int {
	return setKind(s, chain, from, to, pdb.RecAtom, pdb.RecMuted)
}

// Unmute undoes Mute. If nothing else was changed in between, the records
// come back exactly as they were.
func Unmute(s *pdb.Structure, chain byte, from, to int) int {
	return setKind(s, chain, from, to, pdb.RecMuted, pdb.RecAtom)
}

// Trim drops residues of chain numbered beyond cutoff. Secondary locations
// are dropped from every chain on the way.
func Trim(s *pdb.Structure, chain byte, cutoff int) *pdb.Structure {
	out := &pdb.Structure{Path: s.Path, Warnings: append([]pdb.Warning(nil), s.Warnings...)}
	for _, r := range s.Records {
		if r.Kind.IsCoord() {
			if !r.Atom.IsPrimary() {
				continue
			}
			if r.Atom.Chain == chain && r.Atom.ResSeq > cutoff {
				continue
			}
		}
		out.Records = append(out.Records, r)
	}
	RemapConect(out, identity(out.Records))
	return out
}

// Relabel renames chains through m. Chains missing from m keep their
// letter. All renames happen at once, so m may swap two chains. It returns
// the number of records changed.
func Relabel(s *pdb.Structure, m map[byte]byte) int {
	n := 0
	for i := range s.Records {
		r := &s.Records[i]
		c := r.ChainID()
		if c == 0 {
			continue
		}
		if to, ok := m[c]; ok && to != c {
			r.SetChainID(to)
			n++
		}
	}
	return n
}

// ParseMapping reads a relabelling like "AB:DE", which takes A to D and B
// to E.
func ParseMapping(s string) (map[byte]byte, error) {
	from, to, ok := strings.Cut(s, ":")
	if !ok || len(from) != len(to) || from == "" {
		return nil, fmt.Errorf("chain mapping %q should look like AB:DE", s)
	}
	m := make(map[byte]byte, len(from))
	for i := range from {
		if _, dup := m[from[i]]; dup {
			return nil, fmt.Errorf("chain %c mapped twice in %q", from[i], s)
		}
		m[from[i]] = to[i]
	}
	return m, nil
}

// Reorder writes the chains in the given order, with a TER after each.
// Chains not in order are dropped, so are secondary locations and
// insertion codes. Records before the first atom stay in
// front, the rest (CONECT and so on) go after the atoms. Atoms are
// renumbered and CONECT follows them.
func Reorder(s *pdb.Structure, order string) (*pdb.Structure, error) {
	groups := make(map[byte][]pdb.Record)
	var head, tail []pdb.Record
	seenAtom, lastKept := false, false
	for _, r := range s.Records {
		switch {
		case r.Kind.IsCoord() || r.Kind == pdb.RecAnisou:
			seenAtom = true
			if r.Kind.IsCoord() {
				lastKept = r.Atom.IsPrimary()
			}
			if !lastKept {
				continue
			}
			groups[r.ChainID()] = append(groups[r.ChainID()], r)
		case r.Kind == pdb.RecTer || r.Kind == pdb.RecMaster || r.Kind == pdb.RecEnd:
		case !seenAtom:
			head = append(head, r)
		default:
			tail = append(tail, r)
		}
	}
	out := &pdb.Structure{Path: s.Path, Warnings: append([]pdb.Warning(nil), s.Warnings...)}
	out.Records = head
	for i := 0; i < len(order); i++ {
		g, ok := groups[order[i]]
		if !ok {
			return nil, fmt.Errorf("no chain %c to put in order %q", order[i], order)
		}
		out.Records = append(out.Records, g...)
	}
	out.Records = InsertTer(out.Records)
	out.Records = append(out.Records, tail...)
	m := Renumber(out)
	RemapConect(out, m)
	out.Records = append(out.Records, pdb.NewRecord("END"))
	return out, nil
}

// Join appends the primary atoms of b to those of a. The header part
// comes from a. Atoms are numbered through both and the CONECT records of
// each are remapped with their own numbers. ANISOU records whose atom
// went are dropped with a warning. A chain letter found in both is a
// warning, not an error.
func Join(a, b *pdb.Structure) *pdb.Structure {
	out := &pdb.Structure{Path: a.Path}
	out.Warnings = append(out.Warnings, a.Warnings...)
	out.Warnings = append(out.Warnings, b.Warnings...)
	n := 0
	var conects []pdb.Record
	take := func(s *pdb.Structure, whole bool) {
		m := make(map[int]int)
		var cs []pdb.Record
		for _, r := range s.Records {
			switch {
			case r.Kind.IsCoord() && !r.Atom.IsPrimary():
				continue
			case r.Kind.IsCoord() || r.Kind == pdb.RecTer:
				n++
				if r.Kind.IsCoord() {
					m[r.Atom.Serial] = n
				}
				r.SetSerial(n)
			case r.Kind == pdb.RecAnisou:
				to, ok := m[r.Serial()]
				if !ok {
					out.Warnings = append(out.Warnings,
						pdb.Warning{Msg: fmt.Sprintf("dropped ANISOU for atom %d, which is gone", r.Serial())})
					continue
				}
				r.SetSerial(to)
			case r.Kind == pdb.RecConect:
				cs = append(cs, r)
				continue
			case r.Kind == pdb.RecMaster || r.Kind == pdb.RecEnd:
				continue
			case !whole:
				continue
			}
			out.Records = append(out.Records, r)
		}
		cs, warn := remapConect(cs, m)
		conects = append(conects, cs...)
		out.Warnings = append(out.Warnings, warn...)
	}
	aChains := string(a.Chains())
	for _, c := range b.Chains() {
		if strings.IndexByte(aChains, c) >= 0 {
			out.Warnings = append(out.Warnings, pdb.Warning{Msg: fmt.Sprintf("chain %c is in both files", c)})
		}
	}
	take(a, true)
	take(b, false)
	out.Records = append(out.Records, conects...)
	out.Records = append(out.Records, pdb.NewRecord("END"))
	return out
}

// FastaTCR writes the alpha then beta sequence as one FASTA entry, 80
// residues to a line. The entry is named by the PDB code, or the file
// name if there is no header. Nothing is written if both chains are empty.
func FastaTCR(w io.Writer, s *pdb.Structure, rs Roles) error {
	const width = 80
	alpha, beta, err := rs.TCR(s)
	if err != nil {
		return err
	}
	seq := s.Sequence(alpha) + s.Sequence(beta)
	if seq == "" {
		return nil
	}
	name := s.PDBID()
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(s.Path), filepath.Ext(s.Path))
	}
	var b strings.Builder
	b.WriteString(">" + name + "\n")
	for len(seq) > width {
		b.WriteString(seq[:width] + "\n")
		seq = seq[width:]
	}
	b.WriteString(seq + "\n")
	_, err = io.WriteString(w, b.String())
	return err
}
