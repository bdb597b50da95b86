// Fields of the records that are not atoms. Pipelines renumber and relabel
// TER, HELIX, SHEET and CONECT records through these, so the column
// offsets stay in the table in record.go.

package pdb

import (
	"fmt"
	"strconv"
	"strings"
)

// setCol puts s into the columns of f, padding the line with blanks if it
// is too short. s is cut or blank padded to the width of f.
func setCol(line string, f field, s string) string {
	w := f.hi - f.lo
	if len(s) > w {
		s = s[len(s)-w:]
	}
	s = fmt.Sprintf("%-*s", w, s)
	if len(line) < f.hi {
		line += strings.Repeat(" ", f.hi-len(line))
	}
	return line[:f.lo] + s + line[f.hi:]
}

// chainFields are the columns holding chain identifiers for each kind of
// record that is not an atom.
func chainFields(k Kind) []field {
	switch k {
	case RecTer, RecAnisou:
		return []field{fChain}
	case RecHelix:
		return []field{fHelixChain, fHelixChain2}
	case RecSheet:
		return []field{fSheetChain, fSheetChain2}
	}
	return nil
}

// Serial is the atom number of atom, ANISOU and TER records, zero if
// there is none.
func (r *Record) Serial() int {
	if r.Kind.IsCoord() {
		return r.Atom.Serial
	}
	if r.Kind == RecTer || r.Kind == RecAnisou {
		n, _ := strconv.Atoi(strings.TrimSpace(col(r.Raw, fSerial)))
		return n
	}
	return 0
}

// ChainID is the chain of an atom, ANISOU, TER, HELIX or SHEET record. For HELIX
// and SHEET it is the chain of the first residue. Other kinds give zero.
func (r *Record) ChainID() byte {
	if r.Kind.IsCoord() {
		return r.Atom.Chain
	}
	if f := chainFields(r.Kind); f != nil {
		if len(r.Raw) <= f[0].lo {
			return ' '
		}
		return r.Raw[f[0].lo]
	}
	return 0
}

// SetChainID moves the record to chain c. HELIX and SHEET records have a
// second chain column for the last residue, which is changed too if it
// matched the first.
func (r *Record) SetChainID(c byte) {
	if r.Kind.IsCoord() {
		r.Atom.Chain = c
		return
	}
	old := r.ChainID()
	for i, f := range chainFields(r.Kind) {
		if i > 0 && colByte(r.Raw, f) != old {
			continue
		}
		r.Raw = setCol(r.Raw, f, string(c))
	}
}

// SetSerial renumbers atom, ANISOU and TER records, and the serial number of
// HELIX and SHEET records. Other kinds are left alone.
func (r *Record) SetSerial(n int) {
	switch {
	case r.Kind.IsCoord():
		r.Atom.Serial = n
	case r.Kind == RecTer || r.Kind == RecAnisou:
		r.Raw = setCol(r.Raw, fSerial, fmt.Sprintf("%5d", n))
	case r.Kind == RecHelix:
		r.Raw = setCol(r.Raw, fHelixSerial, fmt.Sprintf("%3d", n))
	case r.Kind == RecSheet:
		r.Raw = setCol(r.Raw, fSheetStrand, fmt.Sprintf("%3d", n))
	}
}

// NewTer makes a TER record closing the chain whose last atom is a.
// A nil atom gives a bare TER.
func NewTer(serial int, a *Atom) Record {
	if a == nil {
		return NewRecord("TER")
	}
	line := fmt.Sprintf("TER   %5d      %3s %c%4d%c",
		serial, a.ResName, orBlank(a.Chain), a.ResSeq, orBlank(a.ICode))
	return NewRecord(strings.TrimRight(line, " "))
}

// ConectSerials reads the atom numbers of a CONECT record. The first is
// the atom itself, the rest its partners. Blank slots are skipped.
func ConectSerials(r *Record) ([]int, error) {
	if r.Kind != RecConect {
		return nil, fmt.Errorf("%s record is not CONECT", r.Kind)
	}
	var serials []int
	for i := 0; i < conectMax; i++ {
		f := field{"conect serial", fSerial.lo + i*conectWidth, fSerial.lo + (i+1)*conectWidth}
		s := strings.TrimSpace(col(r.Raw, f))
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &FormatError{Field: f.name, Text: r.Raw, Err: err}
		}
		serials = append(serials, n)
	}
	return serials, nil
}

// NewConect writes a CONECT record. Only the first conectMax numbers fit.
func NewConect(serials []int) Record {
	var b strings.Builder
	b.WriteString("CONECT")
	for i, n := range serials {
		if i == conectMax {
			break
		}
		fmt.Fprintf(&b, "%5d", n)
	}
	return NewRecord(b.String())
}

// WithExpdta returns a copy of recs with an EXPDTA line after the HEADER.
// Without a HEADER nothing is added.
func WithExpdta(recs []Record, text string) []Record {
	var out []Record
	for _, r := range recs {
		out = append(out, r)
		if r.Kind == RecHeader {
			out = append(out, NewRecord(fmt.Sprintf("EXPDTA    %s", text)))
		}
	}
	return out
}
