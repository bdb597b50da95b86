// Fixed column layout of coordinate records and the atom parser/writer.
// Every column offset used anywhere in the module lives in the table
// below. Offsets are zero based, half open.

package pdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrew-torda/tcrpdb/pdb/cmmn"
)

type field struct {
	name   string
	lo, hi int
}

var (
	fRecName = field{"record name", 0, 6}
	fSerial  = field{"serial", 6, 11}
	fName    = field{"atom name", 12, 16}
	fAltLoc  = field{"alt loc", 16, 17}
	fResName = field{"residue name", 17, 20}
	fChain   = field{"chain id", 21, 22}
	fResSeq  = field{"residue number", 22, 26}
	fICode   = field{"insertion code", 26, 27}
	fX       = field{"x", 30, 38}
	fY       = field{"y", 38, 46}
	fZ       = field{"z", 46, 54}
	fOcc     = field{"occupancy", 54, 60}
	fTemp    = field{"temperature factor", 60, 66}
	fSegID   = field{"segment id", 72, 76}
	fElement = field{"element", 76, 78}
	fCharge  = field{"charge", 78, 80}

	fHelixSerial = field{"helix serial", 7, 10}
	fHelixChain  = field{"helix chain", 19, 20}
	fHelixChain2 = field{"helix end chain", 31, 32}
	fSheetStrand = field{"sheet strand", 7, 10}
	fSheetChain  = field{"sheet chain", 21, 22}
	fSheetChain2 = field{"sheet end chain", 32, 33}
	fIDCode      = field{"id code", 62, 66}
	fRemarkNum   = field{"remark number", 6, 10}
	fResolution  = field{"resolution", 23, 30}
)

// conectWidth is the width of each serial on a CONECT record. The first
// starts at fSerial.lo.
const (
	conectWidth = 5
	conectMax   = 11 // atom itself, four bonds, six h-bond slots
)

// elementStart is where an element symbol may start. A line must be longer
// than this for us to look for one.
const elementStart = 76

// col returns the columns of f from line, clipped if the line is short.
func col(line string, f field) string {
	if len(line) <= f.lo {
		return ""
	}
	if len(line) < f.hi {
		return line[f.lo:]
	}
	return line[f.lo:f.hi]
}

// colByte returns the single character at f.lo or a blank.
func colByte(line string, f field) byte {
	if len(line) <= f.lo {
		return ' '
	}
	return line[f.lo]
}

// Atom is one ATOM, HETATM or muted record.
type Atom struct {
	Serial     int
	Name       string // trimmed, like "CA"
	AltLoc     byte
	ResName    string // trimmed, like "ALA"
	Chain      byte
	ResSeq     int
	ICode      byte
	Xyz        cmmn.Xyz
	Occupancy  float64
	TempFactor float64
	HasTemp    bool
	SegID      string
	Element    string
	Charge     string
}

// IsAltSecondary says the atom is the second (or later) copy at an
// alternate location. Only blank and 'A' locations are primary.
func (a *Atom) IsAltSecondary() bool {
	return a.AltLoc != ' ' && a.AltLoc != 0 && a.AltLoc != 'A'
}

// HasICode says there is something in the insertion code column.
func (a *Atom) HasICode() bool {
	return a.ICode != ' ' && a.ICode != 0
}

// IsPrimary is what the pipelines keep: no secondary location and a blank
// insertion code.
func (a *Atom) IsPrimary() bool { return !a.IsAltSecondary() && !a.HasICode() }

// IsHydrogen looks at the element, or the first letter of the name if
// there is no element.
func (a *Atom) IsHydrogen() bool {
	if a.Element != "" {
		return a.Element == "H" || a.Element == "D"
	}
	return a.Name != "" && a.Name[0] == 'H'
}

func parseInt(line string, f field, nline int) (int, error) {
	if len(line) < f.hi {
		return 0, &FormatError{Line: nline, Field: f.name, Text: line}
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[f.lo:f.hi]))
	if err != nil {
		return 0, &FormatError{Line: nline, Field: f.name, Text: line, Err: err}
	}
	return n, nil
}

func parseFloat(line string, f field, nline int) (float64, error) {
	if len(line) < f.hi {
		return 0, &FormatError{Line: nline, Field: f.name, Text: line}
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(line[f.lo:f.hi]), 64)
	if err != nil {
		return 0, &FormatError{Line: nline, Field: f.name, Text: line, Err: err}
	}
	return x, nil
}

// ParseAtom reads the fixed columns of an ATOM/HETATM line.
// Everything up to and including z is required. Occupancy, temperature
// factor and element are optional. If they are missing we fill in what we
// can and say so in the returned warnings. nline is only used for messages.
func ParseAtom(line string, nline int) (Atom, []Warning, error) {
	var a Atom
	var warn []Warning
	var err error
	if a.Serial, err = parseInt(line, fSerial, nline); err != nil {
		return a, nil, err
	}
	if a.ResSeq, err = parseInt(line, fResSeq, nline); err != nil {
		return a, nil, err
	}
	if a.Xyz.X, err = parseFloat(line, fX, nline); err != nil {
		return a, nil, err
	}
	if a.Xyz.Y, err = parseFloat(line, fY, nline); err != nil {
		return a, nil, err
	}
	if a.Xyz.Z, err = parseFloat(line, fZ, nline); err != nil {
		return a, nil, err
	}
	a.Name = strings.TrimSpace(col(line, fName))
	a.AltLoc = colByte(line, fAltLoc)
	a.ResName = strings.TrimSpace(col(line, fResName))
	a.Chain = colByte(line, fChain)
	a.ICode = colByte(line, fICode)

	a.Occupancy = 1
	if s := strings.TrimSpace(col(line, fOcc)); s == "" {
		warn = append(warn, Warning{nline, "no occupancy, using 1.00"})
	} else if a.Occupancy, err = parseFloat(line, fOcc, nline); err != nil {
		return a, nil, err
	}

	if s := strings.TrimSpace(col(line, fTemp)); s == "" {
		warn = append(warn, Warning{nline, "no temperature factor"})
	} else {
		if a.TempFactor, err = parseFloat(line, fTemp, nline); err != nil {
			return a, nil, err
		}
		a.HasTemp = true
	}
	a.SegID = strings.TrimSpace(col(line, fSegID))
	if len(line) > elementStart {
		a.Element = strings.TrimSpace(col(line, fElement))
	}
	if a.Element == "" {
		warn = append(warn, Warning{nline, "no element symbol"})
	}
	a.Charge = strings.TrimSpace(col(line, fCharge))
	return a, warn, nil
}

// nameField puts the atom name in its four columns. Names of four
// characters and names starting with a two letter element start in the
// first column, everything else in the second.
func nameField(a *Atom) string {
	name := a.Name
	if len(name) >= 4 || (len(a.Element) == 2 && strings.HasPrefix(name, a.Element)) {
		return fmt.Sprintf("%-4s", name)
	}
	return " " + fmt.Sprintf("%-3s", name)
}

func orBlank(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}

// Format writes the atom as a fixed width line with record name rec,
// without the newline. Columns nobody filled in are left blank and
// trailing blanks are removed.
func (a *Atom) Format(rec string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s%5d %s%c%3s %c%4d%c   %8.3f%8.3f%8.3f%6.2f",
		rec, a.Serial, nameField(a), orBlank(a.AltLoc), a.ResName,
		orBlank(a.Chain), a.ResSeq, orBlank(a.ICode),
		a.Xyz.X, a.Xyz.Y, a.Xyz.Z, a.Occupancy)
	if a.HasTemp {
		fmt.Fprintf(&b, "%6.2f", a.TempFactor)
	} else {
		b.WriteString("      ")
	}
	fmt.Fprintf(&b, "      %-4s%2s%-2s", a.SegID, a.Element, a.Charge)
	return strings.TrimRight(b.String(), " ")
}
