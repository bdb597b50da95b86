// Package pdb is the record model for fixed column PDB coordinate files.
// A Structure is the ordered list of records from one file. Atom records
// are parsed into fields, everything else is carried along as text.
// Nothing is cached. Every view (chains, sequences, atoms) is computed from
// the records when it is asked for.
package pdb

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrew-torda/tcrpdb/pdb/zwrap"
	"github.com/edsrzf/mmap-go"
)

// Kind is the type of a record, from its first six columns.
type Kind uint8

const (
	RecOther Kind = iota
	RecHeader
	RecExpdta
	RecRemark
	RecAtom
	RecHetatm
	RecMuted // an atom taken out of play, but not deleted
	RecAnisou
	RecTer
	RecHelix
	RecSheet
	RecConect
	RecMaster
	RecModel
	RecEndmdl
	RecEnd
)

var kindNames = []struct {
	name string
	kind Kind
}{
	{"HEADER", RecHeader},
	{"EXPDTA", RecExpdta},
	{"REMARK", RecRemark},
	{"ATOM", RecAtom},
	{"HETATM", RecHetatm},
	{"DEATOM", RecMuted},
	{"ANISOU", RecAnisou},
	{"TER", RecTer},
	{"HELIX", RecHelix},
	{"SHEET", RecSheet},
	{"CONECT", RecConect},
	{"MASTER", RecMaster},
	{"MODEL", RecModel},
	{"ENDMDL", RecEndmdl},
	{"END", RecEnd},
}

// String gives the record name as it is written in a file.
func (k Kind) String() string {
	for _, kn := range kindNames {
		if kn.kind == k {
			return kn.name
		}
	}
	return ""
}

func kindOf(line string) Kind {
	rec := strings.TrimRight(col(line, fRecName), " ")
	for _, kn := range kindNames {
		if kn.name == rec {
			return kn.kind
		}
	}
	return RecOther
}

// IsCoord says the kind carries an atom.
func (k Kind) IsCoord() bool { return k == RecAtom || k == RecHetatm || k == RecMuted }

// Record is one line. For coordinate kinds Atom holds the fields. If the
// fields are never touched, the original text is written back out.
type Record struct {
	Kind Kind
	Atom Atom
	Raw  string
	orig Atom
}

// NewAtomRecord makes a record from fields only. It has no original text.
func NewAtomRecord(k Kind, a Atom) Record {
	return Record{Kind: k, Atom: a}
}

// NewRecord makes a record that is written exactly as given.
func NewRecord(line string) Record {
	return Record{Kind: kindOf(line), Raw: line}
}

// Line gives the text of the record without a newline.
func (r *Record) Line() string {
	if !r.Kind.IsCoord() {
		return r.Raw
	}
	if r.Raw != "" && r.Atom == r.orig {
		if kindOf(r.Raw) == r.Kind {
			return r.Raw
		}
		return fmt.Sprintf("%-6s", r.Kind.String()) + r.Raw[fRecName.hi:]
	}
	return r.Atom.Format(r.Kind.String())
}

// Structure is the in-memory form of one coordinate file.
type Structure struct {
	Path     string // where it was read from. May be empty
	Records  []Record
	Warnings []Warning
}

// ReadOpts control parsing. The zero value is lenient.
type ReadOpts struct {
	Strict bool // turn warnings into errors
}

// Parse reads a structure from r.
func Parse(r io.Reader, opts *ReadOpts) (*Structure, error) {
	if opts == nil {
		opts = &ReadOpts{}
	}
	s := &Structure{}
	scnr := bufio.NewScanner(r)
	scnr.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; scnr.Scan(); n++ {
		line := strings.TrimRight(scnr.Text(), "\r")
		rec := NewRecord(line)
		if rec.Kind.IsCoord() {
			a, warn, err := ParseAtom(line, n)
			if err != nil {
				return nil, err
			}
			if opts.Strict && len(warn) > 0 {
				return nil, &FormatError{Line: n, Field: "record", Text: line,
					Err: errors.New(warn[0].Msg)}
			}
			rec.Atom, rec.orig = a, a
			s.Warnings = append(s.Warnings, warn...)
		}
		s.Records = append(s.Records, rec)
	}
	if err := scnr.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadFile maps the file into memory and parses it. Gzipped files are
// recognised by their first two bytes and decompressed on the way.
func ReadFile(fname string, opts *ReadOpts) (*Structure, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	fi, err := fp.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, errors.New(fname + " is a directory")
	}
	var s *Structure
	if fi.Size() == 0 { // cannot map an empty file
		s = &Structure{}
	} else {
		mm, err := mmap.Map(fp, mmap.RDONLY, 0)
		if err != nil {
			return nil, fmt.Errorf("mapping %s: %w", fname, err)
		}
		defer mm.Unmap()
		var rdr io.Reader = bytes.NewReader(mm)
		if zwrap.Gzipped(mm) {
			zr, err := zwrap.Wrap(io.NopCloser(rdr))
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", fname, err)
			}
			defer zr.Close()
			rdr = zr
		}
		if s, err = Parse(rdr, opts); err != nil {
			return nil, fmt.Errorf("reading %s: %w", fname, err)
		}
	}
	s.Path = fname
	return s, nil
}

// WriteTo writes every record followed by a newline.
func (s *Structure) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for i := range s.Records {
		m, err := bw.WriteString(s.Records[i].Line())
		n += int64(m)
		if err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// Flush writes the structure to fname, replacing anything that was there.
func (s *Structure) Flush(fname string) error {
	fp, err := os.Create(fname)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(fp); err != nil {
		fp.Close()
		return fmt.Errorf("writing %s: %w", fname, err)
	}
	return fp.Close()
}

// Clone gives a deep copy, so the copy can be rotated or renumbered
// without touching s.
func (s *Structure) Clone() *Structure {
	c := &Structure{Path: s.Path}
	c.Records = append([]Record(nil), s.Records...)
	c.Warnings = append([]Warning(nil), s.Warnings...)
	return c
}

// String is mostly for debugging.
func (s *Structure) String() string {
	var b strings.Builder
	s.WriteTo(&b)
	return b.String()
}
