package cdr

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/andrew-torda/tcrpdb/submat"
)

// Germline is one V segment. The three fragments must all be found in a
// chain for the segment to match it.
type Germline struct {
	Name     string
	CDR1     string
	CDR2     string
	CDR25    string
	Template string // from the start of the segment to the start of CDR3
}

// Table is a list of germlines, tried in order.
type Table []Germline

// Tables has one table per receptor chain.
type Tables struct {
	Alpha Table
	Beta  Table
}

//go:embed germline.txt
var builtIn string

var (
	defaultOnce   sync.Once
	defaultTables Tables
	defaultErr    error
)

// Default is the built-in table. It is read once.
func Default() (Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = Parse(strings.NewReader(builtIn), "built-in germlines")
	})
	return defaultTables, defaultErr
}

// Parse reads a germline table. Each line is
//
//	chain name cdr1 cdr2 cdr2.5 template
//
// where chain is alpha or beta. Comments start with '#'. name is only
// used in error messages.
func Parse(rdr io.Reader, name string) (Tables, error) {
	var t Tables
	scnr := submat.NewCmmtScanner(rdr, '#')
	for scnr.Scan() {
		line := scnr.CBytes()
		if line == nil {
			break
		}
		f := bytes.Fields(line)
		if len(f) != 6 {
			return Tables{}, fmt.Errorf("%s: want 6 fields, got %d on\n%s", name, len(f), line)
		}
		g := Germline{Name: string(f[1]), CDR1: string(f[2]), CDR2: string(f[3]),
			CDR25: string(f[4]), Template: string(f[5])}
		if strings.LastIndexByte(g.Template, 'C') < 0 {
			return Tables{}, fmt.Errorf("%s: template of %s has no cysteine", name, g.Name)
		}
		switch strings.ToLower(string(f[0])) {
		case "alpha", "a":
			t.Alpha = append(t.Alpha, g)
		case "beta", "b":
			t.Beta = append(t.Beta, g)
		default:
			return Tables{}, fmt.Errorf("%s: chain should be alpha or beta, not %q", name, f[0])
		}
	}
	if err := scnr.Err(); err != nil {
		return Tables{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// Read reads a germline table from a file.
func Read(fname string) (Tables, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return Tables{}, err
	}
	defer fp.Close()
	return Parse(fp, fname)
}
