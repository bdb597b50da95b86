// Package submat reads substitution matrices like BLOSUM62 and uses them
// to build score matrices for the aligner.
package submat

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/andrew-torda/matrix"
)

// Submat is the export type. it internals do not have to be exported.
type Submat struct {
	mat  *matrix.FMatrix2d
	cmap [128]int8
	unk  int8 // where we send characters not in the alphabet
}

const notset int8 = -1

//go:embed blosum62.txt
var blosum62Text []byte

var (
	blosumOnce sync.Once
	blosum62   *Submat
	blosumErr  error
)

// Blosum62 returns the built-in BLOSUM62 matrix. It is read once.
func Blosum62() (*Submat, error) {
	blosumOnce.Do(func() {
		blosum62, blosumErr = Parse(bytes.NewReader(blosum62Text), "built-in blosum62")
	})
	return blosum62, blosumErr
}

// String prints out a substitution matrix. Useful during debugging.
func (submat *Submat) String() string {
	cmap := submat.cmap[:]
	var b bytes.Buffer
	b.WriteString("Mapping\n")
	n := 10
	for i := range cmap {
		if cmap[i] != notset {
			fmt.Fprintf(&b, "%4s%4d", string(rune(i)), cmap[i])
			n--
			if n == 0 {
				n = 10
				b.WriteByte('\n')
			}
		}
	}
	b.WriteString("\nThe matrix\n")
	fmt.Fprintf(&b, "%4s", " ")
	for c := '*'; c < 'Z'; c++ {
		if cmap[c] != notset {
			fmt.Fprintf(&b, "%4s", string(c))
		}
	}
	b.WriteByte('\n')
	for c := '*'; c < 'Z'; c++ {
		if cmap[c] != notset {
			fmt.Fprintf(&b, "%4s", string(c))
			for d := '*'; d < 'Z'; d++ {
				if cmap[d] != notset {
					fmt.Fprintf(&b, "%4.0f", submat.mat.Mat[cmap[c]][cmap[d]])
				}
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// CmmtScanner is a wrapper around bufio.Scanner that will ignore anything
// after a comment character and remove leading and trailing white space.
type CmmtScanner struct {
	*bufio.Scanner
	cmmt byte // Comment character
}

// NewCmmtScanner is a wrapper around scanner, but
//   - jumps over blank lines
//   - removes leading spaces
//   - removes anything after a comment character
func NewCmmtScanner(r io.Reader, cmmt byte) *CmmtScanner {
	return &CmmtScanner{bufio.NewScanner(r), cmmt}
}

// CBytes presents exactly the same interface as scanner.Bytes, but
// has to do a bit more work.
// Before returning, we remove anything after the comment symbol and
// strip leading and trailing white space.
// If this leaves us with an empty string, we call Scan again.
// Like the Bytes function, this works directly in the i/o buffer
// and does not allocate any memory. If you like the string it returns,
// you have to save it somewhere.
func (s *CmmtScanner) CBytes() []byte {
	ok := true
	for b := s.Bytes(); ok; ok, b = s.Scan(), s.Bytes() {
		if i := bytes.IndexByte(b, s.cmmt); i >= 0 {
			b = b[:i]
		}
		b = bytes.TrimSpace(b)
		if len(b) > 0 {
			return b
		}
	}
	return nil
}

// The first non-comment line  of the substitution matrix file
// contains a list of the allowed characters. Each field has to be
// one character long
func alfbtLine(inline []byte, submat *Submat) (int, error) {
	cmap := submat.cmap[:]
	for i := range cmap {
		cmap[i] = notset
	}
	f := bytes.Fields(inline)
	if len(f) == 0 {
		return 0, errors.New("alfbtLine: no alphabet line")
	}
	for _, c := range f {
		if len(c) != 1 {
			return 0, errors.New("alfbtLine: expected a single character, got " + string(c))
		}
		if c[0] >= 128 {
			return 0, errors.New("alfbtLine: saw a non-ascii character in " + string(inline))
		}
	}
	for i, c := range f {
		cmap[c[0]] = int8(i)
	}
	for i, c := range f { // If not set, set both upper and lower case
		l := (bytes.ToLower(c))[0] // This is safe, since we have checked
		u := (bytes.ToUpper(c))[0] // that c is one-byte long
		if cmap[l] == notset {     // Lower case index
			cmap[l] = int8(i)
		}
		if cmap[u] == notset { //     Corresponding upper case index
			cmap[u] = int8(i)
		}
	}
	submat.unk = cmap['X']
	return len(f), nil
}

// Parse reads a substitution matrix. name is only used in error messages.
// Only the lower triangle has to be there. Each row sets the symmetric
// element too.
func Parse(rdr io.Reader, name string) (*Submat, error) {
	submat := new(Submat)
	scnr := NewCmmtScanner(rdr, '#')
	scnr.Scan()
	nAlfbt, err := alfbtLine(scnr.CBytes(), submat)
	if err != nil {
		return nil, err
	}
	submat.mat = matrix.NewFMatrix2d(nAlfbt, nAlfbt)
	r := "Reading from " + name
	nc := 0
	for scnr.Scan() {
		line := scnr.CBytes()
		if line == nil {
			break
		}
		fields := bytes.Fields(line)
		if len(fields) < 2 || len(fields) > nAlfbt+1 || len(fields[0]) != 1 {
			return nil, errors.New(r + ". Wrong number of items on line:\n" + string(line))
		}
		c := fields[0][0]
		if c >= 128 || submat.cmap[c] == notset {
			return nil, errors.New(r + " invalid character on line " + string(line))
		}
		i := submat.cmap[c]
		for j := 0; j < len(fields)-1; j++ {
			f, e := strconv.ParseFloat(string(fields[j+1]), 32)
			if e != nil {
				return nil, errors.New(r + " " + e.Error())
			}
			x := float32(f)
			submat.mat.Mat[i][j], submat.mat.Mat[j][i] = x, x
		}
		nc++
	}
	if err := scnr.Err(); err != nil {
		return nil, errors.New(r + " " + err.Error())
	}
	if nc != nAlfbt {
		return nil, errors.New(r + ".. not enough lines found")
	}
	return submat, nil
}

// Read will read a substitution matrix from a filename.
func Read(fname string) (*Submat, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return Parse(fp, fname)
}

func (submat *Submat) index(c byte) int8 {
	if c >= 128 {
		return submat.unk
	}
	if i := submat.cmap[c]; i != notset {
		return i
	}
	return submat.unk
}

// Score returns the similarity score of bytes a and b, given
// a specific scoring matrix. Characters outside the alphabet are scored
// like X, or zero if there is no X.
func (submat *Submat) Score(a, b byte) float32 {
	i, j := submat.index(a), submat.index(b)
	if i == notset || j == notset {
		return 0
	}
	return submat.mat.Mat[i][j]
}

// ScoreSeqs will take two sequences and calculate a similarity matrix
// based on the substitution matrix.
// We return an M x N matrix, where M and N are the lengths of first
// and second sequences respectively.
func (submat *Submat) ScoreSeqs(s, t []byte) *matrix.FMatrix2d {
	scrMat := matrix.NewFMatrix2d(len(s), len(t))
	mat := scrMat.Mat
	for i, cs := range s {
		for j, ct := range t {
			mat[i][j] = submat.Score(cs, ct)
		}
	}
	return scrMat
}
