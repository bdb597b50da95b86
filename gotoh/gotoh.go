// Package gotoh implements the Gotoh version of pair-wise alignments.
// We use a full scoring matrix, and use this during the summation, so the
// matrix you pass in is overwritten.
// Global alignments do not charge for gaps at either end. This is what we
// want when a whole chain is compared against a reference which may be
// longer or shorter.
package gotoh

import (
	"fmt"

	"github.com/andrew-torda/matrix"
)

// AlType is a byte which can be global or local. By making it its
// own type, we can add a String() method to it.
type AlType byte

// Local/Global are exported constants to say what kind of alignment one wants.
const (
	Local  AlType = iota // Local alignment
	Global               // global alignment
)

// Pnlty has the gap opening and widening values. Opening costs you
// -(Open+Wdn). Each extension costs -Wdn
type Pnlty struct {
	Open float32
	Wdn  float32
}

// MatchScr is for identity scoring.
type MatchScr struct {
	Match    float32 // matched characters
	Mismatch float32 // mismatched
}

// AlScore tells Align how to score an alignment.
type AlScore struct {
	Pnlty          // open and widen penalties
	AlType AlType // local / global
}

const (
	diag byte = iota // diagonal movement
	pway             // along the P direction, vertical, over rows
	qway             // Q direction, horizontal, over columns
	stop             // Can be used to signal traceback should stop
)

// Pair is one column of an alignment. A gap on either side is -1.
type Pair struct {
	I, J int
}

// Gap marks the missing side of a Pair.
const Gap = -1

const bigf float32 = -1e+38

// String for the alignment type is mainly for debugging.
func (a AlType) String() string {
	if a == Local {
		return "local"
	}
	return "global"
}

// IdentScore fills out a score matrix using identity. Values for match/mismatch
// come from the scr structure.
// for an M x N pair, we have an M x N matrix. There is no extra room
// at the start and end.
func IdentScore(s []byte, t []byte, scr *MatchScr) *matrix.FMatrix2d {
	smat := matrix.NewFMatrix2d(len(s), len(t))
	mat := smat.Mat
	for i, cs := range s {
		for j, ct := range t {
			if cs == ct {
				mat[i][j] = scr.Match
			} else {
				mat[i][j] = scr.Mismatch
			}
		}
	}
	return smat
}

// SeqString gives the two aligned strings with '-' in the gaps.
// Essential for debugging.
func SeqString(pairlist []Pair, s, t []byte) (string, string) {
	outs1 := make([]byte, len(pairlist))
	outs2 := make([]byte, len(pairlist))
	for k, p := range pairlist {
		outs1[k], outs2[k] = '-', '-'
		if p.I != Gap {
			outs1[k] = s[p.I]
		}
		if p.J != Gap {
			outs2[k] = t[p.J]
		}
	}
	return string(outs1), string(outs2)
}

// PrintSeqDebug is a primitive printer for aligned sequences.
func PrintSeqDebug(verbose bool, pairlist []Pair, s, t []byte, alType AlType) {
	if !verbose {
		return
	}
	outs1, outs2 := SeqString(pairlist, s, t)
	fmt.Println("aligned ", alType, ":\n", outs1, "\n", outs2)
}

// Window returns the start and end (exclusive) in each sequence of the
// first run of aligned pairs with no gap. For a gapless alignment this is
// the whole thing. ok is false if nothing is aligned.
func Window(pairlist []Pair) (sStart, sEnd, tStart, tEnd int, ok bool) {
	k := 0
	for k < len(pairlist) && (pairlist[k].I == Gap || pairlist[k].J == Gap) {
		k++
	}
	if k == len(pairlist) {
		return 0, 0, 0, 0, false
	}
	sStart, tStart = pairlist[k].I, pairlist[k].J
	sEnd, tEnd = sStart+1, tStart+1
	for k++; k < len(pairlist); k++ {
		p := pairlist[k]
		if p.I != sEnd || p.J != tEnd {
			break
		}
		sEnd++
		tEnd++
	}
	return sStart, sEnd, tStart, tEnd, true
}

// traceback gotoh
// Return the list of pairs in the pairlist and the maximum total score
// dir is the matrix with directions. scrMat is the original score matrix,
// but we will use it to hold the summations.
func traceback(dir [][]byte, scrMat [][]float32, alType AlType) ([]Pair, float32) {
	nr := len(scrMat)
	nc := len(scrMat[0])
	maxScr := scrMat[nr-1][nc-1]
	maxI, maxJ := nr-1, nc-1
	var pairlist []Pair
	{
		bigger := nr     // Take a guess as to how much space we
		if nc > bigger { // might need for saving the aligned pairs.
			bigger = nc // Use the longer string and add 10 %.
		}
		pairlist = make([]Pair, 0, bigger+bigger/10)
	}
	if alType == Local { //             Local alignments start from
		for i, row := range scrMat { // the highest score, even if it
			for j := range row { //     is not at one of the edges
				if scrMat[i][j] > maxScr {
					maxScr = scrMat[i][j]
					maxI, maxJ = i, j
				}
			}
		}
	} else {
		for i, col := 0, nc-1; i < nr; i++ { // Look in last column
			if scrMat[i][col] > maxScr { //    for highest score
				maxScr = scrMat[i][col]
				maxI, maxJ = i, col
			}
		}
		for j, row := 0, nr-1; j < nc; j++ { // Look in last row
			if scrMat[row][j] > maxScr { //    for highest score
				maxScr = scrMat[row][j]
				maxI, maxJ = row, j
			}
		}
	}

	walk := func(i, j int, more func(i, j int) bool) (int, int) {
		for dir[i][j] != stop && more(i, j) {
			switch dir[i][j] {
			case diag:
				pairlist = append(pairlist, Pair{i, j})
				i--
				j--
			case pway:
				pairlist = append(pairlist, Pair{i, Gap})
				i--
			case qway:
				pairlist = append(pairlist, Pair{Gap, j})
				j--
			}
		}
		return i, j
	}

	if alType == Local {
		const thresh = 0
		i, j := walk(maxI, maxJ, func(i, j int) bool { return scrMat[i][j] > thresh })
		if scrMat[i][j] > thresh {
			pairlist = append(pairlist, Pair{i, j})
		}
	} else {
		if maxI == nr-1 {
			for jj := nc - 1; jj > maxJ; jj-- {
				pairlist = append(pairlist, Pair{Gap, jj})
			}
		} else if maxJ == nc-1 {
			for ii := nr - 1; ii > maxI; ii-- {
				pairlist = append(pairlist, Pair{ii, Gap})
			}
		}
		i, j := walk(maxI, maxJ, func(int, int) bool { return true })
		pairlist = append(pairlist, Pair{i, j})
		for i--; i >= 0; i-- {
			pairlist = append(pairlist, Pair{i, Gap})
		}
		for j--; j >= 0; j-- {
			pairlist = append(pairlist, Pair{Gap, j})
		}
	}

	for i, j := 0, len(pairlist)-1; i < j; i, j = i+1, j-1 {
		pairlist[i], pairlist[j] = pairlist[j], pairlist[i]
	}

	return pairlist, maxScr
}

// Align implements Gotoh, O. J. Mol. Biol. (1982) 162, 705-708.
// It does not have the bugs described in Flouri, T, Kobert, K., Rognes, T
// and Stamatakis, doi: http://dx.doi.org/10.1101/031500 (2015).
// In a local alignment no cell may go below zero, so a new alignment can
// start anywhere.
// If either sequence is empty, there are no pairs and the score is zero.
func Align(scrMatMat *matrix.FMatrix2d, scrScheme *AlScore) ([]Pair, float32) {
	var max = func(a, b float32) float32 {
		if a > b {
			return a
		}
		return b
	}

	wdn := -scrScheme.Wdn
	w1 := -scrScheme.Open - scrScheme.Wdn
	scrMat := scrMatMat.Mat
	if len(scrMat) < 1 || len(scrMat[0]) < 1 {
		return nil, 0
	}
	nrow, ncol := len(scrMat), len(scrMat[0])
	local := scrScheme.AlType == Local

	dir := make([][]byte, nrow) // Where we store directions
	{                           // for the traceback
		back := make([]byte, nrow*ncol)
		for i := range dir {
			dir[i], back = back[:ncol], back[ncol:]
		}
	}
	for _, c := range dir {
		c[0] = stop
	}
	for i := range dir[0] {
		dir[0][i] = stop
	}

	p := make([]float32, ncol)

	if local { //                        Start and column can not be
		for _, row := range scrMat { // negative in a local alignment
			row[0] = max(row[0], 0)
		}
		for i := range scrMat[0] {
			scrMat[0][i] = max(scrMat[0][i], 0)
		}
	}
	for i, qprev := 1, bigf; i < ncol; i++ { //  special case first row
		q := max(scrMat[0][i-1]+w1, qprev+wdn)
		if q >= scrMat[0][i] {
			scrMat[0][i] = q
			dir[0][i] = qway
		}
		qprev = q
	}

	for i, qprev := 1, bigf; i < nrow; i++ { // special case first column
		q := max(scrMat[i-1][0]+w1, qprev+wdn)
		if q >= scrMat[i][0] {
			scrMat[i][0] = q
			dir[i][0] = pway
		}
		qprev = q
	}
	for i := range p {
		p[i] = bigf
	}

	for i := 1; i < nrow; i++ { // Indexing is such that we walk
		qprev := bigf //           along each row, left to right.
		for j := 1; j < ncol; j++ {
			best := scrMat[i][j] + scrMat[i-1][j-1]
			drctn := diag
			p[j] = max(scrMat[i-1][j]+w1, p[j]+wdn)
			q := max(scrMat[i][j-1]+w1, qprev+wdn)
			if p[j] > best {
				best, drctn = p[j], pway
			}
			if q > best {
				best, drctn = q, qway
			}
			if local && best < 0 {
				best, drctn = 0, stop
			}
			scrMat[i][j] = best
			dir[i][j] = drctn
			qprev = q
		}
	}
	return traceback(dir, scrMat, scrScheme.AlType)
}

// Score is a shortcut when only the score is wanted. It works on a copy of
// the score matrix.
func Score(scrMat *matrix.FMatrix2d, scrScheme *AlScore) float32 {
	nr, nc := scrMat.Size()
	cp := matrix.NewFMatrix2d(nr, nc)
	for i := range scrMat.Mat {
		copy(cp.Mat[i], scrMat.Mat[i])
	}
	_, s := Align(cp, scrScheme)
	return s
}
