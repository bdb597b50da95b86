// Package cdr finds the CDR loops of TCR chains. CDR1, CDR2 and CDR2.5
// come straight from a germline V segment whose fragments are all in the
// chain. CDR3 is found from the last cysteine of the germline template and
// a glycine-x-glycine motif after it.
package cdr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andrew-torda/tcrpdb/pdb"
)

// NoGermlineMatchError says no germline had all of its fragments in the
// chain.
type NoGermlineMatchError struct {
	Chain byte
}

func (e *NoGermlineMatchError) Error() string {
	return fmt.Sprintf("no germline matches chain %c", e.Chain)
}

// Loop names, in the order loops are returned.
var Names = []string{"CDR1", "CDR2", "CDR2.5", "CDR3"}

// Loop is a stretch of sequence and the residue numbers of its ends.
type Loop struct {
	Name        string
	Seq         string
	First, Last int
}

func (l Loop) String() string {
	return fmt.Sprintf("%s %s %d-%d", l.Name, l.Seq, l.First, l.Last)
}

// Chain is what we found on one receptor chain.
type Chain struct {
	Chain    byte
	Germline string
	Loops    []Loop
}

// anchor is where in the chain we look for a stretch to place the
// template.
const anchor, anchorLen = 5, 5

// CDR3 cuts the third loop out of seq. The last cysteine of template
// marks the start. The template is lined up with seq by finding
// seq[5:10] in it. From the start, the sequence is scanned backwards from
// its end for G.G and the loop stops just before the motif. If the
// sequence ends in F, or the motif is right at the end, the loop runs to
// the end of the sequence.
func CDR3(seq, template string) (string, error) {
	start := strings.LastIndexByte(template, 'C')
	if start < 0 {
		return "", errors.New("template has no cysteine")
	}
	if len(seq) < anchor+anchorLen {
		return "", fmt.Errorf("sequence of %d residues too short to place template", len(seq))
	}
	check := strings.Index(template, seq[anchor:anchor+anchorLen])
	if check < 0 {
		return "", fmt.Errorf("%s not found in template", seq[anchor:anchor+anchorLen])
	}
	from := start - (check - anchor)
	if from < 0 || from >= len(seq) {
		return "", fmt.Errorf("template places CDR3 at %d, outside the sequence", from)
	}
	s := seq[from:]
	n := len(s)
	end := 0
	for i := 0; i+2 < n; i++ { // i counts from the end
		if s[n-1-i] == 'G' && s[n-3-i] == 'G' {
			end = i
			break
		}
	}
	if s[n-1] == 'F' || end == 0 {
		return s, nil
	}
	if n-end-3 <= 0 {
		return "", errors.New("no room for CDR3 before the G.G motif")
	}
	return s[:n-end-3], nil
}

// Extract finds the loops of one chain. nums are the residue numbers of
// seq, one per residue. The first germline in t with all three fragments
// in seq is used.
func Extract(chain byte, seq string, nums []int, t Table) (Chain, error) {
	if len(nums) != len(seq) {
		return Chain{}, fmt.Errorf("%d residue numbers for %d residues", len(nums), len(seq))
	}
	for _, g := range t {
		if !strings.Contains(seq, g.CDR1) || !strings.Contains(seq, g.CDR2) || !strings.Contains(seq, g.CDR25) {
			continue
		}
		cdr3, err := CDR3(seq, g.Template)
		if err != nil {
			return Chain{}, fmt.Errorf("chain %c, germline %s: %w", chain, g.Name, err)
		}
		res := Chain{Chain: chain, Germline: g.Name}
		for i, l := range []string{g.CDR1, g.CDR2, g.CDR25, cdr3} {
			if l == "" {
				continue
			}
			k := strings.Index(seq, l)
			res.Loops = append(res.Loops, Loop{Names[i], l, nums[k], nums[k+len(l)-1]})
		}
		return res, nil
	}
	return Chain{}, &NoGermlineMatchError{chain}
}

// FromStructure extracts loops from the alpha and beta chains of s. A
// failure on one chain does not stop the other. The error joins what went
// wrong.
func FromStructure(s *pdb.Structure, alpha, beta byte, t Tables) (a, b Chain, err error) {
	one := func(c byte, tbl Table) (Chain, error) {
		res := s.Residues(c)
		seq := make([]byte, len(res))
		nums := make([]int, len(res))
		for i, r := range res {
			seq[i], nums[i] = r.Code, r.Num
		}
		return Extract(c, string(seq), nums, tbl)
	}
	a, errA := one(alpha, t.Alpha)
	b, errB := one(beta, t.Beta)
	return a, b, errors.Join(errA, errB)
}
