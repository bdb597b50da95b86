package submat_test

import (
	"fmt"

	"github.com/andrew-torda/tcrpdb/gotoh"
	"github.com/andrew-torda/tcrpdb/submat"
)

func Example_scoreSeqs() {
	s, t := "CAVTTDSTGKLQF", "CAVSDSTGKLQF"
	substMat, err := submat.Blosum62()
	if err != nil {
		fmt.Print(err)
	}
	alDetails := gotoh.AlScore{
		Pnlty:  gotoh.Pnlty{Open: 10, Wdn: 1},
		AlType: gotoh.Global,
	}
	scrMat := substMat.ScoreSeqs([]byte(s), []byte(t))
	pairlist, _ := gotoh.Align(scrMat, &alDetails)
	a, b := gotoh.SeqString(pairlist, []byte(s), []byte(t))
	fmt.Println(len(a) == len(b), len(pairlist) >= len(s))
	// Output: true true
}
