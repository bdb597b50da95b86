package cmmn_test

import (
	"testing"

	. "github.com/andrew-torda/tcrpdb/pdb/cmmn"
)

func TestXyzOk(t *testing.T) {
	var xyz Xyz
	xyz = BrokenXyz
	if xyz.Ok() {
		t.Error("cannot even check if a value is OK")
	}
	xyz = Xyz{1, 1, 1}
	if !xyz.Ok() {
		t.Error("OK should be true")
	}
}

func TestSubAdd(t *testing.T) {
	a := Xyz{1, 2, 3}
	b := Xyz{0.5, -1, 4}
	if got := a.Sub(b).Add(b); got != a {
		t.Errorf("sub then add gave %v, wanted %v", got, a)
	}
	if arr := a.Arr(); arr != [3]float64{1, 2, 3} {
		t.Errorf("Arr gave %v", arr)
	}
}
