package geom_test

import (
	"math"
	"testing"

	. "github.com/andrew-torda/tcrpdb/pdb/cmmn"
	. "github.com/andrew-torda/tcrpdb/pdb/geom"
)

// permuteXyz rotates x, y and z for tests whose answers should not change
// when we move the axes around.
func permuteXyz(x Xyz) Xyz {
	x.X, x.Y, x.Z = x.Y, x.Z, x.X
	return x
}

// notApproxEqual returns true if x and y are not approximately equal.
func notApproxEqual(x, y float64) bool {
	diff := math.Abs(x - y)
	if math.IsNaN(diff) {
		return true
	}
	return diff > 0.00001
}

var disttests = []struct {
	name   string
	x1, x2 Xyz
	res    float64
}{
	{"zero", Xyz{1, 2, 3}, Xyz{1, 2, 3}, 0},
	{"3.8 ", Xyz{3.80, 0.00, 0}, Xyz{0, 0, 0}, 3.8},
	{"onex", Xyz{0.00, 0.00, 0}, Xyz{1, 0, 0}, 1},
	{"345 ", Xyz{3, 4, 0}, Xyz{0, 0, 0}, 5},
	{"333 ", Xyz{3.00, 3.00, 3}, Xyz{1, 1, 1}, math.Sqrt(12)},
}

func TestDist(t *testing.T) {
	for _, test := range disttests {
		x1, x2 := test.x1, test.x2
		d1, d2 := Dist(x1, x2), Dist(x2, x1)
		x1, x2 = permuteXyz(x1), permuteXyz(x2)
		d3 := Dist(x1, x2)
		if d1 != d2 || notApproxEqual(d1, d3) {
			t.Errorf("test %s. Not symmetric %f %f %f", test.name, d1, d2, d3)
		}
		if notApproxEqual(d1, test.res) {
			t.Errorf("test %s got %f wanted %f", test.name, d1, test.res)
		}
	}
}

func TestCentroid(t *testing.T) {
	xs := XyzSl{{1, 0, 0}, {-1, 0, 0}, {0, 2, 0}, {0, -2, 6}}
	c := Centroid(xs)
	if notApproxEqual(c.X, 0) || notApproxEqual(c.Y, 0) || notApproxEqual(c.Z, 1.5) {
		t.Errorf("centroid %v", c)
	}
	c = Centroid(nil)
	if c.Ok() {
		t.Error("centroid of nothing should be broken")
	}
}

// someCoords is a small irregular cloud so that nothing is degenerate.
var someCoords = XyzSl{
	{1.2, 0.3, -0.5}, {2.8, 1.1, 0.4}, {3.9, -0.2, 1.7}, {5.1, 0.9, 2.2},
	{6.6, 2.4, 1.1}, {7.0, 3.8, -0.6}, {8.3, 2.9, -1.9}, {9.9, 4.1, -2.4},
}

// rotZ turns by angle about z then shifts.
func rotZ(xs XyzSl, angle float64, shift Xyz) XyzSl {
	c, s := math.Cos(angle), math.Sin(angle)
	out := make(XyzSl, len(xs))
	for i, x := range xs {
		out[i] = Xyz{X: c*x.X - s*x.Y, Y: s*x.X + c*x.Y, Z: x.Z}.Add(shift)
	}
	return out
}

func TestKabsch(t *testing.T) {
	moved := rotZ(someCoords, 1.1, Xyz{X: 10, Y: -3, Z: 7})
	tr, err := Kabsch(moved, someCoords)
	if err != nil {
		t.Fatal(err)
	}
	for i, x := range moved {
		y := tr.Apply(x)
		if d := Dist(y, someCoords[i]); d > 1e-6 {
			t.Errorf("point %d off by %g after fit", i, d)
		}
	}
	if r, err := FitRMSD(moved, someCoords); err != nil || r > 1e-6 {
		t.Errorf("fit rmsd %g err %v", r, err)
	}
	if r, err := FitRMSD(someCoords, someCoords); err != nil || r > 1e-6 {
		t.Errorf("self fit rmsd %g err %v", r, err)
	}
}

func TestKabschProper(t *testing.T) {
	mirror := make(XyzSl, len(someCoords))
	for i, x := range someCoords {
		mirror[i] = Xyz{X: x.X, Y: x.Y, Z: -x.Z}
	}
	tr, err := Kabsch(mirror, someCoords)
	if err != nil {
		t.Fatal(err)
	}
	r := tr.Rot
	det := r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
	if notApproxEqual(det, 1) {
		t.Errorf("rotation has determinant %f, should not reflect", det)
	}
}

func TestErrors(t *testing.T) {
	if _, err := Kabsch(someCoords, someCoords[1:]); err == nil {
		t.Error("expected error on different lengths")
	}
	if _, err := RMSD(nil, nil); err != ErrEmpty {
		t.Errorf("wanted ErrEmpty, got %v", err)
	}
	if _, _, err := PrincipalAxes(nil); err != ErrEmpty {
		t.Errorf("wanted ErrEmpty, got %v", err)
	}
}

func TestPrincipalAxes(t *testing.T) {
	// long along y, medium along x, thin along z
	xs := XyzSl{
		{0, -10, 0}, {0, 10, 0}, {3, 0, 0}, {-3, 0, 0},
		{0, 0, 0.5}, {0, 0, -0.5}, {1, 5, 0.1}, {-1, -5, -0.1},
	}
	c, ax, err := PrincipalAxes(xs)
	if err != nil {
		t.Fatal(err)
	}
	if Dist(c, Xyz{}) > 1e-9 {
		t.Errorf("centroid %v", c)
	}
	if math.Abs(ax[0].Y) < 0.9 {
		t.Errorf("first axis should be near y, got %v", ax[0])
	}
	for i := range ax {
		p := ax.Project(ax[i])
		want := [3]float64{}
		want[i] = 1
		if notApproxEqual(p.X, want[0]) || notApproxEqual(p.Y, want[1]) || notApproxEqual(p.Z, want[2]) {
			t.Errorf("axes not orthonormal, axis %d projects to %v", i, p)
		}
	}
	a, b := ax[0], ax[1]
	cross := Xyz{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
	if Dist(cross, ax[2]) > 1e-6 {
		t.Errorf("axes not right handed: %v x %v = %v, third %v", a, b, cross, ax[2])
	}
}
