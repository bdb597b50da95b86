// Package geom has the coordinate arithmetic: distances, centroids, least
// squares superposition and principal axes.

package geom

import (
	"math"
	"sort"

	"github.com/andrew-torda/tcrpdb/pdb/cmmn"
	"gonum.org/v1/gonum/mat"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrEmpty    = Error("no coordinates")
	errMismatch = Error("coordinate lists differ in length")
	errSVD      = Error("svd did not converge")
	errEigen    = Error("eigen decomposition failed")
)

// Dist is the Euclidean distance between two points.
func Dist(x1, x2 cmmn.Xyz) float64 {
	d := x1.Sub(x2)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Centroid is the mean position. It is the broken marker if xs is empty.
func Centroid(xs cmmn.XyzSl) cmmn.Xyz {
	if len(xs) == 0 {
		return cmmn.BrokenXyz
	}
	var c cmmn.Xyz
	for _, x := range xs {
		c = c.Add(x)
	}
	n := float64(len(xs))
	return cmmn.Xyz{X: c.X / n, Y: c.Y / n, Z: c.Z / n}
}

// RMSD is the root mean square deviation of two lists as they stand, with
// no fitting.
func RMSD(a, b cmmn.XyzSl) (float64, error) {
	if len(a) != len(b) {
		return 0, errMismatch
	}
	if len(a) == 0 {
		return 0, ErrEmpty
	}
	var sum float64
	for i := range a {
		d := a[i].Sub(b[i])
		sum += d.X*d.X + d.Y*d.Y + d.Z*d.Z
	}
	return math.Sqrt(sum / float64(len(a))), nil
}

// Rot is a 3x3 rotation, row major.
type Rot [3][3]float64

// Apply rotates x.
func (r *Rot) Apply(x cmmn.Xyz) cmmn.Xyz {
	a := x.Arr()
	var o [3]float64
	for i := 0; i < 3; i++ {
		o[i] = r[i][0]*a[0] + r[i][1]*a[1] + r[i][2]*a[2]
	}
	return cmmn.Xyz{X: o[0], Y: o[1], Z: o[2]}
}

// Transform is a superposition: x' = Rot(x - From) + To.
type Transform struct {
	Rot  Rot
	From cmmn.Xyz // centroid of the moving set
	To   cmmn.Xyz // centroid of the fixed set
}

// Apply moves one point.
func (t *Transform) Apply(x cmmn.Xyz) cmmn.Xyz {
	return t.Rot.Apply(x.Sub(t.From)).Add(t.To)
}

func centred(xs cmmn.XyzSl, c cmmn.Xyz) *mat.Dense {
	m := mat.NewDense(len(xs), 3, nil)
	for i, x := range xs {
		d := x.Sub(c).Arr()
		m.SetRow(i, d[:])
	}
	return m
}

// Kabsch finds the proper rotation and translation that carries moving
// onto fixed with the least squared deviation. The lists must be paired
// and the same length.
func Kabsch(moving, fixed cmmn.XyzSl) (Transform, error) {
	var t Transform
	if len(moving) != len(fixed) {
		return t, errMismatch
	}
	if len(moving) == 0 {
		return t, ErrEmpty
	}
	t.From, t.To = Centroid(moving), Centroid(fixed)
	p, q := centred(moving, t.From), centred(fixed, t.To)

	var h mat.Dense
	h.Mul(p.T(), q) // 3x3 covariance
	var svd mat.SVD
	if ok := svd.Factorize(&h, mat.SVDFull); !ok {
		return t, errSVD
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var vu mat.Dense
	vu.Mul(&v, u.T())
	d := 1.0
	if mat.Det(&vu) < 0 { // reflection, flip the smallest axis
		d = -1
	}
	dm := mat.NewDiagDense(3, []float64{1, 1, d})
	var r, tmp mat.Dense
	tmp.Mul(&v, dm)
	r.Mul(&tmp, u.T())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t.Rot[i][j] = r.At(i, j)
		}
	}
	return t, nil
}

// FitRMSD superimposes moving on fixed and returns the deviation after
// fitting.
func FitRMSD(moving, fixed cmmn.XyzSl) (float64, error) {
	t, err := Kabsch(moving, fixed)
	if err != nil {
		return 0, err
	}
	moved := make(cmmn.XyzSl, len(moving))
	for i, x := range moving {
		moved[i] = t.Apply(x)
	}
	return RMSD(moved, fixed)
}

// Axes are three orthonormal directions.
type Axes [3]cmmn.Xyz

// Project gives the components of x along each axis.
func (a *Axes) Project(x cmmn.Xyz) cmmn.Xyz {
	dot := func(u, v cmmn.Xyz) float64 { return u.X*v.X + u.Y*v.Y + u.Z*v.Z }
	return cmmn.Xyz{X: dot(x, a[0]), Y: dot(x, a[1]), Z: dot(x, a[2])}
}

// Negate flips the axes given by index.
func (a *Axes) Negate(idx ...int) {
	for _, i := range idx {
		a[i] = cmmn.Xyz{X: -a[i].X, Y: -a[i].Y, Z: -a[i].Z}
	}
}

// det is the determinant with the axes as columns.
func (a *Axes) det() float64 {
	m := mat.NewDense(3, 3, nil)
	for j := 0; j < 3; j++ {
		c := a[j].Arr()
		m.SetCol(j, c[:])
	}
	return mat.Det(m)
}

// fixSign makes the component of largest magnitude positive.
func fixSign(v cmmn.Xyz) cmmn.Xyz {
	big, arr := 0.0, v.Arr()
	for _, c := range arr {
		if math.Abs(c) > math.Abs(big) {
			big = c
		}
	}
	if big < 0 {
		return cmmn.Xyz{X: -v.X, Y: -v.Y, Z: -v.Z}
	}
	return v
}

// PrincipalAxes returns the centroid and the principal axes of xs, sorted
// by decreasing variance. Each axis has its largest component positive
// and the set is right handed.
func PrincipalAxes(xs cmmn.XyzSl) (cmmn.Xyz, Axes, error) {
	var axes Axes
	if len(xs) == 0 {
		return cmmn.BrokenXyz, axes, ErrEmpty
	}
	c := Centroid(xs)
	p := centred(xs, c)
	var cov mat.SymDense
	cov.SymOuterK(1/float64(len(xs)), p.T())

	var es mat.EigenSym
	if ok := es.Factorize(&cov, true); !ok {
		return c, axes, errEigen
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool { return vals[order[i]] > vals[order[j]] })
	for k, col := range order {
		axes[k] = fixSign(cmmn.Xyz{X: vecs.At(0, col), Y: vecs.At(1, col), Z: vecs.At(2, col)})
	}
	if axes.det() < 0 {
		axes.Negate(0)
	}
	return c, axes, nil
}
