// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"math"
)

// Rotate sets m to a rotation matrix of the given angle
// (in radians) around axis.
// axis need not be normalized.
func (m *M3) Rotate(angle float32, axis *V3) {
	var a V3
	a.Norm(axis)
	s, c := float32(math.Sin(float64(angle))), float32(math.Cos(float64(angle)))
	ic := 1 - c
	m[0] = V3{c + a[0]*a[0]*ic, a[1]*a[0]*ic + a[2]*s, a[2]*a[0]*ic - a[1]*s}
	m[1] = V3{a[0]*a[1]*ic - a[2]*s, c + a[1]*a[1]*ic, a[2]*a[1]*ic + a[0]*s}
	m[2] = V3{a[0]*a[2]*ic + a[1]*s, a[1]*a[2]*ic - a[0]*s, c + a[2]*a[2]*ic}
}

// Rotate sets m to a rotation matrix of the given angle
// (in radians) around axis, leaving the fourth row/column
// as identity.
func (m *M4) Rotate(angle float32, axis *V3) {
	var n M3
	n.Rotate(angle, axis)
	m.fromM3(&n)
}

// Rotate sets q to the rotation of the given angle
// (in radians) around axis.
func (q *Q) Rotate(angle float32, axis *V3) {
	var a V3
	a.Norm(axis)
	s, c := float32(math.Sin(float64(angle/2))), float32(math.Cos(float64(angle/2)))
	q.V.Scale(s, &a)
	q.R = c
}

// RotateQ sets m to the rotation matrix equivalent to q.
// q need not be normalized.
func (m *M3) RotateQ(q *Q) {
	var n Q
	n.Norm(q)
	x, y, z, w := n.V[0], n.V[1], n.V[2], n.R
	m[0] = V3{1 - 2*(y*y+z*z), 2 * (x*y + z*w), 2 * (x*z - y*w)}
	m[1] = V3{2 * (x*y - z*w), 1 - 2*(x*x+z*z), 2 * (y*z + x*w)}
	m[2] = V3{2 * (x*z + y*w), 2 * (y*z - x*w), 1 - 2*(x*x+y*y)}
}

// RotateQ sets m to the rotation matrix equivalent to q,
// leaving the fourth row/column as identity.
func (m *M4) RotateQ(q *Q) {
	var n M3
	n.RotateQ(q)
	m.fromM3(&n)
}

// fromM3 places n in the upper-left 3x3 of m and resets
// the remaining rows/columns to identity.
func (m *M4) fromM3(n *M3) {
	*m = M4{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = n[i][j]
		}
	}
	m[3][3] = 1
}

// Norm sets q to contain p normalized.
// If p has zero length, q is set to the identity
// quaternion.
func (q *Q) Norm(p *Q) {
	l := float32(math.Sqrt(float64(p.V.Dot(&p.V) + p.R*p.R)))
	if l == 0 {
		q.V = V3{}
		q.R = 1
		return
	}
	q.V.Scale(1/l, &p.V)
	q.R = p.R / l
}

// Lerp sets v to the linear interpolation between l and r,
// where t is a value in the range [0, 1].
func (v *V3) Lerp(l, r *V3, t float32) {
	var d V3
	d.Sub(r, l)
	d.Scale(t, &d)
	v.Add(l, &d)
}

// Slerp sets q to the spherical linear interpolation between
// l and r, where t is a value in the range [0, 1].
// l and r must be normalized.
func (q *Q) Slerp(l, r *Q, t float32) {
	cosOmega := l.V.Dot(&r.V) + l.R*r.R
	rr := *r
	if cosOmega < 0 {
		rr.V.Scale(-1, &rr.V)
		rr.R = -rr.R
		cosOmega = -cosOmega
	}
	var s0, s1 float32
	if cosOmega > 0.9995 {
		// l and r are nearly identical: fall back to
		// (normalized) linear interpolation to avoid
		// dividing by a near-zero sin(omega).
		s0 = 1 - t
		s1 = t
	} else {
		omega := float32(math.Acos(float64(cosOmega)))
		sinOmega := float32(math.Sin(float64(omega)))
		s0 = float32(math.Sin(float64((1-t)*omega))) / sinOmega
		s1 = float32(math.Sin(float64(t*omega))) / sinOmega
	}
	var v0, v1 V3
	v0.Scale(s0, &l.V)
	v1.Scale(s1, &rr.V)
	q.V.Add(&v0, &v1)
	q.R = s0*l.R + s1*rr.R
	q.Norm(q)
}

// Compose sets m to the affine transform equivalent to
// scaling by s, then rotating by r, then translating by t
// (i.e., m = T * R * S).
func (m *M4) Compose(t *V3, r *Q, s *V3) {
	m.RotateQ(r)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] *= s[i]
		}
	}
	m[3] = V4{t[0], t[1], t[2], 1}
}

// Decompose extracts the translation, rotation and scale
// components of m, assuming that m is a valid TRS
// transform (i.e., it has no skew and no projective terms).
// A reflection (negative determinant) is folded into s[0]
// so that the remaining matrix is a pure rotation.
func (m *M4) Decompose() (t V3, r Q, s V3) {
	t = V3{m[3][0], m[3][1], m[3][2]}
	var col [3]V3
	for i := 0; i < 3; i++ {
		col[i] = V3{m[i][0], m[i][1], m[i][2]}
		s[i] = col[i].Len()
	}
	// Detect a reflection (negative determinant) and fold
	// it into the scale so the remaining matrix is a pure
	// rotation.
	var cr V3
	cr.Cross(&col[0], &col[1])
	if cr.Dot(&col[2]) < 0 {
		s[0] = -s[0]
	}
	var rot M3
	for i := 0; i < 3; i++ {
		if s[i] != 0 {
			rot[i].Scale(1/s[i], &col[i])
		}
	}
	r.fromM3(&rot)
	return
}

// fromM3 sets q to the quaternion equivalent to the
// rotation matrix m (assumed orthonormal).
func (q *Q) fromM3(m *M3) {
	tr := m[0][0] + m[1][1] + m[2][2]
	switch {
	case tr > 0:
		s := float32(math.Sqrt(float64(tr+1))) * 2
		q.R = s / 4
		q.V[0] = (m[1][2] - m[2][1]) / s
		q.V[1] = (m[2][0] - m[0][2]) / s
		q.V[2] = (m[0][1] - m[1][0]) / s
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := float32(math.Sqrt(float64(1+m[0][0]-m[1][1]-m[2][2]))) * 2
		q.R = (m[1][2] - m[2][1]) / s
		q.V[0] = s / 4
		q.V[1] = (m[1][0] + m[0][1]) / s
		q.V[2] = (m[2][0] + m[0][2]) / s
	case m[1][1] > m[2][2]:
		s := float32(math.Sqrt(float64(1+m[1][1]-m[0][0]-m[2][2]))) * 2
		q.R = (m[2][0] - m[0][2]) / s
		q.V[0] = (m[1][0] + m[0][1]) / s
		q.V[1] = s / 4
		q.V[2] = (m[2][1] + m[1][2]) / s
	default:
		s := float32(math.Sqrt(float64(1+m[2][2]-m[0][0]-m[1][1]))) * 2
		q.R = (m[0][1] - m[1][0]) / s
		q.V[0] = (m[2][0] + m[0][2]) / s
		q.V[1] = (m[2][1] + m[1][2]) / s
		q.V[2] = s / 4
	}
	q.Norm(q)
}

// AffineInvert sets m to the inverse of n, assuming that
// n is an affine transform (i.e., its fourth row is
// [0 0 0 1]).
// This is cheaper than M4.Invert since it avoids computing
// the general 4x4 inverse.
func (m *M4) AffineInvert(n *M4) {
	var upper, inv M3
	for i := 0; i < 3; i++ {
		upper[i] = V3{n[i][0], n[i][1], n[i][2]}
	}
	inv.Invert(&upper)
	t := V3{n[3][0], n[3][1], n[3][2]}
	var it V3
	it.Mul(&inv, &t)
	m.fromM3(&inv)
	m[3] = V4{-it[0], -it[1], -it[2], 1}
}

// InverseTranspose sets m to the inverse transpose of the
// upper-left 3x3 of n, suitable for transforming normals
// under a non-uniform scale.
func (m *M3) InverseTranspose(n *M4) {
	var upper M3
	for i := 0; i < 3; i++ {
		upper[i] = V3{n[i][0], n[i][1], n[i][2]}
	}
	var inv M3
	inv.Invert(&upper)
	m.Transpose(&inv)
}
