package geometry

import "math"

// Rotation is a 3x3 rotation matrix acting on column vectors. A child placed
// with rotation R has its local axes expressed in the parent frame as the
// columns of R.
type Rotation [3][3]float64

// Identity returns the identity rotation.
func Identity() Rotation {
	return Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// RotationX returns a right-handed rotation by angle (radians) about X.
func RotationX(angle float64) Rotation {
	s, c := math.Sincos(angle)
	return Rotation{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

// RotationY returns a right-handed rotation by angle (radians) about Y.
func RotationY(angle float64) Rotation {
	s, c := math.Sincos(angle)
	return Rotation{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

// RotationZ returns a right-handed rotation by angle (radians) about Z.
func RotationZ(angle float64) Rotation {
	s, c := math.Sincos(angle)
	return Rotation{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// FromEulerZYX returns Rz(z)·Ry(y)·Rx(x).
func FromEulerZYX(x, y, z float64) Rotation {
	return RotationZ(z).Mul(RotationY(y)).Mul(RotationX(x))
}

// Mul returns r·o.
func (r Rotation) Mul(o Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = r[i][0]*o[0][j] + r[i][1]*o[1][j] + r[i][2]*o[2][j]
		}
	}
	return out
}

// Apply returns r·v.
func (r Rotation) Apply(v Vec3) Vec3 {
	return Vec3{
		X: r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		Y: r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		Z: r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

// Transpose returns the transpose, which is the inverse of an orthonormal r.
func (r Rotation) Transpose() Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = r[j][i]
		}
	}
	return out
}

// IsIdentity reports whether r equals the identity within tol.
func (r Rotation) IsIdentity(tol float64) bool {
	id := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if math.Abs(r[i][j]-id[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// IsOrthonormal reports whether r·rᵀ is the identity and det(r) is +1,
// both within tol.
func (r Rotation) IsOrthonormal(tol float64) bool {
	if !r.Mul(r.Transpose()).IsIdentity(tol) {
		return false
	}
	return math.Abs(r.Det()-1) <= tol
}

// Det returns the determinant.
func (r Rotation) Det() float64 {
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// EulerZYX decomposes r into angles (radians) such that
// r == FromEulerZYX(x, y, z). At gimbal lock (|y| == 90°) x is set to zero.
func (r Rotation) EulerZYX() (x, y, z float64) {
	sy := -r[2][0]
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y = math.Asin(sy)
	if math.Abs(sy) < 1-1e-12 {
		x = math.Atan2(r[2][1], r[2][2])
		z = math.Atan2(r[1][0], r[0][0])
		return x, y, z
	}
	// Gimbal lock: only x∓z is determined.
	z = math.Atan2(-r[0][1], r[1][1])
	return 0, y, z
}
