package gnss

import "math"

// matrixInvert inverts a 4x4 matrix via explicit cofactor expansion,
// returning false if the determinant is too close to zero to trust.
func matrixInvert(mat [4][4]float64) (inv [4][4]float64, ok bool) {
	det212_01 := mat[1][0]*mat[2][1] - mat[1][1]*mat[2][0]
	det212_02 := mat[1][0]*mat[2][2] - mat[1][2]*mat[2][0]
	det212_03 := mat[1][0]*mat[2][3] - mat[1][3]*mat[2][0]
	det212_12 := mat[1][1]*mat[2][2] - mat[1][2]*mat[2][1]
	det212_13 := mat[1][1]*mat[2][3] - mat[1][3]*mat[2][1]
	det212_23 := mat[1][2]*mat[2][3] - mat[1][3]*mat[2][2]
	det213_01 := mat[1][0]*mat[3][1] - mat[1][1]*mat[3][0]
	det213_02 := mat[1][0]*mat[3][2] - mat[1][2]*mat[3][0]
	det213_03 := mat[1][0]*mat[3][3] - mat[1][3]*mat[3][0]
	det213_12 := mat[1][1]*mat[3][2] - mat[1][2]*mat[3][1]
	det213_13 := mat[1][1]*mat[3][3] - mat[1][3]*mat[3][1]
	det213_23 := mat[1][2]*mat[3][3] - mat[1][3]*mat[3][2]
	det223_01 := mat[2][0]*mat[3][1] - mat[2][1]*mat[3][0]
	det223_02 := mat[2][0]*mat[3][2] - mat[2][2]*mat[3][0]
	det223_03 := mat[2][0]*mat[3][3] - mat[2][3]*mat[3][0]
	det223_12 := mat[2][1]*mat[3][2] - mat[2][2]*mat[3][1]
	det223_13 := mat[2][1]*mat[3][3] - mat[2][3]*mat[3][1]
	det223_23 := mat[2][2]*mat[3][3] - mat[2][3]*mat[3][2]

	det3_012_012 := mat[0][0]*det212_12 - mat[0][1]*det212_02 + mat[0][2]*det212_01
	det3_012_013 := mat[0][0]*det212_13 - mat[0][1]*det212_03 + mat[0][3]*det212_01
	det3_012_023 := mat[0][0]*det212_23 - mat[0][2]*det212_03 + mat[0][3]*det212_02
	det3_012_123 := mat[0][1]*det212_23 - mat[0][2]*det212_13 + mat[0][3]*det212_12
	det3_013_012 := mat[0][0]*det213_12 - mat[0][1]*det213_02 + mat[0][2]*det213_01
	det3_013_013 := mat[0][0]*det213_13 - mat[0][1]*det213_03 + mat[0][3]*det213_01
	det3_013_023 := mat[0][0]*det213_23 - mat[0][2]*det213_03 + mat[0][3]*det213_02
	det3_013_123 := mat[0][1]*det213_23 - mat[0][2]*det213_13 + mat[0][3]*det213_12
	det3_023_012 := mat[0][0]*det223_12 - mat[0][1]*det223_02 + mat[0][2]*det223_01
	det3_023_013 := mat[0][0]*det223_13 - mat[0][1]*det223_03 + mat[0][3]*det223_01
	det3_023_023 := mat[0][0]*det223_23 - mat[0][2]*det223_03 + mat[0][3]*det223_02
	det3_023_123 := mat[0][1]*det223_23 - mat[0][2]*det223_13 + mat[0][3]*det223_12
	det3_123_012 := mat[1][0]*det223_12 - mat[1][1]*det223_02 + mat[1][2]*det223_01
	det3_123_013 := mat[1][0]*det223_13 - mat[1][1]*det223_03 + mat[1][3]*det223_01
	det3_123_023 := mat[1][0]*det223_23 - mat[1][2]*det223_03 + mat[1][3]*det223_02
	det3_123_123 := mat[1][1]*det223_23 - mat[1][2]*det223_13 + mat[1][3]*det223_12

	det := mat[0][0]*det3_123_123 - mat[0][1]*det3_123_023 + mat[0][2]*det3_123_013 - mat[0][3]*det3_123_012

	if math.Abs(det) < 0.0001 {
		return inv, false
	}

	inv[0][0], inv[0][1], inv[0][2], inv[0][3] = det3_123_123/det, -det3_023_123/det, det3_013_123/det, -det3_012_123/det
	inv[1][0], inv[1][1], inv[1][2], inv[1][3] = -det3_123_023/det, det3_023_023/det, -det3_013_023/det, det3_012_023/det
	inv[2][0], inv[2][1], inv[2][2], inv[2][3] = det3_123_013/det, -det3_023_013/det, det3_013_013/det, -det3_012_013/det
	inv[3][0], inv[3][1], inv[3][2], inv[3][3] = -det3_123_012/det, det3_023_012/det, -det3_013_012/det, det3_012_012/det

	return inv, true
}

// traceInvert computes only the four diagonal elements of mat's inverse,
// skipping the off-diagonal cofactors matrixInvert would otherwise need.
// DOP only ever needs the diagonal, so this is the cheaper path in place
// of a full matrixInvert.
func traceInvert(mat [4][4]float64) (diag [4]float64, ok bool) {
	det212_01 := mat[1][0]*mat[2][1] - mat[1][1]*mat[2][0]
	det212_02 := mat[1][0]*mat[2][2] - mat[1][2]*mat[2][0]
	det212_12 := mat[1][1]*mat[2][2] - mat[1][2]*mat[2][1]
	det213_01 := mat[1][0]*mat[3][1] - mat[1][1]*mat[3][0]
	det213_03 := mat[1][0]*mat[3][3] - mat[1][3]*mat[3][0]
	det213_13 := mat[1][1]*mat[3][3] - mat[1][3]*mat[3][1]
	det223_01 := mat[2][0]*mat[3][1] - mat[2][1]*mat[3][0]
	det223_02 := mat[2][0]*mat[3][2] - mat[2][2]*mat[3][0]
	det223_03 := mat[2][0]*mat[3][3] - mat[2][3]*mat[3][0]
	det223_12 := mat[2][1]*mat[3][2] - mat[2][2]*mat[3][1]
	det223_13 := mat[2][1]*mat[3][3] - mat[2][3]*mat[3][1]
	det223_23 := mat[2][2]*mat[3][3] - mat[2][3]*mat[3][2]

	det3_012_012 := mat[0][0]*det212_12 - mat[0][1]*det212_02 + mat[0][2]*det212_01
	det3_013_013 := mat[0][0]*det213_13 - mat[0][1]*det213_03 + mat[0][3]*det213_01
	det3_023_023 := mat[0][0]*det223_23 - mat[0][2]*det223_03 + mat[0][3]*det223_02
	det3_123_012 := mat[1][0]*det223_12 - mat[1][1]*det223_02 + mat[1][2]*det223_01
	det3_123_013 := mat[1][0]*det223_13 - mat[1][1]*det223_03 + mat[1][3]*det223_01
	det3_123_023 := mat[1][0]*det223_23 - mat[1][2]*det223_03 + mat[1][3]*det223_02
	det3_123_123 := mat[1][1]*det223_23 - mat[1][2]*det223_13 + mat[1][3]*det223_12

	det := mat[0][0]*det3_123_123 - mat[0][1]*det3_123_023 + mat[0][2]*det3_123_013 - mat[0][3]*det3_123_012

	if math.Abs(det) < 0.0001 {
		return diag, false
	}

	diag[0] = det3_123_123 / det
	diag[1] = det3_023_023 / det
	diag[2] = det3_013_013 / det
	diag[3] = det3_012_012 / det

	return diag, true
}
