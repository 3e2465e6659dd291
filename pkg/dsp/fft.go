package dsp

import "math/cmplx"

// fft computes the discrete Fourier transform of a in place, radix-2
// Cooley-Tukey. Callers must pad a to a power-of-two length. No
// generic complex FFT library is available in the wired dependency set,
// so this is a deliberate standard-library fallback; see DESIGN.md.
func fft(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}
	bitReverse(a)
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		theta := sign * 2 * 3.141592653589793 / float64(size)
		wn := cmplx.Rect(1, theta)
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				u := a[start+k]
				v := a[start+k+half] * w
				a[start+k] = u + v
				a[start+k+half] = u - v
				w *= wn
			}
		}
	}
	if inverse {
		for i := range a {
			a[i] /= complex(float64(n), 0)
		}
	}
}

func bitReverse(a []complex128) {
	n := len(a)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
