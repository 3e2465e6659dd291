package channel

// BCHCode implements the binary 2-error-correcting BCH(63,51) code used by
// the Meisei M10 frame family: GF(64) with primitive polynomial X^6+X+1,
// generator (X^6+X+1)(X^6+X^4+X^2+X+1).
type BCHCode struct {
	gf *galois
}

const (
	bchN = 63
	bchT = 2
)

// NewBCH64 builds the GF(2^6) field tables for BCH(63,51).
func NewBCH64() *BCHCode {
	return &BCHCode{gf: newGalois(0x43, 2, 64)}
}

// generator is X^12+X^10+X^8+X^5+X^4+X^3+1, written as a literal
// coefficient assignment rather than a product expansion.
func (b *BCHCode) generator() poly {
	g := newPoly(bchN)
	for _, i := range []int{0, 3, 4, 5, 8, 10, 12} {
		g[i] = 1
	}
	return g
}

// Encode computes the 12 parity bits (as a 12-byte 0/1 array, one GF(2)
// coefficient per slot) for a 51-bit systematic message held the same way.
func (b *BCHCode) Encode(cw []byte) {
	const r = 12
	shifted := newPoly(bchN)
	copy(shifted[r:], cw[r:bchN])
	_, parity := b.gf.polyDivMod(shifted, b.generator())
	copy(cw[:r], parity[:r])
}

func (b *BCHCode) syndromes(cw poly) (s poly, hasErrors bool) {
	s = newPoly(bchN)
	for i := 0; i < 2*bchT; i++ {
		ai := b.gf.exp[(i+1)%(b.gf.order-1)] // b=1 in the BCH64 params
		s[i] = b.gf.polyEval(cw, ai)
		if s[i] != 0 {
			hasErrors = true
		}
	}
	return s, hasErrors
}

// DecodeGF2T2 decodes up to 2 bit errors: the Euclidean Lambda/Omega is
// computed first and independently cross-checked against the closed form
// Lambda(x) = 1 + S1 x + (S3+S1^3)/S1 x^2 from S1=S[0]. Any disagreement
// between the two derivations, or any syndrome-consistency violation
// (S2 != S1^2, S4 != S2^2), is reported as algorithmic failure (-2).
func (b *BCHCode) DecodeGF2T2(cw []byte) ([]Correction, int) {
	cwp := poly(make([]byte, bchN))
	copy(cwp, cw)

	s, hasErrors := b.syndromes(cwp)
	if !hasErrors {
		return nil, 0
	}

	lambda, omega := b.gf.lfsr(bchT, 2*bchT, s)
	gamma := lambda[0]
	if gamma == 0 {
		return nil, -2
	}
	degLambda := polyDeg(lambda)
	degOmega := polyDeg(omega)
	for i := 0; i <= degLambda; i++ {
		lambda[i] = b.gf.mul(lambda[i], b.gf.inv(gamma))
	}
	for i := 0; i <= degOmega; i++ {
		omega[i] = b.gf.mul(omega[i], b.gf.inv(gamma))
	}

	s1 := s[0]
	closed := newPoly(bchN)
	closed[0] = 1
	closed[1] = s1
	l2 := b.gf.mul(b.gf.mul(s1, s1), s1)
	l2 ^= s[2]
	l2 = b.gf.mul(l2, b.gf.inv(s1))
	closed[2] = l2

	if s[1] != b.gf.mul(s1, s1) || s[3] != b.gf.mul(s[1], s[1]) {
		return nil, -2
	}
	if closed[1] != lambda[1] || closed[2] != lambda[2] {
		return nil, -2
	}

	var corr []Correction
	for i := 1; i < b.gf.order; i++ {
		x := byte(i)
		if b.gf.polyEval(lambda, x) != 0 {
			continue
		}
		pos := int(b.gf.log[b.gf.inv(x)])
		corr = append(corr, Correction{Pos: pos, Val: 1})
		if len(corr) >= degLambda {
			break
		}
	}
	if len(corr) < degLambda {
		return nil, -1
	}
	for _, cr := range corr {
		cw[cr.Pos] ^= cr.Val
	}
	return corr, len(corr)
}
