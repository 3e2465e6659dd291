package channel

import "fmt"

// RSParams mirrors the RS_t: a Reed-Solomon code over
// GF(2^8), parameterized by block length N, error-correcting capability t
// (R=2t parity symbols), a syndrome offset b, and a root-spacing p (with ip
// its inverse mod N-1, used only when p != 1).
type RSParams struct {
	N, T, B, P, IP int
}

// RS41Params is Vaisala RS(255,231): f=X^8+X^4+X^3+X^2+1, b=0, p=1, t=12.
var RS41Params = RSParams{N: 255, T: 12, B: 0, P: 1, IP: 1}

// CCSDSParams is the LMS6 RS(255,223): f=X^8+X^7+X^2+X+1, b=112, p=11, t=16.
var CCSDSParams = RSParams{N: 255, T: 16, B: 112, P: 11, IP: 116}

// RSCode is a ready-to-use Reed-Solomon codec: GF tables and generator
// polynomial are built once at construction and are read-only thereafter.
type RSCode struct {
	gf     *galois
	params RSParams
	gen    poly
}

// NewRS255 builds the Vaisala RS(255,231) codec (f=X^8+X^4+X^3+X^2+1, alpha=2).
func NewRS255() *RSCode { return newRSCode(0x11D, 2, RS41Params) }

// NewRS255CCSDS builds the CCSDS RS(255,223) codec used by LMS6
// (f=X^8+X^7+X^2+X+1, alpha=2).
func NewRS255CCSDS() *RSCode { return newRSCode(0x187, 2, CCSDSParams) }

func newRSCode(f uint32, alpha byte, p RSParams) *RSCode {
	gf := newGalois(f, alpha, 256)
	c := &RSCode{gf: gf, params: p}
	c.gen = c.buildGenerator()
	return c
}

func (c *RSCode) buildGenerator() poly {
	g := newPoly(c.params.N)
	g[0] = 1
	xalp := newPoly(c.params.N)
	xalp[1] = 1
	t2 := 2 * c.params.T
	for i := 0; i < t2; i++ {
		xalp[0] = c.gf.exp[(c.params.P*(c.params.B+i))%(c.gf.order-1)]
		g = c.gf.polyMul(g, xalp)
	}
	return g
}

// Encode computes the R=2t parity bytes for a systematic codeword whose
// data portion occupies cw[R:N]; parity is written into cw[0:R].
func (c *RSCode) Encode(cw []byte) error {
	if len(cw) != c.params.N {
		return fmt.Errorf("channel: RS codeword length %d, want %d", len(cw), c.params.N)
	}
	r := 2 * c.params.T
	shifted := newPoly(c.params.N)
	copy(shifted[r:], cw[r:c.params.N])
	_, parity := c.gf.polyDivMod(shifted, c.gen)
	copy(cw[:r], parity[:r])
	return nil
}

func (c *RSCode) syndromes(cw poly) (s poly, hasErrors bool) {
	t2 := 2 * c.params.T
	s = newPoly(c.params.N)
	for i := 0; i < t2; i++ {
		ai := c.gf.exp[(c.params.P*(c.params.B+i))%(c.gf.order-1)]
		s[i] = c.gf.polyEval(cw, ai)
		if s[i] != 0 {
			hasErrors = true
		}
	}
	return s, hasErrors
}

func (c *RSCode) eraSigma(erasurePos []int) poly {
	sig := newPoly(c.params.N)
	sig[0] = 1
	xa := newPoly(c.params.N)
	xa[0] = 1
	for _, pos := range erasurePos {
		ai := c.gf.exp[(c.params.P*pos)%(c.gf.order-1)]
		xa[1] = ai
		sig = c.gf.polyMul(sig, xa)
	}
	return sig
}

func (c *RSCode) forney(x byte, omega, lambda poly) byte {
	dlam := polyD(lambda)
	w := c.gf.polyEval(omega, x)
	z := c.gf.polyEval(dlam, x)
	if z == 0 {
		return 0
	}
	y := c.gf.mul(w, c.gf.inv(z))
	switch {
	case c.params.B == 0:
		y = c.gf.mul(c.gf.inv(x), y)
	case c.params.B > 1:
		xb1 := c.gf.exp[((c.params.B-1)*int(c.gf.log[x]))%(c.gf.order-1)]
		y = c.gf.mul(xb1, y)
	}
	return y
}

// Correction describes one corrected byte: Pos is the codeword index
// (0 = the x^0 coefficient, the first parity byte in the cw[0..N-1]
// layout), Val is the
// XOR correction applied at that index.
type Correction struct {
	Pos int
	Val byte
}

// DecodeErrEra runs the errors-and-erasures Euclidean decoder. erasurePos
// holds known-bad codeword indices (may be nil/empty for pure error
// correction). It returns the corrections applied (also applied in place to
// cw) and the error count, or a negative sentinel: -1 uncorrectable
// (too many errors), -2 algorithmic failure
// (Lambda(0)=0, so Lambda cannot be normalized), -3 the
// error+erasure count exceeds what Omega/Lambda degrees allow, -4 more
// erasures than 2t.
func (c *RSCode) DecodeErrEra(cw []byte, erasurePos []int) ([]Correction, int) {
	if len(erasurePos) > 2*c.params.T {
		return nil, -4
	}
	cwp := poly(make([]byte, c.params.N))
	copy(cwp, cw)

	s, hasErrors := c.syndromes(cwp)
	if !hasErrors {
		return nil, 0
	}

	sigma := newPoly(c.params.N)
	sigma[0] = 1
	nEra := len(erasurePos)
	if nEra > 0 {
		sigma = c.eraSigma(erasurePos)
		s = c.gf.polyMul(sigma, s)
		for i := 2 * c.params.T; i < len(s); i++ {
			s[i] = 0
		}
	}

	lambda, omega := c.gf.lfsr(c.params.T+nEra/2, 2*c.params.T, s)
	degLambda := polyDeg(lambda)
	degOmega := polyDeg(omega)
	if degOmega >= degLambda+nEra {
		return nil, -3
	}
	gamma := lambda[0]
	if gamma == 0 {
		return nil, -2
	}
	for i := 0; i <= degLambda; i++ {
		lambda[i] = c.gf.mul(lambda[i], c.gf.inv(gamma))
	}
	for i := 0; i <= degOmega; i++ {
		omega[i] = c.gf.mul(omega[i], c.gf.inv(gamma))
	}
	sigLam := c.gf.polyMul(sigma, lambda)
	degSigLam := polyDeg(sigLam)

	var corr []Correction
	for i := 1; i < c.gf.order; i++ {
		x := byte(i)
		if c.gf.polyEval(sigLam, x) != 0 {
			continue
		}
		x1 := c.gf.inv(x)
		pos := (int(c.gf.log[x1]) * c.params.IP) % (c.gf.order - 1)
		val := c.forney(x, omega, sigLam)
		corr = append(corr, Correction{Pos: pos, Val: val})
		if len(corr) >= degSigLam {
			break
		}
	}
	if len(corr) < degSigLam {
		return nil, -1
	}
	for _, cr := range corr {
		cw[cr.Pos] ^= cr.Val
	}
	return corr, len(corr)
}

// Decode is DecodeErrEra with no known erasures: pure error correction,
// capacity t.
func (c *RSCode) Decode(cw []byte) ([]Correction, int) {
	return c.DecodeErrEra(cw, nil)
}
