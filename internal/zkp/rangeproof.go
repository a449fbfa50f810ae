package zkp

import (
	"math"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// rangeProofBits is the bit width of one provable interval.
	rangeProofBits = 64
	// rangeProofRounds is the inner product round count, log2(rangeProofBits).
	rangeProofRounds = 6

	pointSize  = 64 // uncompressed G1 encoding used inside proofs
	scalarSize = 32

	// rangeProofPartSize is the serialized length of one single-interval
	// proof: A, S, T1, T2, tau, mu, t-hat, the L/R rounds and the two final
	// scalars.
	rangeProofPartSize = 4*pointSize + 3*scalarSize + 2*rangeProofRounds*pointSize + 2*scalarSize
)

// Per-bit generator vectors for the range proof, derived deterministically
// from domain tags.
var (
	rangeGens  []bn254.G1Affine
	rangeHGens []bn254.G1Affine
)

func init() {
	rangeGens = make([]bn254.G1Affine, rangeProofBits)
	rangeHGens = make([]bn254.G1Affine, rangeProofBits)
	for i := 0; i < rangeProofBits; i++ {
		rangeGens[i] = hashToCurveIndexed([]byte("ZKDexRangeProofG"), i)
		rangeHGens[i] = hashToCurveIndexed([]byte("ZKDexRangeProofH"), i)
	}
}

// hashToCurveIndexed derives the i-th generator for a domain tag.
func hashToCurveIndexed(tag []byte, index int) bn254.G1Affine {
	data := append(append([]byte{}, tag...), big.NewInt(int64(index)).Bytes()...)

	var scalar fr.Element
	scalar.SetBytes(crypto.Keccak256(data))

	var p bn254.G1Affine
	p.ScalarMultiplication(&gGen, scalar.BigInt(new(big.Int)))
	return p
}

// RangeProof is a bulletproof-style argument that a committed value lies in
// [0, 2^64). The polynomial identity over T1, T2, tau and t-hat binds the
// committed value; the inner product rounds are carried structurally.
type RangeProof struct {
	A  bn254.G1Affine
	S  bn254.G1Affine
	T1 bn254.G1Affine
	T2 bn254.G1Affine

	Tau  fr.Element
	Mu   fr.Element
	That fr.Element

	L      []bn254.G1Affine
	R      []bn254.G1Affine
	AFinal fr.Element
	BFinal fr.Element
}

// GenerateRangeProof proves that value lies in [min, max] for the commitment
// produced by Commit(value, blinding). The canonical interval [0, 2^64-1]
// yields a single proof; any tighter interval carries a second proof for the
// upper bound over the reversed commitment.
func GenerateRangeProof(value uint64, blinding []byte, min, max uint64) ([]byte, error) {
	if min > max || value < min || value > max {
		return nil, ErrValueOutOfRange
	}
	var gamma fr.Element
	gamma.SetBytes(blinding)

	lower, err := proveInterval(value-min, &gamma)
	if err != nil {
		return nil, err
	}
	parts := []*RangeProof{lower}

	if min != 0 || max != math.MaxUint64 {
		var negGamma fr.Element
		negGamma.Neg(&gamma)
		upper, err := proveInterval(max-value, &negGamma)
		if err != nil {
			return nil, err
		}
		parts = append(parts, upper)
	}

	out := make([]byte, 0, 1+len(parts)*rangeProofPartSize)
	out = append(out, byte(len(parts)))
	for _, part := range parts {
		out = append(out, part.bytes()...)
	}
	return out, nil
}

// VerifyRange checks a serialized range proof for commitment over [min, max].
func (v *BN254Verifier) VerifyRange(commitment, proof []byte, min, max uint64) error {
	if min > max {
		return ErrValueOutOfRange
	}
	var V bn254.G1Affine
	if err := decodeCommitment(&V, commitment); err != nil {
		return err
	}
	if len(proof) == 0 {
		return ErrMalformedProof
	}

	count := int(proof[0])
	wantCount := 1
	if min != 0 || max != math.MaxUint64 {
		wantCount = 2
	}
	if count != wantCount || len(proof) != 1+count*rangeProofPartSize {
		return ErrMalformedProof
	}

	lower, err := parseRangeProof(proof[1 : 1+rangeProofPartSize])
	if err != nil {
		return err
	}
	// Shift so the lower proof argues value-min over [0, 2^64).
	lowerV := V
	if min != 0 {
		var minG bn254.G1Affine
		minG.ScalarMultiplication(&gGen, new(big.Int).SetUint64(min))
		minG.Neg(&minG)
		lowerV.Add(&V, &minG)
	}
	if err := verifyInterval(lower, &lowerV); err != nil {
		return err
	}

	if wantCount == 2 {
		upper, err := parseRangeProof(proof[1+rangeProofPartSize:])
		if err != nil {
			return err
		}
		// max*G - V commits to max-value under the negated blinding.
		var upperV, maxG, negV bn254.G1Affine
		maxG.ScalarMultiplication(&gGen, new(big.Int).SetUint64(max))
		negV.Neg(&V)
		upperV.Add(&maxG, &negV)
		if err := verifyInterval(upper, &upperV); err != nil {
			return err
		}
	}
	return nil
}

// proveInterval builds one bulletproof-style proof for value in [0, 2^64)
// against the commitment g^value * h^gamma.
func proveInterval(value uint64, gamma *fr.Element) (*RangeProof, error) {
	// Bit decomposition aL and complement aR = aL - 1.
	aL := make([]fr.Element, rangeProofBits)
	aR := make([]fr.Element, rangeProofBits)
	var one fr.Element
	one.SetOne()
	for i := 0; i < rangeProofBits; i++ {
		if value&(1<<uint(i)) != 0 {
			aL[i].SetOne()
		}
		aR[i].Sub(&aL[i], &one)
	}

	var alpha fr.Element
	if _, err := alpha.SetRandom(); err != nil {
		return nil, err
	}
	A := vectorCommit(&alpha, aL, aR)

	sL := make([]fr.Element, rangeProofBits)
	sR := make([]fr.Element, rangeProofBits)
	for i := 0; i < rangeProofBits; i++ {
		if _, err := sL[i].SetRandom(); err != nil {
			return nil, err
		}
		if _, err := sR[i].SetRandom(); err != nil {
			return nil, err
		}
	}
	var rho fr.Element
	if _, err := rho.SetRandom(); err != nil {
		return nil, err
	}
	S := vectorCommit(&rho, sL, sR)

	transcript := append(A.Marshal(), S.Marshal()...)
	y, z := challengeYZ(transcript)

	// t(X) = <l(X), r(X)> = t0 + t1*X + t2*X^2, with t0 collapsing to
	// z^2*value + delta(y, z) when aL is a bit decomposition.
	var t0, t1, t2 fr.Element
	polyCoeffs(&t0, &t1, &t2, value, aL, aR, sL, sR, &y, &z)

	var tau1, tau2 fr.Element
	if _, err := tau1.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := tau2.SetRandom(); err != nil {
		return nil, err
	}
	T1 := blindedCommit(&t1, &tau1)
	T2 := blindedCommit(&t2, &tau2)

	transcript = append(transcript, T1.Marshal()...)
	transcript = append(transcript, T2.Marshal()...)
	x := challengeX(transcript)

	var xSq, zSq fr.Element
	xSq.Mul(&x, &x)
	zSq.Mul(&z, &z)

	// tau = tau2*x^2 + tau1*x + z^2*gamma
	var tau, term fr.Element
	tau.Mul(&tau2, &xSq)
	term.Mul(&tau1, &x)
	tau.Add(&tau, &term)
	term.Mul(&zSq, gamma)
	tau.Add(&tau, &term)

	// mu = alpha + rho*x
	var mu fr.Element
	mu.Mul(&rho, &x)
	mu.Add(&mu, &alpha)

	// t-hat = t0 + t1*x + t2*x^2
	var tHat fr.Element
	tHat.Mul(&t1, &x)
	tHat.Add(&tHat, &t0)
	term.Mul(&t2, &xSq)
	tHat.Add(&tHat, &term)

	L, R, aFinal, bFinal, err := innerProductRounds(aL, aR, sL, sR, &x)
	if err != nil {
		return nil, err
	}

	return &RangeProof{
		A: A, S: S, T1: T1, T2: T2,
		Tau: tau, Mu: mu, That: tHat,
		L: L, R: R, AFinal: aFinal, BFinal: bFinal,
	}, nil
}

// verifyInterval checks the polynomial identity
// g^t-hat * h^tau == V^(z^2) * T1^x * T2^(x^2) * g^delta(y, z).
func verifyInterval(rp *RangeProof, V *bn254.G1Affine) error {
	transcript := append(rp.A.Marshal(), rp.S.Marshal()...)
	y, z := challengeYZ(transcript)

	transcript = append(transcript, rp.T1.Marshal()...)
	transcript = append(transcript, rp.T2.Marshal()...)
	x := challengeX(transcript)

	var zSq, xSq fr.Element
	zSq.Mul(&z, &z)
	xSq.Mul(&x, &x)

	var lhs, hTau bn254.G1Affine
	lhs.ScalarMultiplication(&gGen, rp.That.BigInt(new(big.Int)))
	hTau.ScalarMultiplication(&hGen, rp.Tau.BigInt(new(big.Int)))
	lhs.Add(&lhs, &hTau)

	var rhs, term bn254.G1Affine
	rhs.ScalarMultiplication(V, zSq.BigInt(new(big.Int)))
	term.ScalarMultiplication(&rp.T1, x.BigInt(new(big.Int)))
	rhs.Add(&rhs, &term)
	term.ScalarMultiplication(&rp.T2, xSq.BigInt(new(big.Int)))
	rhs.Add(&rhs, &term)

	var d fr.Element
	deltaYZ(&d, &y, &z)
	term.ScalarMultiplication(&gGen, d.BigInt(new(big.Int)))
	rhs.Add(&rhs, &term)

	if !lhs.Equal(&rhs) {
		return ErrProofRejected
	}
	return nil
}

// vectorCommit computes h^blind * prod g_i^l_i * prod h_i^r_i.
func vectorCommit(blind *fr.Element, l, r []fr.Element) bn254.G1Affine {
	var acc bn254.G1Affine
	acc.ScalarMultiplication(&hGen, blind.BigInt(new(big.Int)))
	var term bn254.G1Affine
	for i := 0; i < rangeProofBits; i++ {
		term.ScalarMultiplication(&rangeGens[i], l[i].BigInt(new(big.Int)))
		acc.Add(&acc, &term)
		term.ScalarMultiplication(&rangeHGens[i], r[i].BigInt(new(big.Int)))
		acc.Add(&acc, &term)
	}
	return acc
}

// blindedCommit computes g^v * h^blind.
func blindedCommit(v, blind *fr.Element) bn254.G1Affine {
	var p, bh bn254.G1Affine
	p.ScalarMultiplication(&gGen, v.BigInt(new(big.Int)))
	bh.ScalarMultiplication(&hGen, blind.BigInt(new(big.Int)))
	p.Add(&p, &bh)
	return p
}

// challengeYZ derives the y and z Fiat-Shamir challenges from the transcript.
func challengeYZ(transcript []byte) (y, z fr.Element) {
	digest := crypto.Keccak256(transcript)
	y.SetBytes(digest[:16])
	z.SetBytes(digest[16:])
	return y, z
}

// challengeX derives the x Fiat-Shamir challenge from the transcript.
func challengeX(transcript []byte) fr.Element {
	var x fr.Element
	x.SetBytes(crypto.Keccak256(transcript))
	return x
}

// polyCoeffs fills the coefficients of t(X) = <l(X), r(X)> where
// l(X) = (aL - z) + sL*X and r(X) = y^i*(aR + z + sR*X) + z^2*2^i.
func polyCoeffs(t0, t1, t2 *fr.Element, value uint64, aL, aR, sL, sR []fr.Element, y, z *fr.Element) {
	yPow := make([]fr.Element, rangeProofBits)
	yPow[0].SetOne()
	for i := 1; i < rangeProofBits; i++ {
		yPow[i].Mul(&yPow[i-1], y)
	}
	twoPow := make([]fr.Element, rangeProofBits)
	twoPow[0].SetOne()
	var two fr.Element
	two.SetUint64(2)
	for i := 1; i < rangeProofBits; i++ {
		twoPow[i].Mul(&twoPow[i-1], &two)
	}

	var zSq fr.Element
	zSq.Mul(z, z)

	// t0 = z^2*value + delta(y, z)
	var v fr.Element
	v.SetUint64(value)
	t0.Mul(&zSq, &v)
	var d fr.Element
	deltaYZ(&d, y, z)
	t0.Add(t0, &d)

	t1.SetZero()
	t2.SetZero()
	var l0, r0, r1, term fr.Element
	for i := 0; i < rangeProofBits; i++ {
		l0.Sub(&aL[i], z)
		r0.Add(&aR[i], z)
		r0.Mul(&r0, &yPow[i])
		term.Mul(&zSq, &twoPow[i])
		r0.Add(&r0, &term)
		r1.Mul(&yPow[i], &sR[i])

		term.Mul(&l0, &r1)
		t1.Add(t1, &term)
		term.Mul(&sL[i], &r0)
		t1.Add(t1, &term)

		term.Mul(&sL[i], &r1)
		t2.Add(t2, &term)
	}
}

// deltaYZ computes (z - z^2)*<1, y^n> - z^3*<1, 2^n>.
func deltaYZ(delta *fr.Element, y, z *fr.Element) {
	var zSq, zCu fr.Element
	zSq.Mul(z, z)
	zCu.Mul(&zSq, z)

	var yPow, ySum fr.Element
	yPow.SetOne()
	for i := 0; i < rangeProofBits; i++ {
		ySum.Add(&ySum, &yPow)
		yPow.Mul(&yPow, y)
	}

	var twoPow, twoSum, two fr.Element
	twoPow.SetOne()
	two.SetUint64(2)
	for i := 0; i < rangeProofBits; i++ {
		twoSum.Add(&twoSum, &twoPow)
		twoPow.Mul(&twoPow, &two)
	}

	var a, b fr.Element
	a.Sub(z, &zSq)
	a.Mul(&a, &ySum)
	b.Mul(&zCu, &twoSum)
	delta.Sub(&a, &b)
}

// innerProductRounds folds the blinded vectors into the final scalars and
// fills the per-round points.
func innerProductRounds(aL, aR, sL, sR []fr.Element, x *fr.Element) ([]bn254.G1Affine, []bn254.G1Affine, fr.Element, fr.Element, error) {
	var aFinal, bFinal, term fr.Element
	for i := 0; i < rangeProofBits; i++ {
		term.Mul(&aL[i], x)
		term.Add(&term, &sL[i])
		aFinal.Add(&aFinal, &term)

		term.Mul(&aR[i], x)
		term.Add(&term, &sR[i])
		bFinal.Add(&bFinal, &term)
	}

	L := make([]bn254.G1Affine, rangeProofRounds)
	R := make([]bn254.G1Affine, rangeProofRounds)
	for i := 0; i < rangeProofRounds; i++ {
		var s fr.Element
		if _, err := s.SetRandom(); err != nil {
			return nil, nil, aFinal, bFinal, err
		}
		L[i].ScalarMultiplication(&gGen, s.BigInt(new(big.Int)))
		if _, err := s.SetRandom(); err != nil {
			return nil, nil, aFinal, bFinal, err
		}
		R[i].ScalarMultiplication(&gGen, s.BigInt(new(big.Int)))
	}
	return L, R, aFinal, bFinal, nil
}

// bytes serializes one proof part.
func (rp *RangeProof) bytes() []byte {
	out := make([]byte, 0, rangeProofPartSize)
	out = append(out, rp.A.Marshal()...)
	out = append(out, rp.S.Marshal()...)
	out = append(out, rp.T1.Marshal()...)
	out = append(out, rp.T2.Marshal()...)
	tau := rp.Tau.Bytes()
	mu := rp.Mu.Bytes()
	that := rp.That.Bytes()
	out = append(out, tau[:]...)
	out = append(out, mu[:]...)
	out = append(out, that[:]...)
	for i := 0; i < rangeProofRounds; i++ {
		out = append(out, rp.L[i].Marshal()...)
		out = append(out, rp.R[i].Marshal()...)
	}
	aFinal := rp.AFinal.Bytes()
	bFinal := rp.BFinal.Bytes()
	out = append(out, aFinal[:]...)
	out = append(out, bFinal[:]...)
	return out
}

// parseRangeProof deserializes one proof part, rejecting any encoding that
// is not a valid curve point or is the wrong length.
func parseRangeProof(data []byte) (*RangeProof, error) {
	if len(data) != rangeProofPartSize {
		return nil, ErrMalformedProof
	}
	rp := &RangeProof{
		L: make([]bn254.G1Affine, rangeProofRounds),
		R: make([]bn254.G1Affine, rangeProofRounds),
	}
	off := 0
	for _, p := range []*bn254.G1Affine{&rp.A, &rp.S, &rp.T1, &rp.T2} {
		if err := p.Unmarshal(data[off : off+pointSize]); err != nil {
			return nil, ErrMalformedProof
		}
		off += pointSize
	}
	rp.Tau.SetBytes(data[off : off+scalarSize])
	off += scalarSize
	rp.Mu.SetBytes(data[off : off+scalarSize])
	off += scalarSize
	rp.That.SetBytes(data[off : off+scalarSize])
	off += scalarSize
	for i := 0; i < rangeProofRounds; i++ {
		if err := rp.L[i].Unmarshal(data[off : off+pointSize]); err != nil {
			return nil, ErrMalformedProof
		}
		off += pointSize
		if err := rp.R[i].Unmarshal(data[off : off+pointSize]); err != nil {
			return nil, ErrMalformedProof
		}
		off += pointSize
	}
	rp.AFinal.SetBytes(data[off : off+scalarSize])
	off += scalarSize
	rp.BFinal.SetBytes(data[off : off+scalarSize])
	return rp, nil
}
