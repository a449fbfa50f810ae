package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/ethereum/go-ethereum/crypto"
)

// Generator points for Pedersen commitments. gGen carries the value, hGen
// carries the blinding factor and is derived from a fixed domain tag.
var (
	gGen bn254.G1Affine
	hGen bn254.G1Affine
)

func init() {
	_, _, g1Gen, _ := bn254.Generators()
	gGen = g1Gen
	hGen = hashToCurve([]byte("ZKDexPedersenBlindingH"))
}

// hashToCurve derives a curve point from arbitrary data.
func hashToCurve(data []byte) bn254.G1Affine {
	var scalar fr.Element
	scalar.SetBytes(crypto.Keccak256(data))

	var p bn254.G1Affine
	p.ScalarMultiplication(&gGen, scalar.BigInt(new(big.Int)))
	return p
}

// PedersenScheme implements CommitmentScheme with Pedersen commitments
// C = v*G + r*H over BN254. Commitments serialize to the 32-byte compressed
// point encoding; the group identity encodes the zero-value commitment.
// BridgeCommitment and Nullifier hash with MiMC over the scalar field so the
// Groth16 unlock circuit can recompute both in-circuit.
type PedersenScheme struct{}

// NewPedersenScheme returns the production commitment scheme.
func NewPedersenScheme() *PedersenScheme {
	return &PedersenScheme{}
}

// Zero returns the identity commitment.
func (s *PedersenScheme) Zero() []byte {
	var inf bn254.G1Affine
	out := inf.Bytes()
	return out[:]
}

// Combine adds or subtracts amount on the accumulator by the group law.
func (s *PedersenScheme) Combine(accumulator, amount []byte, dir Direction) ([]byte, error) {
	var acc, amt bn254.G1Affine
	if err := decodeCommitment(&acc, accumulator); err != nil {
		return nil, err
	}
	if err := decodeCommitment(&amt, amount); err != nil {
		return nil, err
	}
	if dir == Subtract {
		amt.Neg(&amt)
	}
	var combined bn254.G1Affine
	combined.Add(&acc, &amt)
	out := combined.Bytes()
	return out[:], nil
}

// Commit computes v*G + r*H with r drawn from the blinding bytes.
func (s *PedersenScheme) Commit(value uint64, blinding []byte) ([]byte, error) {
	var c bn254.G1Affine
	c.ScalarMultiplication(&gGen, new(big.Int).SetUint64(value))
	if len(blinding) > 0 {
		var r fr.Element
		r.SetBytes(blinding)
		var rH bn254.G1Affine
		rH.ScalarMultiplication(&hGen, r.BigInt(new(big.Int)))
		c.Add(&c, &rH)
	}
	out := c.Bytes()
	return out[:], nil
}

// BridgeCommitment hashes MiMC(recipientCommitment, amount) over the scalar
// field.
func (s *PedersenScheme) BridgeCommitment(recipientCommitment []byte, amount uint64) []byte {
	var rc, amt fr.Element
	rc.SetBytes(recipientCommitment)
	amt.SetUint64(amount)
	return mimcSum(rc, amt)
}

// Nullifier hashes MiMC(secret, commitment) over the scalar field.
func (s *PedersenScheme) Nullifier(secret, commitment []byte) []byte {
	var sk, cm fr.Element
	sk.SetBytes(secret)
	cm.SetBytes(commitment)
	return mimcSum(sk, cm)
}

// NewBlinding returns a fresh random blinding factor for Commit.
func NewBlinding() ([]byte, error) {
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, err
	}
	out := r.Bytes()
	return out[:], nil
}

func decodeCommitment(p *bn254.G1Affine, data []byte) error {
	if len(data) != CommitmentSize {
		return ErrInvalidCommitment
	}
	if _, err := p.SetBytes(data); err != nil {
		return ErrInvalidCommitment
	}
	return nil
}

// mimcSum hashes field elements with the native MiMC, writing each element
// as a canonical 32-byte block so the digest matches the in-circuit hasher.
func mimcSum(elems ...fr.Element) []byte {
	h := mimc.NewMiMC()
	for i := range elems {
		block := elems[i].Bytes()
		h.Write(block[:])
	}
	return h.Sum(nil)
}
