package zkp

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// StubRangeProofMinSize covers the six fixed 32-byte sections of the
	// structural range proof layout (A, S, T1, T2, tau_x, mu).
	StubRangeProofMinSize = 192
	// StubRelationProofSize is the exact structural relation proof length:
	// a[64] || b[128] || c[64].
	StubRelationProofSize = 256
)

// StubScheme mirrors the byte-wise placeholder arithmetic of the reference
// on-chain programs. It is deterministic and fast but not homomorphic over
// values; configuration selects it for dev mode and engine tests only.
type StubScheme struct{}

// NewStubScheme returns the structural commitment scheme.
func NewStubScheme() *StubScheme {
	return &StubScheme{}
}

// Zero returns the all-zero commitment, the byte-wise identity.
func (s *StubScheme) Zero() []byte {
	return make([]byte, CommitmentSize)
}

// Combine adds or subtracts per byte with wraparound.
func (s *StubScheme) Combine(accumulator, amount []byte, dir Direction) ([]byte, error) {
	if len(accumulator) != CommitmentSize || len(amount) != CommitmentSize {
		return nil, ErrInvalidCommitment
	}
	out := make([]byte, CommitmentSize)
	for i := 0; i < CommitmentSize; i++ {
		if dir == Subtract {
			out[i] = accumulator[i] - amount[i]
		} else {
			out[i] = accumulator[i] + amount[i]
		}
	}
	return out, nil
}

// Commit packs the value little-endian and folds in the blinding bytes.
func (s *StubScheme) Commit(value uint64, blinding []byte) ([]byte, error) {
	out := make([]byte, CommitmentSize)
	binary.LittleEndian.PutUint64(out, value)
	for i := 0; i < len(blinding) && i < CommitmentSize; i++ {
		out[i] += blinding[i]
	}
	return out, nil
}

// BridgeCommitment hashes keccak256(recipientCommitment || amount_le),
// the derivation the reference lock operation records.
func (s *StubScheme) BridgeCommitment(recipientCommitment []byte, amount uint64) []byte {
	var amt [8]byte
	binary.LittleEndian.PutUint64(amt[:], amount)
	return crypto.Keccak256(recipientCommitment, amt[:])
}

// Nullifier hashes keccak256(secret || commitment).
func (s *StubScheme) Nullifier(secret, commitment []byte) []byte {
	return crypto.Keccak256(secret, commitment)
}

// StubVerifier accepts proofs by structural shape alone, enforcing the
// layout the reference contracts check and nothing more.
type StubVerifier struct{}

// NewStubVerifier returns the structural proof verifier.
func NewStubVerifier() *StubVerifier {
	return &StubVerifier{}
}

// VerifyRange requires the six fixed sections to be present and non-zero.
// The interval bounds are not evaluated.
func (v *StubVerifier) VerifyRange(commitment, proof []byte, min, max uint64) error {
	if len(commitment) != CommitmentSize {
		return ErrInvalidCommitment
	}
	if len(proof) < StubRangeProofMinSize {
		return ErrMalformedProof
	}
	for off := 0; off < StubRangeProofMinSize; off += 32 {
		if allZero(proof[off : off+32]) {
			return ErrProofRejected
		}
	}
	return nil
}

// VerifyRelation requires the exact a || b || c layout with no zeroed
// section.
func (v *StubVerifier) VerifyRelation(proof []byte, pub RelationPublicInputs) error {
	if len(pub.Commitment) != CommitmentSize || len(pub.Nullifier) != NullifierSize {
		return ErrMalformedProof
	}
	if len(proof) != StubRelationProofSize {
		return ErrMalformedProof
	}
	if allZero(proof[:64]) || allZero(proof[64:192]) || allZero(proof[192:]) {
		return ErrProofRejected
	}
	return nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
