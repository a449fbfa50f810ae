// Package zkp provides the commitment arithmetic and proof verification
// boundary used by the swap and bridge engines. Two implementations ship:
// a real one built on Pedersen commitments over BN254 with bulletproof-style
// range proofs and a Groth16 unlock relation, and a structural stub matching
// the placeholder derivations of the on-chain reference contracts.
package zkp

import "errors"

// Direction selects how Combine folds an amount commitment into an
// accumulator commitment.
type Direction int

const (
	// Add folds the amount into the accumulator.
	Add Direction = iota
	// Subtract removes the amount from the accumulator.
	Subtract
)

const (
	// CommitmentSize is the encoded length of a commitment in bytes.
	CommitmentSize = 32
	// NullifierSize is the encoded length of a nullifier in bytes.
	NullifierSize = 32
)

var (
	// ErrMalformedProof reports a proof that fails structural validation
	// before any cryptographic work.
	ErrMalformedProof = errors.New("malformed proof")
	// ErrProofRejected reports a structurally valid proof that fails a
	// cryptographic check.
	ErrProofRejected = errors.New("proof rejected")
	// ErrInvalidCommitment reports a byte sequence that does not decode to
	// a commitment.
	ErrInvalidCommitment = errors.New("invalid commitment encoding")
	// ErrValueOutOfRange reports a value outside the provable interval.
	ErrValueOutOfRange = errors.New("value out of provable range")
)

// CommitmentScheme is the hidden-amount arithmetic shared by the swap and
// bridge engines. Combine must follow a group law: it is associative, and
// subtracting a commitment just added restores the accumulator.
type CommitmentScheme interface {
	// Zero returns the identity commitment used to seed accumulators.
	Zero() []byte

	// Combine folds amount into accumulator and returns the new accumulator.
	Combine(accumulator, amount []byte, dir Direction) ([]byte, error)

	// Commit produces a commitment to value under the given blinding bytes.
	// An empty blinding commits with a zero blinding factor.
	Commit(value uint64, blinding []byte) ([]byte, error)

	// BridgeCommitment derives the lock commitment binding a recipient
	// commitment to a net amount.
	BridgeCommitment(recipientCommitment []byte, amount uint64) []byte

	// Nullifier derives the one-time spend tag for a lock commitment.
	Nullifier(secret, commitment []byte) []byte
}

// RelationPublicInputs is the public half of the unlock relation: the lock
// commitment, the spend tag presented by the caller, and the plaintext net
// amount recorded at lock time.
type RelationPublicInputs struct {
	Commitment []byte
	Nullifier  []byte
	Amount     uint64
}

// ProofVerifier checks opaque proof blobs. Implementations are pure and
// deterministic; a nil return is the only acceptance signal.
type ProofVerifier interface {
	// VerifyRange checks that the value behind commitment lies in [min, max].
	VerifyRange(commitment, proof []byte, min, max uint64) error

	// VerifyRelation checks an unlock proof against its public inputs.
	VerifyRelation(proof []byte, pub RelationPublicInputs) error
}
