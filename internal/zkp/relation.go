package zkp

import (
	"bytes"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// UnlockCircuit is the Groth16 relation gating bridge unlocks. The prover
// shows knowledge of the recipient opening and spend secret behind a lock
// commitment: commitment = MiMC(recipient, amount) and
// nullifier = MiMC(secret, commitment), with amount constrained to 64 bits.
type UnlockCircuit struct {
	Recipient frontend.Variable
	Secret    frontend.Variable

	Amount     frontend.Variable `gnark:",public"`
	Commitment frontend.Variable `gnark:",public"`
	Nullifier  frontend.Variable `gnark:",public"`
}

func (c *UnlockCircuit) Define(api frontend.API) error {
	cm, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	cm.Write(c.Recipient)
	cm.Write(c.Amount)
	commitment := cm.Sum()
	api.AssertIsEqual(c.Commitment, commitment)

	nf, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	nf.Write(c.Secret)
	nf.Write(commitment)
	api.AssertIsEqual(c.Nullifier, nf.Sum())

	api.ToBinary(c.Amount, 64)
	return nil
}

// BN254Verifier is the production ProofVerifier: bulletproof-style range
// checks plus Groth16 verification of the unlock relation.
type BN254Verifier struct {
	vk groth16.VerifyingKey
}

// NewBN254Verifier wires the verifying key produced by the one-time setup.
func NewBN254Verifier(vk groth16.VerifyingKey) *BN254Verifier {
	return &BN254Verifier{vk: vk}
}

// VerifyRelation checks a Groth16 unlock proof against its public inputs.
func (v *BN254Verifier) VerifyRelation(proof []byte, pub RelationPublicInputs) error {
	if len(proof) == 0 || len(pub.Commitment) != CommitmentSize || len(pub.Nullifier) != NullifierSize {
		return ErrMalformedProof
	}
	gProof := groth16.NewProof(ecc.BN254)
	if _, err := gProof.ReadFrom(bytes.NewReader(proof)); err != nil {
		return ErrMalformedProof
	}

	assignment := &UnlockCircuit{
		Amount:     pub.Amount,
		Commitment: reduceToField(pub.Commitment),
		Nullifier:  reduceToField(pub.Nullifier),
	}
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return ErrMalformedProof
	}
	if err := groth16.Verify(gProof, v.vk, witness); err != nil {
		return ErrProofRejected
	}
	return nil
}

// RelationProver produces unlock proofs. Only client tooling and tests hold
// a proving key; services verify.
type RelationProver struct {
	pk  groth16.ProvingKey
	ccs constraint.ConstraintSystem
}

// NewRelationProver builds a prover from a compiled circuit and proving key.
func NewRelationProver(ccs constraint.ConstraintSystem, pk groth16.ProvingKey) *RelationProver {
	return &RelationProver{pk: pk, ccs: ccs}
}

// Prove derives the lock commitment and nullifier for (recipient, secret,
// amount) and returns a serialized proof alongside its public inputs.
func (p *RelationProver) Prove(recipient, secret []byte, amount uint64) ([]byte, RelationPublicInputs, error) {
	scheme := NewPedersenScheme()
	commitment := scheme.BridgeCommitment(recipient, amount)
	nullifier := scheme.Nullifier(secret, commitment)

	assignment := &UnlockCircuit{
		Recipient:  reduceToField(recipient),
		Secret:     reduceToField(secret),
		Amount:     amount,
		Commitment: reduceToField(commitment),
		Nullifier:  reduceToField(nullifier),
	}
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, RelationPublicInputs{}, err
	}
	proof, err := groth16.Prove(p.ccs, p.pk, witness)
	if err != nil {
		return nil, RelationPublicInputs{}, err
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, RelationPublicInputs{}, err
	}
	pub := RelationPublicInputs{Commitment: commitment, Nullifier: nullifier, Amount: amount}
	return buf.Bytes(), pub, nil
}

// reduceToField maps raw bytes into the scalar field the circuit runs over.
func reduceToField(b []byte) *big.Int {
	var e fr.Element
	e.SetBytes(b)
	return e.BigInt(new(big.Int))
}
