package zkp

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestPedersenCombineRoundTrip(t *testing.T) {
	s := NewPedersenScheme()

	blinding, err := NewBlinding()
	if err != nil {
		t.Fatalf("blinding: %v", err)
	}
	c, err := s.Commit(100, blinding)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Folding into the identity yields the commitment itself.
	acc, err := s.Combine(s.Zero(), c, Add)
	if err != nil {
		t.Fatalf("combine add: %v", err)
	}
	if !bytes.Equal(acc, c) {
		t.Error("identity plus commitment should equal the commitment")
	}

	// Subtracting what was just added restores the identity.
	back, err := s.Combine(acc, c, Subtract)
	if err != nil {
		t.Fatalf("combine subtract: %v", err)
	}
	if !bytes.Equal(back, s.Zero()) {
		t.Error("add then subtract should restore the identity")
	}
}

func TestPedersenHomomorphism(t *testing.T) {
	s := NewPedersenScheme()

	r1, _ := NewBlinding()
	r2, _ := NewBlinding()
	c1, _ := s.Commit(100, r1)
	c2, _ := s.Commit(250, r2)

	sum, err := s.Combine(c1, c2, Add)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}

	// Commit(a, r1) + Commit(b, r2) = Commit(a+b, r1+r2)
	var f1, f2, fsum fr.Element
	f1.SetBytes(r1)
	f2.SetBytes(r2)
	fsum.Add(&f1, &f2)
	combined := fsum.Bytes()
	want, _ := s.Commit(350, combined[:])
	if !bytes.Equal(sum, want) {
		t.Error("homomorphic addition does not match direct commitment")
	}
}

func TestPedersenRejectsBadEncoding(t *testing.T) {
	s := NewPedersenScheme()

	// All-zero bytes are not a valid compressed point.
	if _, err := s.Combine(make([]byte, CommitmentSize), s.Zero(), Add); !errors.Is(err, ErrInvalidCommitment) {
		t.Errorf("want ErrInvalidCommitment, got %v", err)
	}
	if _, err := s.Combine(s.Zero(), []byte{1, 2, 3}, Add); !errors.Is(err, ErrInvalidCommitment) {
		t.Errorf("want ErrInvalidCommitment for short input, got %v", err)
	}
}

func TestNullifierDerivation(t *testing.T) {
	s := NewPedersenScheme()
	secret := bytes.Repeat([]byte{7}, 32)
	recipient := bytes.Repeat([]byte{9}, 32)

	cm := s.BridgeCommitment(recipient, 4242)
	if len(cm) != CommitmentSize {
		t.Fatalf("bridge commitment length = %d", len(cm))
	}

	n1 := s.Nullifier(secret, cm)
	n2 := s.Nullifier(secret, cm)
	if !bytes.Equal(n1, n2) {
		t.Error("nullifier derivation is not deterministic")
	}
	other := s.Nullifier(bytes.Repeat([]byte{8}, 32), cm)
	if bytes.Equal(n1, other) {
		t.Error("distinct secrets map to the same nullifier")
	}
}

func TestRangeProofFullInterval(t *testing.T) {
	s := NewPedersenScheme()
	v := &BN254Verifier{}

	blinding, err := NewBlinding()
	if err != nil {
		t.Fatalf("blinding: %v", err)
	}
	commitment, err := s.Commit(12345, blinding)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	proof, err := GenerateRangeProof(12345, blinding, 0, math.MaxUint64)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := v.VerifyRange(commitment, proof, 0, math.MaxUint64); err != nil {
		t.Fatalf("valid proof rejected: %v", err)
	}

	// A commitment to a different value must not verify.
	other, _ := s.Commit(999, blinding)
	if err := v.VerifyRange(other, proof, 0, math.MaxUint64); !errors.Is(err, ErrProofRejected) {
		t.Errorf("want ErrProofRejected, got %v", err)
	}

	// An interval mismatch changes the expected proof count.
	if err := v.VerifyRange(commitment, proof, 1, math.MaxUint64); !errors.Is(err, ErrMalformedProof) {
		t.Errorf("want ErrMalformedProof, got %v", err)
	}

	// Corrupting the t-hat scalar breaks the polynomial identity.
	tampered := append([]byte{}, proof...)
	tampered[1+4*pointSize+2*scalarSize] ^= 0xff
	if err := v.VerifyRange(commitment, tampered, 0, math.MaxUint64); err == nil {
		t.Error("tampered proof accepted")
	}
}

func TestRangeProofBoundedInterval(t *testing.T) {
	s := NewPedersenScheme()
	v := &BN254Verifier{}

	blinding, _ := NewBlinding()
	commitment, _ := s.Commit(500, blinding)

	proof, err := GenerateRangeProof(500, blinding, 100, 1000)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := v.VerifyRange(commitment, proof, 100, 1000); err != nil {
		t.Fatalf("valid bounded proof rejected: %v", err)
	}

	// Different bounds shift the checked commitments.
	if err := v.VerifyRange(commitment, proof, 100, 900); !errors.Is(err, ErrProofRejected) {
		t.Errorf("want ErrProofRejected, got %v", err)
	}

	if _, err := GenerateRangeProof(50, blinding, 100, 1000); !errors.Is(err, ErrValueOutOfRange) {
		t.Errorf("want ErrValueOutOfRange, got %v", err)
	}
}

func TestStubSchemeArithmetic(t *testing.T) {
	s := NewStubScheme()

	c, err := s.Commit(1000, nil)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	acc, err := s.Combine(s.Zero(), c, Add)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	if !bytes.Equal(acc, c) {
		t.Error("zero plus commitment should equal the commitment")
	}
	back, _ := s.Combine(acc, c, Subtract)
	if !bytes.Equal(back, s.Zero()) {
		t.Error("add then subtract should restore zero")
	}

	if _, err := s.Combine(c, []byte{1}, Add); !errors.Is(err, ErrInvalidCommitment) {
		t.Errorf("want ErrInvalidCommitment, got %v", err)
	}

	cm := s.BridgeCommitment(bytes.Repeat([]byte{4}, 32), 99)
	if len(cm) != CommitmentSize {
		t.Errorf("bridge commitment length = %d", len(cm))
	}
	if !bytes.Equal(cm, s.BridgeCommitment(bytes.Repeat([]byte{4}, 32), 99)) {
		t.Error("bridge commitment is not deterministic")
	}
}

func TestStubVerifierShapes(t *testing.T) {
	v := NewStubVerifier()
	cm := make([]byte, CommitmentSize)

	good := bytes.Repeat([]byte{1}, StubRangeProofMinSize)
	if err := v.VerifyRange(cm, good, 0, math.MaxUint64); err != nil {
		t.Errorf("well-formed range proof rejected: %v", err)
	}
	if err := v.VerifyRange(cm, good[:100], 0, math.MaxUint64); !errors.Is(err, ErrMalformedProof) {
		t.Errorf("want ErrMalformedProof, got %v", err)
	}
	zeroed := append([]byte{}, good...)
	copy(zeroed[32:64], make([]byte, 32))
	if err := v.VerifyRange(cm, zeroed, 0, math.MaxUint64); !errors.Is(err, ErrProofRejected) {
		t.Errorf("want ErrProofRejected, got %v", err)
	}

	rel := bytes.Repeat([]byte{2}, StubRelationProofSize)
	pub := RelationPublicInputs{Commitment: cm, Nullifier: make([]byte, NullifierSize), Amount: 1}
	if err := v.VerifyRelation(rel, pub); err != nil {
		t.Errorf("well-formed relation proof rejected: %v", err)
	}
	if err := v.VerifyRelation(rel[:255], pub); !errors.Is(err, ErrMalformedProof) {
		t.Errorf("want ErrMalformedProof, got %v", err)
	}
	zeroedRel := append([]byte{}, rel...)
	copy(zeroedRel[64:192], make([]byte, 128))
	if err := v.VerifyRelation(zeroedRel, pub); !errors.Is(err, ErrProofRejected) {
		t.Errorf("want ErrProofRejected, got %v", err)
	}
}

func TestUnlockRelationRoundTrip(t *testing.T) {
	ccs, err := CompileUnlockCircuit()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	dir := t.TempDir()
	pkPath := filepath.Join(dir, "unlock.pk")
	vkPath := filepath.Join(dir, "unlock.vk")
	pk, vk, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	prover := NewRelationProver(ccs, pk)
	recipient := bytes.Repeat([]byte{3}, 32)
	secret := bytes.Repeat([]byte{5}, 32)
	proof, pub, err := prover.Prove(recipient, secret, 777)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	v := NewBN254Verifier(vk)
	if err := v.VerifyRelation(proof, pub); err != nil {
		t.Fatalf("valid proof rejected: %v", err)
	}

	// The public inputs bind: a different amount fails.
	bad := pub
	bad.Amount = 778
	if err := v.VerifyRelation(proof, bad); !errors.Is(err, ErrProofRejected) {
		t.Errorf("want ErrProofRejected, got %v", err)
	}

	if err := v.VerifyRelation(proof[:16], pub); !errors.Is(err, ErrMalformedProof) {
		t.Errorf("want ErrMalformedProof, got %v", err)
	}

	// Keys round-trip through disk.
	vk2, err := LoadVerifyingKey(vkPath)
	if err != nil {
		t.Fatalf("load vk: %v", err)
	}
	if err := NewBN254Verifier(vk2).VerifyRelation(proof, pub); err != nil {
		t.Errorf("verification with reloaded key failed: %v", err)
	}
}
