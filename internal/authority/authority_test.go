package authority

import (
	"strings"
	"testing"
)

func TestDeriveDeterministic(t *testing.T) {
	addr1, cap1 := Derive(NamespacePool, "pool-123")
	addr2, cap2 := Derive(NamespacePool, "pool-123")
	if addr1 != addr2 || cap1 != cap2 {
		t.Error("derivation is not deterministic")
	}
	if !strings.HasPrefix(addr1, "0x") || len(addr1) != 42 {
		t.Errorf("address %q is not 20-byte hex", addr1)
	}
	if len(cap1) != 66 {
		t.Errorf("capability %q is not 32-byte hex", cap1)
	}
}

func TestDeriveScoping(t *testing.T) {
	poolAddr, _ := Derive(NamespacePool, "seed")
	bridgeAddr, _ := Derive(NamespaceBridge, "seed")
	if poolAddr == bridgeAddr {
		t.Error("namespaces must not collide")
	}
	otherSeed, _ := Derive(NamespacePool, "other")
	if poolAddr == otherSeed {
		t.Error("seeds must not collide")
	}
}

func TestVerify(t *testing.T) {
	addr, capability := Derive(NamespaceBridge, "bridge")

	if !Verify(addr, capability, NamespaceBridge, "bridge") {
		t.Error("valid capability rejected")
	}
	// Address comparison ignores hex case.
	if !Verify("0x"+strings.ToUpper(addr[2:]), capability, NamespaceBridge, "bridge") {
		t.Error("uppercase address rejected")
	}
	if Verify(addr, capability, NamespacePool, "bridge") {
		t.Error("capability accepted under the wrong namespace")
	}
	if Verify(addr, capability, NamespaceBridge, "other") {
		t.Error("capability accepted under the wrong seed")
	}

	tampered := capability[:len(capability)-1] + "f"
	if tampered != capability && Verify(addr, tampered, NamespaceBridge, "bridge") {
		t.Error("tampered capability accepted")
	}
	if Verify(addr, "not-hex", NamespaceBridge, "bridge") {
		t.Error("non-hex capability accepted")
	}
}
