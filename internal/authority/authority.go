// Package authority derives scoped signing capabilities for vault transfers.
// A capability token proves control of a deterministically derived address
// within a namespace, replacing interactive signatures on internal transfer
// authorization.
package authority

import (
	"crypto/subtle"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

const (
	// NamespacePool scopes capabilities authorizing pool vault transfers.
	NamespacePool = "pool-vault"
	// NamespaceBridge scopes capabilities authorizing bridge vault transfers.
	NamespaceBridge = "bridge-vault"

	addressTag    = "zkdex-authority-address-v1"
	capabilityTag = "zkdex-authority-capability-v1"
)

// Derive returns the deterministic 20-byte authority address for
// (namespace, seed) and the capability token proving control of it, both
// 0x-prefixed hex.
func Derive(namespace, seed string) (address, capability string) {
	digest := keccak([]byte(addressTag), []byte(namespace), []byte(seed))
	addr := digest[12:]
	token := keccak([]byte(capabilityTag), []byte(namespace), []byte(seed), addr)
	return hexutil.Encode(addr), hexutil.Encode(token)
}

// Verify reports whether capability proves authority over address within
// (namespace, seed).
func Verify(address, capability, namespace, seed string) bool {
	wantAddress, wantCapability := Derive(namespace, seed)
	if !strings.EqualFold(address, wantAddress) {
		return false
	}
	got, err := hexutil.Decode(capability)
	if err != nil {
		return false
	}
	want, err := hexutil.Decode(wantCapability)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

func keccak(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}
