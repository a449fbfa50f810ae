// Computes commitments and nullifiers offline, for checking what a client
// should have submitted when an on-server value does not match.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"zkdex-backend/internal/zkp"
)

func main() {
	scheme := flag.String("scheme", "pedersen", "commitment scheme: pedersen or stub")
	value := flag.Uint64("value", 0, "value to commit to")
	blinding := flag.String("blinding", "", "hex blinding factor for -value")
	recipient := flag.String("recipient", "", "hex recipient commitment for a bridge lock")
	amount := flag.Uint64("amount", 0, "locked amount for -recipient")
	secret := flag.String("secret", "", "hex secret; with -commitment derives the nullifier")
	commitment := flag.String("commitment", "", "hex commitment the nullifier spends")
	flag.Parse()

	var cs zkp.CommitmentScheme
	switch *scheme {
	case "pedersen":
		cs = zkp.NewPedersenScheme()
	case "stub":
		cs = zkp.NewStubScheme()
	default:
		fail("unknown scheme %q", *scheme)
	}

	ran := false

	if *blinding != "" {
		b := mustHex("blinding", *blinding)
		c, err := cs.Commit(*value, b)
		if err != nil {
			fail("commit: %v", err)
		}
		fmt.Printf("Commitment(%d): %s\n", *value, hexutil.Encode(c))
		ran = true
	}

	if *recipient != "" {
		r := mustHex("recipient", *recipient)
		c := cs.BridgeCommitment(r, *amount)
		fmt.Printf("BridgeCommitment(amount=%d): %s\n", *amount, hexutil.Encode(c))
		ran = true
	}

	if *secret != "" {
		if *commitment == "" {
			fail("-secret requires -commitment")
		}
		s := mustHex("secret", *secret)
		c := mustHex("commitment", *commitment)
		fmt.Printf("Nullifier: %s\n", hexutil.Encode(cs.Nullifier(s, c)))
		ran = true
	}

	if !ran {
		flag.Usage()
		os.Exit(2)
	}
}

func mustHex(name, s string) []byte {
	if len(s) < 2 || s[:2] != "0x" {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		fail("invalid %s: %v", name, err)
	}
	return b
}

func fail(format string, args ...any) {
	fmt.Printf("Error: "+format+"\n", args...)
	os.Exit(1)
}
