// Generates or refreshes the Groth16 key pair for the bridge unlock circuit.
// The server loads the same files on startup, so running this ahead of a
// deployment avoids paying the trusted setup cost on first boot.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"zkdex-backend/internal/zkp"
)

func main() {
	dir := flag.String("dir", "keys", "directory for the proving and verifying keys")
	force := flag.Bool("force", false, "regenerate keys even if files already exist")
	flag.Parse()

	pkPath := filepath.Join(*dir, "unlock.pk")
	vkPath := filepath.Join(*dir, "unlock.vk")

	if *force {
		os.Remove(pkPath)
		os.Remove(vkPath)
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		fmt.Printf("Error creating key directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Compiling unlock circuit...")
	ccs, err := zkp.CompileUnlockCircuit()
	if err != nil {
		fmt.Printf("Error compiling circuit: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Circuit compiled: %d constraints\n", ccs.GetNbConstraints())

	_, _, err = zkp.SetupOrLoadKeys(ccs, pkPath, vkPath)
	if err != nil {
		fmt.Printf("Error setting up keys: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Keys ready:")
	fmt.Printf("  Proving key:   %s\n", pkPath)
	fmt.Printf("  Verifying key: %s\n", vkPath)
}
