// Prints the current TOTP code for the admin login, for operators who need
// to sign in without a phone at hand.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pquerna/otp/totp"
)

func main() {
	secretFlag := flag.String("secret", "", "TOTP secret (defaults to ADMIN_TOTP_SECRET)")
	flag.Parse()

	secret := *secretFlag
	if secret == "" {
		secret = os.Getenv("ADMIN_TOTP_SECRET")
	}
	if secret == "" {
		fmt.Println("No TOTP secret: pass -secret or set ADMIN_TOTP_SECRET")
		os.Exit(1)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		fmt.Printf("Error generating TOTP code: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Current TOTP Code: %s\n", code)
	fmt.Printf("Valid for: ~%d seconds\n", 30-time.Now().Unix()%30)
}
