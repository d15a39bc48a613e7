// Command netcopy-keygen derives a 32-byte pre-shared key from a
// master password and prints it as hex, or generates a random key
// when -random is set.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/Sean-Khorasani/net-copy/internal/crypto"
)

func main() {
	var (
		fromRandom = flag.Bool("random", false, "generate a random key instead of deriving one from a password")
	)
	flag.Parse()

	var key []byte
	if *fromRandom {
		key = make([]byte, crypto.KeySize)
		if _, err := rand.Read(key); err != nil {
			fmt.Fprintln(os.Stderr, "netcopy-keygen:", err)
			os.Exit(1)
		}
	} else {
		password, err := readPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "netcopy-keygen:", err)
			os.Exit(1)
		}
		key = crypto.DeriveFromPassword(password)
	}

	fmt.Println(crypto.EncodeHexKey(key))
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "master password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
