package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

const passphraseEnv = "ADDRBOOK_PASSPHRASE"

// promptPassphrase returns the passphrase from the environment, or asks for
// it on the terminal.
func promptPassphrase() (string, error) {
	if p, ok := os.LookupEnv(passphraseEnv); ok {
		return p, nil
	}
	return readPassphrase("Passphrase: ")
}

// promptNewPassphrase asks for a passphrase twice and checks that both
// entries match.
func promptNewPassphrase() (string, error) {
	if p, ok := os.LookupEnv(passphraseEnv); ok {
		if p == "" {
			return "", fmt.Errorf("%s is empty", passphraseEnv)
		}
		return p, nil
	}

	p, err := readPassphrase("New passphrase: ")
	if err != nil {
		return "", err
	}
	if p == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	confirm, err := readPassphrase("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if p != confirm {
		return "", fmt.Errorf("passphrases do not match")
	}
	return p, nil
}

func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s", passphraseEnv)
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}
