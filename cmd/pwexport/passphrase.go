package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"syscall"

	"golang.org/x/term"
)

// PassphraseEnvVar supplies the passphrase for non-interactive use.
const PassphraseEnvVar = "PWEXPORT_PASSPHRASE"

var errEmptyPassphrase = errors.New("passphrase must not be empty")

// resolvePassphrase picks the flag value, then the environment, then
// prompts.
func resolvePassphrase(flagValue string, prompt func(string) (string, error)) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if env := os.Getenv(PassphraseEnvVar); env != "" {
		return env, nil
	}

	passphrase, err := prompt("Passphrase: ")
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	if passphrase == "" {
		return "", errEmptyPassphrase
	}
	return passphrase, nil
}

// promptPassword reads a line without echo, from /dev/tty when stdin is
// piped.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			fmt.Fprintln(os.Stderr)
			if runtime.GOOS == "windows" {
				return "", fmt.Errorf("set %s when stdin is piped", PassphraseEnvVar)
			}
			return "", fmt.Errorf("stdin is piped and /dev/tty is not available; set %s", PassphraseEnvVar)
		}
		defer tty.Close()
		fd = int(tty.Fd())
	}

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	return string(password), nil
}

func readStdin() ([]byte, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		fmt.Fprintln(os.Stderr, "Paste the export, then press Ctrl-D:")
	}
	return io.ReadAll(os.Stdin)
}
