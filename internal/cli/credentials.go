package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// passwordFromPrompt retrieves the WebSocket bridge password from the
// POOL_WS_PASSWORD environment variable, falling back to an interactive,
// echo-suppressed terminal prompt.
func passwordFromPrompt() (string, error) {
	if pw := os.Getenv("POOL_WS_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}
