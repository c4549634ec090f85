// pkg/interaction/prompt.go

package interaction

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when a secret is requested without a TTY.
var ErrNoTerminal = errors.New("secret prompt failed: no terminal available")

var (
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return isTerminal(stdinFd())
}

// PromptSecret asks the user for a hidden input (no terminal echo).
// The prompt goes to w so stdout stays clean for command output.
func PromptSecret(w io.Writer, prompt string) (string, error) {
	if !IsInteractive() {
		zap.L().Error("❌ Cannot prompt for secret input: not a TTY")
		return "", ErrNoTerminal
	}

	fmt.Fprint(w, prompt+": ")
	bytePassword, err := readPassword(stdinFd())
	fmt.Fprintln(w)
	if err != nil {
		zap.L().Error("❌ Failed to read secret input", zap.Error(err))
		return "", err
	}
	secret := strings.TrimSpace(string(bytePassword))
	if secret == "" {
		zap.L().Warn("⚠️ No input received for secret", zap.String("prompt", prompt))
	}
	return secret, nil
}
