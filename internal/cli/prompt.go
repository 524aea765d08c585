package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"moviesnow/internal/auth/models"
)

func (a *App) promptLine(label string) (string, error) {
	fmt.Fprint(a.out, label, ": ")
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal and falls back to
// a plain line read when it is piped.
func (a *App) promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return a.promptLine(label)
	}
	fmt.Fprint(a.out, label, ": ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// Prompt satisfies reauth.Prompter. An empty password answer switches to an
// MFA code so users without a memorized password path can still step up.
func (a *App) Prompt(ctx context.Context) (*models.ReauthGrant, error) {
	fmt.Fprintln(a.out, "This operation requires you to confirm your identity.")
	password, err := a.promptSecret("Password (leave empty to use an MFA code)")
	if err != nil {
		return nil, err
	}
	if password != "" {
		return a.client.ReauthPassword(ctx, &models.ReauthPasswordRequest{Password: password})
	}

	code, err := a.promptLine("MFA code")
	if err != nil {
		return nil, err
	}
	return a.client.ReauthMFA(ctx, &models.ReauthMFARequest{TOTPCode: code})
}
