// Package reauth resolves step-up signals. A sensitive operation that comes
// back with "reauthentication required" is retried exactly once with a
// fresh elevated grant, keeping the original payload intact. Only a failure
// to complete reauthentication itself surfaces to the caller.
package reauth

import (
	"context"
	"log/slog"

	"moviesnow/internal/auth/models"
	dErrors "moviesnow/pkg/domain-errors"
)

// Prompter re-confirms the user's identity, by password or MFA code, and
// returns the resulting grant. The CLI implements it interactively; tests
// implement it with a mock.
type Prompter interface {
	Prompt(ctx context.Context) (*models.ReauthGrant, error)
}

// PrompterFunc adapts a plain function into a Prompter.
type PrompterFunc func(ctx context.Context) (*models.ReauthGrant, error)

func (f PrompterFunc) Prompt(ctx context.Context) (*models.ReauthGrant, error) {
	return f(ctx)
}

type Coordinator struct {
	prompter Prompter
	logger   *slog.Logger
}

func NewCoordinator(p Prompter, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{prompter: p, logger: logger}
}

// Do runs op with an empty grant first. If the server demands step-up, the
// user is prompted once, and op is re-run exactly once with the grant.
// The closure owns the original request, so its parameters survive the
// round trip untouched.
func (c *Coordinator) Do(ctx context.Context, op func(ctx context.Context, reauthToken string) error) error {
	err := op(ctx, "")
	if !dErrors.HasCode(err, dErrors.CodeStepUpRequired) {
		return err
	}

	c.logger.InfoContext(ctx, "step-up required, prompting for reauthentication")
	grant, promptErr := c.prompter.Prompt(ctx)
	if promptErr != nil {
		return dErrors.Wrap(promptErr, dErrors.CodeUnauthorized, "reauthentication failed")
	}
	if grant == nil || grant.ReauthToken == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "reauthentication produced no grant")
	}

	// Exactly one retry; whatever comes back now is the final answer.
	return op(ctx, grant.ReauthToken)
}
