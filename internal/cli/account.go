package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"moviesnow/internal/auth/models"
)

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Email changes and account lifecycle",
	}
	cmd.AddCommand(
		newEmailChangeCmd(app),
		newEmailConfirmCmd(app),
		newDeactivateCmd(app),
		newReactivateCmd(app),
		newDeleteCmd(app),
	)
	return cmd
}

func newEmailChangeCmd(app *App) *cobra.Command {
	var newEmail string
	cmd := &cobra.Command{
		Use:   "email-change",
		Short: "Move the account to a new email address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if newEmail == "" {
				var err error
				if newEmail, err = app.promptLine("New email"); err != nil {
					return err
				}
			}

			var ack *models.EmailChangeAck
			err := app.coord.Do(cmd.Context(), func(ctx context.Context, grant string) error {
				var opErr error
				ack, opErr = app.client.StartEmailChange(ctx, &models.EmailChangeRequest{
					NewEmail:    newEmail,
					ReauthToken: grant,
				})
				return opErr
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, ack.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&newEmail, "email", "", "new email address")
	return cmd
}

func newEmailConfirmCmd(app *App) *cobra.Command {
	var confirmToken string
	cmd := &cobra.Command{
		Use:   "email-confirm",
		Short: "Confirm an email change with the mailed token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if confirmToken == "" {
				var err error
				if confirmToken, err = app.promptLine("Confirmation token"); err != nil {
					return err
				}
			}
			ack, err := app.client.ConfirmEmailChange(cmd.Context(), &models.EmailChangeConfirmRequest{
				Token: confirmToken,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Email changed to %s.\n", ack.ConfirmedEmail)
			return nil
		},
	}
	cmd.Flags().StringVar(&confirmToken, "token", "", "confirmation token from the email")
	return cmd
}

func newDeactivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Temporarily deactivate the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.accountLifecycle(cmd.Context(), "deactivate", app.client.DeactivateAccount)
		},
	}
}

func newReactivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reactivate",
		Short: "Reactivate a deactivated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.accountLifecycle(cmd.Context(), "reactivate", app.client.ReactivateAccount)
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Permanently delete the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(app.out, "This permanently deletes the account and cannot be undone.")
			answer, err := app.promptLine("Type the word delete to continue")
			if err != nil {
				return err
			}
			if answer != "delete" {
				fmt.Fprintln(app.out, "Aborted.")
				return nil
			}
			return app.accountLifecycle(cmd.Context(), "delete", app.client.DeleteAccount)
		},
	}
}

// accountLifecycle runs one of the OTP-confirmed lifecycle operations
// through the step-up coordinator, since servers may demand a fresh grant
// on top of the emailed code.
func (a *App) accountLifecycle(ctx context.Context, verb string,
	op func(context.Context, *models.AccountOTPRequest) (*models.Ack, error)) error {

	otp, err := a.promptLine("Confirmation code")
	if err != nil {
		return err
	}

	var ack *models.Ack
	err = a.coord.Do(ctx, func(ctx context.Context, grant string) error {
		var opErr error
		ack, opErr = op(ctx, &models.AccountOTPRequest{OTP: otp, ReauthToken: grant})
		return opErr
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", verb, ack.Message)
	return nil
}
