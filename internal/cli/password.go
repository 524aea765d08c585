package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviesnow/internal/auth/models"
)

func newPasswordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password reset and change",
	}
	cmd.AddCommand(
		newPasswordResetCmd(app),
		newPasswordResetConfirmCmd(app),
		newPasswordChangeCmd(app),
	)
	return cmd
}

func newPasswordResetCmd(app *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				var err error
				if email, err = app.promptLine("Email"); err != nil {
					return err
				}
			}
			ack, err := app.client.RequestPasswordReset(cmd.Context(), &models.PasswordResetRequest{Email: email})
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, ack.Message)
			if ack.RetryAfter > 0 {
				fmt.Fprintf(app.out, "You can request another in %d seconds.\n", ack.RetryAfter)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newPasswordResetConfirmCmd(app *App) *cobra.Command {
	var resetToken string
	cmd := &cobra.Command{
		Use:   "reset-confirm",
		Short: "Set a new password using a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resetToken == "" {
				var err error
				if resetToken, err = app.promptLine("Reset token"); err != nil {
					return err
				}
			}
			newPassword, err := app.promptSecret("New password")
			if err != nil {
				return err
			}
			confirm, err := app.promptSecret("Confirm new password")
			if err != nil {
				return err
			}

			ack, err := app.client.ConfirmPasswordReset(cmd.Context(), &models.PasswordResetConfirmRequest{
				Token:           resetToken,
				NewPassword:     newPassword,
				ConfirmPassword: confirm,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, ack.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&resetToken, "token", "", "reset token from the email")
	return cmd
}

func newPasswordChangeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "change",
		Short: "Change the password of the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := app.promptSecret("Current password")
			if err != nil {
				return err
			}
			newPassword, err := app.promptSecret("New password")
			if err != nil {
				return err
			}
			confirm, err := app.promptSecret("Confirm new password")
			if err != nil {
				return err
			}

			ack, err := app.client.ChangePassword(cmd.Context(), &models.ChangePasswordRequest{
				CurrentPassword: current,
				NewPassword:     newPassword,
				ConfirmPassword: confirm,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, ack.Message)
			fmt.Fprintln(app.out, "Other sessions have been signed out.")
			return nil
		},
	}
}
