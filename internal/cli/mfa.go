package cli

import (
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/spf13/cobra"

	"moviesnow/internal/auth/models"
)

func newMFACmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mfa",
		Short: "Multi-factor authentication management",
	}
	cmd.AddCommand(
		newMFASetupCmd(app),
		newMFAVerifyCmd(app),
		newMFADisableCmd(app),
		newMFARedeemCmd(app),
	)
	return cmd
}

func newMFASetupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Begin TOTP enrollment",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup, err := app.client.SetupMFA(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(app.out, "Add this secret to your authenticator app:")
			fmt.Fprintln(app.out, " ", setup.Secret)
			if url := setup.URL(); url != "" {
				fmt.Fprintln(app.out, "Or scan:", url)
			}
			if len(setup.RecoveryCodes) > 0 {
				fmt.Fprintln(app.out, "Store these recovery codes somewhere safe:")
				for _, code := range setup.RecoveryCodes {
					fmt.Fprintln(app.out, " ", code)
				}
			}
			fmt.Fprintln(app.out, "Finish with: moviesnow mfa verify")
			return nil
		},
	}
}

func newMFAVerifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Confirm TOTP enrollment with a code",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := app.promptLine("Code from your authenticator app")
			if err != nil {
				return err
			}
			ack, err := app.client.VerifyMFA(cmd.Context(), &models.MFAVerifyRequest{TOTPCode: code})
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, ack.Message)
			return nil
		},
	}
}

func newMFADisableCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Turn off multi-factor authentication",
		RunE: func(cmd *cobra.Command, args []string) error {
			ack, err := app.client.DisableMFA(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, ack.Message)
			return nil
		},
	}
}

func newMFARedeemCmd(app *App) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "redeem",
		Short: "Sign in with a recovery code after losing the authenticator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				var err error
				if code, err = app.promptLine("Recovery code"); err != nil {
					return err
				}
			}
			out, err := app.client.RedeemRecoveryCode(cmd.Context(), &models.RedeemRecoveryCodeRequest{Code: code})
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, "Recovery code accepted. It is now spent.")
			if out.Tokens != nil {
				app.printTokenExport(out.Tokens)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "recovery code")
	return cmd
}

// newTOTPCmd generates codes locally, for driving the dev stub without a
// phone at hand.
func newTOTPCmd(app *App) *cobra.Command {
	var secret string
	cmd := &cobra.Command{
		Use:   "totp",
		Short: "Generate a TOTP code from a secret (development helper)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				var err error
				if secret, err = app.promptLine("TOTP secret"); err != nil {
					return err
				}
			}
			code, err := totp.GenerateCode(secret, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, code)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "base32 TOTP secret")
	return cmd
}
