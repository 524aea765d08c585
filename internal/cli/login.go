package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviesnow/internal/auth/models"
)

func newSignupCmd(app *App) *cobra.Command {
	var email, fullName string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a MoviesNow account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				var err error
				if email, err = app.promptLine("Email"); err != nil {
					return err
				}
			}
			password, err := app.promptSecret("Password")
			if err != nil {
				return err
			}

			out, err := app.client.Signup(cmd.Context(), &models.SignupRequest{
				FullName: fullName,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(app.out, "Account created.")
			if out.Tokens != nil {
				app.printTokenExport(out.Tokens)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&fullName, "name", "", "display name")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in, completing an MFA challenge if one is issued",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				var err error
				if email, err = app.promptLine("Email"); err != nil {
					return err
				}
			}
			password, err := app.promptSecret("Password")
			if err != nil {
				return err
			}

			out, err := app.client.Login(cmd.Context(), &models.LoginRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			bundle := out.Tokens
			if out.Challenge != nil {
				code, err := app.promptLine("MFA code")
				if err != nil {
					return err
				}
				bundle, err = app.client.MFALogin(cmd.Context(), &models.MFALoginRequest{
					MFAToken: out.Challenge.MFAToken,
					TOTPCode: code,
				})
				if err != nil {
					return err
				}
			}

			fmt.Fprintln(app.out, "Signed in.")
			app.printTokenExport(bundle)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "Signed out. Unset MOVIESNOW_ACCESS_TOKEN if it is exported.")
			return nil
		},
	}
}

// printTokenExport hands the session to later invocations through the
// environment instead of any on-disk state.
func (a *App) printTokenExport(bundle *models.TokenBundle) {
	if bundle == nil {
		return
	}
	fmt.Fprintln(a.out, "Run the following to use this session in later commands:")
	fmt.Fprintf(a.out, "  export MOVIESNOW_ACCESS_TOKEN=%s\n", bundle.AccessToken)
	if bundle.ExpiresIn > 0 {
		fmt.Fprintf(a.out, "The token expires in %d seconds.\n", bundle.ExpiresIn)
	}
}
