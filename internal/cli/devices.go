package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviesnow/internal/auth/models"
)

func newDevicesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage trusted devices",
	}
	cmd.AddCommand(
		newDevicesRegisterCmd(app),
		newDevicesListCmd(app),
		newDevicesRevokeCmd(app),
		newDevicesRevokeAllCmd(app),
	)
	return cmd
}

func newDevicesRegisterCmd(app *App) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Trust this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if label == "" {
				label = app.cfg.DeviceLabel
			}
			d, err := app.client.RegisterTrustedDevice(cmd.Context(), &models.RegisterDeviceRequest{
				DeviceLabel: label,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Device registered as %s.\n", d.DeviceID)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "device label (defaults to config device_label)")
	return cmd
}

func newDevicesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show trusted devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := app.client.ListTrustedDevices(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Fprintln(app.out, "No trusted devices.")
				return nil
			}
			for _, d := range devices {
				label := d.Label
				if label == "" {
					label = describeUA(d.UserAgent)
				}
				fmt.Fprintf(app.out, "%s  %s  last used %s\n", d.DeviceID, label, relativeTime(d.LastUsedAt))
			}
			return nil
		},
	}
}

func newDevicesRevokeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <device-id>",
		Short: "Remove one trusted device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client.RevokeTrustedDevice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "Device removed.")
			return nil
		},
	}
}

func newDevicesRevokeAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-all",
		Short: "Remove every trusted device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client.RevokeAllTrustedDevices(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "All trusted devices removed.")
			return nil
		},
	}
}
