package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"moviesnow/internal/auth/models"
)

func newActivityCmd(app *App) *cobra.Command {
	var action string
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the account's security activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.client.ListActivity(cmd.Context(), &models.ActivityQuery{
				Action: action,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			if len(res.Events) == 0 {
				fmt.Fprintln(app.out, "No activity recorded.")
				return nil
			}
			for _, e := range res.Events {
				outcome := "ok"
				if !e.Success {
					outcome = "failed"
				}
				fmt.Fprintf(app.out, "%s  %-22s %-6s %s  %s\n",
					e.Timestamp.Format("2006-01-02 15:04"), e.Kind(), outcome, e.IP, describeUA(e.UserAgent))
			}
			if res.NextCursor != "" {
				fmt.Fprintln(app.out, "More events available; raise --limit to see them.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "only events of this kind")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum events to return")
	return cmd
}

func newAlertsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Security alert email preferences",
	}
	cmd.AddCommand(newAlertsShowCmd(app), newAlertsSetCmd(app))
	return cmd
}

func newAlertsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show alert preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := app.client.GetAlertPrefs(cmd.Context())
			if err != nil {
				return err
			}
			printPrefs(app, prefs)
			return nil
		},
	}
}

func newAlertsSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <flag>=<on|off> ...",
		Short: "Turn alert flags on or off",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := models.AlertPrefsUpdate{}
			for _, arg := range args {
				flag, value, ok := strings.Cut(arg, "=")
				if !ok || (value != "on" && value != "off") {
					return fmt.Errorf("expected <flag>=<on|off>, got %q", arg)
				}
				update[flag] = value == "on"
			}

			prefs, err := app.client.UpdateAlertPrefs(cmd.Context(), update)
			if err != nil {
				return err
			}
			printPrefs(app, prefs)
			return nil
		},
	}
}

func printPrefs(app *App, prefs models.AlertPrefs) {
	flags := make([]string, 0, len(prefs))
	for flag := range prefs {
		flags = append(flags, flag)
	}
	sort.Strings(flags)
	for _, flag := range flags {
		state := "off"
		if prefs[flag] {
			state = "on"
		}
		fmt.Fprintf(app.out, "%-28s %s\n", flag, state)
	}
}
