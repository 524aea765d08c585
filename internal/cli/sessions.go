package cli

import (
	"fmt"
	"time"

	"github.com/mssola/useragent"
	"github.com/spf13/cobra"
)

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and revoke active sessions",
	}
	cmd.AddCommand(
		newSessionsListCmd(app),
		newSessionsRevokeCmd(app),
		newSessionsRevokeAllCmd(app),
	)
	return cmd
}

func newSessionsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := app.client.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(app.out, "No active sessions.")
				return nil
			}
			for _, s := range sessions {
				marker := " "
				if s.Current {
					marker = "*"
				}
				fmt.Fprintf(app.out, "%s %s  %s  %s  %s\n",
					marker, s.JTI, describeUA(s.UserAgent), s.IP, relativeTime(s.LastSeenAt))
			}
			fmt.Fprintln(app.out, "* marks this session")
			return nil
		},
	}
}

func newSessionsRevokeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <session-id>",
		Short: "Revoke one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client.RevokeSession(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "Session revoked.")
			return nil
		},
	}
}

func newSessionsRevokeAllCmd(app *App) *cobra.Command {
	var exceptCurrent bool
	cmd := &cobra.Command{
		Use:   "revoke-all",
		Short: "Revoke every session",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.client.RevokeAllSessions(cmd.Context(), exceptCurrent)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Revoked %d session(s).\n", res.RevokedCount)
			if res.FailedCount > 0 {
				fmt.Fprintf(app.out, "%d session(s) could not be revoked.\n", res.FailedCount)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exceptCurrent, "except-current", false, "keep this session alive")
	return cmd
}

// describeUA turns a raw User-Agent header into something a person can
// recognize in a session list.
func describeUA(raw string) string {
	if raw == "" {
		return "unknown client"
	}
	ua := useragent.New(raw)
	name, ver := ua.Browser()
	if name == "" {
		return raw
	}
	if os := ua.OS(); os != "" {
		return fmt.Sprintf("%s %s on %s", name, ver, os)
	}
	return fmt.Sprintf("%s %s", name, ver)
}

func relativeTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	d := time.Since(*t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
