package notification

import (
	"fmt"
	"strconv"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

// Cmd is the notification command group.
var Cmd = &cobra.Command{
	Use:     "notification",
	Aliases: []string{"notif"},
	Short:   "Show and manage reminders",
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(readCmd)
	Cmd.AddCommand(dismissCmd)
	Cmd.AddCommand(readAllCmd)
}

func notificationApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Notifications == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	return app, nil
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid notification id %q", value)
	}
	return id, nil
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List unread reminders",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := notificationApp()
		if err != nil {
			return err
		}
		items, err := app.Notifications.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No notifications.")
			return nil
		}
		fmt.Fprintf(out, "Notifications (%d unread):\n", app.Notifications.UnreadCount())
		for _, n := range items {
			fmt.Fprintf(out, "#%d [%s] %s\n", n.ID, n.Priority, n.Title)
			if n.Message != "" {
				fmt.Fprintf(out, "   %s\n", n.Message)
			}
		}
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a reminder as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := notificationApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.Notifications.MarkRead(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to mark notification read: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked #%d as read.\n", id)
		return nil
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <notification-id>",
	Short: "Dismiss a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := notificationApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := app.Notifications.Dismiss(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to dismiss notification: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dismissed #%d.\n", id)
		return nil
	},
}

var readAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every reminder as read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := notificationApp()
		if err != nil {
			return err
		}
		if err := app.Notifications.MarkAllRead(cmd.Context()); err != nil {
			return fmt.Errorf("failed to mark notifications read: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All notifications marked as read.")
		return nil
	},
}
