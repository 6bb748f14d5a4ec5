package cli

import (
	"fmt"

	"github.com/alexanderramin/plangate/internal/cli/formatter"
	"github.com/alexanderramin/plangate/internal/realtime"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var topic string
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print change notifications until interrupted",
		Long: `Print change notifications for plans, items and time entries.

Notifications are invalidation hints: re-read the data they point at rather
than treating them as a diff. Changes made by other processes sharing the
database are reported with source "external": SQLite files are watched on
disk, Postgres row changes arrive over LISTEN/NOTIFY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			changes := make(chan realtime.Change, 64)
			sub := app.Hub.Subscribe(topic, func(c realtime.Change) {
				select {
				case changes <- c:
				default:
				}
			})
			defer sub.Close()

			if app.DBPath != "" {
				w, err := realtime.NewWatcher(app.Hub, app.DBPath, 0)
				if err != nil {
					return err
				}
				if err := w.Start(ctx); err != nil {
					return err
				}
				defer w.Stop()
			}
			if app.ListenDSN != "" {
				l, err := realtime.NewPGListener(app.Hub, app.ListenDSN)
				if err != nil {
					return err
				}
				if err := l.Start(ctx); err != nil {
					l.Stop()
					return err
				}
				defer l.Stop()
			}

			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("watching %s (Ctrl+C to stop)", topic)))
			seen := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case c := <-changes:
					fmt.Fprintf(out, "%s  %-8s %-17s %-6s %s\n",
						c.At.Local().Format("15:04:05"), c.Source, c.Topic, c.Op, c.Key)
					seen++
					if count > 0 && seen >= count {
						return nil
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&topic, "topic", realtime.TopicAll, "Topic to follow: daily_plans, daily_plan_items, time_entries or *")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many notifications (0 = run until interrupted)")

	return cmd
}
