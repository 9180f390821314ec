package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"timecore/internal/cli/formatter"
)

func newLogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect and edit time logs",
	}

	cmd.AddCommand(
		newLogConflictsCmd(app),
		newLogDeleteSpanCmd(app),
	)

	return cmd
}

func newLogConflictsCmd(app *App) *cobra.Command {
	var from, to string
	var ignoreIDs []string

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List logs overlapping a candidate time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}
			start, end, err := parseRangeFlags(from, to)
			if err != nil {
				return err
			}

			logs, err := app.Logs.FindConflicts(context.Background(), scope, start, end, ignoreIDs)
			if err != nil {
				return err
			}

			if len(logs) == 0 {
				fmt.Println("No conflicts.")
				return nil
			}

			headers := []string{"ID", "TYPE", "STARTED", "STOPPED", "DURATION"}
			rows := make([][]string, 0, len(logs))
			for _, log := range logs {
				stopped := formatter.Dim("running")
				if log.StoppedAt != nil {
					stopped = formatter.Timestamp(*log.StoppedAt)
				}
				rows = append(rows, []string{
					formatter.TruncID(log.ID),
					formatter.LogTypeBadge(log.LogType),
					formatter.Timestamp(log.StartedAt),
					stopped,
					formatter.FormatSeconds(log.Duration),
				})
			}
			fmt.Print(formatter.RenderBox("Conflicts", formatter.RenderTable(headers, rows)))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "Range end (RFC3339)")
	cmd.Flags().StringArrayVar(&ignoreIDs, "ignore", nil, "Log ID to exclude (repeatable)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newLogDeleteSpanCmd(app *App) *cobra.Command {
	var from, to, logID string

	cmd := &cobra.Command{
		Use:   "delete-span",
		Short: "Remove a time window from a log, splitting it if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}
			start, end, err := parseRangeFlags(from, to)
			if err != nil {
				return err
			}

			if err := app.Logs.DeleteTimeSpan(context.Background(), scope, start, end, logID); err != nil {
				return err
			}
			fmt.Printf("Removed [%s, %s] from log %s\n", formatter.Timestamp(start), formatter.Timestamp(end), logID)
			return nil
		},
	}

	cmd.Flags().StringVar(&logID, "log", "", "Time log ID")
	cmd.Flags().StringVar(&from, "from", "", "Window start (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "Window end (RFC3339)")
	_ = cmd.MarkFlagRequired("log")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
