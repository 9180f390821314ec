package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"timecore/internal/cli/formatter"
	"timecore/internal/domain"
	"timecore/internal/service"
)

func newTimerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start, stop and inspect the tracking timer",
	}

	cmd.AddCommand(
		newTimerStatusCmd(app),
		newTimerToggleCmd(app),
	)

	return cmd
}

func newTimerStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current timer state and today's total",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}

			status, err := app.Timer.Status(context.Background(), scope)
			if err != nil {
				return err
			}

			lines := fmt.Sprintf("%s\nToday: %s",
				formatter.TimerPill(status.Running),
				formatter.Bold(formatter.FormatSeconds(status.Duration)),
			)
			if status.LastLog != nil {
				lines += fmt.Sprintf("\nLast log: %s %s started %s",
					formatter.TruncID(status.LastLog.ID),
					formatter.LogTypeBadge(status.LastLog.LogType),
					formatter.Timestamp(status.LastLog.StartedAt),
				)
			}
			fmt.Print(formatter.RenderBox("Timer", lines))
			return nil
		},
	}
}

func newTimerToggleCmd(app *App) *cobra.Command {
	var projectID, taskID, description, logType, source string
	var billable bool

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Start a session, or stop the open one",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}

			req := service.ToggleRequest{
				Description: description,
				LogType:     domain.TimeLogType(logType),
				Source:      domain.TimeLogSource(source),
				IsBillable:  billable,
			}
			if projectID != "" {
				req.ProjectID = &projectID
			}
			if taskID != "" {
				req.TaskID = &taskID
			}

			log, err := app.Timer.Toggle(context.Background(), scope, req)
			if err != nil {
				return err
			}

			if log.IsRunning() {
				fmt.Printf("Timer started at %s (%s)\n", formatter.Timestamp(log.StartedAt), log.ID)
			} else {
				fmt.Printf("Timer stopped after %s (%s)\n", formatter.FormatSeconds(log.Duration), log.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID to bill the session to")
	cmd.Flags().StringVar(&taskID, "task", "", "Task ID")
	cmd.Flags().StringVar(&description, "note", "", "Session description")
	cmd.Flags().StringVar(&logType, "type", string(domain.LogTracked), "Log type (TRACKED, MANUAL, IDLE)")
	cmd.Flags().StringVar(&source, "source", string(domain.SourceWebTimer), "Log source")
	cmd.Flags().BoolVar(&billable, "billable", false, "Mark the session billable")

	return cmd
}
