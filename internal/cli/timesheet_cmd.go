package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timecore/internal/cli/formatter"
)

func newTimesheetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timesheet",
		Short: "Weekly timesheets",
	}

	cmd.AddCommand(
		newTimesheetShowCmd(app),
		newTimesheetSubmitCmd(app),
		newTimesheetApproveCmd(app),
	)

	return cmd
}

func newTimesheetShowCmd(app *App) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the timesheet for the week containing a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}

			when := time.Now().UTC()
			if at != "" {
				when, err = parseTimeFlag(at)
				if err != nil {
					return err
				}
			}

			sheet, err := app.Timesheets.FindOrCreate(context.Background(), scope, when)
			if err != nil {
				return err
			}

			content := fmt.Sprintf("%s\nWeek: %s – %s\nTracked: %s\nActivity: %s",
				formatter.SheetStatusPill(sheet.Status),
				formatter.Timestamp(sheet.StartedAt),
				formatter.Timestamp(sheet.StoppedAt),
				formatter.Bold(formatter.FormatSeconds(sheet.Duration)),
				formatter.ActivityBar(sheet.Overall),
			)
			fmt.Print(formatter.RenderBox("Timesheet "+sheet.ID[:8], content))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Any instant inside the week (RFC3339, default now)")

	return cmd
}

func newTimesheetSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit ID",
		Short: "Submit a timesheet for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}
			sheet, err := app.Timesheets.Submit(context.Background(), scope, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Timesheet %s is now %s\n", args[0], sheet.Status)
			return nil
		},
	}
}

func newTimesheetApproveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "approve ID",
		Short: "Approve a submitted timesheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}
			sheet, err := app.Timesheets.Approve(context.Background(), scope, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Timesheet %s is now %s\n", args[0], sheet.Status)
			return nil
		},
	}
}
