package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timecore/internal/cli/formatter"
	"timecore/internal/domain"
	"timecore/internal/service"
)

func newSlotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Push, merge and purge activity slots",
	}

	cmd.AddCommand(
		newSlotPushCmd(app),
		newSlotMergeCmd(app),
		newSlotPurgeCmd(app),
		newSlotRemoveCmd(app),
	)

	return cmd
}

func newSlotPushCmd(app *App) *cobra.Command {
	var startedAt string
	var duration, keyboard, mouse, overall int
	var logIDs []string
	var upsert bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push one activity slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}
			started, err := parseTimeFlag(startedAt)
			if err != nil {
				return err
			}

			in := service.SlotInput{
				StartedAt:  started,
				Duration:   duration,
				Keyboard:   keyboard,
				Mouse:      mouse,
				Overall:    overall,
				TimeLogIDs: logIDs,
			}

			ctx := context.Background()
			var slots []*domain.TimeSlot
			if upsert {
				slots, err = app.Slots.BulkCreateOrUpdate(ctx, scope, []service.SlotInput{in})
			} else {
				slots, err = app.Slots.BulkCreate(ctx, scope, []service.SlotInput{in})
			}
			if err != nil {
				return err
			}

			for _, slot := range slots {
				fmt.Printf("Slot %s  %s  %s  activity %s\n",
					formatter.TruncID(slot.ID),
					formatter.Timestamp(slot.StartedAt),
					formatter.FormatSeconds(slot.Duration),
					formatter.ActivityBar(slot.Overall),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startedAt, "started", "", "Slot start time (RFC3339)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Tracked seconds in the slot")
	cmd.Flags().IntVar(&keyboard, "keyboard", 0, "Keyboard activity seconds")
	cmd.Flags().IntVar(&mouse, "mouse", 0, "Mouse activity seconds")
	cmd.Flags().IntVar(&overall, "overall", 0, "Overall activity seconds")
	cmd.Flags().StringArrayVar(&logIDs, "log", nil, "Time log ID to link (repeatable)")
	cmd.Flags().BoolVar(&upsert, "upsert", false, "Sum counters into an existing slot instead of dropping")
	_ = cmd.MarkFlagRequired("started")

	return cmd
}

func newSlotMergeCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Collapse duplicate slots per 10-minute bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}
			start, end, err := parseRangeFlags(from, to)
			if err != nil {
				return err
			}

			report, err := app.Slots.Merge(context.Background(), scope, start, end)
			if err != nil {
				return err
			}

			fmt.Printf("Merged %d of %d buckets\n", report.Merged, report.Buckets)
			if report.Failed > 0 {
				fmt.Println(formatter.StyleRed.Render(fmt.Sprintf("%d buckets failed:", report.Failed)))
				for _, b := range report.FailedBuckets {
					fmt.Printf("  %s\n", formatter.Timestamp(b))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "Range end (RFC3339)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newSlotPurgeCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every slot in a time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}
			start, end, err := parseRangeFlags(from, to)
			if err != nil {
				return err
			}

			removed, err := app.Slots.RangeDelete(context.Background(), scope, start, end)
			if err != nil {
				return err
			}
			if removed {
				fmt.Println("Slots purged.")
			} else {
				fmt.Println("No slots in range.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Range start (RFC3339)")
	cmd.Flags().StringVar(&to, "to", "", "Range end (RFC3339)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newSlotRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID...",
		Short: "Remove slots by id, trimming the logs that depended on them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := app.Slots.Delete(context.Background(), scope, args); err != nil {
				return err
			}
			fmt.Printf("Removed %d slots\n", len(args))
			return nil
		},
	}
}

func parseTimeFlag(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", v, err)
	}
	return t, nil
}

func parseRangeFlags(from, to string) (time.Time, time.Time, error) {
	start, err := parseTimeFlag(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTimeFlag(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
