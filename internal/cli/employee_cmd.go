package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"timecore/internal/domain"
)

func newEmployeeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage tracked employees",
	}

	cmd.AddCommand(
		newEmployeeAddCmd(app),
		newEmployeeTrackingCmd(app),
	)

	return cmd
}

func newEmployeeAddCmd(app *App) *cobra.Command {
	var userID string
	var trackingEnabled bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an employee for time tracking",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, _ := cmd.Flags().GetString("tenant")
			org, _ := cmd.Flags().GetString("org")
			if tenant == "" || org == "" {
				return fmt.Errorf("--tenant and --org are required")
			}

			now := time.Now().UTC()
			employee := &domain.Employee{
				ID:                uuid.New().String(),
				TenantID:          tenant,
				OrganizationID:    org,
				UserID:            userID,
				IsTrackingEnabled: trackingEnabled,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := app.Employees.Create(context.Background(), employee); err != nil {
				return err
			}
			fmt.Printf("Employee %s registered\n", employee.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Platform user ID")
	cmd.Flags().BoolVar(&trackingEnabled, "tracking", true, "Allow time tracking")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newEmployeeTrackingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tracking ID on|off",
		Short: "Enable or disable an employee's timer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			employee, err := app.Employees.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			if err := app.Employees.SetTrackingEnabled(ctx, employee.ID, args[1] == "on"); err != nil {
				return err
			}
			fmt.Printf("Tracking for %s: %s\n", employee.ID, args[1])
			return nil
		},
	}
}
