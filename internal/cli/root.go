package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timecore/internal/domain"
	"timecore/internal/repository"
	"timecore/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Slots      service.TimeSlotService
	Logs       service.TimeLogService
	Timesheets service.TimesheetService
	Timer      service.TimerService
	Employees  repository.EmployeeRepo
}

// NewRootCmd creates the top-level "timecore" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "timecore",
		Short: "Time tracking: timers, activity slots and timesheets",
	}

	root.PersistentFlags().String("tenant", os.Getenv("TIMECORE_TENANT"), "Tenant ID")
	root.PersistentFlags().String("org", os.Getenv("TIMECORE_ORG"), "Organization ID")
	root.PersistentFlags().String("employee", os.Getenv("TIMECORE_EMPLOYEE"), "Employee ID")

	root.AddCommand(
		newTimerCmd(app),
		newSlotCmd(app),
		newLogCmd(app),
		newTimesheetCmd(app),
		newEmployeeCmd(app),
	)

	return root
}

// scopeFromFlags builds the tenant scope every command operates under. CLI
// callers hold all permissions; permission checks matter for API embedders.
func scopeFromFlags(cmd *cobra.Command) (domain.Scope, error) {
	tenant, _ := cmd.Flags().GetString("tenant")
	org, _ := cmd.Flags().GetString("org")
	employee, _ := cmd.Flags().GetString("employee")

	if tenant == "" || employee == "" {
		return domain.Scope{}, fmt.Errorf("--tenant and --employee are required (or set TIMECORE_TENANT / TIMECORE_EMPLOYEE)")
	}

	return domain.Scope{
		TenantID:       tenant,
		OrganizationID: org,
		EmployeeID:     employee,
		HasPermission:  func(domain.Permission) bool { return true },
	}, nil
}
