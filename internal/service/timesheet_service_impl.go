package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timecore/internal/domain"
	"timecore/internal/repository"
	"timecore/internal/timeband"
)

type timesheetService struct {
	timesheets repository.TimesheetRepo
	logs       repository.TimeLogRepo
	slots      repository.TimeSlotRepo
	clock      Clock
}

// NewTimesheetService creates the weekly timesheet service.
func NewTimesheetService(
	timesheets repository.TimesheetRepo,
	logs repository.TimeLogRepo,
	slots repository.TimeSlotRepo,
	clock Clock,
) TimesheetService {
	return &timesheetService{
		timesheets: timesheets,
		logs:       logs,
		slots:      slots,
		clock:      clock,
	}
}

func (s *timesheetService) FindOrCreate(ctx context.Context, scope domain.Scope, at time.Time) (*domain.Timesheet, error) {
	weekStart, weekEnd := timeband.WeekRange(at)

	sheet, err := s.timesheets.FindByWeekStart(ctx, scope.EmployeeID, weekStart)
	if err == nil {
		return sheet, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	sheet = &domain.Timesheet{
		ID:             uuid.New().String(),
		TenantID:       scope.TenantID,
		OrganizationID: scope.OrganizationID,
		EmployeeID:     scope.EmployeeID,
		StartedAt:      weekStart,
		StoppedAt:      weekEnd,
		Status:         domain.TimesheetPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.timesheets.Create(ctx, sheet); err != nil {
		// A concurrent caller may have created the week's sheet first;
		// the unique index makes the insert lose, so read theirs.
		if existing, findErr := s.timesheets.FindByWeekStart(ctx, scope.EmployeeID, weekStart); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return sheet, nil
}

func (s *timesheetService) Recalculate(ctx context.Context, timesheetID string) error {
	sheet, err := s.timesheets.GetByID(ctx, timesheetID)
	if err != nil {
		return err
	}

	logs, err := s.logs.ListByTimesheet(ctx, timesheetID)
	if err != nil {
		return err
	}
	duration := 0
	for _, log := range logs {
		if log.DeletedAt != nil {
			continue
		}
		duration += log.Duration
	}

	filter := repository.SlotFilter{
		TenantID:       sheet.TenantID,
		OrganizationID: sheet.OrganizationID,
		EmployeeID:     sheet.EmployeeID,
	}
	slots, err := s.slots.ListByRange(ctx, filter, sheet.StartedAt, sheet.StoppedAt.Add(time.Second))
	if err != nil {
		return err
	}

	var keyboard, mouse, overall int
	for _, slot := range slots {
		keyboard += slot.Keyboard
		mouse += slot.Mouse
		overall += slot.Overall
	}
	if n := len(slots); n > 0 {
		keyboard /= n
		mouse /= n
		overall /= n
	}

	sheet.Duration = duration
	sheet.Keyboard = keyboard
	sheet.Mouse = mouse
	sheet.Overall = overall
	sheet.UpdatedAt = s.clock.Now()
	return s.timesheets.Update(ctx, sheet)
}

func (s *timesheetService) Submit(ctx context.Context, scope domain.Scope, timesheetID string) (*domain.Timesheet, error) {
	sheet, err := s.timesheets.GetByID(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if sheet.TenantID != scope.TenantID {
		return nil, fmt.Errorf("timesheet %s: %w", timesheetID, repository.ErrNotFound)
	}
	// Employees submit their own sheets; submitting on someone else's
	// behalf needs the selected-employee permission.
	if sheet.EmployeeID != scope.EmployeeID && !scope.Permitted(domain.PermChangeSelectedEmployee) {
		return nil, fmt.Errorf("submitting for employee %s: %w", sheet.EmployeeID, ErrPermissionDenied)
	}
	now := s.clock.Now()
	sheet.Status = domain.TimesheetInReview
	sheet.SubmittedAt = &now
	sheet.UpdatedAt = now
	if err := s.timesheets.Update(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *timesheetService) Approve(ctx context.Context, scope domain.Scope, timesheetID string) (*domain.Timesheet, error) {
	sheet, err := s.timesheets.GetByID(ctx, timesheetID)
	if err != nil {
		return nil, err
	}
	if sheet.TenantID != scope.TenantID {
		return nil, fmt.Errorf("timesheet %s: %w", timesheetID, repository.ErrNotFound)
	}
	if !scope.Permitted(domain.PermApproveTimesheet) {
		return nil, fmt.Errorf("approving timesheet %s: %w", timesheetID, ErrPermissionDenied)
	}
	now := s.clock.Now()
	sheet.Status = domain.TimesheetApproved
	sheet.ApprovedAt = &now
	sheet.UpdatedAt = now
	if err := s.timesheets.Update(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}
