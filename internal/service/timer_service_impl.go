package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timecore/internal/db"
	"timecore/internal/domain"
	"timecore/internal/repository"
	"timecore/internal/timeband"
)

type timerService struct {
	logs      repository.TimeLogRepo
	employees repository.EmployeeRepo
	uow       db.UnitOfWork
	clock     Clock
}

// NewTimerService creates the start/stop timer service.
func NewTimerService(
	logs repository.TimeLogRepo,
	employees repository.EmployeeRepo,
	uow db.UnitOfWork,
	clock Clock,
) TimerService {
	return &timerService{
		logs:      logs,
		employees: employees,
		uow:       uow,
		clock:     clock,
	}
}

func (s *timerService) Status(ctx context.Context, scope domain.Scope) (*TimerStatus, error) {
	now := s.clock.Now()
	dayStart, dayEnd := timeband.DayRange(now)

	status := &TimerStatus{}

	closed, err := s.logs.ListClosedInRange(ctx, scope.EmployeeID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, log := range closed {
		status.Duration += log.Duration
	}

	running, err := s.logs.FindRunning(ctx, scope.EmployeeID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if running != nil {
		status.Running = true
		from := running.StartedAt
		if from.Before(dayStart) {
			from = dayStart
		}
		status.Duration += int(now.Sub(from) / time.Second)
	}

	last, err := s.logs.LatestInRange(ctx, scope.EmployeeID, dayStart, dayEnd)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	status.LastLog = last

	return status, nil
}

func (s *timerService) Toggle(ctx context.Context, scope domain.Scope, req ToggleRequest) (*domain.TimeLog, error) {
	employee, err := s.employees.GetByID(ctx, scope.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !employee.IsTrackingEnabled {
		return nil, ErrTrackingDisabled
	}

	now := s.clock.Now()
	var result *domain.TimeLog

	// The whole decision runs inside one transaction so two concurrent
	// toggles serialize; the partial unique index on running logs backstops
	// anything that still slips through.
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txLogs := repository.NewSQLiteTimeLogRepo(tx)
		txEmployees := repository.NewSQLiteEmployeeRepo(tx)
		txSheets := repository.NewSQLiteTimesheetRepo(tx)

		running, err := txLogs.ListRunning(ctx, scope.EmployeeID)
		if err != nil {
			return err
		}

		if len(running) == 0 {
			result, err = s.start(ctx, scope, req, now, txLogs, txSheets)
			if err != nil {
				return err
			}
			return txEmployees.SetTrackingStatus(ctx, employee.ID, true, true)
		}

		result, err = s.stop(ctx, running, now, txLogs)
		if err != nil {
			return err
		}
		return txEmployees.SetTrackingStatus(ctx, employee.ID, true, false)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *timerService) start(ctx context.Context, scope domain.Scope, req ToggleRequest, now time.Time, txLogs *repository.SQLiteTimeLogRepo, txSheets *repository.SQLiteTimesheetRepo) (*domain.TimeLog, error) {
	logType := req.LogType
	if logType == "" {
		logType = domain.LogTracked
	}
	if !domain.ValidLogTypes[string(logType)] {
		return nil, fmt.Errorf("%w: unknown log type %q", ErrValidation, logType)
	}
	source := req.Source
	if source == "" {
		source = domain.SourceWebTimer
	}

	filter := repository.SlotFilter{
		TenantID:       scope.TenantID,
		OrganizationID: scope.OrganizationID,
		EmployeeID:     scope.EmployeeID,
	}
	conflicts, err := txLogs.ListConflicting(ctx, filter, now, now, nil)
	if err != nil {
		return nil, err
	}
	blocking := 0
	for _, c := range conflicts {
		// A log that closed exactly at the start instant only touches the
		// new session; back-to-back tracking is not an overlap.
		if c.StoppedAt != nil && !c.StoppedAt.After(now) {
			continue
		}
		blocking++
	}
	if blocking > 0 {
		return nil, fmt.Errorf("%w: %d overlapping logs at start time", ErrConflict, blocking)
	}

	sheet, err := s.findOrCreateSheet(ctx, scope, now, txSheets)
	if err != nil {
		return nil, err
	}

	log := &domain.TimeLog{
		ID:                    uuid.New().String(),
		TenantID:              scope.TenantID,
		OrganizationID:        scope.OrganizationID,
		EmployeeID:            scope.EmployeeID,
		TimesheetID:           sheet.ID,
		ProjectID:             req.ProjectID,
		TaskID:                req.TaskID,
		OrganizationContactID: req.OrganizationContactID,
		StartedAt:             now,
		LogType:               logType,
		Source:                source,
		Description:           req.Description,
		IsBillable:            req.IsBillable,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := txLogs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// stop closes every open log, not just the newest: a crashed client can leave
// stale running rows behind, and stopping is the natural point to sweep them.
// Sessions that closed with no elapsed time are discarded outright.
func (s *timerService) stop(ctx context.Context, running []*domain.TimeLog, now time.Time, txLogs *repository.SQLiteTimeLogRepo) (*domain.TimeLog, error) {
	if len(running) == 0 {
		return nil, ErrTimerNotRunning
	}

	var latest, discarded *domain.TimeLog
	for _, log := range running {
		elapsed := int(now.Sub(log.StartedAt) / time.Second)
		if elapsed <= 0 {
			if err := txLogs.Delete(ctx, log.ID); err != nil {
				return nil, err
			}
			stopped := now
			log.StoppedAt = &stopped
			log.Duration = 0
			discarded = log
			continue
		}
		stopped := now
		log.StoppedAt = &stopped
		log.Duration = elapsed
		log.UpdatedAt = now
		if err := txLogs.Update(ctx, log); err != nil {
			return nil, err
		}
		if latest == nil || log.StartedAt.After(latest.StartedAt) {
			latest = log
		}
	}

	// Every open log was discarded: report the toggle as a stop anyway so
	// the transaction commits and the discard sticks.
	if latest == nil {
		return discarded, nil
	}
	return latest, nil
}

func (s *timerService) findOrCreateSheet(ctx context.Context, scope domain.Scope, at time.Time, txSheets *repository.SQLiteTimesheetRepo) (*domain.Timesheet, error) {
	weekStart, weekEnd := timeband.WeekRange(at)

	sheet, err := txSheets.FindByWeekStart(ctx, scope.EmployeeID, weekStart)
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
	if err := txSheets.Create(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}
