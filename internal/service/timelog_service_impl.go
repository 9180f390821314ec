package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timecore/internal/db"
	"timecore/internal/domain"
	"timecore/internal/repository"
	"timecore/internal/timeband"
)

type timeLogService struct {
	logs       repository.TimeLogRepo
	slots      repository.TimeSlotRepo
	timesheets TimesheetService
	uow        db.UnitOfWork
	clock      Clock
}

// NewTimeLogService creates the time-log conflict and span-edit service.
func NewTimeLogService(
	logs repository.TimeLogRepo,
	slots repository.TimeSlotRepo,
	timesheets TimesheetService,
	uow db.UnitOfWork,
	clock Clock,
) TimeLogService {
	return &timeLogService{
		logs:       logs,
		slots:      slots,
		timesheets: timesheets,
		uow:        uow,
		clock:      clock,
	}
}

func (s *timeLogService) FindConflicts(ctx context.Context, scope domain.Scope, start, end time.Time, ignoreIDs []string) ([]*domain.TimeLog, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: conflict range end before start", ErrValidation)
	}
	filter := repository.SlotFilter{
		TenantID:       scope.TenantID,
		OrganizationID: scope.OrganizationID,
		EmployeeID:     scope.EmployeeID,
	}
	return s.logs.ListConflicting(ctx, filter, start.UTC(), end.UTC(), ignoreIDs)
}

func (s *timeLogService) DeleteTimeSpan(ctx context.Context, scope domain.Scope, start, end time.Time, logID string) error {
	if end.Before(start) {
		return fmt.Errorf("%w: span end before start", ErrValidation)
	}
	if !scope.Permitted(domain.PermDeleteTime) {
		return fmt.Errorf("deleting tracked time: %w", ErrPermissionDenied)
	}

	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	start = start.UTC()
	end = end.UTC()
	logStart := log.StartedAt
	logEnd := log.End(now)

	coversStart := !start.After(logStart)
	coversEnd := !end.Before(logEnd)

	switch {
	case coversStart && coversEnd:
		// The window swallows the whole session.
		if err := s.logs.SoftDelete(ctx, log.ID, now); err != nil {
			return err
		}

	case coversStart:
		// The window eats the head; the session now begins where the
		// window ends.
		remaining := int(logEnd.Sub(end) / time.Second)
		if remaining <= 0 {
			if err := s.logs.SoftDelete(ctx, log.ID, now); err != nil {
				return err
			}
			break
		}
		log.StartedAt = end
		log.Duration = remaining
		log.UpdatedAt = now
		if err := s.logs.Update(ctx, log); err != nil {
			return err
		}

	case coversEnd:
		// The window eats the tail; the session now stops where the
		// window begins.
		remaining := int(start.Sub(logStart) / time.Second)
		if remaining <= 0 {
			if err := s.logs.SoftDelete(ctx, log.ID, now); err != nil {
				return err
			}
			break
		}
		stopped := start
		log.StoppedAt = &stopped
		log.Duration = remaining
		log.UpdatedAt = now
		if err := s.logs.Update(ctx, log); err != nil {
			return err
		}

	default:
		// The window falls strictly inside the session: keep the head,
		// spawn a fresh log for the tail, and rehome the tail's slots.
		if err := s.splitLog(ctx, scope, log, start, end, logEnd, now); err != nil {
			return err
		}
	}

	if log.TimesheetID != "" {
		return s.timesheets.Recalculate(ctx, log.TimesheetID)
	}
	return nil
}

// splitLog shortens log to end at splitStart and creates a sibling covering
// [splitEnd, logEnd] with the same attributes, transactionally.
func (s *timeLogService) splitLog(ctx context.Context, scope domain.Scope, log *domain.TimeLog, splitStart, splitEnd, logEnd, now time.Time) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txLogs := repository.NewSQLiteTimeLogRepo(tx)
		txSlots := repository.NewSQLiteTimeSlotRepo(tx)

		head := *log
		headStop := splitStart
		head.StoppedAt = &headStop
		head.Duration = int(splitStart.Sub(log.StartedAt) / time.Second)
		head.UpdatedAt = now
		if err := txLogs.Update(ctx, &head); err != nil {
			return err
		}

		tailStop := logEnd
		tail := &domain.TimeLog{
			ID:                    uuid.New().String(),
			TenantID:              log.TenantID,
			OrganizationID:        log.OrganizationID,
			EmployeeID:            log.EmployeeID,
			TimesheetID:           log.TimesheetID,
			ProjectID:             log.ProjectID,
			TaskID:                log.TaskID,
			OrganizationContactID: log.OrganizationContactID,
			StartedAt:             splitEnd,
			StoppedAt:             &tailStop,
			Duration:              int(logEnd.Sub(splitEnd) / time.Second),
			LogType:               log.LogType,
			Source:                log.Source,
			Description:           log.Description,
			IsBillable:            log.IsBillable,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := txLogs.Create(ctx, tail); err != nil {
			return err
		}

		// Slots past the cut belong to the tail now.
		filter := repository.SlotFilter{
			TenantID:       scope.TenantID,
			OrganizationID: log.OrganizationID,
			EmployeeID:     log.EmployeeID,
		}
		tailSlots, err := txSlots.ListByRange(ctx, filter, timeband.AlignToBucket(splitEnd), logEnd)
		if err != nil {
			return err
		}
		for _, slot := range tailSlots {
			if err := txSlots.AttachLogs(ctx, slot.ID, []string{tail.ID}); err != nil {
				return err
			}
		}
		return nil
	})
}
