package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"timecore/internal/db"
	"timecore/internal/domain"
	"timecore/internal/repository"
	"timecore/internal/timeband"
)

// maxSlotSeconds caps a slot's duration and overall score at one full bucket.
const maxSlotSeconds = 600

// maxConcurrentMerges bounds the per-bucket fan-out during a merge pass.
const maxConcurrentMerges = 4

type slotService struct {
	slots       repository.TimeSlotRepo
	logs        repository.TimeLogRepo
	screenshots repository.ScreenshotRepo
	activities  repository.ActivityRepo
	employees   repository.EmployeeRepo
	timeLogs    TimeLogService
	timesheets  TimesheetService
	uow         db.UnitOfWork
	clock       Clock
}

// NewTimeSlotService creates the slot aggregation service.
func NewTimeSlotService(
	slots repository.TimeSlotRepo,
	logs repository.TimeLogRepo,
	screenshots repository.ScreenshotRepo,
	activities repository.ActivityRepo,
	employees repository.EmployeeRepo,
	timeLogs TimeLogService,
	timesheets TimesheetService,
	uow db.UnitOfWork,
	clock Clock,
) TimeSlotService {
	return &slotService{
		slots:       slots,
		logs:        logs,
		screenshots: screenshots,
		activities:  activities,
		employees:   employees,
		timeLogs:    timeLogs,
		timesheets:  timesheets,
		uow:         uow,
		clock:       clock,
	}
}

func (s *slotService) Create(ctx context.Context, scope domain.Scope, in SlotInput) (*domain.TimeSlot, error) {
	slot, err := s.normalize(ctx, scope, in)
	if err != nil {
		return nil, err
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}
	if err := s.persistAttachments(ctx, scope, slot.ID, in.Screenshots, in.Activities); err != nil {
		return nil, err
	}
	return s.slots.GetByID(ctx, slot.ID)
}

func (s *slotService) Update(ctx context.Context, id string, in SlotUpdate) (*domain.TimeSlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Keyboard != nil {
		slot.Keyboard = *in.Keyboard
	}
	if in.Mouse != nil {
		slot.Mouse = *in.Mouse
	}
	if in.Overall != nil {
		slot.Overall = *in.Overall
	}
	if in.Duration != nil {
		slot.Duration = min(*in.Duration, maxSlotSeconds)
	}
	if err := s.slots.UpdateCounters(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *slotService) BulkCreate(ctx context.Context, scope domain.Scope, batch []SlotInput) ([]*domain.TimeSlot, error) {
	existing, err := s.lookupColliding(ctx, scope, batch)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.TimeSlot, 0, len(batch))
	seen := make(map[string]bool, len(batch))
	for _, in := range batch {
		key := timeband.MinuteKey(in.StartedAt)
		if prior, ok := existing[key]; ok {
			// Existing wins: the incoming slot is dropped wholesale.
			if !seen[prior.ID] {
				result = append(result, prior)
				seen[prior.ID] = true
			}
			continue
		}
		slot, err := s.normalize(ctx, scope, in)
		if err != nil {
			return nil, err
		}
		if err := s.slots.Create(ctx, slot); err != nil {
			return nil, err
		}
		if err := s.persistAttachments(ctx, scope, slot.ID, in.Screenshots, in.Activities); err != nil {
			return nil, err
		}
		existing[key] = slot
		result = append(result, slot)
		seen[slot.ID] = true
	}
	return result, nil
}

func (s *slotService) BulkCreateOrUpdate(ctx context.Context, scope domain.Scope, batch []SlotInput) ([]*domain.TimeSlot, error) {
	existing, err := s.lookupColliding(ctx, scope, batch)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.TimeSlot, 0, len(batch))
	seen := make(map[string]bool, len(batch))
	for _, in := range batch {
		key := timeband.MinuteKey(in.StartedAt)
		if prior, ok := existing[key]; ok {
			// Cumulative counters: partial reports for the same bucket sum up.
			prior.Keyboard += in.Keyboard
			prior.Mouse += in.Mouse
			prior.Overall += in.Overall
			if err := s.slots.UpdateCounters(ctx, prior); err != nil {
				return nil, err
			}
			// Union both sides' log links; the incoming batch may carry
			// links the persisted slot has not seen yet.
			if added := missingLogIDs(prior, in.TimeLogIDs); len(added) > 0 {
				if err := s.slots.AttachLogs(ctx, prior.ID, added); err != nil {
					return nil, err
				}
				prior.TimeLogIDs = append(prior.TimeLogIDs, added...)
			}
			if err := s.persistAttachments(ctx, scope, prior.ID, in.Screenshots, in.Activities); err != nil {
				return nil, err
			}
			if !seen[prior.ID] {
				result = append(result, prior)
				seen[prior.ID] = true
			}
			continue
		}
		slot, err := s.normalize(ctx, scope, in)
		if err != nil {
			return nil, err
		}
		if err := s.slots.Create(ctx, slot); err != nil {
			return nil, err
		}
		if err := s.persistAttachments(ctx, scope, slot.ID, in.Screenshots, in.Activities); err != nil {
			return nil, err
		}
		existing[key] = slot
		result = append(result, slot)
		seen[slot.ID] = true
	}
	return result, nil
}

func (s *slotService) Merge(ctx context.Context, scope domain.Scope, start, end time.Time) (*MergeReport, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: merge range end before start", ErrValidation)
	}

	alignedStart, alignedEnd := timeband.RoundRangeForPurge(start, end)
	filter := repository.SlotFilter{
		TenantID:       scope.TenantID,
		OrganizationID: scope.OrganizationID,
		EmployeeID:     scope.EmployeeID,
	}

	slots, err := s.slots.ListByRange(ctx, filter, alignedStart, alignedEnd)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]*domain.TimeSlot)
	for _, slot := range slots {
		key := timeband.BucketKey(slot.StartedAt)
		groups[key] = append(groups[key], slot)
	}

	report := &MergeReport{Buckets: len(groups)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(maxConcurrentMerges)
	for key, group := range groups {
		g.Go(func() error {
			bucket, _ := time.Parse("2006-01-02 15:04:05", key)
			if err := s.mergeBucket(ctx, scope, bucket.UTC(), group); err != nil {
				mu.Lock()
				report.Failed++
				report.FailedBuckets = append(report.FailedBuckets, bucket.UTC())
				mu.Unlock()
				return nil // siblings keep going; the report carries the failure
			}
			mu.Lock()
			report.Merged++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.FailedBuckets, func(i, j int) bool {
		return report.FailedBuckets[i].Before(report.FailedBuckets[j])
	})
	return report, nil
}

// mergeBucket collapses one bucket's slots into its first row, then removes
// the rest. Runs in its own transaction so a failure cannot leave the bucket
// half-merged; re-running merge over the same range retries it.
func (s *slotService) mergeBucket(ctx context.Context, scope domain.Scope, bucket time.Time, group []*domain.TimeSlot) error {
	if len(group) == 0 {
		return nil
	}

	survivor := group[0]
	rest := group[1:]

	restIDs := make([]string, len(rest))
	for i, slot := range rest {
		restIDs[i] = slot.ID
	}

	agg := aggregateGroup(group)
	shots, err := s.screenshots.ListBySlots(ctx, restIDs)
	if err != nil {
		return err
	}
	acts, err := s.activities.ListBySlots(ctx, restIDs)
	if err != nil {
		return err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSlots := repository.NewSQLiteTimeSlotRepo(tx)
		txShots := repository.NewSQLiteScreenshotRepo(tx)
		txActs := repository.NewSQLiteActivityRepo(tx)

		survivor.StartedAt = bucket
		survivor.StoppedAt = bucket.Add(timeband.BucketDuration)
		survivor.Duration = agg.duration
		survivor.Keyboard = agg.keyboard
		survivor.Mouse = agg.mouse
		survivor.Overall = agg.overall
		if err := txSlots.Rewrite(ctx, survivor); err != nil {
			return err
		}

		if added := missingLogIDs(survivor, agg.logIDs); len(added) > 0 {
			if err := txSlots.AttachLogs(ctx, survivor.ID, added); err != nil {
				return err
			}
			survivor.TimeLogIDs = append(survivor.TimeLogIDs, added...)
		}

		// Clone sibling attachments onto the survivor with fresh identity;
		// the originals disappear with their slots below.
		now := s.clock.Now()
		for _, shot := range shots {
			clone := &domain.Screenshot{
				ID:             uuid.New().String(),
				TenantID:       scope.TenantID,
				OrganizationID: shot.OrganizationID,
				TimeSlotID:     survivor.ID,
				FileKey:        shot.FileKey,
				ThumbKey:       shot.ThumbKey,
				RecordedAt:     shot.RecordedAt,
				CreatedAt:      now,
			}
			if err := txShots.Create(ctx, clone); err != nil {
				return err
			}
		}
		for _, act := range acts {
			clone := &domain.Activity{
				ID:             uuid.New().String(),
				TenantID:       scope.TenantID,
				OrganizationID: act.OrganizationID,
				TimeSlotID:     survivor.ID,
				Title:          act.Title,
				Duration:       act.Duration,
				RecordedAt:     act.RecordedAt,
			}
			if err := txActs.Create(ctx, clone); err != nil {
				return err
			}
		}

		return txSlots.DeleteByIDs(ctx, restIDs)
	})
	if err != nil {
		return err
	}

	return s.recalculateSheets(ctx, survivor.ID)
}

// recalculateSheets refreshes every timesheet owning a log linked to the
// given slot.
func (s *slotService) recalculateSheets(ctx context.Context, slotID string) error {
	logs, err := s.logs.ListBySlot(ctx, slotID)
	if err != nil {
		return err
	}
	done := make(map[string]bool)
	for _, log := range logs {
		if log.TimesheetID == "" || done[log.TimesheetID] {
			continue
		}
		if err := s.timesheets.Recalculate(ctx, log.TimesheetID); err != nil {
			return err
		}
		done[log.TimesheetID] = true
	}
	return nil
}

func (s *slotService) Delete(ctx context.Context, scope domain.Scope, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no slot ids given", ErrValidation)
	}
	if !scope.Permitted(domain.PermDeleteTime) {
		return fmt.Errorf("removing slots: %w", ErrPermissionDenied)
	}
	for _, id := range ids {
		slot, err := s.slots.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return err
		}
		logs, err := s.logs.ListBySlot(ctx, id)
		if err != nil {
			return err
		}
		// Truncating a slot truncates or splits every session that
		// depended on its window.
		for _, log := range logs {
			if err := s.timeLogs.DeleteTimeSpan(ctx, scope, slot.StartedAt, slot.StoppedAt, log.ID); err != nil {
				return err
			}
		}
		if err := s.slots.DeleteByIDs(ctx, []string{id}); err != nil {
			return err
		}
	}
	return nil
}

func (s *slotService) RangeDelete(ctx context.Context, scope domain.Scope, start, stop time.Time) (bool, error) {
	if stop.Before(start) {
		return false, fmt.Errorf("%w: range end before start", ErrValidation)
	}
	if !scope.Permitted(domain.PermDeleteTime) {
		return false, fmt.Errorf("purging slots: %w", ErrPermissionDenied)
	}
	alignedStart, alignedEnd := timeband.RoundRangeForPurge(start, stop)
	filter := repository.SlotFilter{
		TenantID:       scope.TenantID,
		OrganizationID: scope.OrganizationID,
		EmployeeID:     scope.EmployeeID,
	}
	n, err := s.slots.DeleteByRange(ctx, filter, alignedStart, alignedEnd)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// lookupColliding loads persisted slots whose start minute matches any slot
// in the batch, keyed by minute precision.
func (s *slotService) lookupColliding(ctx context.Context, scope domain.Scope, batch []SlotInput) (map[string]*domain.TimeSlot, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty slot batch", ErrValidation)
	}
	keys := make([]string, 0, len(batch))
	uniq := make(map[string]bool, len(batch))
	employeeID := ""
	for _, in := range batch {
		// Collision lookup is keyed to one employee; a batch naming more
		// than one cannot be checked in a single pass.
		id := in.EmployeeID
		if id == "" {
			id = scope.EmployeeID
		}
		if employeeID == "" {
			employeeID = id
		} else if id != employeeID {
			return nil, fmt.Errorf("%w: slot batch spans multiple employees", ErrValidation)
		}
		key := timeband.MinuteKey(in.StartedAt)
		if !uniq[key] {
			uniq[key] = true
			keys = append(keys, key)
		}
	}

	filter := repository.SlotFilter{
		TenantID:       scope.TenantID,
		OrganizationID: scope.OrganizationID,
		EmployeeID:     employeeID,
	}
	slots, err := s.slots.ListByMinuteKeys(ctx, filter, keys)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]*domain.TimeSlot, len(slots))
	for _, slot := range slots {
		key := timeband.MinuteKey(slot.StartedAt)
		if _, ok := existing[key]; !ok {
			existing[key] = slot
		}
	}
	return existing, nil
}

// normalize turns a raw agent slot into a persistable record: whole-second
// start, capped duration, tenant from the caller and organization inherited
// from the employee record when absent.
func (s *slotService) normalize(ctx context.Context, scope domain.Scope, in SlotInput) (*domain.TimeSlot, error) {
	employeeID := in.EmployeeID
	if employeeID == "" {
		employeeID = scope.EmployeeID
	}

	orgID := in.OrganizationID
	if orgID == "" {
		employee, err := s.employees.GetByID(ctx, employeeID)
		if err != nil {
			return nil, err
		}
		orgID = employee.OrganizationID
	}

	startedAt := in.StartedAt.UTC().Truncate(time.Second)
	stoppedAt := in.StoppedAt.UTC().Truncate(time.Second)
	duration := in.Duration
	if duration == 0 && stoppedAt.After(startedAt) {
		duration = int(stoppedAt.Sub(startedAt) / time.Second)
	}
	duration = min(duration, maxSlotSeconds)
	if stoppedAt.IsZero() || !stoppedAt.After(startedAt) {
		stoppedAt = startedAt.Add(time.Duration(duration) * time.Second)
	}

	return &domain.TimeSlot{
		ID:             uuid.New().String(),
		TenantID:       scope.TenantID,
		OrganizationID: orgID,
		EmployeeID:     employeeID,
		StartedAt:      startedAt,
		StoppedAt:      stoppedAt,
		Duration:       duration,
		Keyboard:       in.Keyboard,
		Mouse:          in.Mouse,
		Overall:        in.Overall,
		TimeLogIDs:     in.TimeLogIDs,
		CreatedAt:      s.clock.Now(),
	}, nil
}

// persistAttachments stores screenshots and activities against a slot.
func (s *slotService) persistAttachments(ctx context.Context, scope domain.Scope, slotID string, shots []*domain.Screenshot, acts []*domain.Activity) error {
	now := s.clock.Now()
	for _, shot := range shots {
		if shot.ID == "" {
			shot.ID = uuid.New().String()
		}
		shot.TenantID = scope.TenantID
		if shot.OrganizationID == "" {
			shot.OrganizationID = scope.OrganizationID
		}
		shot.TimeSlotID = slotID
		if shot.CreatedAt.IsZero() {
			shot.CreatedAt = now
		}
		if err := s.screenshots.Create(ctx, shot); err != nil {
			return err
		}
	}
	for _, act := range acts {
		if act.ID == "" {
			act.ID = uuid.New().String()
		}
		act.TenantID = scope.TenantID
		if act.OrganizationID == "" {
			act.OrganizationID = scope.OrganizationID
		}
		act.TimeSlotID = slotID
		if err := s.activities.Create(ctx, act); err != nil {
			return err
		}
	}
	return nil
}

type groupAggregate struct {
	duration int
	keyboard int
	mouse    int
	overall  int
	logIDs   []string
}

// aggregateGroup sums durations, averages keyboard and mouse over slots with
// non-zero keyboard counts, caps everything at a full bucket, and unions the
// groups' log links.
func aggregateGroup(group []*domain.TimeSlot) groupAggregate {
	var agg groupAggregate
	var keyboardSum, mouseSum, active int
	logSeen := make(map[string]bool)

	for _, slot := range group {
		agg.duration += slot.Duration
		agg.overall += slot.Overall
		keyboardSum += slot.Keyboard
		mouseSum += slot.Mouse
		if slot.Keyboard > 0 {
			active++
		}
		for _, id := range slot.TimeLogIDs {
			if !logSeen[id] {
				logSeen[id] = true
				agg.logIDs = append(agg.logIDs, id)
			}
		}
	}

	if active > 0 {
		agg.keyboard = (keyboardSum + active/2) / active
		agg.mouse = (mouseSum + active/2) / active
	}
	agg.duration = clampSlotValue(agg.duration)
	agg.overall = clampSlotValue(agg.overall)
	agg.keyboard = clampSlotValue(agg.keyboard)
	agg.mouse = clampSlotValue(agg.mouse)
	return agg
}

func clampSlotValue(v int) int {
	return max(0, min(maxSlotSeconds, v))
}

// missingLogIDs returns the ids from want not yet linked to the slot.
func missingLogIDs(slot *domain.TimeSlot, want []string) []string {
	var added []string
	for _, id := range want {
		if !slot.HasTimeLog(id) && !contains(added, id) {
			added = append(added, id)
		}
	}
	return added
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
