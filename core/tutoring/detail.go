package tutoring

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/edukia/academia/core"
)

// Date layouts accepted for fechatutoria values coming back from the store.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// overdue reports whether a session scheduled for dateStr lies strictly
// before today's civil date in the service timezone.
func (svc *Service) overdue(dateStr string) bool {
	scheduled, ok := parseDate(dateStr)
	if !ok {
		return false
	}
	today := nowFunc().In(svc.loc).Format("2006-01-02")
	return scheduled.Format("2006-01-02") < today
}

// applyLifecycleRule turns a Pending session whose date has passed into an
// Incomplete one, persisting the transition. Idempotent: any session not in
// Pending state, or still in the future, is returned untouched.
func (svc *Service) applyLifecycleRule(ctx context.Context, det Detail) (Detail, error) {
	if det.StatusID != StatusPending || !svc.overdue(det.ScheduledDate) {
		return det, nil
	}
	if err := svc.repo.SetDetailStatus(ctx, det.ID, StatusIncomplete); err != nil {
		return det, pkgerrors.Wrap(err, "marking session incomplete")
	}
	det.StatusID = StatusIncomplete
	return det, nil
}

func (svc *Service) Statuses(ctx context.Context) ([]Status, error) {
	return svc.repo.ListStatuses(ctx)
}

// Details lists the sessions of one tutoring, applying the overdue rule to
// each row before it is returned.
func (svc *Service) Details(ctx context.Context, tutoringID int) ([]Detail, error) {
	details, err := svc.repo.ListDetails(ctx, tutoringID)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return []Detail{}, nil
	}

	statuses, err := svc.repo.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}
	statusMap := core.MapBy(statuses, func(s Status) int { return s.ID })

	result := make([]Detail, 0, len(details))
	for _, det := range details {
		det, err = svc.applyLifecycleRule(ctx, det)
		if err != nil {
			return nil, err
		}
		det.StatusName = core.JoinName(statusMap, det.StatusID, func(s Status) string { return s.Name }, core.UnknownName)
		result = append(result, det)
	}
	return result, nil
}

// CreateDetail schedules a session. The state is always forced to Pending;
// a backdated session then immediately trips the overdue rule.
func (svc *Service) CreateDetail(ctx context.Context, nd NewDetail) (Detail, error) {
	det, err := svc.repo.CreateDetail(ctx, nd)
	if err != nil {
		return Detail{}, pkgerrors.Wrap(err, "creating session")
	}

	det, err = svc.applyLifecycleRule(ctx, det)
	if err != nil {
		return Detail{}, err
	}
	return svc.withStatusName(ctx, det)
}

// UpdateDetail modifies a session. An Incomplete session is locked: the
// conflict is reported before anything is written.
func (svc *Service) UpdateDetail(ctx context.Context, id int, ud UpdateDetail) (Detail, error) {
	current, err := svc.repo.GetDetail(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if current.StatusID == StatusIncomplete {
		return Detail{}, core.NewConflictError(ErrDetailLocked)
	}

	det, err := svc.repo.UpdateDetail(ctx, id, ud)
	if err != nil {
		return Detail{}, pkgerrors.Wrap(err, "updating session")
	}

	det, err = svc.applyLifecycleRule(ctx, det)
	if err != nil {
		return Detail{}, err
	}
	return svc.withStatusName(ctx, det)
}

func (svc *Service) DeleteDetail(ctx context.Context, id int) error {
	return svc.repo.DeleteDetail(ctx, id)
}

func (svc *Service) withStatusName(ctx context.Context, det Detail) (Detail, error) {
	status, err := svc.repo.GetStatus(ctx, det.StatusID)
	switch {
	case err == nil:
		det.StatusName = status.Name
	case errors.Is(err, ErrNotFound):
		det.StatusName = core.UnknownName
	default:
		return Detail{}, pkgerrors.Wrap(err, "resolving state name")
	}
	return det, nil
}
