package models

import (
	"fmt"
	"time"
)

// Job statuses.
const (
	JobCreated    = "created"
	JobAssigned   = "assigned"
	JobAccepted   = "accepted"
	JobInTransit  = "in_transit"
	JobInProgress = "in_progress"
	JobCompleted  = "completed"
	JobPaid       = "paid"
	JobCancelled  = "cancelled"
)

// Master assignment outcomes recorded on a job at creation time.
const (
	AssignmentAssigned  = "assigned"
	AssignmentNoMasters = "no_masters_available"
)

// ActiveJobStatuses are the statuses in which a job occupies a master.
var ActiveJobStatuses = []string{JobAssigned, JobAccepted, JobInTransit, JobInProgress}

var legalTransitions = map[string][]string{
	JobCreated:    {JobAssigned},
	JobAssigned:   {JobAccepted, JobCreated},
	JobAccepted:   {JobInTransit, JobInProgress, JobCreated},
	JobInTransit:  {JobInProgress},
	JobInProgress: {JobCompleted},
	JobCompleted:  {JobPaid},
}

// InvalidTransitionError names both the current and the attempted status.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// ValidateTransition checks the legal-transition table. Cancellation is
// allowed from any state except paid and cancelled.
func ValidateTransition(from, to string) error {
	if to == JobCancelled {
		if from == JobPaid || from == JobCancelled {
			return &InvalidTransitionError{From: from, To: to}
		}
		return nil
	}
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// Transition applies a status change, appending an immutable history entry.
func (j *Job) Transition(to string, note string, at time.Time) error {
	if err := ValidateTransition(j.Status, to); err != nil {
		return err
	}
	j.Status = to
	j.StatusHistory = append(j.StatusHistory, StatusChange{
		Status:    to,
		Timestamp: at,
		Note:      note,
	})
	switch to {
	case JobAssigned:
		t := at
		j.AssignedAt = &t
	case JobAccepted:
		t := at
		j.AcceptedAt = &t
	case JobInTransit:
		t := at
		j.InTransitAt = &t
	case JobInProgress:
		t := at
		j.StartedAt = &t
	case JobCompleted:
		t := at
		j.CompletedAt = &t
	case JobPaid:
		t := at
		j.PaidAt = &t
	case JobCancelled:
		t := at
		j.CancelledAt = &t
	}
	return nil
}

func (j Job) IsActive() bool {
	for _, s := range ActiveJobStatuses {
		if j.Status == s {
			return true
		}
	}
	return false
}
