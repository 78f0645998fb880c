// Package activity appends the audit trail of accepted mutations and reads it
// back newest first.
package activity

import (
	"context"
	"encoding/json"
	"log"
	"reflect"
	"sort"
	"time"

	"taskmaster/internal/filter"
	"taskmaster/internal/model"

	"github.com/google/uuid"
)

const (
	ProjectCreated    = "project.created"
	ProjectUpdated    = "project.updated"
	MemberAdded       = "member.added"
	MemberRemoved     = "member.removed"
	TaskCreated       = "task.created"
	TaskUpdated       = "task.updated"
	TaskDeleted       = "task.deleted"
	TaskAssigned      = "task.assigned"
	TaskStatusChanged = "task.status_changed"
	CommentCreated    = "comment.created"
	CommentUpdated    = "comment.updated"
	CommentDeleted    = "comment.deleted"
)

// Store is the datastore side of the recorder.
type Store interface {
	Append(ctx context.Context, entry *model.Activity) error
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) ([]model.Activity, int64, error)
}

// FailureReporter is told about entries that could not be stored.
type FailureReporter interface {
	ActivityFailed(entry *model.Activity, err error)
}

// LogReporter reports failures through the standard logger.
type LogReporter struct{}

func (LogReporter) ActivityFailed(entry *model.Activity, err error) {
	log.Printf("⚠️  activity %s for project %s not recorded: %v", entry.Action, entry.ProjectID, err)
}

// Snapshot is the observable state of a resource before or after a mutation.
type Snapshot map[string]any

// Change is one field's before and after value.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

type Recorder struct {
	store      Store
	reporter   FailureReporter
	pagination filter.Pagination
	now        func() time.Time
}

func NewRecorder(store Store, reporter FailureReporter, pagination filter.Pagination) *Recorder {
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Recorder{
		store:      store,
		reporter:   reporter,
		pagination: pagination,
		now:        time.Now,
	}
}

// Record appends an entry describing the change from before to after. It is
// called after the mutation committed and never fails the caller: storage
// errors go to the FailureReporter and the unsaved entry is still returned.
func (r *Recorder) Record(ctx context.Context, projectID, actorID uuid.UUID, taskID *uuid.UUID, action string, before, after Snapshot) model.Activity {
	entry := model.Activity{
		ProjectID: projectID,
		ActorID:   actorID,
		TaskID:    taskID,
		Action:    action,
		CreatedAt: r.now().UTC(),
	}

	changes, err := json.Marshal(Diff(before, after))
	if err != nil {
		r.reporter.ActivityFailed(&entry, err)
		changes = []byte("{}")
	}
	entry.Changes = string(changes)

	if err := r.store.Append(ctx, &entry); err != nil {
		r.reporter.ActivityFailed(&entry, err)
	}
	return entry
}

// List returns one page of a project's activity, newest first.
func (r *Recorder) List(ctx context.Context, projectID uuid.UUID, req filter.PageRequest) (filter.Page[model.Activity], error) {
	req = r.pagination.Normalize(req)
	entries, total, err := r.store.ListByProject(ctx, projectID, req.Size, req.Offset())
	if err != nil {
		return filter.Page[model.Activity]{}, err
	}
	return filter.Window(entries, total, req), nil
}

// Diff returns the fields whose value differs between before and after.
// A nil before describes a creation, a nil after a deletion.
func Diff(before, after Snapshot) map[string]Change {
	keys := map[string]struct{}{}
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make(map[string]Change)
	for _, k := range names {
		from, to := before[k], after[k]
		if reflect.DeepEqual(from, to) {
			continue
		}
		out[k] = Change{From: from, To: to}
	}
	return out
}
