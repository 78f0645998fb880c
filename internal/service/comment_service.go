package service

import (
	"context"
	"strings"
	"time"

	"taskmaster/internal/activity"
	"taskmaster/internal/apperror"
	"taskmaster/internal/filter"
	"taskmaster/internal/model"
	"taskmaster/internal/permission"

	"github.com/google/uuid"
)

type CommentService struct {
	guard
	projects   ProjectStore
	tasks      TaskStore
	comments   CommentStore
	recorder   *activity.Recorder
	pagination filter.Pagination
	now        func() time.Time
}

func NewCommentService(
	projects ProjectStore,
	members MembershipStore,
	tasks TaskStore,
	comments CommentStore,
	recorder *activity.Recorder,
	pagination filter.Pagination,
) *CommentService {
	return &CommentService{
		guard:      guard{members: members},
		projects:   projects,
		tasks:      tasks,
		comments:   comments,
		recorder:   recorder,
		pagination: pagination,
		now:        time.Now,
	}
}

func (s *CommentService) projectOf(ctx context.Context, taskID uuid.UUID) (*model.Project, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.projects.GetByID(ctx, task.ProjectID)
}

// Create adds a comment authored by caller. Membership is checked here only;
// a later membership removal does not touch existing comments.
func (s *CommentService) Create(ctx context.Context, caller, taskID uuid.UUID, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Invalid("text", "must not be empty")
	}
	project, err := s.projectOf(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, caller, project, permission.CreateComment, permission.Target{}); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:        uuid.New(),
		TaskID:    taskID,
		AuthorID:  caller,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, project.ID, caller, &taskID, activity.CommentCreated, nil, activity.CommentSnapshot(comment))
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, caller, taskID uuid.UUID, page filter.PageRequest) (filter.Page[model.Comment], error) {
	project, err := s.projectOf(ctx, taskID)
	if err != nil {
		return filter.Page[model.Comment]{}, err
	}
	if err := s.authorize(ctx, caller, project, permission.ViewComment, permission.Target{}); err != nil {
		return filter.Page[model.Comment]{}, err
	}

	page = s.pagination.Normalize(page)
	comments, total, err := s.comments.ListByTask(ctx, taskID, page.Size, page.Offset())
	if err != nil {
		return filter.Page[model.Comment]{}, err
	}
	return filter.Window(comments, total, page), nil
}

// loadForAuthor fetches a comment and checks action with the author rule.
func (s *CommentService) loadForAuthor(ctx context.Context, caller, commentID uuid.UUID, action permission.Action) (*model.Comment, *model.Project, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.projectOf(ctx, comment.TaskID)
	if err != nil {
		return nil, nil, err
	}
	target := permission.Target{CommentAuthorID: comment.AuthorID}
	if err := s.authorize(ctx, caller, project, action, target); err != nil {
		return nil, nil, err
	}
	return comment, project, nil
}

func (s *CommentService) Update(ctx context.Context, caller, commentID uuid.UUID, text string) (*model.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.Invalid("text", "must not be empty")
	}
	comment, project, err := s.loadForAuthor(ctx, caller, commentID, permission.EditComment)
	if err != nil {
		return nil, err
	}

	updated := *comment
	edited := s.now().UTC()
	updated.Text = text
	updated.EditedAt = &edited
	if err := s.comments.UpdateText(ctx, &updated); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, project.ID, caller, &comment.TaskID, activity.CommentUpdated, activity.CommentSnapshot(comment), activity.CommentSnapshot(&updated))
	return &updated, nil
}

func (s *CommentService) Delete(ctx context.Context, caller, commentID uuid.UUID) error {
	comment, project, err := s.loadForAuthor(ctx, caller, commentID, permission.DeleteComment)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}

	s.recorder.Record(ctx, project.ID, caller, &comment.TaskID, activity.CommentDeleted, activity.CommentSnapshot(comment), nil)
	return nil
}
