package activity

import (
	"time"

	"taskmaster/internal/model"

	"github.com/google/uuid"
)

func TaskSnapshot(t *model.Task) Snapshot {
	if t == nil {
		return nil
	}
	return Snapshot{
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"assigned_to": optionalID(t.AssignedTo),
		"due_date":    optionalTime(t.DueDate),
	}
}

func ProjectSnapshot(p *model.Project) Snapshot {
	if p == nil {
		return nil
	}
	return Snapshot{
		"name":        p.Name,
		"description": p.Description,
	}
}

func MemberSnapshot(m *model.Membership) Snapshot {
	if m == nil {
		return nil
	}
	return Snapshot{
		"user_id": m.UserID.String(),
		"role":    string(m.Role),
	}
}

func CommentSnapshot(c *model.Comment) Snapshot {
	if c == nil {
		return nil
	}
	return Snapshot{
		"comment_id": c.ID.String(),
		"text":       c.Text,
	}
}

func optionalID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
