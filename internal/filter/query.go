package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskmaster/internal/apperror"
	"taskmaster/internal/model"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// ParseTaskQuery builds a TaskSpec from query parameters. assigned_to_me is
// resolved against caller.
func ParseTaskQuery(q url.Values, caller uuid.UUID) (TaskSpec, error) {
	var spec TaskSpec

	for _, v := range multi(q, "status") {
		s := model.TaskStatus(strings.ToUpper(v))
		if !s.Valid() {
			return spec, apperror.Invalid("status", "unknown status %q", v)
		}
		spec.Statuses = append(spec.Statuses, s)
	}
	for _, v := range multi(q, "priority") {
		p := model.Priority(strings.ToUpper(v))
		if !p.Valid() {
			return spec, apperror.Invalid("priority", "unknown priority %q", v)
		}
		spec.Priorities = append(spec.Priorities, p)
	}

	var err error
	if spec.ProjectID, err = parseUUID(q, "project"); err != nil {
		return spec, err
	}
	if spec.CreatedBy, err = parseUUID(q, "created_by"); err != nil {
		return spec, err
	}
	if spec.Due, err = parseRange(q, "due_after", "due_before"); err != nil {
		return spec, err
	}
	if spec.Created, err = parseRange(q, "created_after", "created_before"); err != nil {
		return spec, err
	}
	if spec.HasDueDate, err = parseBool(q, "has_due_date"); err != nil {
		return spec, err
	}
	if spec.IsAssigned, err = parseBool(q, "is_assigned"); err != nil {
		return spec, err
	}

	mine, err := parseBool(q, "assigned_to_me")
	if err != nil {
		return spec, err
	}
	if mine != nil && *mine {
		me := caller
		spec.AssigneeID = &me
	}

	spec.Search = strings.TrimSpace(q.Get("search"))

	if spec.Ordering, err = ParseOrdering(q.Get("ordering")); err != nil {
		return spec, err
	}
	return spec, nil
}

// ParseOrdering parses "field" or "-field".
func ParseOrdering(raw string) (Ordering, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ordering{}, nil
	}
	var o Ordering
	if strings.HasPrefix(raw, "-") {
		o.Descending = true
		raw = raw[1:]
	}
	switch f := OrderField(raw); f {
	case OrderDueDate, OrderPriority, OrderCreatedAt:
		o.Field = f
	default:
		return Ordering{}, apperror.Invalid("ordering", "cannot order by %q", raw)
	}
	return o, nil
}

// ParseProjectQuery builds a ProjectSpec from query parameters.
func ParseProjectQuery(q url.Values) (ProjectSpec, error) {
	var spec ProjectSpec
	var err error
	spec.Search = strings.TrimSpace(q.Get("search"))
	if spec.Created, err = parseRange(q, "created_after", "created_before"); err != nil {
		return spec, err
	}
	if spec.CreatedBy, err = parseUUID(q, "created_by"); err != nil {
		return spec, err
	}
	return spec, nil
}

// ParsePageRequest reads page and page_size. Missing values are left zero
// and filled by Pagination.Normalize.
func ParsePageRequest(q url.Values) (PageRequest, error) {
	var req PageRequest
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return req, apperror.Invalid("page", "must be a positive integer")
		}
		req.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return req, apperror.Invalid("page_size", "must be a positive integer")
		}
		req.Size = n
	}
	return req, nil
}

// multi returns every value of key, splitting comma separated lists.
func multi(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func parseUUID(q url.Values, key string) (*uuid.UUID, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperror.Invalid(key, "invalid id %q", v)
	}
	return &id, nil
}

func parseBool(q url.Values, key string) (*bool, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperror.Invalid(key, "invalid boolean %q", v)
	}
	return &b, nil
}

func parseRange(q url.Values, afterKey, beforeKey string) (TimeRange, error) {
	var r TimeRange
	var err error
	if r.After, err = parseTime(q, afterKey, false); err != nil {
		return r, err
	}
	if r.Before, err = parseTime(q, beforeKey, true); err != nil {
		return r, err
	}
	return r, nil
}

// parseTime accepts RFC 3339 timestamps and plain dates. A plain date used as
// an upper bound covers the whole day.
func parseTime(q url.Values, key string, endOfDay bool) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, apperror.Invalid(key, "invalid date %q", v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
