package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	ProjectNameMin       = 2
	ProjectNameMax       = 50
	TodoTitleMin         = 3
	TodoTitleMax         = 100
	DescriptionMaxLength = 200

	// DateLayout is the ISO calendar-date layout used for due dates.
	DateLayout = "2006-01-02"
)

// DueDatePolicy decides whether due dates in the past are acceptable.
type DueDatePolicy string

const (
	DueDateAny    DueDatePolicy = "any"
	DueDateFuture DueDatePolicy = "future"
)

// ParseDueDatePolicy maps a config value onto a policy, falling back to any.
func ParseDueDatePolicy(value string) DueDatePolicy {
	if strings.EqualFold(strings.TrimSpace(value), string(DueDateFuture)) {
		return DueDateFuture
	}
	return DueDateAny
}

// Rules carries the knobs shared by every entity constructor.
type Rules struct {
	DueDates DueDatePolicy
	Clock    func() time.Time
}

// DefaultRules accepts any parseable due date and uses the wall clock.
func DefaultRules() Rules {
	return Rules{DueDates: DueDateAny, Clock: time.Now}
}

// Relaxed returns a copy that accepts any parseable due date.
func (r Rules) Relaxed() Rules {
	r.DueDates = DueDateAny
	return r
}

func (r Rules) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock()
}

// ValidateName trims a project name and enforces its length bounds.
func ValidateName(name string) (string, error) {
	return validateLength("name", "project name", name, ProjectNameMin, ProjectNameMax)
}

// ValidateTitle trims a todo title and enforces its length bounds.
func ValidateTitle(title string) (string, error) {
	return validateLength("title", "todo title", title, TodoTitleMin, TodoTitleMax)
}

func validateLength(field, label, value string, minLen, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", NewValidationError(field, label+" cannot be empty")
	}
	n := utf8.RuneCountInString(trimmed)
	if n < minLen {
		return "", NewValidationError(field, fmt.Sprintf("%s must be at least %d characters long", label, minLen))
	}
	if n > maxLen {
		return "", NewValidationError(field, fmt.Sprintf("%s cannot exceed %d characters", label, maxLen))
	}
	return trimmed, nil
}

// ValidateDescription trims and silently truncates a description. It never fails.
func ValidateDescription(description string) string {
	trimmed := strings.TrimSpace(description)
	if utf8.RuneCountInString(trimmed) <= DescriptionMaxLength {
		return trimmed
	}
	return string([]rune(trimmed)[:DescriptionMaxLength])
}

// ValidateProjectStatus normalizes a project status.
func ValidateProjectStatus(status string) (ProjectStatus, error) {
	v, err := matchEnum("status", status, projectStatuses)
	return ProjectStatus(v), err
}

// ValidateTodoStatus normalizes a todo status.
func ValidateTodoStatus(status string) (TodoStatus, error) {
	v, err := matchEnum("status", status, todoStatuses)
	return TodoStatus(v), err
}

// ValidatePriority normalizes a todo priority.
func ValidatePriority(priority string) (Priority, error) {
	v, err := matchEnum("priority", priority, priorities)
	return Priority(v), err
}

// ValidateColor accepts a palette name or its hex value. Empty means no color.
func ValidateColor(color string) (string, error) {
	c := strings.TrimSpace(color)
	if c == "" {
		return "", nil
	}
	for _, entry := range Palette {
		if strings.EqualFold(c, entry.Name) || strings.EqualFold(c, entry.Hex) {
			return entry.Hex, nil
		}
	}
	names := make([]string, 0, len(Palette))
	for _, entry := range Palette {
		names = append(names, entry.Name)
	}
	return "", NewValidationError("color", "invalid color. Must be one of: "+strings.Join(names, ", "))
}

func matchEnum(field, value string, legal []string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range legal {
		if v == candidate {
			return candidate, nil
		}
	}
	return "", NewValidationError(field, fmt.Sprintf("invalid %s %q. Must be one of: %s", field, value, strings.Join(legal, ", ")))
}

// ValidateDueDate parses an ISO date (or RFC3339 timestamp) into a calendar date.
func ValidateDueDate(value string, rules Rules) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, NewValidationError("dueDate", "due date is required")
	}
	parsed, err := time.Parse(DateLayout, v)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, v)
		if tsErr != nil {
			return time.Time{}, NewValidationError("dueDate", fmt.Sprintf("invalid date %q", value))
		}
		parsed = ts
	}
	return ValidateDueTime(parsed, rules)
}

// ValidateDueTime normalizes a time value to its calendar date and applies the policy.
func ValidateDueTime(t time.Time, rules Rules) (time.Time, error) {
	if t.IsZero() {
		return time.Time{}, NewValidationError("dueDate", "due date is required")
	}
	date := calendarDate(t)
	if rules.DueDates == DueDateFuture && !date.After(calendarDate(rules.now())) {
		return time.Time{}, NewValidationError("dueDate", "due date must be in the future")
	}
	return date, nil
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
