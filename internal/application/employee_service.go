package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// EmployeeStore is the persistence surface the employee service depends on.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, employee persistence.Employee) error
	UpdateEmployee(ctx context.Context, employee persistence.Employee) error
	GetEmployee(ctx context.Context, id string) (persistence.Employee, error)
	ListEmployees(ctx context.Context) ([]persistence.Employee, error)
}

// EmployeeService manages the employee roster and each employee's weekly
// target. Deleting employees is intentionally unsupported: sessions reference
// employees and history must stay attributable.
type EmployeeService struct {
	store         EmployeeStore
	idGenerator   func() string
	now           func() time.Time
	defaultTarget int
	logger        *slog.Logger
}

// NewEmployeeService wires dependencies for the employee service. New
// employees created without an explicit weekly target inherit defaultTarget.
func NewEmployeeService(store EmployeeStore, idGenerator func() string, now func() time.Time, defaultTarget int) *EmployeeService {
	return NewEmployeeServiceWithLogger(store, idGenerator, now, defaultTarget, nil)
}

// NewEmployeeServiceWithLogger wires dependencies including an explicit logger.
func NewEmployeeServiceWithLogger(store EmployeeStore, idGenerator func() string, now func() time.Time, defaultTarget int, logger *slog.Logger) *EmployeeService {
	if now == nil {
		now = time.Now
	}
	if defaultTarget < 0 {
		defaultTarget = 0
	}
	return &EmployeeService{
		store:         store,
		idGenerator:   idGenerator,
		now:           now,
		defaultTarget: defaultTarget,
		logger:        defaultLogger(logger),
	}
}

// CreateEmployee validates the input and stores a new employee with a
// generated identifier.
func (s *EmployeeService) CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error) {
	if s == nil || s.store == nil {
		return Employee{}, fmt.Errorf("employee service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "EmployeeService", "Create")

	input, vErr := validateEmployeeInput(input)
	if vErr != nil {
		logger.InfoContext(ctx, "employee rejected", slog.String("error_kind", "validation"))
		return Employee{}, vErr
	}
	if input.WeeklyTargetMinutes == 0 {
		input.WeeklyTargetMinutes = s.defaultTarget
	}

	now := s.now().UTC()
	record := persistence.Employee{
		ID:                  s.idGenerator(),
		DisplayName:         input.DisplayName,
		Role:                input.Role,
		WeeklyTargetMinutes: input.WeeklyTargetMinutes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.CreateEmployee(ctx, record); err != nil {
		logger.ErrorContext(ctx, "employee create failed", slog.String("error", err.Error()))
		if errors.Is(err, persistence.ErrDuplicate) {
			return Employee{}, fmt.Errorf("%w: %s", ErrDuplicate, record.ID)
		}
		return Employee{}, storeError("creating employee", err)
	}

	logger.InfoContext(ctx, "employee created", slog.String("employee_id", record.ID))
	return toEmployee(record), nil
}

// UpdateEmployee replaces the mutable fields of an existing employee.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id string, input EmployeeInput) (Employee, error) {
	if s == nil || s.store == nil {
		return Employee{}, fmt.Errorf("employee service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "EmployeeService", "Update", slog.String("employee_id", id))

	input, vErr := validateEmployeeInput(input)
	if vErr != nil {
		logger.InfoContext(ctx, "employee rejected", slog.String("error_kind", "validation"))
		return Employee{}, vErr
	}

	existing, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		logger.ErrorContext(ctx, "employee lookup failed", slog.String("error", err.Error()))
		return Employee{}, storeError("resolving employee", err)
	}

	existing.DisplayName = input.DisplayName
	existing.Role = input.Role
	existing.WeeklyTargetMinutes = input.WeeklyTargetMinutes
	existing.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateEmployee(ctx, existing); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		logger.ErrorContext(ctx, "employee update failed", slog.String("error", err.Error()))
		return Employee{}, storeError("updating employee", err)
	}

	logger.InfoContext(ctx, "employee updated")
	return toEmployee(existing), nil
}

// GetEmployee returns a single employee by identifier.
func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (Employee, error) {
	if s == nil || s.store == nil {
		return Employee{}, fmt.Errorf("employee service not configured")
	}

	record, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, storeError("resolving employee", err)
	}
	return toEmployee(record), nil
}

// ListEmployees returns the full roster ordered by display name.
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]Employee, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("employee service not configured")
	}

	records, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, storeError("listing employees", err)
	}
	employees := make([]Employee, 0, len(records))
	for _, record := range records {
		employees = append(employees, toEmployee(record))
	}
	return employees, nil
}

func validateEmployeeInput(input EmployeeInput) (EmployeeInput, *ValidationError) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Role = strings.TrimSpace(input.Role)

	vErr := &ValidationError{}
	if input.DisplayName == "" {
		vErr.add("display_name", "display name is required")
	}
	if input.WeeklyTargetMinutes < 0 {
		vErr.add("weekly_target_minutes", "weekly target must not be negative")
	}
	if vErr.HasErrors() {
		return input, vErr
	}
	return input, nil
}
