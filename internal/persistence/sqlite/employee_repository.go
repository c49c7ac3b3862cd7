package sqlite

import (
	"context"
	"fmt"

	"github.com/example/timeclock/internal/persistence"
)

// EmployeeRepository implements persistence.EmployeeRepository using SQLite.
type EmployeeRepository struct {
	db *DB
}

// NewEmployeeRepository creates an employee repository on the shared connection.
func NewEmployeeRepository(db *DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, display_name, role, weekly_target_minutes, created_at, updated_at`

// CreateEmployee stores a new employee.
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `INSERT INTO employees (` + employeeColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.db.ExecContext(ctx, query,
		employee.ID,
		employee.DisplayName,
		employee.Role,
		employee.WeeklyTargetMinutes,
		formatTime(employee.CreatedAt),
		formatTime(employee.UpdatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateEmployee updates an existing employee.
func (r *EmployeeRepository) UpdateEmployee(ctx context.Context, employee persistence.Employee) error {
	query := `UPDATE employees
		SET display_name = ?, role = ?, weekly_target_minutes = ?, updated_at = ?
		WHERE id = ?`
	result, err := r.db.db.ExecContext(ctx, query,
		employee.DisplayName,
		employee.Role,
		employee.WeeklyTargetMinutes,
		formatTime(employee.UpdatedAt),
		employee.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (r *EmployeeRepository) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	row := r.db.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	return scanEmployee(row)
}

// ListEmployees returns all employees ordered by display name.
func (r *EmployeeRepository) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	rows, err := r.db.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY display_name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	employees := make([]persistence.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return employees, nil
}

func scanEmployee(row rowScanner) (persistence.Employee, error) {
	var (
		employee     persistence.Employee
		createdAtStr string
		updatedAtStr string
	)

	if err := row.Scan(&employee.ID, &employee.DisplayName, &employee.Role, &employee.WeeklyTargetMinutes, &createdAtStr, &updatedAtStr); err != nil {
		return persistence.Employee{}, mapError(err)
	}

	var err error
	if employee.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Employee{}, err
	}
	if employee.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Employee{}, err
	}

	return employee, nil
}
