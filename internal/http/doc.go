// Package http provides HTTP handlers and middleware for the time tracking API.
//
// The router exposes the following endpoints:
//   - POST /employees/{id}/clock-in: opens a work session. Responds 201 with
//     {"session_id","started_at","status":"started"}, or 200 with
//     status "already_working" when a session is already open; the repeated
//     call does not alter the existing session.
//   - POST /employees/{id}/clock-out: closes the open session. Responds 200
//     with {"session_id","ended_at","duration_minutes","status":"stopped"},
//     or 409 with status "not_working" when nothing is open.
//   - GET /employees/{id}/status: {"is_working","open_since"?}.
//   - GET /employees/{id}/totals?at=RFC3339: worked minutes for the day, week,
//     and month containing the reference instant. `at` defaults to now.
//   - GET /employees/{id}/progress?at=…&weekly_target_minutes=…: weekly total
//     against the target; the target defaults to the employee's configured one.
//   - GET /employees/{id}/productivity?at=…: {"score","streak_days"}.
//   - GET /employees, POST /employees, GET/PUT /employees/{id}: employee
//     directory endpoints exchanging the `employeeDTO` payload defined in
//     employee_handler.go. Employees cannot be deleted.
//   - GET /healthz: liveness including a storage ping.
//   - GET /metrics: Prometheus exposition, when wired.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
