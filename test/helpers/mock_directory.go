package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/garmentflow/internal/application/common"
)

// MockEmployeeDirectory is an in-memory employee directory
type MockEmployeeDirectory struct {
	mu        sync.RWMutex
	employees []common.Employee
	err       error
	calls     int
}

// NewMockEmployeeDirectory creates a directory where every given id is an active employee
func NewMockEmployeeDirectory(activeIDs ...string) *MockEmployeeDirectory {
	d := &MockEmployeeDirectory{}
	for _, id := range activeIDs {
		d.employees = append(d.employees, common.Employee{ID: id, Name: id, Active: true})
	}
	return d
}

// AddEmployee registers an employee
func (d *MockEmployeeDirectory) AddEmployee(e common.Employee) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.employees = append(d.employees, e)
}

// SetError makes every ListEmployees call fail
func (d *MockEmployeeDirectory) SetError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// ListEmployees implements common.EmployeeDirectory
func (d *MockEmployeeDirectory) ListEmployees(ctx context.Context, role string) ([]common.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}

	var result []common.Employee
	for _, e := range d.employees {
		if role == "" || e.Role == role {
			result = append(result, e)
		}
	}
	return result, nil
}

// Calls returns how many times the directory was queried
func (d *MockEmployeeDirectory) Calls() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.calls
}
