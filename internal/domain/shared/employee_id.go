package shared

import (
	"strings"

	"github.com/google/uuid"
)

// EmployeeID is a value object referencing an employee of the external directory.
// The engine stores only the identifier, never directory data.
type EmployeeID struct {
	value string
}

// NewEmployeeID creates a new EmployeeID value object
func NewEmployeeID(id string) (EmployeeID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return EmployeeID{}, NewValidationError("employee_id", "employee_id cannot be empty")
	}
	return EmployeeID{value: id}, nil
}

// MustNewEmployeeID creates a new EmployeeID value object, panicking if invalid
// Use this only when you're certain the ID is valid (e.g., from database)
func MustNewEmployeeID(id string) EmployeeID {
	employeeID, err := NewEmployeeID(id)
	if err != nil {
		panic(err)
	}
	return employeeID
}

func (e EmployeeID) String() string {
	return e.value
}

func (e EmployeeID) Equals(other EmployeeID) bool {
	return e.value == other.value
}

func (e EmployeeID) IsZero() bool {
	return e.value == ""
}

// NewID generates a surrogate identifier for a new entity
func NewID() string {
	return uuid.New().String()
}
