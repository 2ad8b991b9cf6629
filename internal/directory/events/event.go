// Package events carries employee change notifications out of the
// record store: to in-process listeners and, through the Kafka producer,
// to other services.
package events

import (
	"strconv"
	"time"

	"github.com/gartstein/staffdir/internal/directory/models"
	"github.com/google/uuid"
)

type EventType string

const (
	EmployeeCreated   EventType = "employee_created"
	EmployeeUpdated   EventType = "employee_updated"
	EmployeeDeleted   EventType = "employee_deleted"
	EmployeesReplaced EventType = "employees_replaced"
)

// Event describes one successful, persisted store mutation.
type Event struct {
	ID         uuid.UUID        `json:"id"`
	Type       EventType        `json:"type"`
	Employee   *models.Employee `json:"employee,omitempty"`
	IDs        []int64          `json:"ids,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// New stamps an event with a fresh ID and the current time.
func New(eventType EventType, employee *models.Employee, ids ...int64) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		Employee:   employee,
		IDs:        ids,
		OccurredAt: time.Now().UTC(),
	}
}

// Key is the partition key: the employee ID for single-record events,
// the event type for bulk replacement.
func (e Event) Key() string {
	if e.Employee != nil {
		return strconv.FormatInt(e.Employee.ID, 10)
	}
	return string(e.Type)
}
