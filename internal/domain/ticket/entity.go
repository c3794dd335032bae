// internal/domain/ticket/entity.go
package ticket

import (
	"time"

	"laptoppro-service/internal/domain/customer"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDroppedOff      Status = "DROPPED_OFF"
	StatusDiagnosing      Status = "DIAGNOSING"
	StatusWaitingApproval Status = "WAITING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusInRepair        Status = "IN_REPAIR"
	StatusReady           Status = "READY"
	StatusWaitingPickup   Status = "WAITING_PICKUP"
	StatusClosed          Status = "CLOSED"
)

// Statuses lists every member of the enumeration. Any member may follow any other.
var Statuses = []Status{
	StatusDroppedOff,
	StatusDiagnosing,
	StatusWaitingApproval,
	StatusApproved,
	StatusRejected,
	StatusInRepair,
	StatusReady,
	StatusWaitingPickup,
	StatusClosed,
}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

var statusLabels = map[Status]string{
	StatusDroppedOff:      "Dropped-off",
	StatusDiagnosing:      "Diagnosing",
	StatusWaitingApproval: "Waiting Approval",
	StatusApproved:        "Approved",
	StatusRejected:        "Rejected",
	StatusInRepair:        "In Repair",
	StatusReady:           "Ready for Pickup",
	StatusWaitingPickup:   "Waiting Pickup",
	StatusClosed:          "Closed",
}

// Label is the human-readable status shown to staff and customers.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Final reports statuses after which follow-up reminders are pointless.
func (s Status) Final() bool {
	return s == StatusClosed || s == StatusRejected
}

type Ticket struct {
	ID         int64             `json:"id" db:"id"`
	TicketCode string            `json:"ticket_code" db:"ticket_code"`
	Device     string            `json:"device" db:"device"`
	Issue      string            `json:"issue" db:"issue"`
	Status     Status            `json:"status" db:"status"`
	Estimate   *decimal.Decimal  `json:"estimate" db:"estimate"`
	Notes      string            `json:"notes" db:"notes"`
	CustomerID *int64            `json:"-" db:"customer_id"`
	Customer   *customer.Summary `json:"customer"`
	Updates    []Update          `json:"updates"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

// Update is one entry of the append-only ticket log.
type Update struct {
	ID        int64     `json:"id" db:"id"`
	TicketID  int64     `json:"ticket_id" db:"ticket_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Patch is the validated set of fields one update applies.
type Patch struct {
	Status   *Status
	Estimate *decimal.Decimal
	Notes    *string
}

func (p Patch) Empty() bool {
	return p.Status == nil && p.Estimate == nil && p.Notes == nil
}
