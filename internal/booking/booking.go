// Package booking contains the clinic booking domain: the record type, the
// dialogue step machine that collects one, and the outbound message copy.
package booking

import "time"

// Status is the lifecycle state of a persisted booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Booking is the durable record of a completed reservation request.
type Booking struct {
	ID                uint64    `json:"id"`
	UserID            string    `json:"user_id"`
	CustomerName      string    `json:"customer_name"`
	CustomerPhone     string    `json:"customer_phone"`
	TreatmentCategory string    `json:"treatment_category"`
	TreatmentName     string    `json:"treatment_name"`
	PreferredDate     string    `json:"preferred_date"`
	PreferredTime     string    `json:"preferred_time"`
	Notes             string    `json:"notes,omitempty"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// CanCancel reports whether a user-initiated cancellation is allowed.
// Completed and already-cancelled bookings are terminal.
func (b *Booking) CanCancel() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Repository is the narrow persistence contract the bot depends on: identity
// inserts, equality lookups, and a recency-ordered per-user listing. No
// store-specific query language leaks past this interface.
type Repository interface {
	Insert(b Booking) (Booking, error)
	GetByID(id uint64) (*Booking, error)
	ListByUser(userID string, limit int) ([]Booking, error)
	UpdateStatus(id uint64, status Status) error
}
