// internal/domain/customer/entity.go
package customer

import "time"

// Customer is identified by phone; name and email merge on every resolve.
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     *string   `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Summary is the customer shape embedded in tickets and sales.
type Summary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email"`
}

func (c *Customer) Summary() *Summary {
	if c == nil {
		return nil
	}
	return &Summary{ID: c.ID, Name: c.Name, Phone: c.Phone, Email: c.Email}
}
