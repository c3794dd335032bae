// Package code derives display identifiers from numeric row ids.
package code

import "fmt"

const (
	TicketPrefix  = "T"
	InvoicePrefix = "INV"

	// Width is the zero-padded width of the numeric part.
	Width = 5
)

// Format returns PREFIX-00001 style codes. Uniqueness comes from n alone.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, Width, n)
}

// Ticket returns the display code of a ticket row, e.g. T-00042.
func Ticket(id int64) string {
	return Format(TicketPrefix, id)
}

// Invoice returns the invoice number of a sale row, e.g. INV-2026-00042.
func Invoice(year int, id int64) string {
	return Format(fmt.Sprintf("%s-%d", InvoicePrefix, year), id)
}
