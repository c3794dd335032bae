// internal/domain/reminder/entity.go
package reminder

import "time"

// Queue is the name of the delayed-job queue reminders are posted to.
const Queue = "reminders"

type Kind string

const (
	KindOneDay     Kind = "reminder-1d"
	KindTwentyDays Kind = "reminder-20d"
	KindThirtyDays Kind = "reminder-30d"
)

// Step is one job of the follow-up series, delayed from the scheduling moment.
type Step struct {
	Kind  Kind
	Delay time.Duration
}

// Series is posted once per ticket creation (86,400,000 / 1,728,000,000 / 2,592,000,000 ms).
var Series = []Step{
	{Kind: KindOneDay, Delay: 24 * time.Hour},
	{Kind: KindTwentyDays, Delay: 20 * 24 * time.Hour},
	{Kind: KindThirtyDays, Delay: 30 * 24 * time.Hour},
}

// Payload is the job body handed to the scheduling collaborator.
type Payload struct {
	TicketID int64 `json:"ticketId"`
}
