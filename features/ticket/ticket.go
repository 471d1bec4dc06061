package ticket

import "time"

// StatusOpen is the initial status of every ticket.
const StatusOpen = "Abierto"

type Ticket struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
