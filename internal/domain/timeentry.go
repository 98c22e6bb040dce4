package domain

// Category is a bucket for time not attached to a ticket.
type Category struct {
	Key         string
	Description string
}

// Categories lists the no-ticket categories the work system accepts.
var Categories = []Category{
	{Key: "certs_prodev_training", Description: "Training"},
	{Key: "clerical", Description: "Clerical"},
	{Key: "univ_events", Description: "University Events"},
}

// CategoryNiceName maps a raw category key to its display name. Unknown keys
// are returned unchanged.
func CategoryNiceName(key string) string {
	for _, c := range Categories {
		if c.Key == key {
			return c.Description
		}
	}
	return key
}

// TimeEntry is one time-worked record. Exactly one of TicketID and Category
// is set.
type TimeEntry struct {
	Seconds  int64
	TicketID string
	Category string
}

// OnTicket reports whether the entry is attached to a ticket.
func (e TimeEntry) OnTicket() bool {
	return e.TicketID != ""
}

// CostCenter ties a ticket id to the display name of its cost center.
type CostCenter struct {
	TicketID string
	Name     string
}
