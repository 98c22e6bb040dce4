package domain

import "fmt"

// Selectable is anything that can be offered in an interactive pick list and
// mapped back to an id.
type Selectable interface {
	SelectID() string
	SelectNumber() string
	SelectLabel() string
}

// TicketReference identifies a ticket in the work system.
type TicketReference struct {
	ID     string
	Number string
}

// SearchHit is a ticket-index match. Score is the relevance reported by the
// index and is only used for ordering upstream.
type SearchHit struct {
	ID               string
	Number           string
	ShortDescription string
	Score            float64
}

func (h SearchHit) SelectID() string     { return h.ID }
func (h SearchHit) SelectNumber() string { return h.Number }
func (h SearchHit) SelectLabel() string  { return ticketLabel(h.Number, h.ShortDescription) }

// Ticket is a work-system task row as returned by a bin listing.
type Ticket struct {
	ID               string
	Number           string
	ShortDescription string
}

func (t Ticket) SelectID() string     { return t.ID }
func (t Ticket) SelectNumber() string { return t.Number }
func (t Ticket) SelectLabel() string  { return ticketLabel(t.Number, t.ShortDescription) }

// ChangeTemplate is a standard change template.
type ChangeTemplate struct {
	ID   string
	Name string
}

func (c ChangeTemplate) SelectID() string     { return c.ID }
func (c ChangeTemplate) SelectNumber() string { return c.Name }
func (c ChangeTemplate) SelectLabel() string  { return c.Name }

func ticketLabel(number, desc string) string {
	return fmt.Sprintf("%s: %s", number, desc)
}
