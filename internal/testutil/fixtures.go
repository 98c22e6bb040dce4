package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/google/uuid"
)

var testNumberCounter atomic.Int64

func nextNumber(prefix string) string {
	return fmt.Sprintf("%s%07d", prefix, testNumberCounter.Add(1))
}

// Ticket options
type TicketOption func(*domain.Ticket)

func WithNumber(n string) TicketOption {
	return func(t *domain.Ticket) {
		t.Number = n
	}
}

func WithTicketID(id string) TicketOption {
	return func(t *domain.Ticket) {
		t.ID = id
	}
}

func NewTestTicket(desc string, opts ...TicketOption) domain.Ticket {
	t := domain.Ticket{
		ID:               uuid.New().String(),
		Number:           nextNumber("RITM"),
		ShortDescription: desc,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewTestHit builds a search hit with a fresh sys_id.
func NewTestHit(number, desc string) domain.SearchHit {
	return domain.SearchHit{
		ID:               uuid.New().String(),
		Number:           number,
		ShortDescription: desc,
		Score:            1,
	}
}

func NewTestTemplate(name string) domain.ChangeTemplate {
	return domain.ChangeTemplate{ID: uuid.New().String(), Name: name}
}

// TicketEntry is time logged against a ticket.
func TicketEntry(ticketID string, seconds int64) domain.TimeEntry {
	return domain.TimeEntry{Seconds: seconds, TicketID: ticketID}
}

// CategoryEntry is time logged against a no-ticket category.
func CategoryEntry(category string, seconds int64) domain.TimeEntry {
	return domain.TimeEntry{Seconds: seconds, Category: category}
}

// MustDuration parses expr with the default hour ceiling and panics on error.
func MustDuration(expr string) domain.Duration {
	d, err := domain.ParseDuration(expr, 0)
	if err != nil {
		panic(err)
	}
	return d
}
