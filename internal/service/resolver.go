package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/sirupsen/logrus"
)

// Synthetic entries appended to every ticket pick list.
const (
	OptionNewTicket = "New ticket"
	OptionCancel    = "Cancel"
)

// Mode selects how a time entry finds its target. Modes are mutually
// exclusive; the CLI enforces that before a request is built.
type Mode int

const (
	ModeCreate Mode = iota + 1
	ModeSearch
	ModeAll
	ModeNoTicket
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeSearch:
		return "search"
	case ModeAll:
		return "all"
	case ModeNoTicket:
		return "no-ticket"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ResolveRequest carries the disambiguated mode and its parameters.
type ResolveRequest struct {
	Mode    Mode
	Keyword string
	Bin     string
}

// Resolution is the outcome of resolving a target: TicketTarget,
// CategoryTarget or Cancelled.
type Resolution interface {
	isResolution()
}

// TicketTarget means time goes on a ticket. Created is set when the ticket
// was opened during resolution.
type TicketTarget struct {
	Ticket  domain.TicketReference
	Created bool
}

// CategoryTarget means time goes on a no-ticket category.
type CategoryTarget struct {
	Category string
}

// Cancelled means the user backed out; nothing should be written.
type Cancelled struct{}

func (TicketTarget) isResolution()   {}
func (CategoryTarget) isResolution() {}
func (Cancelled) isResolution()      {}

// TicketResolver decides where a time entry attaches.
type TicketResolver struct {
	index  TicketIndex
	auth   Authenticator
	work   WorkSystem
	prompt Prompter
	log    logrus.FieldLogger
}

// NewTicketResolver wires a resolver. auth may be nil when the index needs
// no session check.
func NewTicketResolver(index TicketIndex, auth Authenticator, work WorkSystem, prompt Prompter, log logrus.FieldLogger) *TicketResolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TicketResolver{index: index, auth: auth, work: work, prompt: prompt, log: log}
}

// Resolve runs the prompts and lookups req.Mode calls for.
func (r *TicketResolver) Resolve(ctx context.Context, req ResolveRequest) (Resolution, error) {
	switch req.Mode {
	case ModeCreate:
		return r.createTicket(ctx, req.Bin)
	case ModeNoTicket:
		return r.chooseCategory()
	case ModeSearch, ModeAll:
		items, err := r.candidates(ctx, req)
		if err != nil {
			return nil, err
		}
		return r.pickTicket(ctx, req.Bin, items)
	default:
		return nil, fmt.Errorf("unknown resolve mode %s", req.Mode)
	}
}

func (r *TicketResolver) candidates(ctx context.Context, req ResolveRequest) ([]domain.Selectable, error) {
	if req.Mode == ModeAll {
		tickets, err := r.work.TicketsInBin(ctx, req.Bin)
		if err != nil {
			return nil, fmt.Errorf("listing tickets in %s: %w", req.Bin, err)
		}
		return selectables(tickets), nil
	}

	if r.auth != nil {
		if err := r.auth.EnsureAuthenticated(ctx); err != nil {
			return nil, err
		}
	}
	hits, err := r.index.Search(ctx, req.Keyword, req.Bin)
	if err != nil {
		return nil, fmt.Errorf("searching tickets: %w", err)
	}
	return selectables(hits), nil
}

func (r *TicketResolver) pickTicket(ctx context.Context, bin string, items []domain.Selectable) (Resolution, error) {
	labels := make([]string, 0, len(items)+2)
	for _, it := range items {
		labels = append(labels, it.SelectLabel())
	}
	labels = append(labels, OptionNewTicket, OptionCancel)

	choice, err := r.prompt.Select("Please choose a ticket:", labels)
	if errors.Is(err, ErrPromptAborted) {
		return Cancelled{}, nil
	}
	if err != nil {
		return nil, err
	}
	r.log.WithField("choice", choice).Debug("selected item")

	switch choice {
	case OptionCancel:
		return Cancelled{}, nil
	case OptionNewTicket:
		return r.createTicket(ctx, bin)
	}

	it, ok := MatchSelection(choice, items)
	if !ok {
		return nil, fmt.Errorf("selection %q matches no listed ticket", choice)
	}
	return TicketTarget{Ticket: domain.TicketReference{ID: it.SelectID(), Number: it.SelectNumber()}}, nil
}

func (r *TicketResolver) createTicket(ctx context.Context, bin string) (Resolution, error) {
	desc, err := r.prompt.Input("Short description:")
	if errors.Is(err, ErrPromptAborted) {
		return Cancelled{}, nil
	}
	if err != nil {
		return nil, err
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil, &domain.FormatError{Input: desc, Expected: "a non-empty short description"}
	}

	r.log.WithField("description", desc).Debug("creating new ticket")
	id, err := r.work.CreateTicket(ctx, bin, desc)
	if err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}
	return TicketTarget{Ticket: domain.TicketReference{ID: id}, Created: true}, nil
}

func (r *TicketResolver) chooseCategory() (Resolution, error) {
	opts := make([]Option, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		opts = append(opts, Option{Label: c.Description, Value: c.Key})
	}
	key, err := r.prompt.Choose("Please choose a category:", opts)
	if errors.Is(err, ErrPromptAborted) {
		return Cancelled{}, nil
	}
	if err != nil {
		return nil, err
	}
	return CategoryTarget{Category: key}, nil
}

// MatchSelection maps a chosen label back to its item: the first item, in
// list order, whose number prefixes the label. Labels always start with the
// number, so this is unambiguous unless one number is a prefix of another
// listed earlier.
func MatchSelection(label string, items []domain.Selectable) (domain.Selectable, bool) {
	for _, it := range items {
		n := it.SelectNumber()
		if n != "" && strings.HasPrefix(label, n) {
			return it, true
		}
	}
	return nil, false
}

func selectables[T domain.Selectable](in []T) []domain.Selectable {
	out := make([]domain.Selectable, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
