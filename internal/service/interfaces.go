package service

import (
	"context"
	"errors"

	"github.com/elasticnow/elasticnow/internal/config"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/report"
)

// ErrPromptAborted is returned by a Prompter when the user interrupts a
// prompt. Callers treat it like choosing Cancel.
var ErrPromptAborted = errors.New("prompt aborted")

// ErrNoTemplates indicates a template search returned nothing to choose from.
var ErrNoTemplates = errors.New("no standard change templates found")

type TicketIndex interface {
	Search(ctx context.Context, keyword, bin string) ([]domain.SearchHit, error)
}

// Authenticator makes sure the ticket index will accept the next request.
type Authenticator interface {
	EnsureAuthenticated(ctx context.Context) error
}

type WorkSystem interface {
	UserGroup(ctx context.Context, username string) (string, error)
	CreateTicket(ctx context.Context, bin, description string) (string, error)
	TicketsInBin(ctx context.Context, bin string) ([]domain.Ticket, error)
	AddTimeToTicket(ctx context.Context, ticketID string, d domain.Duration, comment string) error
	AddTimeToCategory(ctx context.Context, category string, d domain.Duration, comment string) error
	SearchTemplates(ctx context.Context, name string) ([]domain.ChangeTemplate, error)
	CreateChangeFromTemplate(ctx context.Context, templateID, bin string) (string, error)
	TimeEntries(ctx context.Context, r domain.DateRange, user string) ([]domain.TimeEntry, error)
	CostCenters(ctx context.Context, ticketIDs []string) ([]domain.CostCenter, error)
}

// Option is a labelled choice whose value is returned when picked.
type Option struct {
	Label string
	Value string
}

// Prompter collects interactive input.
type Prompter interface {
	// Select shows labels and returns the chosen label.
	Select(title string, labels []string) (string, error)
	// Choose shows options and returns the chosen option's value.
	Choose(title string, options []Option) (string, error)
	// Input reads one line of free text.
	Input(title string) (string, error)
}

// ConfigSaver persists configuration.
type ConfigSaver interface {
	Save(cfg *config.Config) error
}

// TrackRequest is one timetrack invocation.
type TrackRequest struct {
	TimeWorked string
	Comment    string
	Target     ResolveRequest
}

// TrackResult reports what was recorded. Target is Cancelled when the user
// backed out, in which case nothing was written.
type TrackResult struct {
	Duration domain.Duration
	Target   Resolution
}

type TimetrackService interface {
	Track(ctx context.Context, req TrackRequest) (*TrackResult, error)
}

// ReportRequest selects whose time to report over which range.
type ReportRequest struct {
	User  string
	Range domain.DateRange
	Top   int
}

type ReportService interface {
	Build(ctx context.Context, req ReportRequest) (*report.Report, error)
}

// StdChgRequest creates a standard change either from TemplateID or from a
// template picked among those matching Search.
type StdChgRequest struct {
	Search     string
	TemplateID string
	Bin        string
}

// StdChgResult holds the created change, or Cancelled when nothing was created.
type StdChgResult struct {
	ChangeID   string
	TemplateID string
	Cancelled  bool
}

type StdChgService interface {
	Create(ctx context.Context, req StdChgRequest) (*StdChgResult, error)
}

type SetupService interface {
	Setup(ctx context.Context, cfg *config.Config) error
}
