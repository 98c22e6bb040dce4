package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/elasticnow/elasticnow/internal/config"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/service"
)

// Call records one invocation on a fake.
type Call struct {
	Method string
	Args   []any
}

type recorder struct {
	mu    sync.Mutex
	calls []Call
	errs  map[string]error
}

func (r *recorder) record(method string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
	return r.errs[method]
}

// FailOn makes the named method return err from now on.
func (r *recorder) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs == nil {
		r.errs = make(map[string]error)
	}
	r.errs[method] = err
}

// Calls returns every recorded call in order.
func (r *recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the recorded calls to method.
func (r *recorder) CallsTo(method string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// FakeWorkSystem is an in-memory service.WorkSystem.
type FakeWorkSystem struct {
	recorder

	Group     string
	Tickets   []domain.Ticket
	Templates []domain.ChangeTemplate
	Entries   []domain.TimeEntry
	Centers   []domain.CostCenter

	CreatedID string
	ChangeID  string
}

var _ service.WorkSystem = (*FakeWorkSystem)(nil)

func (f *FakeWorkSystem) UserGroup(_ context.Context, username string) (string, error) {
	if err := f.record("UserGroup", username); err != nil {
		return "", err
	}
	return f.Group, nil
}

func (f *FakeWorkSystem) CreateTicket(_ context.Context, bin, description string) (string, error) {
	if err := f.record("CreateTicket", bin, description); err != nil {
		return "", err
	}
	if f.CreatedID == "" {
		return "new-ticket", nil
	}
	return f.CreatedID, nil
}

func (f *FakeWorkSystem) TicketsInBin(_ context.Context, bin string) ([]domain.Ticket, error) {
	if err := f.record("TicketsInBin", bin); err != nil {
		return nil, err
	}
	return f.Tickets, nil
}

func (f *FakeWorkSystem) AddTimeToTicket(_ context.Context, ticketID string, d domain.Duration, comment string) error {
	return f.record("AddTimeToTicket", ticketID, d.Seconds(), comment)
}

func (f *FakeWorkSystem) AddTimeToCategory(_ context.Context, category string, d domain.Duration, comment string) error {
	return f.record("AddTimeToCategory", category, d.Seconds(), comment)
}

func (f *FakeWorkSystem) SearchTemplates(_ context.Context, name string) ([]domain.ChangeTemplate, error) {
	if err := f.record("SearchTemplates", name); err != nil {
		return nil, err
	}
	return f.Templates, nil
}

func (f *FakeWorkSystem) CreateChangeFromTemplate(_ context.Context, templateID, bin string) (string, error) {
	if err := f.record("CreateChangeFromTemplate", templateID, bin); err != nil {
		return "", err
	}
	if f.ChangeID == "" {
		return "new-change", nil
	}
	return f.ChangeID, nil
}

func (f *FakeWorkSystem) TimeEntries(_ context.Context, r domain.DateRange, user string) ([]domain.TimeEntry, error) {
	if err := f.record("TimeEntries", r, user); err != nil {
		return nil, err
	}
	return f.Entries, nil
}

func (f *FakeWorkSystem) CostCenters(_ context.Context, ticketIDs []string) ([]domain.CostCenter, error) {
	if err := f.record("CostCenters", ticketIDs); err != nil {
		return nil, err
	}
	return f.Centers, nil
}

// Mutations returns the calls that would have changed remote state.
func (f *FakeWorkSystem) Mutations() []Call {
	var out []Call
	for _, c := range f.Calls() {
		switch c.Method {
		case "CreateTicket", "AddTimeToTicket", "AddTimeToCategory", "CreateChangeFromTemplate":
			out = append(out, c)
		}
	}
	return out
}

// FakeIndex is a service.TicketIndex returning canned hits.
type FakeIndex struct {
	recorder
	Hits []domain.SearchHit
}

var _ service.TicketIndex = (*FakeIndex)(nil)

func (f *FakeIndex) Search(_ context.Context, keyword, bin string) ([]domain.SearchHit, error) {
	if err := f.record("Search", keyword, bin); err != nil {
		return nil, err
	}
	return f.Hits, nil
}

// FakeAuth is a service.Authenticator.
type FakeAuth struct {
	recorder
}

func (f *FakeAuth) EnsureAuthenticated(context.Context) error {
	return f.record("EnsureAuthenticated")
}

// ErrNoAnswer is returned when a FakePrompter runs out of scripted answers.
var ErrNoAnswer = errors.New("no scripted answer")

// FakePrompter answers prompts from a script, in order. An answer equal to
// Abort makes the prompt return service.ErrPromptAborted.
type FakePrompter struct {
	recorder
	Answers []string

	// Shown holds the labels offered by each Select or Choose call.
	Shown [][]string
}

// Abort is the scripted answer that simulates interrupting a prompt.
const Abort = "\x00abort"

var _ service.Prompter = (*FakePrompter)(nil)

func (f *FakePrompter) next() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Answers) == 0 {
		return "", ErrNoAnswer
	}
	a := f.Answers[0]
	f.Answers = f.Answers[1:]
	if a == Abort {
		return "", service.ErrPromptAborted
	}
	return a, nil
}

func (f *FakePrompter) Select(title string, labels []string) (string, error) {
	_ = f.record("Select", title)
	f.mu.Lock()
	f.Shown = append(f.Shown, append([]string(nil), labels...))
	f.mu.Unlock()
	return f.next()
}

// Choose accepts either an option's label or its value as the answer and
// returns the value.
func (f *FakePrompter) Choose(title string, options []service.Option) (string, error) {
	_ = f.record("Choose", title)
	labels := make([]string, len(options))
	for i, o := range options {
		labels[i] = o.Label
	}
	f.mu.Lock()
	f.Shown = append(f.Shown, labels)
	f.mu.Unlock()

	a, err := f.next()
	if err != nil {
		return "", err
	}
	for _, o := range options {
		if a == o.Label || a == o.Value {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("answer %q is not an option", a)
}

func (f *FakePrompter) Input(title string) (string, error) {
	_ = f.record("Input", title)
	return f.next()
}

// MemoryStore is a config store that keeps the last saved config in memory.
type MemoryStore struct {
	recorder
	Saved *config.Config
}

// Load returns a copy of the saved config, or config.ErrNotFound before the
// first Save.
func (m *MemoryStore) Load() (*config.Config, error) {
	if err := m.record("Load"); err != nil {
		return nil, err
	}
	if m.Saved == nil {
		return nil, config.ErrNotFound
	}
	cp := *m.Saved
	return &cp, nil
}

func (m *MemoryStore) Save(cfg *config.Config) error {
	if err := m.record("Save"); err != nil {
		return err
	}
	cp := *cfg
	m.Saved = &cp
	return nil
}
