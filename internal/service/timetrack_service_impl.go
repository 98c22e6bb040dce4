package service

import (
	"context"
	"fmt"
	"time"

	"github.com/elasticnow/elasticnow/internal/domain"
)

type timetrackService struct {
	resolver *TicketResolver
	work     WorkSystem
	maxHours int
	observer UseCaseObserver
}

// NewTimetrackService wires the timetrack use case. maxHours is the duration
// hour ceiling from config.
func NewTimetrackService(resolver *TicketResolver, work WorkSystem, maxHours int, observers ...UseCaseObserver) TimetrackService {
	return &timetrackService{
		resolver: resolver,
		work:     work,
		maxHours: maxHours,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Track validates the duration before any network call, resolves the
// target, then records the time against it.
func (s *timetrackService) Track(ctx context.Context, req TrackRequest) (result *TrackResult, err error) {
	start := time.Now()
	fields := map[string]any{"mode": req.Target.Mode.String()}
	defer func() { observe(ctx, s.observer, "timetrack", start, err, fields) }()

	d, err := domain.ParseDuration(req.TimeWorked, s.maxHours)
	if err != nil {
		return nil, err
	}
	fields["seconds"] = d.Seconds()

	target, err := s.resolver.Resolve(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case Cancelled:
		fields["cancelled"] = true
	case TicketTarget:
		fields["ticket"] = t.Ticket.ID
		if err := s.work.AddTimeToTicket(ctx, t.Ticket.ID, d, req.Comment); err != nil {
			return nil, fmt.Errorf("adding time to ticket %s: %w", t.Ticket.ID, err)
		}
	case CategoryTarget:
		fields["category"] = t.Category
		if err := s.work.AddTimeToCategory(ctx, t.Category, d, req.Comment); err != nil {
			return nil, fmt.Errorf("adding time to category %s: %w", t.Category, err)
		}
	default:
		return nil, fmt.Errorf("unexpected resolution %T", target)
	}

	return &TrackResult{Duration: d, Target: target}, nil
}
