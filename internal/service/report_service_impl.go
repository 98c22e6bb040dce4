package service

import (
	"context"
	"fmt"
	"time"

	"github.com/elasticnow/elasticnow/internal/report"
)

// DefaultTop is how many groups a report shows before folding into Other.
const DefaultTop = 10

type reportService struct {
	work     WorkSystem
	observer UseCaseObserver
}

func NewReportService(work WorkSystem, observers ...UseCaseObserver) ReportService {
	return &reportService{work: work, observer: useCaseObserverOrNoop(observers)}
}

func (s *reportService) Build(ctx context.Context, req ReportRequest) (rep *report.Report, err error) {
	start := time.Now()
	defer func() {
		observe(ctx, s.observer, "report", start, err, map[string]any{"user": req.User, "range": req.Range.String()})
	}()

	if err := req.Range.Validate(); err != nil {
		return nil, err
	}

	entries, err := s.work.TimeEntries(ctx, req.Range, req.User)
	if err != nil {
		return nil, fmt.Errorf("getting time worked: %w", err)
	}
	return report.Aggregate(ctx, entries, req.Top, s.work)
}
