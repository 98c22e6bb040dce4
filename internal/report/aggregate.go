// Package report folds time-worked records into ranked per-label totals.
package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/elasticnow/elasticnow/internal/domain"
)

// OtherLabel names the bucket that collects groups ranked below the top N.
const OtherLabel = "Other"

// CostCenterLookup resolves a batch of ticket ids to cost centers. Ids with no
// cost center are simply absent from the result.
type CostCenterLookup interface {
	CostCenters(ctx context.Context, ticketIDs []string) ([]domain.CostCenter, error)
}

// Group is one labelled line of a report.
type Group struct {
	Label   string
	Seconds int64
}

// Report is the aggregated result. Total counts every input entry, including
// tickets whose cost center could not be resolved, so it can exceed the sum
// of Groups.
type Report struct {
	Groups []Group
	Total  int64
}

// Aggregate groups entries by category nice name or ticket cost center,
// keeps the top largest groups and folds the rest into Other. Groups are
// returned smallest first.
func Aggregate(ctx context.Context, entries []domain.TimeEntry, top int, lookup CostCenterLookup) (*Report, error) {
	byLabel := make(map[string]int64)
	byTicket := make(map[string]int64)
	var total int64

	for _, e := range entries {
		total += e.Seconds
		if e.OnTicket() {
			byTicket[e.TicketID] += e.Seconds
			continue
		}
		byLabel[domain.CategoryNiceName(e.Category)] += e.Seconds
	}

	if len(byTicket) > 0 {
		ids := make([]string, 0, len(byTicket))
		for id := range byTicket {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		centers, err := lookup.CostCenters(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolving cost centers: %w", err)
		}
		seen := make(map[string]bool, len(centers))
		for _, cc := range centers {
			secs, ok := byTicket[cc.TicketID]
			if !ok || seen[cc.TicketID] {
				continue
			}
			seen[cc.TicketID] = true
			byLabel[cc.Name] += secs
		}
	}

	return &Report{Groups: rank(byLabel, top), Total: total}, nil
}

// rank keeps the top largest groups, sums the remainder into Other and
// returns the survivors in ascending order. Ties break on label, except that
// Other sorts after any group with the same seconds. A real group already
// named Other absorbs the overflow so the label appears once.
func rank(byLabel map[string]int64, top int) []Group {
	groups := make([]Group, 0, len(byLabel))
	for label, secs := range byLabel {
		groups = append(groups, Group{Label: label, Seconds: secs})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Seconds != groups[j].Seconds {
			return groups[i].Seconds > groups[j].Seconds
		}
		return groups[i].Label < groups[j].Label
	})

	if top < 0 {
		top = 0
	}
	if top < len(groups) {
		var overflow int64
		for _, g := range groups[top:] {
			overflow += g.Seconds
		}
		groups = groups[:top]
		if overflow > 0 {
			groups = addToOther(groups, overflow)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Seconds != b.Seconds {
			return a.Seconds < b.Seconds
		}
		if (a.Label == OtherLabel) != (b.Label == OtherLabel) {
			return b.Label == OtherLabel
		}
		return a.Label < b.Label
	})
	return groups
}

func addToOther(groups []Group, secs int64) []Group {
	for i := range groups {
		if groups[i].Label == OtherLabel {
			groups[i].Seconds += secs
			return groups
		}
	}
	return append(groups, Group{Label: OtherLabel, Seconds: secs})
}
