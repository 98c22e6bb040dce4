package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/report"
)

const shareBarWidth = 12

// ReportView is what the report screen needs besides the aggregate itself.
type ReportView struct {
	User      string
	Range     domain.DateRange
	Threshold time.Duration
	Report    *report.Report
}

// FormatReport renders the per-group table smallest first with a colored
// HH:MM:SS total.
func FormatReport(v ReportView) string {
	var b strings.Builder

	b.WriteString(Header(fmt.Sprintf("Time worked %s", v.User)))
	b.WriteString("\n")
	b.WriteString(KeyValue("range", v.Range.String()))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(v.Report.Groups))
	for _, g := range v.Report.Groups {
		label := g.Label
		if label == report.OtherLabel {
			label = Dim(label)
		}
		rows = append(rows, []string{label, report.FormatHMS(g.Seconds), RenderShare(g.Seconds, v.Report.Total, shareBarWidth)})
	}

	tier := report.TierFor(v.Report.Total, v.Threshold)
	total := TierStyle(tier).Render(report.FormatHMS(v.Report.Total))

	b.WriteString(Table{
		Headers: []string{"GROUP", "TIME", "SHARE"},
		Rows:    rows,
		Footer:  []string{Bold("Total"), total},
		Align:   []Align{AlignLeft, AlignRight, AlignLeft},
	}.Render())

	if tier == report.TierWarning {
		hours := int(v.Threshold.Hours())
		if hours <= 0 {
			hours = int(report.DefaultWarnThreshold.Hours())
		}
		b.WriteString(TierIndicator(tier, hours))
		b.WriteString("\n")
	}
	return b.String()
}
