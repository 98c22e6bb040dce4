package cli

import (
	"context"
	"fmt"

	"github.com/elasticnow/elasticnow/internal/cli/formatter"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/service"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var (
		user, since, until string
		top                int
		today              bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise time worked by cost center and category",
		Long: `Summarise time worked over a date range, grouped by the cost center of
each ticket or by category for time logged without one. The range defaults
to Monday of the current week through today.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if top < 1 {
				return usageErr(fmt.Errorf("--top must be at least 1, got %d", top))
			}
			cfg, svc, err := app.loadConfig()
			if err != nil {
				return err
			}

			now := app.now()
			if today {
				since = domain.Today(now)
			}
			rng := domain.DateRange{
				Since: domain.CoalesceStr(since, domain.WeekStart(now)),
				Until: domain.CoalesceStr(until, domain.Today(now)),
			}
			user = domain.CoalesceStr(user, cfg.SNUsername)

			stop := app.spin(cmd.ErrOrStderr(), "Fetching time worked...")
			rep, err := svc.Report.Build(ctx, service.ReportRequest{User: user, Range: rng, Top: top})
			stop()
			if err != nil {
				return classify(err)
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReport(formatter.ReportView{
				User:      user,
				Range:     rng,
				Threshold: cfg.WarnThreshold(),
				Report:    rep,
			}))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&user, "user", "u", "", "ServiceNow user to report on (defaults to the configured user)")
	f.StringVar(&since, "since", "", "First day, YYYY-M-D (defaults to this week's Monday)")
	f.StringVar(&until, "until", "", "Last day, YYYY-M-D (defaults to today)")
	f.IntVar(&top, "top", service.DefaultTop, "Groups to show before folding the rest into Other")
	f.BoolVar(&today, "today", false, "Report on today only")
	cmd.MarkFlagsMutuallyExclusive("today", "since")

	return cmd
}
