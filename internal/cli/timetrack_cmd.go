package cli

import (
	"context"
	"fmt"

	"github.com/elasticnow/elasticnow/internal/cli/formatter"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/service"
	"github.com/elasticnow/elasticnow/internal/servicenow"
	"github.com/spf13/cobra"
)

func newTimetrackCmd(app *App) *cobra.Command {
	var (
		newTicket, all, noTicket bool
		search, comment, worked  string
		bin                      string
	)

	cmd := &cobra.Command{
		Use:   "timetrack",
		Short: "Run time tracking options utilizing ElasticNow and ServiceNow",
		Example: `  elasticnow timetrack -s printer -c "cleared jam" -t 1h30m
  elasticnow timetrack --no-tkt -c "team meeting" -t 45m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, svc, err := app.loadConfig()
			if err != nil {
				return err
			}

			req := service.TrackRequest{
				TimeWorked: worked,
				Comment:    comment,
				Target: service.ResolveRequest{
					Mode:    trackMode(newTicket, cmd.Flags().Changed("search"), all, noTicket),
					Keyword: search,
					Bin:     domain.CoalesceStr(bin, cfg.Bin),
				},
			}
			res, err := svc.Timetrack.Track(ctx, req)
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			switch t := res.Target.(type) {
			case service.Cancelled:
				fmt.Fprint(out, formatter.FormatCancelled("no time recorded"))
			case service.CategoryTarget:
				fmt.Fprint(out, formatter.FormatTracked(res.Duration.String(), ""))
			case service.TicketTarget:
				if t.Created {
					fmt.Fprint(out, formatter.FormatCreatedTicket(servicenow.RequestItemLink(cfg.SNInstance, t.Ticket.ID)))
				}
				app.logger().WithField("sys_id", t.Ticket.ID).Debug("added time")
				fmt.Fprint(out, formatter.FormatTracked(res.Duration.String(), servicenow.TaskLink(cfg.SNInstance, t.Ticket.ID)))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&newTicket, "new", "n", false, "Create a new ticket instead of updating an existing one")
	f.StringVarP(&search, "search", "s", "", "Keyword search using ElasticNow (empty lists the whole bin)")
	f.BoolVarP(&all, "all", "a", false, "Choose from every active ticket in the bin")
	f.BoolVar(&noTicket, "no-tkt", false, "Track time against a category instead of a ticket")
	f.StringVarP(&comment, "comment", "c", "", "Comment for time tracking")
	f.StringVarP(&worked, "time-worked", "t", "", "Time worked as 1h1m, 2h or 45m")
	f.StringVarP(&bin, "bin", "b", "", "Override the configured bin")
	_ = cmd.MarkFlagRequired("comment")
	_ = cmd.MarkFlagRequired("time-worked")
	cmd.MarkFlagsMutuallyExclusive("new", "search", "all", "no-tkt")
	cmd.MarkFlagsOneRequired("new", "search", "all", "no-tkt")

	return cmd
}

// trackMode maps the mutually exclusive flags to a resolve mode. Cobra has
// already checked exactly one is set.
func trackMode(newTicket, search, all, noTicket bool) service.Mode {
	switch {
	case newTicket:
		return service.ModeCreate
	case search:
		return service.ModeSearch
	case all:
		return service.ModeAll
	case noTicket:
		return service.ModeNoTicket
	}
	return 0
}
