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

func newStdChgCmd(app *App) *cobra.Command {
	var search, bin, templateID string

	cmd := &cobra.Command{
		Use:   "stdchg",
		Short: "Create a standard change from a template",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, svc, err := app.loadConfig()
			if err != nil {
				return err
			}

			res, err := svc.StdChg.Create(ctx, service.StdChgRequest{
				Search:     search,
				TemplateID: templateID,
				Bin:        domain.CoalesceStr(bin, cfg.Bin),
			})
			if err != nil {
				return classify(err)
			}

			out := cmd.OutOrStdout()
			if res.Cancelled {
				fmt.Fprint(out, formatter.FormatCancelled("no change created"))
				return nil
			}
			app.logger().WithField("template_id", res.TemplateID).Debug("selected template")
			fmt.Fprint(out, formatter.FormatCreatedChange(res.ChangeID, servicenow.ChangeLink(cfg.SNInstance, res.ChangeID)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&search, "search", "s", "", "Search standard change templates by name")
	f.StringVarP(&bin, "bin", "b", "", "Override the configured bin")
	f.StringVar(&templateID, "template-id", "", "Template sys_id to use without searching")
	cmd.MarkFlagsOneRequired("search", "template-id")

	return cmd
}
