package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/elasticnow/elasticnow/internal/cli/formatter"
	"github.com/elasticnow/elasticnow/internal/config"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/spf13/cobra"
)

func newSetupCmd(app *App) *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the config file",
		Long: `Create the config file. Every value can also come from the environment
(ELASTICNOW_ID, ELASTICNOW_INSTANCE, SN_INSTANCE, SN_USERNAME, SN_PASSWORD),
including a .env file in the working directory. When --bin is omitted the
user's default ServiceNow group is used. The optional sn_base_url, max_hours
and warn_hours keys of an existing config are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := fillSetupConfig(app, &cfg); err != nil {
				return err
			}
			keepTuning(app, &cfg)

			svc := app.Build(&cfg)
			if err := svc.Setup.Setup(ctx, &cfg); err != nil {
				return classify(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSetupDone(app.ConfigPath, cfg.Bin))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ID, "id", "", "The ElasticNow ID (retrieved from the ElasticNow instance) [$ELASTICNOW_ID]")
	f.StringVar(&cfg.Instance, "instance", "", "The ElasticNow instance URL [$ELASTICNOW_INSTANCE]")
	f.StringVar(&cfg.SNInstance, "sn-instance", "", "The ServiceNow instance name, e.g. dev123 [$SN_INSTANCE]")
	f.StringVar(&cfg.SNUsername, "sn-username", "", "The ServiceNow username [$SN_USERNAME]")
	f.StringVar(&cfg.SNPassword, "sn-password", "", "The ServiceNow password [$SN_PASSWORD]")
	f.StringVarP(&cfg.Bin, "bin", "b", "", "Default bin (defaults to the user's assigned group)")

	return cmd
}

// fillSetupConfig applies environment fallbacks and checks every required
// value is present. A missing password is read from the terminal when one
// is attached.
func fillSetupConfig(app *App, cfg *config.Config) error {
	cfg.ID = domain.CoalesceStr(cfg.ID, os.Getenv("ELASTICNOW_ID"))
	cfg.Instance = domain.CoalesceStr(cfg.Instance, os.Getenv("ELASTICNOW_INSTANCE"))
	cfg.SNInstance = domain.CoalesceStr(cfg.SNInstance, os.Getenv("SN_INSTANCE"))
	cfg.SNUsername = domain.CoalesceStr(cfg.SNUsername, os.Getenv("SN_USERNAME"))
	cfg.SNPassword = domain.CoalesceStr(cfg.SNPassword, os.Getenv("SN_PASSWORD"))

	if cfg.SNPassword == "" && app.interactive() && app.ReadPassword != nil {
		pw, err := app.ReadPassword()
		if err != nil {
			return runtimeErr(fmt.Errorf("reading password: %w", err))
		}
		cfg.SNPassword = pw
	}

	var errs []error
	for _, req := range []struct{ flag, env, val string }{
		{"id", "ELASTICNOW_ID", cfg.ID},
		{"instance", "ELASTICNOW_INSTANCE", cfg.Instance},
		{"sn-instance", "SN_INSTANCE", cfg.SNInstance},
		{"sn-username", "SN_USERNAME", cfg.SNUsername},
		{"sn-password", "SN_PASSWORD", cfg.SNPassword},
	} {
		if req.val == "" {
			errs = append(errs, fmt.Errorf("--%s or $%s is required", req.flag, req.env))
		}
	}
	if len(errs) > 0 {
		return usageErr(errors.Join(errs...))
	}
	return nil
}

// keepTuning carries the optional keys of an existing config into cfg. An
// unreadable file is replaced as if it did not exist.
func keepTuning(app *App, cfg *config.Config) {
	prev, err := app.Store.Load()
	if err != nil {
		if !errors.Is(err, config.ErrNotFound) {
			app.logger().WithError(err).Warn("existing config unreadable, replacing it")
		}
		return
	}
	cfg.SNBaseURL = prev.SNBaseURL
	cfg.MaxHours = prev.MaxHours
	cfg.WarnHours = prev.WarnHours
}
