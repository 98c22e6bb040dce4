package cli

import (
	"io"
	"strings"
	"time"

	"github.com/elasticnow/elasticnow/internal/cli/formatter"
	"github.com/elasticnow/elasticnow/internal/config"
	"github.com/elasticnow/elasticnow/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ConfigStore loads and saves the config file.
type ConfigStore interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// Services are the use cases built from one loaded config.
type Services struct {
	Timetrack service.TimetrackService
	Report    service.ReportService
	StdChg    service.StdChgService
	Setup     service.SetupService
}

// App holds everything the commands need. Build is called once per
// command after the config is known, so the backends always see the
// config that command runs with.
type App struct {
	Store      ConfigStore
	ConfigPath string
	Build      func(cfg *config.Config) *Services
	Log        logrus.FieldLogger

	Now           func() time.Time
	IsInteractive func() bool
	ReadPassword  func() (string, error)
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

// spin starts a spinner on w when a terminal is attached.
func (a *App) spin(w io.Writer, message string) func() {
	if !a.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(w, message)
}

// NewRootCmd creates the top-level "elasticnow" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "elasticnow",
		Short:         "ElasticNow time tracking CLI",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logFlags(app.logger(), cmd)
		},
	}

	root.AddCommand(
		newTimetrackCmd(app),
		newReportCmd(app),
		newStdChgCmd(app),
		newSetupCmd(app),
	)

	return root
}

// loadConfig reads the config and builds the command's services.
func (a *App) loadConfig() (*config.Config, *Services, error) {
	cfg, err := a.Store.Load()
	if err != nil {
		return nil, nil, runtimeErr(err)
	}
	return cfg, a.Build(cfg), nil
}

var secretFlags = map[string]bool{"sn-password": true, "id": true}

func logFlags(log logrus.FieldLogger, cmd *cobra.Command) {
	fields := logrus.Fields{"command": cmd.Name()}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		v := f.Value.String()
		if secretFlags[f.Name] {
			v = strings.Repeat("*", min(len(v), 8))
		}
		fields["flag_"+f.Name] = v
	})
	log.WithFields(fields).Debug("flags")
}
