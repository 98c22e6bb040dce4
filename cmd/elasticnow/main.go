package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/elasticnow/elasticnow/internal/auth"
	"github.com/elasticnow/elasticnow/internal/cli"
	"github.com/elasticnow/elasticnow/internal/config"
	"github.com/elasticnow/elasticnow/internal/elasticnow"
	"github.com/elasticnow/elasticnow/internal/service"
	"github.com/elasticnow/elasticnow/internal/servicenow"
	"github.com/elasticnow/elasticnow/internal/telemetry"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; a broken one is worth knowing about.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: loading .env: %v\n", err)
		return cli.ExitUsage
	}

	logger := newLogger()
	log := logger.WithField("invocation", uuid.NewString())

	path, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: locating config: %v\n", err)
		return cli.ExitRuntime
	}

	metrics := telemetry.NewMetricsObserver()
	calls := telemetry.Multi{telemetry.NewLogObserver(log), metrics}
	useCases := service.NewLogUseCaseObserver(log)

	interactive := func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	store := config.Store{Path: path}
	prompt := cli.NewHuhPrompter(interactive)

	app := &cli.App{
		Store:         store,
		ConfigPath:    path,
		Log:           log,
		IsInteractive: interactive,
		ReadPassword:  readPassword,
		Build: func(cfg *config.Config) *cli.Services {
			work := servicenow.NewClient(servicenow.Config{
				Instance: cfg.SNInstance,
				BaseURL:  cfg.SNBaseURL,
				Username: cfg.SNUsername,
				Password: cfg.SNPassword,
			}, calls)
			index := elasticnow.NewClient(cfg.Instance, cfg.ID, calls)
			keeper := auth.NewKeeper(index, auth.NewBrowserLogin(os.Stderr, log), cfg, store, log)
			resolver := service.NewTicketResolver(index, keeper, work, prompt, log)

			return &cli.Services{
				Timetrack: service.NewTimetrackService(resolver, work, cfg.HourCeiling(), useCases),
				Report:    service.NewReportService(work, useCases),
				StdChg:    service.NewStdChgService(work, prompt, useCases),
				Setup:     service.NewSetupService(work, store, useCases),
			}
		},
	}

	err = cli.NewRootCmd(app).Execute()

	if p := os.Getenv("ELASTICNOW_METRICS_FILE"); p != "" {
		if werr := metrics.WriteTextfile(p); werr != nil {
			log.WithError(werr).Warn("writing metrics textfile")
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return cli.ExitCode(err)
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(os.Getenv("ELASTICNOW_LOG_LEVEL"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(os.Getenv("ELASTICNOW_LOG_FORMAT"), "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return logger
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "ServiceNow password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
