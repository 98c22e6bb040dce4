package service

import (
	"context"
	"fmt"
	"time"

	"github.com/elasticnow/elasticnow/internal/config"
)

type setupService struct {
	work     WorkSystem
	saver    ConfigSaver
	observer UseCaseObserver
}

// NewSetupService wires setup. work must already be built from the
// credentials being saved.
func NewSetupService(work WorkSystem, saver ConfigSaver, observers ...UseCaseObserver) SetupService {
	return &setupService{work: work, saver: saver, observer: useCaseObserverOrNoop(observers)}
}

// Setup fills an empty Bin from the user's default group, then saves cfg.
// Nothing is written if the lookup fails.
func (s *setupService) Setup(ctx context.Context, cfg *config.Config) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.observer, "setup", start, err, map[string]any{"user": cfg.SNUsername}) }()

	if cfg.Bin == "" {
		group, err := s.work.UserGroup(ctx, cfg.SNUsername)
		if err != nil {
			return fmt.Errorf("getting user group: %w", err)
		}
		cfg.Bin = group
	}
	if err := s.saver.Save(cfg); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	return nil
}
