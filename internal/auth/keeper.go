// Package auth keeps the ticket-index session valid, re-running the browser
// login when the stored session has expired.
package auth

import (
	"context"
	"fmt"

	"github.com/elasticnow/elasticnow/internal/config"
	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/sirupsen/logrus"
)

// SessionIndex is the part of the ticket-index client the keeper drives.
type SessionIndex interface {
	CheckAuth(ctx context.Context) error
	SetSession(session string)
	LoginURL(port int) string
}

// SessionSource obtains a fresh session interactively.
type SessionSource interface {
	ObtainSession(ctx context.Context, loginURL func(port int) string) (string, error)
}

// ConfigSaver persists the config after the session changes.
type ConfigSaver interface {
	Save(cfg *config.Config) error
}

// Keeper implements the probe, login, re-probe sequence. It performs at most
// one login per call.
type Keeper struct {
	index  SessionIndex
	source SessionSource
	cfg    *config.Config
	saver  ConfigSaver
	log    logrus.FieldLogger
}

// NewKeeper wires a Keeper. cfg is updated in place with the new session.
func NewKeeper(index SessionIndex, source SessionSource, cfg *config.Config, saver ConfigSaver, log logrus.FieldLogger) *Keeper {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Keeper{index: index, source: source, cfg: cfg, saver: saver, log: log}
}

// EnsureAuthenticated returns nil when the index accepts the current
// session, either immediately or after one browser login.
func (k *Keeper) EnsureAuthenticated(ctx context.Context) error {
	err := k.index.CheckAuth(ctx)
	if err == nil {
		return nil
	}
	k.log.WithError(err).Warn("ticket index session rejected, starting browser login")

	session, err := k.source.ObtainSession(ctx, k.index.LoginURL)
	if err != nil {
		return &domain.AuthError{Err: fmt.Errorf("browser login: %w", err)}
	}
	k.index.SetSession(session)

	if err := k.index.CheckAuth(ctx); err != nil {
		k.log.WithError(err).Error("login attempt failed")
		return &domain.AuthError{Err: err}
	}

	k.cfg.ID = session
	if err := k.saver.Save(k.cfg); err != nil {
		return fmt.Errorf("saving refreshed session: %w", err)
	}
	k.log.Debug("ticket index session refreshed")
	return nil
}
