package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/talenthr/talenthr/internal/auth"
	"github.com/talenthr/talenthr/internal/services"
	"github.com/talenthr/talenthr/pkg/logger"
)

const (
	defaultSessionSpec = "@hourly"
	defaultOTPSpec     = "@hourly"
	defaultInviteSpec  = "@daily"
)

// Cleaner coordinates background maintenance: purging expired sessions,
// removing dead one-time codes and settling overdue invitations.
type Cleaner struct {
	sessions    *iauth.SessionService
	otps        *services.OTPService
	invitations *services.InvitationService
	cron        *cron.Cron
	log         *zap.Logger
	enabled     bool

	sessionSchedule string
	otpSchedule     string
	inviteSchedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithOTPSchedule overrides the cron specification for one-time code purging.
func WithOTPSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.otpSchedule = spec
		}
	}
}

// WithInviteSchedule overrides the cron specification for the invitation sweep.
func WithInviteSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.inviteSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding job being skipped.
func NewCleaner(sessions *iauth.SessionService, otps *services.OTPService, invitations *services.InvitationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:        sessions,
		otps:            otps,
		invitations:     invitations,
		sessionSchedule: defaultSessionSpec,
		otpSchedule:     defaultOTPSpec,
		inviteSchedule:  defaultInviteSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.sessions != nil || cleaner.otps != nil || cleaner.invitations != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one job is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			if _, err := c.sessions.CleanupExpired(context.Background()); err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.otps != nil {
		if _, err := c.cron.AddFunc(c.otpSchedule, func() {
			if _, err := c.otps.PurgeExpired(context.Background()); err != nil {
				c.log.Warn("otp purge failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.invitations != nil {
		if _, err := c.cron.AddFunc(c.inviteSchedule, func() {
			if _, err := c.invitations.SweepExpired(context.Background()); err != nil {
				c.log.Warn("invitation sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.otps != nil {
		if _, err := c.otps.PurgeExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.invitations != nil {
		if _, err := c.invitations.SweepExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
