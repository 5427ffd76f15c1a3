package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/robfig/cron/v3"

	"TopstepSentinel/internal/collector"
	"TopstepSentinel/internal/model"
	"TopstepSentinel/internal/notifier"
)

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// CredentialSource exposes the current session token for /status.
type CredentialSource interface {
	Credential() (model.Credential, bool)
}

// Scheduler manages the daily cron task and chat commands.
type Scheduler struct {
	Cron        *cron.Cron
	Collector   *collector.Collector
	Notifier    Sender
	Credentials CredentialSource
	Ctx         context.Context

	logger glog.Logger
	now    func() time.Time
}

// NewScheduler creates a new Scheduler running in loc. A nil notifier keeps
// reports in the log only.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, creds CredentialSource, loc *time.Location, logger glog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = glog.Nop()
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Collector:   col,
		Notifier:    sender,
		Credentials: creds,
		Ctx:         ctx,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RegisterDaily registers the daily bar report.
func (s *Scheduler) RegisterDaily(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	s.logger.Info("daily task registered", "cron", spec)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunDailyNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	s.logger.Info("running daily task", "symbol", s.Collector.Symbol)
	s.trySend(s.report(s.Ctx, ""))
}

func (s *Scheduler) report(ctx context.Context, symbol string) string {
	snap, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		if symbol == "" {
			symbol = s.Collector.Symbol
		}
		s.logger.Error("daily collect failed", "symbol", symbol, "error", err)
		return notifier.FormatError(strings.ToUpper(strings.TrimSpace(symbol)), err)
	}
	return notifier.FormatDailyBar(snap)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp(s.Collector.Symbol)
	}
	// Telegram appends @botname in group chats.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/bar":
		symbol := ""
		if len(fields) > 1 {
			symbol = fields[1]
		}
		return s.report(ctx, symbol)
	case "/status":
		if s.Credentials == nil {
			return notifier.FormatCredentialStatus(model.Credential{}, s.now())
		}
		cred, _ := s.Credentials.Credential()
		return notifier.FormatCredentialStatus(cred, s.now())
	default:
		return notifier.FormatHelp(s.Collector.Symbol)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		s.logger.Info("report", "text", text)
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error("send notification failed", "error", err)
	}
}
