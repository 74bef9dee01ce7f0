package process

import (
	"context"
	stderrors "errors"
	"io/fs"
	"math"
	"math/rand/v2"
	"os/exec"
	"sync"
	"time"

	"github.com/kbukum/shellwrap/errors"
	"github.com/kbukum/shellwrap/logger"
)

// ErrCircuitOpen is returned while a Runner's breaker rejects calls.
var ErrCircuitOpen = stderrors.New("process: circuit breaker is open")

// RetryPolicy configures how a Runner re-invokes a failing command.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`
	// InitialBackoff is the initial delay between retries.
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	// MaxBackoff is the maximum delay between retries.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64 `yaml:"backoff_factor" mapstructure:"backoff_factor"`
	// Jitter adds randomness to backoff (0.0 to 1.0).
	Jitter float64 `yaml:"jitter" mapstructure:"jitter" validate:"gte=0,lte=1"`
	// RetryIf decides whether an error is worth another attempt.
	RetryIf func(error) bool `yaml:"-" mapstructure:"-"`
}

// BreakerPolicy configures a Runner's circuit breaker.
type BreakerPolicy struct {
	// MaxFailures is the number of consecutive failed attempts that opens
	// the circuit.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures" validate:"gte=0"`
	// Cooldown is how long the circuit stays open before one trial call is
	// let through.
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
}

// RunnerConfig selects the resilience layers of a Runner. Nil layers are
// skipped; an empty config makes Runner.Run equivalent to Run.
type RunnerConfig struct {
	Retry   *RetryPolicy   `yaml:"retry" mapstructure:"retry"`
	Breaker *BreakerPolicy `yaml:"breaker" mapstructure:"breaker"`
}

// DefaultRetryIf retries failed runs but not cancellation or creation
// errors, which another attempt cannot fix.
func DefaultRetryIf(err error) bool {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return false
	case stderrors.Is(err, exec.ErrNotFound), stderrors.Is(err, fs.ErrNotExist), stderrors.Is(err, fs.ErrPermission):
		return false
	case stderrors.Is(err, ErrCircuitOpen):
		return false
	}
	return true
}

// Runner executes commands through optional retry and circuit breaker
// layers. Breaker state persists across calls, so repeated crashes trip it.
// Runner is safe for concurrent use.
type Runner struct {
	retry   *RetryPolicy
	breaker *BreakerPolicy

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool
	trial    bool
}

// NewRunner creates a Runner with the given config.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{}
	if cfg.Retry != nil {
		p := *cfg.Retry
		if p.MaxAttempts <= 0 {
			p.MaxAttempts = 3
		}
		if p.InitialBackoff <= 0 {
			p.InitialBackoff = 100 * time.Millisecond
		}
		if p.MaxBackoff <= 0 {
			p.MaxBackoff = 10 * time.Second
		}
		if p.BackoffFactor <= 0 {
			p.BackoffFactor = 2.0
		}
		if p.RetryIf == nil {
			p.RetryIf = DefaultRetryIf
		}
		r.retry = &p
	}
	if cfg.Breaker != nil {
		p := *cfg.Breaker
		if p.MaxFailures <= 0 {
			p.MaxFailures = 5
		}
		if p.Cooldown <= 0 {
			p.Cooldown = 30 * time.Second
		}
		r.breaker = &p
	}
	return r
}

// Run executes cmd, retrying according to the retry policy. The last
// attempt's Result and error are returned.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if r == nil {
		return Run(ctx, cmd)
	}
	attempts := 1
	if r.retry != nil {
		attempts = r.retry.MaxAttempts
	}

	var result *Result
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}

		result, err = r.attempt(ctx, cmd)
		if err == nil {
			return result, nil
		}
		if r.retry == nil || attempt == attempts || !r.retry.RetryIf(err) {
			break
		}

		backoff := r.backoff(attempt)
		logger.Get(loggerName).Debug("retrying command", logger.Fields(
			logger.FieldBinary, cmd.Binary,
			logger.FieldAttempt, attempt,
			"backoff", backoff.String(),
			logger.FieldError, err.Error(),
		))
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	if stderrors.Is(err, ErrCircuitOpen) {
		return result, errors.ServiceUnavailable(cmd.Binary).WithCause(err)
	}
	return result, err
}

// RunWithRunner is a convenience for one-shot execution through runner.
// A nil runner runs cmd directly.
func RunWithRunner(ctx context.Context, cmd Command, runner *Runner) (*Result, error) {
	if runner == nil {
		return Run(ctx, cmd)
	}
	return runner.Run(ctx, cmd)
}

func (r *Runner) attempt(ctx context.Context, cmd Command) (*Result, error) {
	if !r.allow() {
		return nil, ErrCircuitOpen
	}
	result, err := Run(ctx, cmd)
	r.record(err)
	return result, err
}

func (r *Runner) allow() bool {
	if r.breaker == nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return true
	}
	if time.Since(r.openedAt) < r.breaker.Cooldown || r.trial {
		return false
	}
	r.trial = true
	return true
}

func (r *Runner) record(err error) {
	if r.breaker == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		r.failures, r.open, r.trial = 0, false, false
		return
	}
	r.failures++
	if r.trial || r.failures >= r.breaker.MaxFailures {
		if !r.open {
			logger.Get(loggerName).Warn("circuit opened", logger.Fields("failures", r.failures))
		}
		r.open, r.trial = true, false
		r.openedAt = time.Now()
	}
}

// backoff returns initial * factor^(attempt-1) with jitter, capped at MaxBackoff.
func (r *Runner) backoff(attempt int) time.Duration {
	p := r.retry
	d := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if p.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * p.Jitter
	}
	if d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	if d < 0 {
		d = float64(p.InitialBackoff)
	}
	return time.Duration(d)
}
