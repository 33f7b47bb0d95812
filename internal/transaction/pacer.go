package transaction

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// PacerConfig carries the three timing knobs spec §4.4 requires.
type PacerConfig struct {
	IdleBeforeTxMs  int
	InterFrameMs    int
	InterByteMs     int
}

func DefaultPacerConfig() PacerConfig {
	return PacerConfig{IdleBeforeTxMs: 40, InterFrameMs: 50, InterByteMs: 0}
}

// Pacer enforces bus-quiet and inter-frame spacing before a transmit is
// allowed. InterByteMs is used only by TransmitDuration; frames are not
// throttled byte by byte when written.
// The inter-frame gap is modeled as a token-bucket rate limiter sized so
// exactly one transmit is admitted per InterFrameMs window; the idle check
// is left to the caller (the Port's own Idle() signal), since "bus quiet"
// is a property of the transport, not the pacer.
type Pacer struct {
	cfg     PacerConfig
	limiter *rate.Limiter
}

func NewPacer(cfg PacerConfig) *Pacer {
	interval := time.Duration(cfg.InterFrameMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Pacer{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until both the inter-frame limiter and the idle predicate
// admit a transmit.
func (p *Pacer) Wait(ctx context.Context, idle func() bool) error {
	for !idle() {
		if err := sleepOrCancel(ctx, time.Duration(p.cfg.IdleBeforeTxMs)*time.Millisecond/4); err != nil {
			return err
		}
	}
	return p.limiter.Wait(ctx)
}

// TransmitDuration returns how long sending payloadBytes should take under
// InterByteMs throttling, excluding encoding overhead; spec §8 uses this as
// a direct boundary-behavior test of the pacer.
func (p *Pacer) TransmitDuration(payloadBytes int) time.Duration {
	return time.Duration(payloadBytes*p.cfg.InterByteMs) * time.Millisecond
}

func sleepOrCancel(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
