package store

import (
	"context"
	"log"
	"time"
)

// Syncer is the remote key-value sync surface Fallback depends on.
// remote.Client implements it.
type Syncer interface {
	GetPrizes(ctx context.Context) ([]Prize, error)
	PutPrizes(ctx context.Context, prizes []Prize) error
	GetDraws(ctx context.Context) ([]Draw, error)
	AppendDraw(ctx context.Context, draw Draw) error
	PutDraws(ctx context.Context, draws []Draw) error
}

// Fallback composes a remote sync service with a local store. Reads prefer the
// remote copy and fall back to local when the remote is unreachable; writes
// always land locally and are mirrored to the remote best-effort, so losing
// the remote never loses data or blocks the wheel.
type Fallback struct {
	local   Store
	remote  Syncer
	timeout time.Duration
	logger  *log.Logger
}

// NewFallback wraps the local store with remote sync. A nil logger falls back
// to the default logger.
func NewFallback(local Store, remote Syncer, timeout time.Duration, logger *log.Logger) *Fallback {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{
		local:   local,
		remote:  remote,
		timeout: timeout,
		logger:  logger,
	}
}

// Close closes the local store.
func (f *Fallback) Close() error { return f.local.Close() }

// Migrate migrates the local store.
func (f *Fallback) Migrate() error { return f.local.Migrate() }

// ListPrizes returns the remote prize list when reachable, refreshing the
// local mirror; otherwise the local copy.
func (f *Fallback) ListPrizes() ([]Prize, error) {
	ctx, cancel := f.ctx()
	defer cancel()

	prizes, err := f.remote.GetPrizes(ctx)
	if err != nil {
		f.logger.Printf("remote_prizes_unavailable fallback=local error=%q", err)
		return f.local.ListPrizes()
	}
	if err := f.local.ReplacePrizes(prizes); err != nil {
		f.logger.Printf("local_prize_mirror_failed error=%q", err)
	}
	return prizes, nil
}

// ReplacePrizes writes locally, then mirrors to the remote best-effort.
func (f *Fallback) ReplacePrizes(prizes []Prize) error {
	if err := f.local.ReplacePrizes(prizes); err != nil {
		return err
	}
	ctx, cancel := f.ctx()
	defer cancel()
	if err := f.remote.PutPrizes(ctx, prizes); err != nil {
		f.logger.Printf("remote_prize_push_failed error=%q", err)
	}
	return nil
}

// ResetPrizes restores defaults locally and pushes them to the remote.
func (f *Fallback) ResetPrizes() ([]Prize, error) {
	prizes, err := f.local.ResetPrizes()
	if err != nil {
		return nil, err
	}
	ctx, cancel := f.ctx()
	defer cancel()
	if err := f.remote.PutPrizes(ctx, prizes); err != nil {
		f.logger.Printf("remote_prize_push_failed error=%q", err)
	}
	return prizes, nil
}

// AppendDraw records the draw locally, then mirrors it to the remote.
func (f *Fallback) AppendDraw(draw *Draw) error {
	if err := f.local.AppendDraw(draw); err != nil {
		return err
	}
	ctx, cancel := f.ctx()
	defer cancel()
	if err := f.remote.AppendDraw(ctx, *draw); err != nil {
		f.logger.Printf("remote_draw_push_failed draw_id=%s error=%q", draw.ID, err)
	}
	return nil
}

// ListDraws pages the remote history when reachable, otherwise local.
func (f *Fallback) ListDraws(limit, offset int) (*DrawsPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := f.ctx()
	defer cancel()

	draws, err := f.remote.GetDraws(ctx)
	if err != nil {
		f.logger.Printf("remote_draws_unavailable fallback=local error=%q", err)
		return f.local.ListDraws(limit, offset)
	}

	page := &DrawsPage{
		Draws:      []Draw{},
		TotalCount: len(draws),
		Limit:      limit,
		Offset:     offset,
	}
	if offset < len(draws) {
		end := offset + limit
		if end > len(draws) {
			end = len(draws)
		}
		page.Draws = draws[offset:end]
	}
	return page, nil
}

// ClearDraws empties both the local and remote history.
func (f *Fallback) ClearDraws() error {
	if err := f.local.ClearDraws(); err != nil {
		return err
	}
	ctx, cancel := f.ctx()
	defer cancel()
	if err := f.remote.PutDraws(ctx, []Draw{}); err != nil {
		f.logger.Printf("remote_draw_clear_failed error=%q", err)
	}
	return nil
}

func (f *Fallback) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), f.timeout)
}
