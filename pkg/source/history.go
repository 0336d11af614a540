package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrNoHistory indicates that no message history is available for a session.
var ErrNoHistory = errors.New("no message history")

// DefaultHistoryConcurrency bounds parallel history fetches.
const DefaultHistoryConcurrency = 4

// HistoryResult is the outcome of a best-effort history fetch.
type HistoryResult struct {
	// Messages holds every history that loaded, keyed by session id.
	Messages map[string][]Message
	// Failed counts sessions whose history could not be fetched.
	Failed int
}

// Warning returns a single non-fatal warning, or "" when nothing failed.
func (h HistoryResult) Warning() string {
	if h.Failed == 0 {
		return ""
	}
	return fmt.Sprintf("could not load message history for %d session(s)", h.Failed)
}

// FetchHistories loads message histories for sessions, skipping any that are
// already present in loaded (typically the open session). Sessions whose
// header reports no messages are fetched too, since headers can lag the
// store. Per-session failures are counted, not returned, except for sessions
// whose header reports no messages. Empty histories are left out so the
// session's MessageCount still applies. The only error is ctx's, on cancel.
func FetchHistories(ctx context.Context, src Source, sessions []ChatSession, loaded map[string][]Message, concurrency int) (HistoryResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultHistoryConcurrency
	}

	res := HistoryResult{Messages: make(map[string][]Message, len(sessions))}
	for id, msgs := range loaded {
		res.Messages[id] = msgs
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, s := range sessions {
		if _, ok := loaded[s.ID]; ok {
			continue
		}
		sessionID := s.ID
		expected := s.MessageCount > 0
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			msgs, err := src.Messages(gctx, sessionID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Nothing was lost when the header promised no messages.
				if expected {
					res.Failed++
				}
				return nil
			}
			// An empty history means none was stored; the header count stands.
			if len(msgs) > 0 {
				res.Messages[sessionID] = msgs
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
