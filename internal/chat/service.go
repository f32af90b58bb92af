package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/oakwellhq/chatgate/internal/ai"
	"github.com/oakwellhq/chatgate/internal/history"
	"github.com/oakwellhq/chatgate/internal/quota"
)

// Turn sources. With SourceStore the caller-sent history is ignored and the
// identity's stored entries are used; with SourceClient the request body
// history is trusted as given.
const (
	SourceStore  = "store"
	SourceClient = "client"
)

var (
	ErrQuotaExceeded  = errors.New("chat: daily quota exceeded")
	ErrPromptRequired = errors.New("chat: prompt required")
)

type Options struct {
	SystemPrompt            string
	ContextTurns            int
	HistorySource           string
	Model                   string
	RefundOnUpstreamFailure bool
}

// Service runs one exchange end to end: quota check, conversation assembly,
// provider call, history write.
type Service struct {
	guard    *quota.Guard
	hist     *history.Repo
	provider ai.Provider
	opts     Options

	now func() time.Time
}

func NewService(guard *quota.Guard, hist *history.Repo, provider ai.Provider, opts Options) *Service {
	if opts.ContextTurns <= 0 || opts.ContextTurns > 20 {
		opts.ContextTurns = 3
	}
	if opts.HistorySource != SourceClient {
		opts.HistorySource = SourceStore
	}
	return &Service{
		guard:    guard,
		hist:     hist,
		provider: provider,
		opts:     opts,
		now:      time.Now,
	}
}

type Result struct {
	Response  string
	Remaining int
	Model     string
}

// Exchange handles one prompt for one identity.
//
// A failed provider call keeps the reserved quota slot unless the refund
// policy is enabled, and never writes a history entry. A rejected request
// mutates nothing.
func (s *Service) Exchange(ctx context.Context, identity, prompt string, clientTurns []Turn) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}

	now := s.now()
	day := quota.DayKey(now)

	dec, err := s.guard.CheckAndReserve(ctx, identity, day)
	if err != nil {
		return nil, err
	}
	if !dec.Admitted {
		return nil, ErrQuotaExceeded
	}

	turns := clientTurns
	if s.opts.HistorySource == SourceStore {
		turns, err = s.recentTurns(ctx, identity)
		if err != nil {
			return nil, err
		}
	}

	msgs := BuildMessages(s.opts.SystemPrompt, turns, prompt, s.opts.ContextTurns)

	reply, err := s.provider.Complete(ctx, msgs)
	if err != nil {
		if s.opts.RefundOnUpstreamFailure {
			if rerr := s.guard.Release(ctx, identity, day); rerr != nil {
				log.Printf("[chat] identity=%s release after upstream failure: %v", identity, rerr)
			}
		}
		return nil, err
	}

	if err := s.hist.Insert(ctx, &history.Entry{
		Identity: identity,
		Prompt:   prompt,
		Response: reply,
	}); err != nil {
		return nil, err
	}

	remaining := s.guard.Limit() - (dec.CountBefore + 1)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{Response: reply, Remaining: remaining, Model: s.opts.Model}, nil
}

// recentTurns reads the identity's last window entries and flips them to
// chronological order.
func (s *Service) recentTurns(ctx context.Context, identity string) ([]Turn, error) {
	entries, err := s.hist.ListRecentDesc(ctx, identity, s.opts.ContextTurns)
	if err != nil {
		return nil, err
	}
	turns := make([]Turn, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		turns = append(turns, Turn{Prompt: entries[i].Prompt, Response: entries[i].Response})
	}
	return turns, nil
}

type Usage struct {
	Used      int
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Status reports the identity's consumption for the current day.
func (s *Service) Status(ctx context.Context, identity string) (*Usage, error) {
	now := s.now()
	count, err := s.guard.Peek(ctx, identity, quota.DayKey(now))
	if err != nil {
		return nil, err
	}
	remaining := s.guard.Limit() - count
	if remaining < 0 {
		remaining = 0
	}
	return &Usage{
		Used:      count,
		Remaining: remaining,
		Limit:     s.guard.Limit(),
		ResetAt:   quota.NextReset(now),
	}, nil
}

// RecentHistory returns the identity's newest entries, newest first.
func (s *Service) RecentHistory(ctx context.Context, identity string, limit int) ([]history.Entry, error) {
	return s.hist.ListRecentDesc(ctx, identity, limit)
}
