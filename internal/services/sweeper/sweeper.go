package sweeper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/QuoteDesk/internal/broker/messages"
	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/pkg/errors"
)

const expiredFeedback = "Quote expired before a decision was made"

type Repository interface {
	ExpireDueQuotes(ctx context.Context, now time.Time, limit int) ([]*models.Quote, error)
	SetQuoteFeedback(ctx context.Context, id uint64, feedback string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Sweeper periodically retires SENT quotes that aged past their expires_at
// without a decision, and announces each one on the quote.expired topic.
type Sweeper struct {
	repo     Repository
	producer Producer

	topic string

	pollInterval time.Duration
	batchSize    int

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalExpired        atomic.Int64
	totalErrors         atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(repo Repository, producer Producer, topic string) *Sweeper {
	return &Sweeper{
		repo:              repo,
		producer:          producer,
		topic:             topic,
		pollInterval:      30 * time.Second,
		batchSize:         200,
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (s *Sweeper) WithSettings(pollInterval time.Duration, batchSize int) *Sweeper {
	if pollInterval > 0 {
		s.pollInterval = pollInterval
	}
	if batchSize > 0 {
		s.batchSize = batchSize
	}
	return s
}

// Trigger forces an immediate sweep cycle (best-effort, non-blocking).
func (s *Sweeper) Trigger() {
	s.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt     time.Time  `json:"startedAt"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	TotalExpired  int64      `json:"totalExpired"`
	TotalErrors   int64      `json:"totalErrors"`
	LastError     string     `json:"lastError,omitempty"`
}

func (s *Sweeper) Stats() Stats {
	st := Stats{
		StartedAt:    time.Unix(0, s.startedAtUnixNano).UTC(),
		TotalExpired: s.totalExpired.Load(),
		TotalErrors:  s.totalErrors.Load(),
	}
	if n := s.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := s.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	s.lastErrorMu.Lock()
	st.LastError = s.lastError
	s.lastErrorMu.Unlock()
	return st
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.runOnce(ctx)
		case <-s.triggerCh:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	now := time.Now().UTC()
	s.lastCycleUnixNano.Store(now.UnixNano())

	expired, err := s.repo.ExpireDueQuotes(ctx, now, s.batchSize)
	if err != nil {
		slog.Error("expire due quotes", "error", err.Error())
		s.recordError(err)
		return
	}

	for _, q := range expired {
		if err := s.processOne(ctx, q, now); err != nil {
			s.recordError(err)
			slog.Error("process expired quote", "quote_id", q.ID, "error", err.Error())
			continue
		}
		s.totalExpired.Add(1)
	}
	if len(expired) > 0 {
		slog.Info("expired stale quotes", "count", len(expired))
	}
}

func (s *Sweeper) processOne(ctx context.Context, q *models.Quote, now time.Time) error {
	if err := s.repo.SetQuoteFeedback(ctx, q.ID, expiredFeedback); err != nil {
		return err
	}

	if s.producer == nil {
		return nil
	}
	msg := messages.QuoteExpired{
		QuoteID:   q.ID,
		LoadID:    q.LoadID,
		ExpiredAt: now,
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal kafka msg")
	}

	key := []byte(fmt.Sprintf("%d", q.LoadID))
	// Kafka может быть не готова сразу после старта docker compose.
	// Для устойчивости делаем небольшой retry.
	var pubErr error
	for i := 0; i < 10; i++ {
		if err := s.producer.Publish(ctx, s.topic, key, b); err == nil {
			pubErr = nil
			break
		} else {
			pubErr = err
			time.Sleep(time.Duration(150*(i+1)) * time.Millisecond)
		}
	}
	return pubErr
}

func (s *Sweeper) recordError(err error) {
	s.totalErrors.Add(1)
	s.lastErrorMu.Lock()
	s.lastError = err.Error()
	s.lastErrorMu.Unlock()
}
