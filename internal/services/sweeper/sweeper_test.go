package sweeper

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/QuoteDesk/internal/broker/messages"
	"github.com/BearBump/QuoteDesk/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu       sync.Mutex
	due      []*models.Quote
	feedback map[uint64]string
	err      error
}

func (r *fakeRepo) ExpireDueQuotes(_ context.Context, _ time.Time, limit int) ([]*models.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if len(r.due) > limit {
		out := r.due[:limit]
		r.due = r.due[limit:]
		return out, nil
	}
	out := r.due
	r.due = nil
	return out, nil
}

func (r *fakeRepo) SetQuoteFeedback(_ context.Context, id uint64, feedback string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.feedback == nil {
		r.feedback = map[uint64]string{}
	}
	r.feedback[id] = feedback
	return nil
}

type fakeProducer struct {
	mu       sync.Mutex
	payloads [][]byte
	topics   []string
}

func (p *fakeProducer) Publish(_ context.Context, topic string, _, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, value)
	return nil
}

func TestRunOnce_ExpiresAndPublishes(t *testing.T) {
	repo := &fakeRepo{due: []*models.Quote{
		{ID: 1, LoadID: 10},
		{ID: 2, LoadID: 11},
	}}
	prod := &fakeProducer{}

	s := New(repo, prod, "quote.expired")
	s.runOnce(context.Background())

	require.Equal(t, "Quote expired before a decision was made", repo.feedback[1])
	require.Equal(t, "Quote expired before a decision was made", repo.feedback[2])

	require.Equal(t, []string{"quote.expired", "quote.expired"}, prod.topics)
	var msg messages.QuoteExpired
	require.NoError(t, json.Unmarshal(prod.payloads[0], &msg))
	require.Equal(t, uint64(1), msg.QuoteID)
	require.Equal(t, uint64(10), msg.LoadID)
	require.False(t, msg.ExpiredAt.IsZero())

	st := s.Stats()
	require.Equal(t, int64(2), st.TotalExpired)
	require.Equal(t, int64(0), st.TotalErrors)
	require.NotNil(t, st.LastCycleAt)
}

func TestRunOnce_RepoErrorRecorded(t *testing.T) {
	repo := &fakeRepo{err: errors.New("pg down")}
	s := New(repo, nil, "quote.expired")
	s.runOnce(context.Background())

	st := s.Stats()
	require.Equal(t, int64(1), st.TotalErrors)
	require.Equal(t, "pg down", st.LastError)
	require.Zero(t, st.TotalExpired)
}

func TestRun_TriggerForcesCycle(t *testing.T) {
	repo := &fakeRepo{due: []*models.Quote{{ID: 1, LoadID: 10}}}
	s := New(repo, nil, "quote.expired").WithSettings(time.Hour, 50)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	s.Trigger()
	require.Eventually(t, func() bool {
		return s.Stats().TotalExpired == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	require.NotNil(t, s.Stats().LastTriggerAt)
}

func TestNew_Defaults(t *testing.T) {
	s := New(&fakeRepo{}, nil, "quote.expired")
	require.Equal(t, 30*time.Second, s.pollInterval)
	require.Equal(t, 200, s.batchSize)

	s.WithSettings(0, 0)
	require.Equal(t, 30*time.Second, s.pollInterval)
	require.Equal(t, 200, s.batchSize)
}
