package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/BearBump/QuoteDesk/internal/broker/messages"
	"github.com/BearBump/QuoteDesk/internal/cache"
	"github.com/BearBump/QuoteDesk/internal/integrations/pricing"
	"github.com/BearBump/QuoteDesk/internal/models"
)

type Repository interface {
	GetQuote(ctx context.Context, id uint64) (*models.Quote, error)
	GetLoad(ctx context.Context, id uint64) (*models.Load, error)
	ListQuotesByLoad(ctx context.Context, loadID uint64) ([]*models.Quote, error)
	GetFleetProfile(ctx context.Context, fleetID string) (*models.FleetProfile, error)

	UpdateQuoteStatus(ctx context.Context, id uint64, status string) error
	UpdateLoadStatus(ctx context.Context, id uint64, status string) error
	IncrementFleetJobsCompleted(ctx context.Context, fleetID string) error
	SetQuoteScoreBreakdown(ctx context.Context, id uint64, b models.ScoreBreakdown) error
	SetQuoteFeedback(ctx context.Context, id uint64, feedback string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type RateLimiter interface {
	AllowPerMinute(ctx context.Context, op string, limit int64, at time.Time) (bool, int64, error)
}

// Result is the evaluation outcome for the quote that was submitted. The
// other quotes on the load may have changed status too; callers read those
// back through the repository.
type Result struct {
	Accepted  bool                  `json:"accepted"`
	Breakdown models.ScoreBreakdown `json:"breakdown"`
	Feedback  string                `json:"feedback"`
}

type Service struct {
	repo     Repository
	pricing  pricing.Client
	cache    cache.BytesCache
	rl       RateLimiter
	producer Producer

	priceCacheTTL        time.Duration
	pricingRatePerMinute int64
	decidedTopic         string

	now func() time.Time

	locks *loadLocks
}

func New(repo Repository, pc pricing.Client) *Service {
	return &Service{
		repo:                 repo,
		pricing:              pc,
		priceCacheTTL:        10 * time.Minute,
		pricingRatePerMinute: 120,
		decidedTopic:         "quote.decided",
		now:                  func() time.Time { return time.Now().UTC() },
		locks:                newLoadLocks(),
	}
}

func (s *Service) WithCache(c cache.BytesCache, ttl time.Duration) *Service {
	s.cache = c
	if ttl > 0 {
		s.priceCacheTTL = ttl
	}
	return s
}

func (s *Service) WithRateLimiter(rl RateLimiter, perMinute int64) *Service {
	s.rl = rl
	if perMinute > 0 {
		s.pricingRatePerMinute = perMinute
	}
	return s
}

func (s *Service) WithProducer(p Producer, topic string) *Service {
	s.producer = p
	if topic != "" {
		s.decidedTopic = topic
	}
	return s
}

// WithClock replaces the time source (tests use a frozen clock).
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Evaluate decides the submitted quote against every other SENT quote on its
// load and applies the resulting state transitions. A nil Result with a nil
// error is the "nothing to do" outcome: unknown quote, quote no longer SENT,
// missing load, or an empty pool. Evaluations are serialized per load.
func (s *Service) Evaluate(ctx context.Context, quoteID uint64) (*Result, error) {
	q, err := s.repo.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil || q.Status != models.QuoteStatusSent {
		return nil, nil
	}

	load, err := s.repo.GetLoad(ctx, q.LoadID)
	if err != nil {
		return nil, err
	}
	if load == nil {
		return nil, nil
	}

	unlock := s.locks.lock(load.ID)
	defer unlock()

	// Re-read under the lock: a concurrent evaluation may have decided the
	// load while we were waiting.
	q, err = s.repo.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil || q.Status != models.QuoteStatusSent {
		return nil, nil
	}

	if rej := checkEligibility(load, q); rej != nil {
		zero := models.ScoreBreakdown{}
		if err := s.persistDecision(ctx, q.ID, models.QuoteStatusRejected, zero, rej.feedback); err != nil {
			return nil, err
		}
		s.publishDecision(ctx, q, false, zero)
		return &Result{Accepted: false, Breakdown: zero, Feedback: rej.feedback}, nil
	}

	pool, err := s.repo.ListQuotesByLoad(ctx, load.ID)
	if err != nil {
		return nil, err
	}
	pending := make([]*models.Quote, 0, len(pool))
	for _, p := range pool {
		if p.Status == models.QuoteStatusSent {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	// The sweeper can flip the submitted quote SENT→EXPIRED between our
	// re-read and the pool listing; it claims rows in SQL and does not take
	// the per-load mutex. A quote that already left SENT must not be
	// re-decided, so its absence from the pool is another "nothing to do".
	inPool := false
	for _, p := range pending {
		if p.ID == q.ID {
			inPool = true
			break
		}
	}
	if !inPool {
		return nil, nil
	}

	// Read every input up front; the scoring pipeline itself does no I/O.
	now := s.now()
	rng := s.recommendPrice(ctx, load)
	ratings := make(map[string]float64, len(pending))
	for _, p := range pending {
		if _, ok := ratings[p.FleetID]; ok {
			continue
		}
		ratings[p.FleetID] = s.fleetRating(ctx, p.FleetID)
	}

	cc := newCompetitionContext(pending)
	scored := make([]scoredQuote, 0, len(pending))
	for _, p := range pending {
		scored = append(scored, scoreQuote(now, load, p, rng, ratings[p.FleetID], cc))
	}

	// Stable sort: equal composites keep pool order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].breakdown.CompositeScore > scored[j].breakdown.CompositeScore
	})

	var submitted scoredQuote
	for i := range scored {
		if scored[i].quote.ID == q.ID {
			submitted = scored[i]
			break
		}
	}

	candidate := scored[0]
	if candidate.breakdown.CompositeScore < cc.Threshold() {
		// Nobody wins. Only the submitted quote is decided; the rest of the
		// pool stays SENT and can compete against future quotes.
		fb := rejectionFeedback(submitted.breakdown, submitted.quote, nil)
		if err := s.persistDecision(ctx, q.ID, models.QuoteStatusRejected, submitted.breakdown, fb); err != nil {
			return nil, err
		}
		s.publishDecision(ctx, q, false, submitted.breakdown)
		return &Result{Accepted: false, Breakdown: submitted.breakdown, Feedback: fb}, nil
	}

	if err := s.applyWin(ctx, load, candidate, scored, q.ID); err != nil {
		return nil, err
	}

	if candidate.quote.ID == q.ID {
		fb := winnerFeedback(candidate.breakdown, candidate.quote)
		return &Result{Accepted: true, Breakdown: candidate.breakdown, Feedback: fb}, nil
	}
	fb := rejectionFeedback(submitted.breakdown, submitted.quote, &candidate)
	return &Result{Accepted: false, Breakdown: submitted.breakdown, Feedback: fb}, nil
}

// applyWin flips the whole pool: the winner is accepted, everyone else is
// rejected, the load moves to IN_TRANSIT and the winning fleet's completed
// jobs counter is incremented. The submitted quote gets the detailed
// rejection feedback; other losers get the generic outbid message.
func (s *Service) applyWin(ctx context.Context, load *models.Load, winner scoredQuote, scored []scoredQuote, submittedID uint64) error {
	for _, sq := range scored {
		if sq.quote.ID == winner.quote.ID {
			continue
		}
		fb := outbidFeedback
		if sq.quote.ID == submittedID {
			fb = rejectionFeedback(sq.breakdown, sq.quote, &winner)
		}
		if err := s.persistDecision(ctx, sq.quote.ID, models.QuoteStatusRejected, sq.breakdown, fb); err != nil {
			return err
		}
		s.publishDecision(ctx, sq.quote, false, sq.breakdown)
	}

	fb := winnerFeedback(winner.breakdown, winner.quote)
	if err := s.persistDecision(ctx, winner.quote.ID, models.QuoteStatusAccepted, winner.breakdown, fb); err != nil {
		return err
	}
	if err := s.repo.UpdateLoadStatus(ctx, load.ID, models.LoadStatusInTransit); err != nil {
		return err
	}
	if err := s.repo.IncrementFleetJobsCompleted(ctx, winner.quote.FleetID); err != nil {
		return err
	}
	s.publishDecision(ctx, winner.quote, true, winner.breakdown)
	return nil
}

func (s *Service) persistDecision(ctx context.Context, quoteID uint64, status string, b models.ScoreBreakdown, feedback string) error {
	if err := s.repo.SetQuoteScoreBreakdown(ctx, quoteID, b); err != nil {
		return err
	}
	if err := s.repo.SetQuoteFeedback(ctx, quoteID, feedback); err != nil {
		return err
	}
	return s.repo.UpdateQuoteStatus(ctx, quoteID, status)
}

// publishDecision is best effort: a lost event never fails an evaluation.
func (s *Service) publishDecision(ctx context.Context, q *models.Quote, accepted bool, b models.ScoreBreakdown) {
	if s.producer == nil {
		return
	}
	msg := messages.QuoteDecided{
		QuoteID:        q.ID,
		LoadID:         q.LoadID,
		FleetID:        q.FleetID,
		Accepted:       accepted,
		CompositeScore: b.CompositeScore,
		DecidedAt:      s.now(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}
	key := []byte(fmt.Sprintf("%d", q.LoadID))
	if err := s.producer.Publish(ctx, s.decidedTopic, key, body); err != nil {
		slog.Warn("publish quote.decided", "quote_id", q.ID, "error", err.Error())
	}
}

// recommendPrice loads the benchmark range for a load, via the redis cache
// when possible. Limiter denials and service failures degrade silently to a
// nil range, which scores as the flat neutral price.
func (s *Service) recommendPrice(ctx context.Context, load *models.Load) *pricing.Range {
	key := priceRecKey(load.ID)
	if s.cache != nil && s.priceCacheTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var r pricing.Range
			if json.Unmarshal(b, &r) == nil {
				return &r
			}
		}
	}

	if s.pricing == nil {
		return nil
	}

	if s.rl != nil && s.pricingRatePerMinute > 0 {
		allowed, n, err := s.rl.AllowPerMinute(ctx, "pricing", s.pricingRatePerMinute, s.now())
		if err == nil && !allowed {
			slog.Warn("pricing rate limit exceeded, scoring with neutral price", "count", n)
			return nil
		}
	}

	r, err := s.pricing.RecommendPrice(ctx, load, load.RequiredVehicleType)
	if err != nil {
		slog.Warn("price recommendation unavailable", "load_id", load.ID, "error", err.Error())
		return nil
	}
	if r == nil {
		return nil
	}

	if s.cache != nil && s.priceCacheTTL > 0 {
		b, _ := json.Marshal(r)
		_ = s.cache.Set(ctx, key, b, s.priceCacheTTL)
	}
	return r
}

func (s *Service) fleetRating(ctx context.Context, fleetID string) float64 {
	if fleetID == "" || strings.HasPrefix(fleetID, models.SimulatedFleetPrefix) {
		return neutralFleetRating
	}
	p, err := s.repo.GetFleetProfile(ctx, fleetID)
	if err != nil {
		slog.Warn("fleet profile unavailable", "fleet_id", fleetID, "error", err.Error())
		return neutralFleetRating
	}
	if p == nil {
		return neutralFleetRating
	}
	return p.Rating
}

// GetQuote and ListQuotesByLoad are read passthroughs for the HTTP API.
func (s *Service) GetQuote(ctx context.Context, id uint64) (*models.Quote, error) {
	return s.repo.GetQuote(ctx, id)
}

func (s *Service) ListQuotesByLoad(ctx context.Context, loadID uint64) ([]*models.Quote, error) {
	return s.repo.ListQuotesByLoad(ctx, loadID)
}

func priceRecKey(loadID uint64) string {
	return fmt.Sprintf("pricerec:%d:range", loadID)
}
