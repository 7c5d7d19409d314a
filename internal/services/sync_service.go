package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bwmarrin/snowflake"
	json "github.com/goccy/go-json"

	"onlinesync/internal/models"
	"onlinesync/internal/providers"
	"onlinesync/internal/sink"
	"onlinesync/internal/structures"
)

// SessionProvider makes sure the fetcher talks to the site as a logged-in user.
type SessionProvider interface {
	EnsureSession(ctx context.Context) error
}

// ProfileFetcher lists online users and scrapes single profiles.
type ProfileFetcher interface {
	OnlineUsers(ctx context.Context) ([]string, error)
	Profile(ctx context.Context, nickname string) (models.RawProfile, error)
}

type SyncServiceInterface interface {
	RunCycle(ctx context.Context) models.Summary
}

type SyncService struct {
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	cache   providers.CacheProviderInterface
	session SessionProvider
	fetcher ProfileFetcher
	tags    sink.TagSource
	sinks   []sink.Sink
	ids     *snowflake.Node

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSyncService(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	cache providers.CacheProviderInterface,
	session SessionProvider,
	fetcher ProfileFetcher,
	tags sink.TagSource,
	sinks []sink.Sink,
) (*SyncService, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("cycle id generator: %w", err)
	}
	return &SyncService{
		conf:    conf,
		logger:  logger,
		metrics: metrics,
		cache:   cache,
		session: session,
		fetcher: fetcher,
		tags:    tags,
		sinks:   sinks,
		ids:     node,
		now:     time.Now,
		sleep:   sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RunCycle performs one fetch, reconcile and apply pass. Per-record problems
// are counted; cycle-level problems end up in Summary.Err.
func (s *SyncService) RunCycle(ctx context.Context) models.Summary {
	start := s.now()
	summary := models.Summary{
		CycleID:   s.ids.Generate().String(),
		StartedAt: start,
	}
	s.logger.Infof(providers.TypeSync, "Cycle %s started", summary.CycleID)

	if err := s.session.EnsureSession(ctx); err != nil {
		summary.Err = fmt.Errorf("session: %w", err)
		return s.finish(summary, 0)
	}

	resolver := s.loadTags(ctx)

	users, err := s.fetcher.OnlineUsers(ctx)
	if err != nil {
		summary.Err = fmt.Errorf("online users: %w", err)
		return s.finish(summary, 0)
	}
	summary.UsersFound = len(users)
	if limit := s.conf.Scrape.MaxProfiles; limit > 0 && len(users) > limit {
		s.logger.Infof(providers.TypeSync, "Limiting cycle to %d of %d online users", limit, len(users))
		users = users[:limit]
	}

	records, scrapeFailed := s.scrape(ctx, users, resolver)
	summary.Scraped = len(records)
	summary.Failed += scrapeFailed
	if err := ctx.Err(); err != nil {
		summary.Err = fmt.Errorf("cycle interrupted: %w", err)
		return s.finish(summary, scrapeFailed)
	}

	for _, sk := range s.sinks {
		s.syncSink(ctx, sk, records, &summary)
	}

	return s.finish(summary, scrapeFailed)
}

func (s *SyncService) scrape(ctx context.Context, users []string, resolver *TagResolver) ([]models.ProfileRecord, int) {
	records := make([]models.ProfileRecord, 0, len(users))
	failed := 0
	for i, nick := range users {
		if i > 0 {
			if err := s.sleep(ctx, s.delay()); err != nil {
				break
			}
		}
		s.logger.Debugf(providers.TypeScrape, "Scraping %s (%d/%d)", nick, i+1, len(users))

		raw, err := s.fetcher.Profile(ctx, nick)
		if err != nil {
			failed++
			s.logger.Warnf(providers.TypeScrape, "Failed to scrape %s: %s", nick, err)
			continue
		}
		if raw.Nickname == "" {
			raw.Nickname = nick
		}
		rec, err := models.NewProfileRecord(raw, s.now())
		if err != nil {
			failed++
			s.logger.Warnf(providers.TypeScrape, "Rejected profile %s: %s", nick, err)
			continue
		}
		records = append(records, rec.WithTags(resolver.Resolve(rec.Nickname)))
	}
	return records, failed
}

func (s *SyncService) delay() time.Duration {
	lo, hi := s.conf.Scrape.MinDelay, s.conf.Scrape.MaxDelay
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func (s *SyncService) syncSink(ctx context.Context, sk sink.Sink, records []models.ProfileRecord, summary *models.Summary) {
	start := s.now()
	defer func() {
		s.metrics.ObserveSinkDuration(sk.Name(), s.now().Sub(start))
	}()

	rows, err := sk.Load(ctx)
	if err != nil {
		err = fmt.Errorf("load %s: %w", sk.Name(), err)
		s.logger.Errorf(providers.TypeSink, "%s", err)
		summary.FailSink(sk.Name(), err)
		return
	}

	decisions := Reconcile(rows, records)
	counts := CountDecisions(decisions)
	s.logger.Infof(providers.TypeSink, "%s: %d rows loaded, %d new, %d changed, %d unchanged",
		sk.Name(), len(rows), counts[models.ActionInsert], counts[models.ActionUpdate], counts[models.ActionUnchanged])

	res := sk.Apply(ctx, decisions)
	for _, recErr := range res.Errors {
		s.logger.Warnf(providers.TypeSink, "%s: write failed for %s", sk.Name(), recErr)
	}

	s.metrics.AddDecisions(sk.Name(), models.ActionInsert.String(), res.Inserted)
	s.metrics.AddDecisions(sk.Name(), models.ActionUpdate.String(), res.Updated)
	s.metrics.AddDecisions(sk.Name(), models.ActionUnchanged.String(), res.Unchanged)
	s.metrics.AddDecisions(sk.Name(), "failed", res.Failed)
	summary.AddSink(sk.Name(), res)
}

func (s *SyncService) finish(summary models.Summary, scrapeFailed int) models.Summary {
	summary.Elapsed = s.now().Sub(summary.StartedAt)

	status := "ok"
	if summary.Err != nil {
		status = "failed"
		s.logger.Errorf(providers.TypeSync, "Cycle %s failed: %s", summary.CycleID, summary.Err)
	}
	s.metrics.IncCycles(status)
	s.metrics.ObserveCycleDuration(summary.Elapsed)
	s.metrics.AddProfiles("scraped", summary.Scraped)
	s.metrics.AddProfiles("failed", scrapeFailed)

	s.logger.Infof(providers.TypeSync,
		"Cycle %s done in %.1fs: found=%d scraped=%d new=%d updated=%d unchanged=%d failed=%d",
		summary.CycleID, summary.ElapsedSeconds(), summary.UsersFound, summary.Scraped,
		summary.New, summary.Updated, summary.Unchanged, summary.Failed)
	return summary
}

func tagCacheKey(source sink.TagSource) string {
	return "tags:" + source.Name()
}

// loadTags takes the tag snapshot for this cycle. Any failure degrades to a
// resolver without tags.
func (s *SyncService) loadTags(ctx context.Context) *TagResolver {
	caseInsensitive := s.conf.Tags.CaseInsensitive
	if s.tags == nil {
		return NewTagResolver(nil, caseInsensitive)
	}

	key := tagCacheKey(s.tags)
	if data, ok := s.cache.Get(key); ok {
		var table models.TagTable
		if err := json.Unmarshal(data, &table); err == nil {
			s.logger.Debugf(providers.TypeSync, "Tag table served from cache")
			return NewTagResolver(&table, caseInsensitive)
		}
	}

	table, err := s.tags.Load(ctx)
	if err != nil {
		s.logger.Warnf(providers.TypeSync, "Tags unavailable, continuing without tags: %s", err)
		return NewTagResolver(nil, caseInsensitive)
	}
	if table == nil {
		return NewTagResolver(nil, caseInsensitive)
	}
	if data, err := json.Marshal(table); err == nil {
		if err := s.cache.Set(key, data); err != nil {
			s.logger.Warnf(providers.TypeSync, "Tag table not cached, it will be read again next cycle: %s", err)
		}
	}

	resolver := NewTagResolver(table, caseInsensitive)
	s.logger.Infof(providers.TypeSync, "Loaded tags for %d nicknames", resolver.Tagged())
	return resolver
}

// ErrCycleFailed marks a summary carrying a cycle-level error.
var ErrCycleFailed = errors.New("sync cycle failed")

// CycleError wraps a summary's error for callers that need an error value.
func CycleError(summary models.Summary) error {
	if summary.Err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCycleFailed, summary.Err)
}
