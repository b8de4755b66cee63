package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/api"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/chart"
	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/notify"
	"github.com/matzehuels/kintree/pkg/store"
)

// session is one stored chart opened for a command.
type session struct {
	name   string
	coord  *chart.Coordinator
	store  store.Store
	cache  cache.Cache
	logger *log.Logger
}

// openSession loads the current chart. With online set, the coordinator is
// wired to the configured backend; otherwise backend operations fail with
// UNSUPPORTED.
func (c *CLI) openSession(ctx context.Context, online bool) (*session, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if err := store.ValidateName(c.chartName); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--chart")
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open chart store")
	}
	s := &session{name: c.chartName, store: st, logger: loggerFromContext(ctx)}

	var backend chart.Backend
	if online {
		client, ch, err := newClient(ctx, cfg)
		if err != nil {
			st.Close()
			return nil, err
		}
		backend, s.cache = client, ch
	}

	s.coord = chart.NewCoordinator(ctx, backend, chart.Options{
		Layout:  cfg.Layout,
		Logger:  s.logger,
		Notices: notify.New(cfg.Notify.TTL),
	})
	if err := s.load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// newClient builds the API client over the configured cache.
func newClient(ctx context.Context, cfg *config.Config) (*api.Client, cache.Cache, error) {
	ch, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		loggerFromContext(ctx).Warn("cache unavailable, continuing without", "err", err)
		ch = cache.NewNullCache()
	}
	client, err := api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		Headers:   cfg.API.Headers,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		Retries:   cfg.API.Retries,
		Cache:     ch,
		SearchTTL: cfg.API.SearchTTL,
	})
	if err != nil {
		ch.Close()
		return nil, nil, err
	}
	return client, ch, nil
}

func (s *session) load(ctx context.Context) error {
	snap, err := s.store.Load(ctx, s.name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "load chart %s", s.name)
	}
	if snap.IsEmpty() && snap.View.Orientation == "" {
		s.logger.Debug("new chart", "name", s.name)
		return nil
	}
	if err := s.coord.Restore(chart.State{People: snap.People, View: snap.View}); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "restore chart %s", s.name)
	}
	s.logger.Debug("loaded chart", "name", s.name, "people", len(snap.People), "updated", snap.UpdatedAt)
	return nil
}

// save writes the chart back to the store.
func (s *session) save(ctx context.Context) error {
	state := s.coord.State()
	snap := &store.Snapshot{Name: s.name, People: state.People, View: state.View}
	if err := s.store.Save(ctx, snap); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save chart %s", s.name)
	}
	s.logger.Debug("saved chart", "name", s.name, "people", len(state.People))
	return nil
}

// Close releases the store and cache.
func (s *session) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
	s.store.Close()
}

// size returns the number of people in the chart.
func (s *session) size() int {
	var n int
	s.coord.View(func(ch *chart.Chart) { n = ch.Len() })
	return n
}

// update opens the chart, runs fn and saves the chart when fn succeeds.
func (c *CLI) update(ctx context.Context, online bool, fn func(*session) error) error {
	s, err := c.openSession(ctx, online)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := fn(s); err != nil {
		return err
	}
	return s.save(ctx)
}

// summary prints the chart's size after a change.
func (s *session) summary(ctx context.Context) {
	l := s.coord.Layout(ctx)
	pinned := 0
	for _, n := range l.Nodes {
		if n.Pinned {
			pinned++
		}
	}
	printStats(s.size(), len(l.Nodes), pinned)
	for _, w := range l.Warnings {
		printWarning("%s", w.Message)
	}
}
