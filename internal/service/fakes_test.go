package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/chart"
	"github.com/astromusic/astromusic/internal/ephemeris"
	"github.com/astromusic/astromusic/internal/metrics"
	"github.com/astromusic/astromusic/internal/model"
	"github.com/astromusic/astromusic/internal/repository/repotest"
	"github.com/astromusic/astromusic/internal/zodiac"
)

var testHasherParams = auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memCache is an in-memory ChartCache. A non-nil err fails every call.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*model.BirthChart
	deletes int
	err     error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*model.BirthChart)}
}

func (c *memCache) GetChart(_ context.Context, userID string) (*model.BirthChart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	e, ok := c.entries[userID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (c *memCache) SetChart(_ context.Context, chart *model.BirthChart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	cp := *chart
	c.entries[chart.UserID] = &cp
	return nil
}

func (c *memCache) DeleteChart(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	if c.err != nil {
		return c.err
	}
	delete(c.entries, userID)
	return nil
}

func (c *memCache) has(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[userID]
	return ok
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemRevoker() *memRevoker {
	return &memRevoker{revoked: make(map[string]time.Duration)}
}

func (r *memRevoker) RevokeRefreshToken(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.revoked[tokenID]; ok {
		return false, nil
	}
	r.revoked[tokenID] = ttl
	return true, nil
}

func (r *memRevoker) IsRefreshTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

// recordingProjector counts graph calls and can be made to fail.
type recordingProjector struct {
	mu       sync.Mutex
	projects int
	removed  []string
	err      error
}

func (p *recordingProjector) ProjectChart(context.Context, *model.BirthChart) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projects++
	return p.err
}

func (p *recordingProjector) RemoveChart(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, "chart:"+userID)
	return p.err
}

func (p *recordingProjector) RemoveUser(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, "user:"+userID)
	return p.err
}

type stubCalculator struct {
	mu     sync.Mutex
	result *ephemeris.Result
	err    error
	calls  int
}

func (s *stubCalculator) Calculate(context.Context, ephemeris.Request) (*ephemeris.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubCalculator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var errEphemerisDown = errors.New("ephemeris unreachable")

func rasi(name, sign string) ephemeris.Body {
	s := sign
	return ephemeris.Body{Object: name, Rasi: &s}
}

func leoResult() *ephemeris.Result {
	return &ephemeris.Result{
		Bodies: []ephemeris.Body{rasi("Asc", "Leo"), rasi("Sun", "Cancer"), rasi("Moon", "Pisces"), rasi("Mars", "Aries")},
		Raw:    `{"bodies":"leo"}`,
	}
}

func newTestDeriver(calc ephemeris.Calculator, mode chart.Mode) *chart.Deriver {
	return chart.NewDeriver(calc, zodiac.Default(), discardLogger(), chart.Options{Mode: mode})
}

func floatRef(f float64) *float64 { return &f }

func validBirthInput() BirthInput {
	return BirthInput{
		Date:      "1990-07-15",
		Time:      "06:30",
		Latitude:  floatRef(19.076),
		Longitude: floatRef(72.8777),
		Place:     "Mumbai",
		Timezone:  "Asia/Kolkata",
	}
}

type chartFixture struct {
	store   *repotest.MemStore
	cache   *memCache
	graph   *recordingProjector
	calc    *stubCalculator
	metrics *metrics.InMemoryRecorder
	svc     *ChartService
}

func newChartFixture(mode chart.Mode) *chartFixture {
	f := &chartFixture{
		store:   repotest.NewMemStore(),
		cache:   newMemCache(),
		graph:   &recordingProjector{},
		calc:    &stubCalculator{result: leoResult()},
		metrics: metrics.NewInMemory(),
	}
	f.svc = NewChartService(f.store, f.cache, newTestDeriver(f.calc, mode), f.graph, f.metrics, discardLogger())
	return f
}

func (f *chartFixture) addUser(id string) {
	f.store.PutUser(&model.User{ID: id, Email: id + "@example.com", Name: id, IsActive: true})
}
