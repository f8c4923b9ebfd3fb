package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/imgmanager/internal/config"
	"github.com/mrlokans/imgmanager/internal/crawl"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   []crawl.Options
	failFor string
	block   chan struct{}
}

func (r *fakeRunner) Run(ctx context.Context, opts crawl.Options) (crawl.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, opts)
	r.mu.Unlock()

	if r.block != nil {
		<-r.block
	}
	if opts.Template == r.failFor {
		return crawl.Result{}, errors.New("boom")
	}
	return crawl.Result{Template: opts.Template}, nil
}

func (r *fakeRunner) templates() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, c := range r.calls {
		names = append(names, c.Template)
	}
	return names
}

func TestCrawlScheduler_Disabled(t *testing.T) {
	s := NewCrawlScheduler(config.Schedule{Enabled: false, Cron: "0 3 * * *", Templates: []string{"a"}}, &fakeRunner{})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestCrawlScheduler_NoTemplates(t *testing.T) {
	s := NewCrawlScheduler(config.Schedule{Enabled: true, Cron: "0 3 * * *"}, &fakeRunner{})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestCrawlScheduler_InvalidCron(t *testing.T) {
	s := NewCrawlScheduler(config.Schedule{Enabled: true, Cron: "every day", Templates: []string{"a"}}, &fakeRunner{})

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestCrawlScheduler_StartStop(t *testing.T) {
	s := NewCrawlScheduler(config.Schedule{Enabled: true, Cron: "0 3 * * *", Templates: []string{"a"}}, &fakeRunner{})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.NextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())

	s.Stop()
}

func TestCrawlScheduler_StopsWithContext(t *testing.T) {
	s := NewCrawlScheduler(config.Schedule{Enabled: true, Cron: "0 3 * * *", Templates: []string{"a"}}, &fakeRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestCrawlScheduler_RunCrawls(t *testing.T) {
	runner := &fakeRunner{failFor: "b"}
	s := NewCrawlScheduler(config.Schedule{Enabled: true, Cron: "0 3 * * *", Templates: []string{"a", "b", "c"}}, runner)

	s.runCrawls()

	assert.Equal(t, []string{"a", "b", "c"}, runner.templates(), "a failing template must not stop the round")
	for _, call := range runner.calls {
		assert.Equal(t, crawl.TriggerSchedule, call.Trigger)
	}
	assert.False(t, s.IsCrawling())
}

func TestCrawlScheduler_SkipsOverlappingRound(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s := NewCrawlScheduler(config.Schedule{Enabled: true, Cron: "0 3 * * *", Templates: []string{"a"}}, runner)

	s.RunNow()
	require.Eventually(t, s.IsCrawling, 2*time.Second, 10*time.Millisecond)

	s.runCrawls()
	close(runner.block)

	require.Eventually(t, func() bool { return !s.IsCrawling() }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a"}, runner.templates())
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.NoError(t, ValidateSchedule("0 3 * * 1-5"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"))
	assert.Error(t, ValidateSchedule(""))
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	next, err := NextRun("0 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), next)

	_, err = NextRun("nope", from)
	assert.Error(t, err)
}
