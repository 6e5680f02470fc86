package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	block chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

func TestParseCronSchedule(t *testing.T) {
	tests := []struct {
		name       string
		cronExpr   string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{name: "empty defaults to 01:00", cronExpr: "", wantHour: 1, wantMinute: 0},
		{name: "half past two", cronExpr: "30 2 * * *", wantHour: 2, wantMinute: 30},
		{name: "midnight", cronExpr: "0 0 * * *", wantHour: 0, wantMinute: 0},
		{name: "extra whitespace", cronExpr: "  15   4   *   *   *  ", wantHour: 4, wantMinute: 15},
		{name: "wildcard minute", cronExpr: "* 5 * * *", wantHour: 5, wantMinute: 0},
		{name: "single field", cronExpr: "15", wantErr: true},
		{name: "hour out of range", cronExpr: "0 24 * * *", wantErr: true},
		{name: "minute out of range", cronExpr: "60 1 * * *", wantErr: true},
		{name: "not a number", cronExpr: "x 1 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseCronSchedule(tt.cronExpr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.CheckInterval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Hour = 25
	_, err := NewDailyScheduler(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDailyScheduler_CheckAndRun(t *testing.T) {
	job := &countingJob{name: "sweep"}
	s, err := NewDailyScheduler(DefaultConfig(), nil, job)
	require.NoError(t, err)

	clock := time.Date(2026, 4, 2, 0, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	ctx := context.Background()

	s.checkAndRun(ctx)
	assert.Equal(t, int32(0), job.runs.Load(), "before the slot")
	assert.Equal(t, time.Date(2026, 4, 2, 1, 0, 0, 0, time.UTC), s.Status().NextRunAt)

	clock = clock.Add(45 * time.Minute)
	s.checkAndRun(ctx)
	s.checkAndRun(ctx)
	assert.Equal(t, int32(1), job.runs.Load(), "once per day")

	st := s.Status()
	require.NotNil(t, st.LastRunAt)
	assert.Empty(t, st.LastError)
	assert.Equal(t, time.Date(2026, 4, 3, 1, 0, 0, 0, time.UTC), st.NextRunAt)

	clock = clock.Add(24 * time.Hour)
	s.checkAndRun(ctx)
	assert.Equal(t, int32(2), job.runs.Load(), "next day")
}

func TestDailyScheduler_RunNow(t *testing.T) {
	t.Run("failures are joined and later jobs still run", func(t *testing.T) {
		failing := &countingJob{name: "first", err: errors.New("db down")}
		after := &countingJob{name: "second"}
		s, err := NewDailyScheduler(DefaultConfig(), nil, failing, after)
		require.NoError(t, err)

		err = s.RunNow(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "first: db down")
		assert.Equal(t, int32(1), after.runs.Load())
		assert.Equal(t, "first: db down", s.Status().LastError)
	})

	t.Run("overlapping runs are refused", func(t *testing.T) {
		blocking := &countingJob{name: "slow", block: make(chan struct{})}
		s, err := NewDailyScheduler(DefaultConfig(), nil, blocking)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- s.RunNow(context.Background()) }()
		require.Eventually(t, func() bool { return blocking.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

		assert.ErrorIs(t, s.RunNow(context.Background()), ErrAlreadyRunning)
		close(blocking.block)
		assert.NoError(t, <-done)
	})

	t.Run("job timeout cancels the job context", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.JobTimeout = 10 * time.Millisecond
		stuck := &countingJob{name: "stuck", block: make(chan struct{})}
		s, err := NewDailyScheduler(cfg, nil, stuck)
		require.NoError(t, err)

		assert.ErrorIs(t, s.RunNow(context.Background()), context.DeadlineExceeded)
	})
}

func TestDailyScheduler_StartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckInterval = 5 * time.Millisecond
	job := &countingJob{name: "sweep"}
	s, err := NewDailyScheduler(cfg, nil, job)
	require.NoError(t, err)
	// 23:59 is past any configured slot
	s.now = func() time.Time { return time.Date(2026, 4, 2, 23, 59, 0, 0, time.UTC) }

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Status().Running)
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Status().Running)
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestDailyScheduler_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	s, err := NewDailyScheduler(cfg, nil, &countingJob{name: "sweep"})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.Status().Running)
}
