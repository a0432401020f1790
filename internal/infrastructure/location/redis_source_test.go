package location

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

func newRedisSource(t *testing.T) (*RedisSource, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	src := NewRedisSource(client, zerolog.Nop())
	t.Cleanup(src.Close)
	return src, client
}

// publishUntil keeps publishing sample until done is closed, so the reader
// sees it regardless of when its subscription lands.
func publishUntil(t *testing.T, client *redis.Client, sourceID string, sample domain.PositionSample, done <-chan struct{}) {
	t.Helper()
	payload, err := json.Marshal(sample)
	require.NoError(t, err)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				client.Publish(context.Background(), positionChannelPrefix+sourceID, payload)
			}
		}
	}()
}

func TestRedisSource_GetSample_UsesFreshCache(t *testing.T) {
	src, _ := newRedisSource(t)
	ctx := context.Background()
	captured := time.Now().Add(-5 * time.Second).UTC().Truncate(time.Millisecond)

	require.NoError(t, src.Report(ctx, "amb-1", domain.PositionSample{Latitude: 19.4, Longitude: -99.1, AccuracyMeters: 6, CapturedAt: captured}))

	sample, err := src.GetSample(ctx, domain.SampleOptions{SourceID: "amb-1", MaxAge: time.Minute, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 6.0, sample.AccuracyMeters)
	assert.True(t, sample.CapturedAt.Equal(captured))
}

func TestRedisSource_GetSample_StaleCacheWaitsForLive(t *testing.T) {
	src, client := newRedisSource(t)
	ctx := context.Background()

	stale := domain.PositionSample{Latitude: 1, Longitude: 1, AccuracyMeters: 40, CapturedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, src.Report(ctx, "amb-1", stale))

	done := make(chan struct{})
	defer close(done)
	publishUntil(t, client, "amb-1", domain.PositionSample{Latitude: 2, Longitude: 2, AccuracyMeters: 7, CapturedAt: time.Now()}, done)

	sample, err := src.GetSample(ctx, domain.SampleOptions{SourceID: "amb-1", MaxAge: time.Minute, Timeout: 2 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 7.0, sample.AccuracyMeters)
}

func TestRedisSource_GetSample_TimesOut(t *testing.T) {
	src, _ := newRedisSource(t)

	_, err := src.GetSample(context.Background(), domain.SampleOptions{SourceID: "quiet", Timeout: 50 * time.Millisecond})
	assert.ErrorIs(t, err, domain.ErrTimedOut)
}

func TestRedisSource_GetSample_CallerCancel(t *testing.T) {
	src, _ := newRedisSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := src.GetSample(ctx, domain.SampleOptions{SourceID: "quiet"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrTimedOut)
}

func TestRedisSource_RequiresSourceID(t *testing.T) {
	src, _ := newRedisSource(t)

	_, err := src.GetSample(context.Background(), domain.SampleOptions{})
	assert.ErrorIs(t, err, domain.ErrUnsupported)

	_, err = src.StartContinuous(context.Background(), domain.SampleOptions{}, func(domain.PositionSample) {})
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestRedisSource_StartContinuousAndCancel(t *testing.T) {
	src, client := newRedisSource(t)
	ctx := context.Background()

	var mu sync.Mutex
	var got []domain.PositionSample
	id, err := src.StartContinuous(ctx, domain.SampleOptions{SourceID: "amb-2"}, func(s domain.PositionSample) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, 1, src.subs.active())

	payload, err := json.Marshal(domain.PositionSample{Latitude: 3, Longitude: 3, AccuracyMeters: 12, CapturedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, client.Publish(ctx, positionChannelPrefix+"amb-2", payload).Err())
	require.NoError(t, client.Publish(ctx, positionChannelPrefix+"amb-2", []byte("not json")).Err())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 10*time.Millisecond)

	src.Cancel(id)
	src.Cancel(id)
	assert.Equal(t, 0, src.subs.active())
}

func TestRedisSource_StartContinuous_StopsWithContext(t *testing.T) {
	src, _ := newRedisSource(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := src.StartContinuous(ctx, domain.SampleOptions{SourceID: "amb-3"}, func(domain.PositionSample) {})
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool { return src.subs.active() == 0 }, time.Second, 10*time.Millisecond)
}
