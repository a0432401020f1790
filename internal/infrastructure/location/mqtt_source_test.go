package location

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error { return t.err }

type fakeMessage struct {
	topic    string
	payload  []byte
	retained bool
}

func (m fakeMessage) Duplicate() bool { return false }
func (m fakeMessage) Qos() byte { return positionQoS }
func (m fakeMessage) Retained() bool { return m.retained }
func (m fakeMessage) Topic() string { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte { return m.payload }
func (m fakeMessage) Ack() {}

// fakeClient is an in-process broker. Retained payloads are replayed
// synchronously inside Subscribe, the way a real broker may send them before
// the SUBACK.
type fakeClient struct {
	mu           sync.Mutex
	connected    bool
	subscribeErr error
	handlers     map[string]mqtt.MessageHandler
	retained     map[string][]byte
	subscribes   int
	unsubscribed []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		connected: true,
		handlers:  make(map[string]mqtt.MessageHandler),
		retained:  make(map[string][]byte),
	}
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *fakeClient) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	if c.subscribeErr != nil {
		c.mu.Unlock()
		return newToken(c.subscribeErr)
	}
	c.subscribes++
	c.handlers[topic] = cb
	retained, ok := c.retained[topic]
	c.mu.Unlock()

	if ok {
		cb(nil, fakeMessage{topic: topic, payload: retained, retained: true})
	}
	return newToken(nil)
}

func (c *fakeClient) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	for _, topic := range topics {
		delete(c.handlers, topic)
		c.unsubscribed = append(c.unsubscribed, topic)
	}
	c.mu.Unlock()
	return newToken(nil)
}

func (c *fakeClient) publish(t *testing.T, topic string, sample domain.PositionSample) {
	t.Helper()
	payload, err := json.Marshal(sample)
	require.NoError(t, err)
	c.publishRaw(topic, payload)
}

func (c *fakeClient) publishRaw(topic string, payload []byte) {
	c.mu.Lock()
	cb, ok := c.handlers[topic]
	c.mu.Unlock()
	if ok {
		cb(nil, fakeMessage{topic: topic, payload: payload})
	}
}

func (c *fakeClient) subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handlers[topic]
	return ok
}

const ambTopic = "fleet/amb-1/position"

func TestMQTTSource_GetSample_AcceptsFreshRetained(t *testing.T) {
	client := newFakeClient()
	payload, _ := json.Marshal(domain.PositionSample{Latitude: 19.4, Longitude: -99.1, AccuracyMeters: 7, CapturedAt: time.Now().Add(-10 * time.Second)})
	client.retained[ambTopic] = payload
	src := NewMQTTSource(client, "fleet", zerolog.Nop())

	sample, err := src.GetSample(context.Background(), domain.SampleOptions{SourceID: "amb-1", MaxAge: time.Minute, Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 7.0, sample.AccuracyMeters)
	assert.False(t, client.subscribed(ambTopic))
	assert.Equal(t, []string{ambTopic}, client.unsubscribed)
}

func TestMQTTSource_GetSample_IgnoresRetainedWithoutMaxAge(t *testing.T) {
	client := newFakeClient()
	payload, _ := json.Marshal(domain.PositionSample{Latitude: 19.4, Longitude: -99.1, AccuracyMeters: 7, CapturedAt: time.Now()})
	client.retained[ambTopic] = payload
	src := NewMQTTSource(client, "fleet", zerolog.Nop())

	go func() {
		assert.Eventually(t, func() bool { return client.subscribed(ambTopic) }, time.Second, 5*time.Millisecond)
		client.publish(t, ambTopic, domain.PositionSample{Latitude: 19.4, Longitude: -99.1, AccuracyMeters: 4, CapturedAt: time.Now()})
	}()

	sample, err := src.GetSample(context.Background(), domain.SampleOptions{SourceID: "amb-1", Timeout: 2 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 4.0, sample.AccuracyMeters)
}

func TestMQTTSource_GetSample_TimesOut(t *testing.T) {
	src := NewMQTTSource(newFakeClient(), "fleet", zerolog.Nop())

	_, err := src.GetSample(context.Background(), domain.SampleOptions{SourceID: "amb-1", Timeout: 30 * time.Millisecond})
	assert.ErrorIs(t, err, domain.ErrTimedOut)
}

func TestMQTTSource_Unavailable(t *testing.T) {
	client := newFakeClient()
	client.connected = false
	src := NewMQTTSource(client, "fleet", zerolog.Nop())

	_, err := src.GetSample(context.Background(), domain.SampleOptions{SourceID: "amb-1"})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	client.connected = true
	client.subscribeErr = errors.New("not authorized")
	_, err = src.StartContinuous(context.Background(), domain.SampleOptions{SourceID: "amb-1"}, func(domain.PositionSample) {})
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.False(t, client.subscribed(ambTopic))
}

func TestMQTTSource_StartContinuous_SharesSubscription(t *testing.T) {
	client := newFakeClient()
	src := NewMQTTSource(client, "fleet", zerolog.Nop())
	ctx := context.Background()

	var mu sync.Mutex
	var a, b []float64
	idA, err := src.StartContinuous(ctx, domain.SampleOptions{SourceID: "amb-1"}, func(s domain.PositionSample) {
		mu.Lock()
		a = append(a, s.AccuracyMeters)
		mu.Unlock()
	})
	require.NoError(t, err)
	idB, err := src.StartContinuous(ctx, domain.SampleOptions{SourceID: "amb-1"}, func(s domain.PositionSample) {
		mu.Lock()
		b = append(b, s.AccuracyMeters)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, 1, client.subscribes)

	client.publish(t, ambTopic, domain.PositionSample{Latitude: 1, Longitude: 1, AccuracyMeters: 20})
	client.publishRaw(ambTopic, []byte("{broken"))

	src.Cancel(idA)
	assert.True(t, client.subscribed(ambTopic))
	client.publish(t, ambTopic, domain.PositionSample{Latitude: 1, Longitude: 1, AccuracyMeters: 9})

	src.Cancel(idB)
	assert.False(t, client.subscribed(ambTopic))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{20}, a)
	assert.Equal(t, []float64{20, 9}, b)
}

func TestMQTTSource_StartContinuous_SkipsRetained(t *testing.T) {
	client := newFakeClient()
	payload, _ := json.Marshal(domain.PositionSample{Latitude: 1, Longitude: 1, AccuracyMeters: 3, CapturedAt: time.Now()})
	client.retained[ambTopic] = payload
	src := NewMQTTSource(client, "fleet", zerolog.Nop())

	var got int
	id, err := src.StartContinuous(context.Background(), domain.SampleOptions{SourceID: "amb-1"}, func(domain.PositionSample) { got++ })
	require.NoError(t, err)
	defer src.Cancel(id)

	assert.Zero(t, got)
}

func TestMQTTSource_StartContinuous_StopsWithContext(t *testing.T) {
	client := newFakeClient()
	src := NewMQTTSource(client, "fleet", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	_, err := src.StartContinuous(ctx, domain.SampleOptions{SourceID: "amb-1"}, func(domain.PositionSample) {})
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool { return !client.subscribed(ambTopic) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, src.subs.active())
}

func TestMQTTSource_Close(t *testing.T) {
	client := newFakeClient()
	src := NewMQTTSource(client, "fleet", zerolog.Nop())

	_, err := src.StartContinuous(context.Background(), domain.SampleOptions{SourceID: "amb-1"}, func(domain.PositionSample) {})
	require.NoError(t, err)

	src.Close()
	assert.False(t, client.IsConnected())
	assert.Equal(t, 0, src.subs.active())
}
