package location

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
)

const (
	subscribeTimeout = 5 * time.Second
	positionQoS      = 1
)

// Client is the subset of the paho client MQTTSource needs.
type Client interface {
	IsConnected() bool
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

// ConnectMQTT dials the broker with auto-reconnect enabled.
func ConnectMQTT(broker, clientID string, tlsConfig *tls.Config, optsFunc func(*mqtt.ClientOptions)) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetTLSConfig(tlsConfig).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	if optsFunc != nil {
		optsFunc(opts)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

// listener receives a decoded sample and whether the broker replayed it as
// the retained last value.
type listener func(sample domain.PositionSample, retained bool)

// MQTTSource reads device positions from <prefix>/<source_id>/position. One
// broker subscription per topic is shared by every local listener.
type MQTTSource struct {
	client Client
	prefix string

	mu     sync.Mutex
	topics map[string]map[string]listener

	subs   *subscriptions
	now    func() time.Time
	logger zerolog.Logger
}

var _ ports.LocationSource = (*MQTTSource)(nil)

// NewMQTTSource creates an MQTTSource on an already connected client.
func NewMQTTSource(client Client, topicPrefix string, logger zerolog.Logger) *MQTTSource {
	return &MQTTSource{
		client: client,
		prefix: topicPrefix,
		topics: make(map[string]map[string]listener),
		subs:   newSubscriptions(),
		now:    time.Now,
		logger: logger.With().Str("component", "mqtt_location").Logger(),
	}
}

func (s *MQTTSource) topic(sourceID string) string {
	return fmt.Sprintf("%s/%s/position", s.prefix, sourceID)
}

// GetSample waits for the next reading. A retained reading is used only when
// opts.MaxAge covers it.
func (s *MQTTSource) GetSample(ctx context.Context, opts domain.SampleOptions) (domain.PositionSample, error) {
	if opts.SourceID == "" {
		return domain.PositionSample{}, fmt.Errorf("%w: source id required", domain.ErrUnsupported)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	got := make(chan domain.PositionSample, 1)
	topic := s.topic(opts.SourceID)
	id, err := s.listen(topic, func(sample domain.PositionSample, retained bool) {
		if retained && !fresh(sample, opts.MaxAge, s.now()) {
			return
		}
		select {
		case got <- sample:
		default:
		}
	})
	if err != nil {
		return domain.PositionSample{}, err
	}
	defer s.unlisten(topic, id)

	select {
	case sample := <-got:
		return sample, nil
	case <-ctx.Done():
		return domain.PositionSample{}, waitErr(ctx.Err())
	}
}

// StartContinuous forwards live readings until Cancel is called or ctx is done.
func (s *MQTTSource) StartContinuous(ctx context.Context, opts domain.SampleOptions, onSample func(domain.PositionSample)) (string, error) {
	if opts.SourceID == "" {
		return "", fmt.Errorf("%w: source id required", domain.ErrUnsupported)
	}

	topic := s.topic(opts.SourceID)
	lid, err := s.listen(topic, func(sample domain.PositionSample, retained bool) {
		if retained {
			return
		}
		onSample(sample)
	})
	if err != nil {
		return "", err
	}

	subID := s.subs.add(func() { s.unlisten(topic, lid) })
	context.AfterFunc(ctx, func() { s.Cancel(subID) })
	return subID, nil
}

// Cancel releases a continuous subscription.
func (s *MQTTSource) Cancel(subscriptionID string) {
	s.subs.cancel(subscriptionID)
}

// Close releases every subscription and disconnects from the broker.
func (s *MQTTSource) Close() {
	s.subs.cancelAll()
	if s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

// listen registers fn on topic and subscribes at the broker for the first
// listener. The lock is not held while waiting for the SUBACK because the
// broker may deliver the retained message before acknowledging.
func (s *MQTTSource) listen(topic string, fn listener) (string, error) {
	if !s.client.IsConnected() {
		return "", fmt.Errorf("%w: mqtt client not connected", domain.ErrSourceUnavailable)
	}

	id := uuid.NewString()
	s.mu.Lock()
	ls, ok := s.topics[topic]
	if !ok {
		ls = make(map[string]listener)
		s.topics[topic] = ls
	}
	ls[id] = fn
	s.mu.Unlock()

	if ok {
		return id, nil
	}

	token := s.client.Subscribe(topic, positionQoS, s.handle)
	if !token.WaitTimeout(subscribeTimeout) {
		s.unlisten(topic, id)
		return "", fmt.Errorf("%w: subscribe %s", domain.ErrTimedOut, topic)
	}
	if err := token.Error(); err != nil {
		s.unlisten(topic, id)
		return "", fmt.Errorf("%w: subscribe %s: %w", domain.ErrSourceUnavailable, topic, err)
	}
	return id, nil
}

func (s *MQTTSource) unlisten(topic, id string) {
	s.mu.Lock()
	ls, ok := s.topics[topic]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(ls, id)
	last := len(ls) == 0
	if last {
		delete(s.topics, topic)
	}
	s.mu.Unlock()

	if last && s.client.IsConnected() {
		token := s.client.Unsubscribe(topic)
		if token.WaitTimeout(subscribeTimeout) && token.Error() != nil {
			s.logger.Warn().Err(token.Error()).Str("topic", topic).Msg("unsubscribe failed")
		}
	}
}

func (s *MQTTSource) handle(_ mqtt.Client, msg mqtt.Message) {
	sample, err := decodeSample(msg.Payload(), s.now())
	if err != nil {
		s.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("discarding malformed sample")
		return
	}

	s.mu.Lock()
	ls := make([]listener, 0, len(s.topics[msg.Topic()]))
	for _, fn := range s.topics[msg.Topic()] {
		ls = append(ls, fn)
	}
	s.mu.Unlock()

	for _, fn := range ls {
		fn(sample, msg.Retained())
	}
}
