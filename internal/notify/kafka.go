package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ErrNotifierClosed = errors.New("notifier closed")

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	RetryAttempts int
	WriteTimeout  time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes events keyed by type. Writes happen off the
// request goroutine and are bounded by WriteTimeout.
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
	log     *zap.Logger
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
}

func NewKafkaNotifier(cfg KafkaConfig, log *zap.Logger) *KafkaNotifier {
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  attempts,
		BatchTimeout: 10 * time.Millisecond,
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second,
					DualStack: true,
					KeepAlive: 30 * time.Second,
				}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Sugar().Errorf("kafka writer: "+msg, args...)
		}),
		Compression: kafka.Snappy,
	}
	return newKafkaNotifier(writer, cfg.WriteTimeout, log)
}

func newKafkaNotifier(w messageWriter, timeout time.Duration, log *zap.Logger) *KafkaNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaNotifier{writer: w, timeout: timeout, log: log.Named("kafka")}
}

func (k *KafkaNotifier) Notify(_ context.Context, event Event) {
	if err := k.publish(event); err != nil {
		k.log.Warn("event not published", zap.String("type", event.Type), zap.Error(err))
	}
}

func (k *KafkaNotifier) publish(event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(event.Type), Value: value, Time: event.At}

	// Close takes the write lock, so no Add can follow its Wait.
	k.mu.RLock()
	if k.closed {
		k.mu.RUnlock()
		return ErrNotifierClosed
	}
	k.wg.Add(1)
	k.mu.RUnlock()

	go func() {
		defer k.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
		defer cancel()
		if err := k.writer.WriteMessages(ctx, msg); err != nil {
			k.log.Error("write event", zap.String("type", event.Type), zap.String("action", event.Action), zap.Error(err))
		}
	}()
	return nil
}

// Close waits for in-flight writes and closes the writer. Safe to call twice.
func (k *KafkaNotifier) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	k.mu.Unlock()

	k.wg.Wait()
	return k.writer.Close()
}
