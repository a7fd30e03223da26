package cache

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sirupsen/logrus"
)

// Topic carries one message per cache write; the payload is the key.
const Topic = "cache.changed"

// Change is delivered to subscribers after a key was rewritten.
type Change struct {
	Key string
}

// Bus broadcasts cache writes over an in-process watermill pub/sub. It
// replaces the browser's storage-change event with an explicit call.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    *logrus.Logger
}

func NewBus(log *logrus.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, newWatermillLogger(log)),
		log:    log,
	}
}

func (b *Bus) Notify(ctx context.Context, key string) {
	msg := message.NewMessage(watermill.NewUUID(), []byte(key))
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		b.log.WithError(err).WithField("key", key).Warn("cache change notification failed")
	}
}

// Subscribe returns changes published after the call. The channel closes
// when ctx is done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Change, error) {
	msgs, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, err
	}
	out := make(chan Change)
	go func() {
		defer close(out)
		for msg := range msgs {
			c := Change{Key: string(msg.Payload)}
			msg.Ack()
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error { return b.pubsub.Close() }

// watermillLogger routes watermill's internal logging into logrus.
type watermillLogger struct {
	entry *logrus.Entry
}

func newWatermillLogger(log *logrus.Logger) watermill.LoggerAdapter {
	return watermillLogger{entry: logrus.NewEntry(log).WithField("component", "cache-bus")}
}

func (l watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).WithError(err).Error(msg)
}

func (l watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.entry.WithFields(logrus.Fields(fields)).Trace(msg)
}

func (l watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}
