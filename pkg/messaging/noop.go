package messaging

import (
	"context"
)

// NoopBroker discards every publish. Used when no broker is configured so
// services can publish unconditionally.
type NoopBroker struct{}

func NewNoopBroker() Broker {
	return &NoopBroker{}
}

func (NoopBroker) Publish(ctx context.Context, topic string, message interface{}) error {
	return nil
}

func (NoopBroker) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NoopBroker) Close() error {
	return nil
}
