package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/ht12d/pkg/msgs"
)

// Topic suffixes under <prefix><receiver>/.
const (
	MetaTopic  = "meta"
	FrameTopic = "frame"
)

// DefaultPublishTimeout bounds waiting for a publish to complete.
const DefaultPublishTimeout = 5 * time.Second

// ReceiverTopic returns the topic of a receiver relative to the prefix.
func ReceiverTopic(receiver, suffix string) string {
	return receiver + "/" + suffix
}

// Publisher sends receiver messages to MQTT. Status goes to the retained
// meta topic which is cleared by the will when the connection is lost.
// Frames go to the frame topic.
type Publisher struct {
	Queue    *Queue
	Receiver string
	Timeout  time.Duration

	lock   sync.Mutex
	status []byte
}

// NewPublisher creates a Publisher for a receiver.
func NewPublisher(brokerURL, receiver string) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+ReceiverTopic(receiver, MetaTopic), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("ht12d:" + receiver)
	}
	p := &Publisher{
		Queue:    NewQueue(opts, topicPrefix),
		Receiver: receiver,
		Timeout:  DefaultPublishTimeout,
	}
	p.Queue.OnConnect = func(*Queue) { p.republishStatus() }
	return p, nil
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt:" + p.Receiver
}

// Run implements framework.Runnable. It keeps the connection until ctx is
// done and clears the meta topic before disconnecting.
func (p *Publisher) Run(ctx context.Context) error {
	token := p.Queue.Connect()
	if err := p.wait(ctx, token); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	<-ctx.Done()
	p.Queue.PubWith(ReceiverTopic(p.Receiver, MetaTopic), nil, 1, true).WaitTimeout(p.timeout())
	p.Queue.Close()
	return ctx.Err()
}

// Publish implements receiver.Sink.
func (p *Publisher) Publish(ctx context.Context, msg msgs.Message) error {
	payload, err := msgs.Encode(msg)
	if err != nil {
		return err
	}
	var token paho.Token
	switch msg.(type) {
	case *msgs.Status:
		p.lock.Lock()
		p.status = payload
		p.lock.Unlock()
		token = p.Queue.PubWith(ReceiverTopic(p.Receiver, MetaTopic), payload, 1, true)
	default:
		token = p.Queue.Pub(ReceiverTopic(p.Receiver, FrameTopic), payload)
	}
	return p.wait(ctx, token)
}

func (p *Publisher) republishStatus() {
	p.lock.Lock()
	status := p.status
	p.lock.Unlock()
	if status != nil {
		p.Queue.PubWith(ReceiverTopic(p.Receiver, MetaTopic), status, 1, true)
	}
}

func (p *Publisher) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return DefaultPublishTimeout
}

func (p *Publisher) wait(ctx context.Context, token paho.Token) error {
	done := make(chan bool, 1)
	go func() { done <- token.WaitTimeout(p.timeout()) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ok := <-done:
		if !ok {
			return fmt.Errorf("mqtt: timed out after %v", p.timeout())
		}
		if err := token.Error(); err != nil {
			glog.V(2).Infof("%s: %v", p.Name(), err)
			return err
		}
		return nil
	}
}
