package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// topicSender hides the Pub/Sub topic so tests can substitute it.
type topicSender interface {
	Send(ctx context.Context, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// gcpTopic adapts a Pub/Sub topic and owns its client.
type gcpTopic struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func (g *gcpTopic) Send(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	res := g.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	return res.Get(ctx)
}

func (g *gcpTopic) Close() error {
	g.topic.Stop()
	return g.client.Close()
}

// pubsubPublisher sends item events to a Google Cloud Pub/Sub topic.
type pubsubPublisher struct {
	id     string
	sender topicSender
	log    Logger
}

func newPubSubPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("publisher %q missing pubsub configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	if cfg.PubSub.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.PubSub.Endpoint))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &pubsubPublisher{
		id:     cfg.ID,
		sender: &gcpTopic{client: client, topic: client.Topic(cfg.PubSub.TopicID)},
		log:    ensureLogger(log),
	}, nil
}

func (p *pubsubPublisher) ID() string   { return p.id }
func (p *pubsubPublisher) Type() string { return TypePubSub }

func (p *pubsubPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	serverID, err := p.sender.Send(ctx, payload, evt.attributes())
	if err != nil {
		p.log.ErrorObj("pubsub publisher send failed", "publisher_pubsub_error", map[string]any{
			"publisher_id": p.id,
			"event_id":     evt.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub publisher delivered event", "publisher_pubsub_delivery", map[string]any{
		"publisher_id": p.id,
		"event_id":     evt.ID,
		"message_id":   serverID,
	})
	return nil
}

// Close stops the topic's background batching and closes the client.
func (p *pubsubPublisher) Close() error {
	if p == nil || p.sender == nil {
		return nil
	}
	return p.sender.Close()
}

