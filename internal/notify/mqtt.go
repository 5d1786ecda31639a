// Package notify publishes completion changes to an MQTT broker so other
// devices can follow along.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/five82/salat/internal/config"
	"github.com/five82/salat/internal/prayer"
)

const publishTimeout = 5 * time.Second

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends one retained message per completion change.
type Publisher struct {
	client client
	topic  string
}

// Message is the JSON payload published on every change.
type Message struct {
	Date      prayer.Date   `json:"date"`
	Completed int           `json:"completed"`
	Total     int           `json:"total"`
	Prayers   []MessageItem `json:"prayers"`
	SentAt    time.Time     `json:"sent_at"`
}

// MessageItem is one prayer inside a Message.
type MessageItem struct {
	ID      int         `json:"id"`
	Name    prayer.Name `json:"name"`
	Time    string      `json:"time"`
	Checked bool        `json:"checked"`
}

// Connect dials the broker in cfg. It returns nil, nil when no broker is
// configured.
func Connect(cfg config.MQTT) (*Publisher, error) {
	broker := strings.TrimSpace(cfg.Broker)
	if broker == "" {
		return nil, nil
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(publishTimeout)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
	}

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}
	return newPublisher(c, cfg.Topic), nil
}

func newPublisher(c client, topic string) *Publisher {
	if strings.TrimSpace(topic) == "" {
		topic = "salat/completion"
	}
	return &Publisher{client: c, topic: topic}
}

// CompletionChanged publishes the state of view.
func (p *Publisher) CompletionChanged(ctx context.Context, view prayer.DayView) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(newMessage(view, time.Now()))
	if err != nil {
		return fmt.Errorf("encode completion message: %w", err)
	}

	token := p.client.Publish(p.topic, 1, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	log.Debug().Str("topic", p.topic).Int("completed", view.Completed()).Msg("completion published")
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Disconnect(250)
}

func newMessage(view prayer.DayView, now time.Time) Message {
	msg := Message{
		Completed: view.Completed(),
		Total:     len(view),
		Prayers:   make([]MessageItem, 0, len(view)),
		SentAt:    now.UTC(),
	}
	if d, ok := view.Date(); ok {
		msg.Date = d
	}
	for _, e := range view {
		msg.Prayers = append(msg.Prayers, MessageItem{ID: e.ID, Name: e.Name, Time: e.Time, Checked: e.Checked})
	}
	return msg
}
