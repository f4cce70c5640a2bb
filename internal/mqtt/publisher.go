package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"smart-irrigation/internal/models"
)

// publishTimeout bounds how long one broker acknowledgement may take
const publishTimeout = 5 * time.Second

// tokenPublisher is the part of mqtt.Client the publisher needs
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher drains prediction events from a channel and publishes them
type Publisher struct {
	client tokenPublisher
	logger *zap.Logger

	// Input channel (read by publisher, written by the prediction service)
	Events chan *models.PredictionEvent

	// Topic patterns
	predictionTopic string // e.g., "irrigation/{session_id}/prediction"
	sprinklerTopic  string // e.g., "irrigation/sprinkler/{index}/command"

	// Called for every event that could not be queued or published
	OnFailure func()
}

// PublisherConfig holds configuration for MQTT publisher
type PublisherConfig struct {
	PredictionTopic string
	SprinklerTopic  string
	QueueSize       int
}

// NewPublisher creates a new MQTT publisher with its event channel
func NewPublisher(client tokenPublisher, config PublisherConfig, logger *zap.Logger) *Publisher {
	size := config.QueueSize
	if size <= 0 {
		size = 50
	}
	return &Publisher{
		client:          client,
		logger:          logger.Named("mqtt"),
		Events:          make(chan *models.PredictionEvent, size),
		predictionTopic: config.PredictionTopic,
		sprinklerTopic:  config.SprinklerTopic,
	}
}

// Enqueue hands an event to the publish loop without blocking the caller.
// It reports false when the queue is full and the event was dropped.
func (p *Publisher) Enqueue(ev *models.PredictionEvent) bool {
	select {
	case p.Events <- ev:
		return true
	default:
		p.logger.Warn("MQTT Publisher: queue full, dropping prediction", zap.String("session_id", ev.SessionID))
		p.fail()
		return false
	}
}

// Start begins publishing prediction events from the channel
// Runs until context is cancelled or channel is closed
func (p *Publisher) Start(ctx context.Context) {
	p.logger.Info("MQTT Publisher: Starting...")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("MQTT Publisher: Context cancelled, shutting down...")
			return

		case ev, ok := <-p.Events:
			if !ok {
				p.logger.Info("MQTT Publisher: Event channel closed, shutting down...")
				return
			}

			if err := p.publishPrediction(ev); err != nil {
				p.logger.Error("Error publishing prediction", zap.Error(err))
				p.fail()
			}
		}
	}
}

// publishPrediction publishes the full prediction and one command per sprinkler
func (p *Publisher) publishPrediction(ev *models.PredictionEvent) error {
	if p.predictionTopic != "" {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal prediction event: %w", err)
		}
		topic := formatTopic(p.predictionTopic, ev.SessionID, -1)
		if err := p.publish(topic, payload); err != nil {
			return err
		}
		p.logger.Debug("Published prediction", zap.String("topic", topic), zap.Int("on", ev.OnCount))
	}

	if p.sprinklerTopic != "" {
		for i, label := range ev.Prediction {
			cmd := models.SprinklerCommand{
				SessionID: ev.SessionID,
				Index:     i,
				State:     models.Status(label).String(),
				Timestamp: ev.Timestamp,
			}
			payload, err := json.Marshal(cmd)
			if err != nil {
				return fmt.Errorf("failed to marshal sprinkler command: %w", err)
			}
			if err := p.publish(formatTopic(p.sprinklerTopic, ev.SessionID, i), payload); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) fail() {
	if p.OnFailure != nil {
		p.OnFailure()
	}
}

// formatTopic replaces {session_id} and {index} placeholders; index < 0 leaves {index} as-is
func formatTopic(topicPattern, sessionID string, index int) string {
	topic := strings.ReplaceAll(topicPattern, "{session_id}", sessionID)
	if index >= 0 {
		topic = strings.ReplaceAll(topic, "{index}", strconv.Itoa(index))
	}
	return topic
}
