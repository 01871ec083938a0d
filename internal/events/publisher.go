// Package events provides NATS event publishing for pricing-service
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	streamName          = "PRICING"
	subjectRunCompleted = "pricing.run.completed"
)

// RunCompletedEvent is the payload published after each successful run.
type RunCompletedEvent struct {
	RunID           string    `json:"runId"`
	SKUCount        int       `json:"skuCount"`
	CostPriceFactor float64   `json:"costPriceFactor"`
	CompletedAt     time.Time `json:"completedAt"`
}

// PricingEventPublisher publishes run lifecycle events to NATS JetStream.
type PricingEventPublisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// NewPricingEventPublisher connects to NATS and ensures the pricing stream
// exists. The stream-ensure step is advisory; publishing still works when a
// pre-provisioned stream owns the subject.
func NewPricingEventPublisher(natsURL string, logger *logrus.Logger) (*PricingEventPublisher, error) {
	if natsURL == "" {
		return nil, fmt.Errorf("NATS URL is required")
	}

	log := logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("pricing-service-publisher"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"pricing.>"},
	}); err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		log.WithError(err).Warn("Failed to ensure pricing stream exists")
	}

	return &PricingEventPublisher{
		nc:     nc,
		js:     js,
		logger: log.WithField("component", "pricing-events"),
	}, nil
}

// PublishRunCompleted publishes a pricing.run.completed event
func (p *PricingEventPublisher) PublishRunCompleted(ctx context.Context, runID string, skuCount int, costPriceFactor float64) error {
	event := RunCompletedEvent{
		RunID:           runID,
		SKUCount:        skuCount,
		CostPriceFactor: costPriceFactor,
		CompletedAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run-completed event: %w", err)
	}

	if _, err := p.js.Publish(subjectRunCompleted, payload, nats.Context(ctx)); err != nil {
		p.logger.WithFields(logrus.Fields{
			"runId":    runID,
			"skuCount": skuCount,
		}).WithError(err).Error("Failed to publish pricing.run.completed event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"runId":    runID,
		"skuCount": skuCount,
	}).Info("Published pricing.run.completed event")
	return nil
}

// IsConnected returns true if connected to NATS
func (p *PricingEventPublisher) IsConnected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

// Close closes the NATS connection
func (p *PricingEventPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
