package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/smartinventory/inventory-backend/pkg/config"
	"github.com/smartinventory/inventory-backend/pkg/db/models"
	"github.com/smartinventory/inventory-backend/pkg/enums"
	"github.com/smartinventory/inventory-backend/pkg/logger"
	"github.com/smartinventory/inventory-backend/pkg/outbox"
)

type fakeOutboxRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (r *fakeOutboxRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return r.events, nil
}

func (r *fakeOutboxRepo) MarkPublished(id uuid.UUID) error {
	r.published = append(r.published, id)
	return nil
}

func (r *fakeOutboxRepo) MarkFailed(id uuid.UUID, err error) error {
	r.failed = append(r.failed, id)
	return nil
}

type fakePinger struct{}

func (fakePinger) Ping(context.Context) error { return nil }

type fakePubSub struct{}

func (fakePubSub) Ping(context.Context) error            { return nil }
func (fakePubSub) DomainPublisher() *gcppubsub.Publisher { return nil }

type fakePublishResult struct {
	err error
}

func (r fakePublishResult) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "server-id", nil
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	failures int
}

func (p *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	if p.failures > 0 {
		p.failures--
		return fakePublishResult{err: errors.New("publish rejected")}
	}
	return fakePublishResult{}
}

func newTestService(t *testing.T, repo *fakeOutboxRepo, pub *fakePublisher) *Service {
	t.Helper()
	cfg := &config.Config{
		Outbox: config.OutboxConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: 3},
	}
	svc, err := NewService(ServiceParams{
		Config:           cfg,
		Logger:           logger.New(logger.Options{ServiceName: "outbox-test"}),
		DB:               fakePinger{},
		PubSub:           fakePubSub{},
		Repository:       repo,
		PublisherFactory: func() publisher { return pub },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func outboxEvent(t *testing.T, eventType enums.OutboxEventType) models.OutboxEvent {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{}`),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregatePurchaseOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestServicePublishesPendingEvents(t *testing.T) {
	event := outboxEvent(t, enums.EventOrderConfirmed)
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("expected event marked published, got %v", repo.published)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("expected no failures, got %v", repo.failed)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Attributes["event_type"] != string(enums.EventOrderConfirmed) {
		t.Fatalf("unexpected event_type attribute %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id attribute %q", msg.Attributes["aggregate_id"])
	}
}

func TestServiceMarksFailureAndContinues(t *testing.T) {
	broken := outboxEvent(t, enums.EventOrderCancelled)
	healthy := outboxEvent(t, enums.EventOrderReceived)
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{broken, healthy}}
	pub := &fakePublisher{failures: 1}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to be processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != broken.ID {
		t.Fatalf("expected broken event marked failed, got %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != healthy.ID {
		t.Fatalf("expected healthy event marked published, got %v", repo.published)
	}
}

func TestServiceMarksUndecodablePayloadFailed(t *testing.T) {
	event := outboxEvent(t, enums.EventOrderCreated)
	event.Payload = json.RawMessage(`not-json`)
	repo := &fakeOutboxRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	if _, err := svc.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if len(repo.failed) != 1 || repo.failed[0] != event.ID {
		t.Fatalf("expected event marked failed, got %v", repo.failed)
	}
	if len(pub.messages) != 0 {
		t.Fatalf("expected no publish attempts, got %d", len(pub.messages))
	}
}

func TestServiceIdlesWhenQueueEmpty(t *testing.T) {
	repo := &fakeOutboxRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if processed {
		t.Fatal("expected idle batch")
	}
}
