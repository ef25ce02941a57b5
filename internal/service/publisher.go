// Package service publishes reservation domain events to RabbitMQ.
// Publishing is best-effort: errors are logged and returned so callers can
// ignore them without failing the request that triggered the event.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/outy-app/outy/internal/queue"
)

// ReservationPublisher emits reservation lifecycle events.
type ReservationPublisher interface {
	PublishReservation(ctx context.Context, routingKey string, ev queue.ReservationEvent) error
}

// NopPublisher drops every event.  Used when RABBITMQ_URL is empty.
type NopPublisher struct{}

func (NopPublisher) PublishReservation(context.Context, string, queue.ReservationEvent) error {
	return nil
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher keeps one connection and channel open and reopens them
// once when a publish fails.
type AMQPPublisher struct {
	url  string
	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
	open func() (channel, error)
}

// NewAMQPPublisher dials url and declares the reservations exchange.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url}
	p.open = p.dial
	ch, err := p.open()
	if err != nil {
		return nil, err
	}
	p.ch = ch
	return p, nil
}

func (p *AMQPPublisher) dial() (channel, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := queue.DeclareTopology(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn = conn
	return ch, nil
}

// PublishReservation sends ev as a persistent JSON message.
func (p *AMQPPublisher) PublishReservation(ctx context.Context, routingKey string, ev queue.ReservationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publish(ctx, routingKey, msg)
	if err == nil {
		return nil
	}
	log.Warn().Err(err).Str("routing_key", routingKey).Msg("rabbitmq: publish failed, reopening channel")
	ch, derr := p.open()
	if derr != nil {
		log.Error().Err(derr).Msg("rabbitmq: reconnect failed")
		return err
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	p.ch = ch
	if err := p.publish(ctx, routingKey, msg); err != nil {
		log.Error().Err(err).Str("routing_key", routingKey).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if p.ch == nil {
		return fmt.Errorf("rabbitmq: no channel")
	}
	return p.ch.PublishWithContext(ctx, queue.ExchangeName, routingKey, false, false, msg)
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
