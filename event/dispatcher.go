package event

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher delivers a single outbox payload to its topic. Implementations
// must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// KafkaPublisher publishes outbox rows to Kafka via franz-go.
type KafkaPublisher struct {
	client *kgo.Client
}

func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("event: build kafka client: %w", err)
	}
	return &KafkaPublisher{client: client}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	rec := &kgo.Record{Topic: topic, Key: []byte(key), Value: payload}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("event: produce %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// Dispatcher drains pending outbox rows and hands them to the publisher. Rows
// are claimed with SKIP LOCKED so multiple dispatcher instances never double
// deliver; a row that fails to publish stays pending with its attempt count
// bumped and is retried on the next tick.
type Dispatcher struct {
	pool        *pgxpool.Pool
	pub         Publisher
	interval    time.Duration
	batchSize   int
	maxAttempts int
	logger      *log.Logger
}

func NewDispatcher(pool *pgxpool.Pool, pub Publisher, interval time.Duration, logger *log.Logger) *Dispatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Dispatcher{
		pool:        pool,
		pub:         pub,
		interval:    interval,
		batchSize:   50,
		maxAttempts: 10,
		logger:      logger,
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n, err := d.DrainOnce(ctx); err != nil {
				d.logger.Printf("event: dispatch pass failed: %v", err)
			} else if n > 0 {
				d.logger.Printf("event: dispatched %d outbox messages", n)
			}
		}
	}
}

// DrainOnce claims and publishes up to one batch of pending rows. It returns
// the number of rows successfully delivered.
func (d *Dispatcher) DrainOnce(ctx context.Context) (int, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("event: begin dispatch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id::text, topic, payload
		FROM outbox
		WHERE status = 'pending' AND attempts < $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, d.maxAttempts, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("event: claim outbox rows: %w", err)
	}

	type pendingRow struct {
		id      string
		topic   string
		payload []byte
	}
	batch := make([]pendingRow, 0, d.batchSize)
	for rows.Next() {
		var r pendingRow
		if err := rows.Scan(&r.id, &r.topic, &r.payload); err != nil {
			rows.Close()
			return 0, fmt.Errorf("event: scan outbox row: %w", err)
		}
		batch = append(batch, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("event: iterate outbox rows: %w", err)
	}

	delivered := 0
	for _, r := range batch {
		if err := d.pub.Publish(ctx, r.topic, r.id, r.payload); err != nil {
			d.logger.Printf("event: publish %s (%s): %v", r.topic, r.id, err)
			if _, uerr := tx.Exec(ctx, `UPDATE outbox SET attempts = attempts + 1 WHERE id = $1`, r.id); uerr != nil {
				return delivered, fmt.Errorf("event: bump attempts: %w", uerr)
			}
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE outbox SET status = 'sent', sent_at = now() WHERE id = $1`, r.id); err != nil {
			return delivered, fmt.Errorf("event: mark sent: %w", err)
		}
		delivered++
	}

	if err := tx.Commit(ctx); err != nil {
		return delivered, fmt.Errorf("event: commit dispatch tx: %w", err)
	}
	return delivered, nil
}
