package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Queues lists every queue the consumer drains.
var Queues = []string{ShowListedQueue, GamePlayedQueue}

// EventLog appends one line per event to a file.  It is safe for
// concurrent use.
type EventLog struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEventLog writes to w.
func NewEventLog(w io.Writer) *EventLog { return &EventLog{w: w} }

// OpenEventLog opens (creating if needed) the log file at path, making its
// parent directory first.
func OpenEventLog(path string) (*EventLog, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	return NewEventLog(f), f, nil
}

// Handle decodes a delivery body from queue and appends its line.
func (l *EventLog) Handle(queue string, body []byte) error {
	line, err := formatEvent(queue, body)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.w, line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatEvent(queue string, body []byte) (string, error) {
	switch queue {
	case ShowListedQueue:
		var ev ShowListedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", queue, err)
		}
		return fmt.Sprintf("[%s] Show listed | show_id=%d | venue_id=%d | venue=%q | artist_id=%d | artist=%q | starts=%s | event_id=%s\n",
			ev.ListedAt.UTC().Format(time.RFC3339), ev.ShowID, ev.VenueID, ev.VenueName, ev.ArtistID, ev.ArtistName,
			ev.StartTime.UTC().Format(time.RFC3339), ev.EventID), nil
	case GamePlayedQueue:
		var ev GamePlayedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", queue, err)
		}
		return fmt.Sprintf("[%s] Game played | player_id=%d | player=%q | score=%d | games_played=%d | total_score=%d | event_id=%s\n",
			ev.PlayedAt.UTC().Format(time.RFC3339), ev.PlayerID, ev.PlayerName, ev.Score, ev.GamesPlayed, ev.TotalScore, ev.EventID), nil
	}
	return "", fmt.Errorf("unknown queue %q", queue)
}

// Consume connects to the broker at url, declares every queue in Queues
// (durable) and appends each delivery to log until ctx is cancelled.  A
// lost connection is redialled with exponential backoff.  Messages that
// cannot be handled are rejected without requeue so a bad payload cannot
// spin the loop.
func Consume(ctx context.Context, url string, log *EventLog) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logrus.WithError(err).WithField("retry_in", backoff).Warn("event-consumer: dial broker")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		logrus.WithError(err).Warn("event-consumer: consume loop ended; reconnecting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, log *EventLog) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logrus.WithError(err).Warn("event-consumer: set QoS")
	}

	type delivery struct {
		queue string
		amqp.Delivery
	}
	merged := make(chan delivery)
	var wg sync.WaitGroup
	for _, q := range Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		wg.Add(1)
		go func(q string, msgs <-chan amqp.Delivery) {
			defer wg.Done()
			for d := range msgs {
				merged <- delivery{queue: q, Delivery: d}
			}
		}(q, msgs)
	}
	go func() { wg.Wait(); close(merged) }()

	for {
		select {
		case <-ctx.Done():
			_ = ch.Close() // ends the consumers so the forwarders exit
			for range merged {
			}
			return ctx.Err()
		case d, ok := <-merged:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := log.Handle(d.queue, d.Body); err != nil {
				logrus.WithError(err).WithField("queue", d.queue).Error("event-consumer: handle message")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
