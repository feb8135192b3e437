// Package queue defines the domain events exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue names.  Each event type has its own durable queue.
const (
	ShowListedQueue = "show.listed"
	GamePlayedQueue = "game.played"
)

// Event is a message routed to a queue named after its type.
type Event interface {
	Queue() string
}

// ShowListedEvent is published after a show has been booked.  It carries
// enough information for consumers to log or notify without querying the
// primary database.
type ShowListedEvent struct {
	EventID    string    `json:"event_id"`
	ShowID     uint64    `json:"show_id"`
	VenueID    uint64    `json:"venue_id"`
	VenueName  string    `json:"venue_name"`
	ArtistID   uint64    `json:"artist_id"`
	ArtistName string    `json:"artist_name"`
	StartTime  time.Time `json:"start_time"`
	ListedAt   time.Time `json:"listed_at"`
}

// Queue implements Event.
func (ShowListedEvent) Queue() string { return ShowListedQueue }

// GamePlayedEvent is published after a quiz score has been recorded.
type GamePlayedEvent struct {
	EventID     string    `json:"event_id"`
	PlayerID    uint64    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Score       int       `json:"score"`
	GamesPlayed int       `json:"games_played"`
	TotalScore  int       `json:"total_score"`
	PlayedAt    time.Time `json:"played_at"`
}

// Queue implements Event.
func (GamePlayedEvent) Queue() string { return GamePlayedQueue }

// NewEventID returns a random identifier for deduplication downstream.
func NewEventID() string { return uuid.NewString() }
