package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"talent-scheduler/internal/interview"
)

// EventsChannel is the Redis channel interview events are published on.
const EventsChannel = "EVENT_INTERVIEW"

// Event types.
const (
	EventCreated    = "interview.created"
	EventBooked     = "interview.booked"
	EventInviteSent = "interview.invite_sent"
	EventCompleted  = "interview.completed"
	EventNoShow     = "interview.no_show"
	EventCancelled  = "interview.cancelled"
	EventPassed     = "interview.passed"
	EventFailed     = "interview.failed"
	EventHiring     = "hiring.initiated"
)

// Event is published after every committed transition.
type Event struct {
	Type        string           `json:"type"`
	InterviewID string           `json:"interviewId"`
	CandidateID string           `json:"candidateId"`
	ClientID    string           `json:"clientId,omitempty"`
	From        interview.Status `json:"from,omitempty"`
	To          interview.Status `json:"to"`
	Actor       string           `json:"actor"`
	At          time.Time        `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// RedisPublisher fans events out on a pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: EventsChannel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// NopPublisher drops events. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
