// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"strconv"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Every committed mutation of the catalog or of the
// social graph produces exactly one of them.
const (
	// Film events
	EventFilmCreated EventType = "film.created"
	EventFilmUpdated EventType = "film.updated"
	EventFilmDeleted EventType = "film.deleted"

	// User events
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"

	// Reference data events
	EventGenreCreated  EventType = "genre.created"
	EventGenreDeleted  EventType = "genre.deleted"
	EventRatingCreated EventType = "mpa.created"
	EventRatingDeleted EventType = "mpa.deleted"

	// Social events
	EventFilmLiked     EventType = "social.film_liked"
	EventFilmUnliked   EventType = "social.film_unliked"
	EventFriendAdded   EventType = "social.friend_added"
	EventFriendRemoved EventType = "social.friend_removed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID int64) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: strconv.FormatInt(aggregateID, 10),
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Entity Events
// ═══════════════════════════════════════════════════════════════════════════

// EntityChangedEvent covers create/update/delete of films, users and
// reference data. Name carries the film name, user login or reference name.
type EntityChangedEvent struct {
	BaseEvent
	Name string `json:"name,omitempty"`
}

// Payload implements Event interface.
func (e EntityChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id":   e.AggregateId,
		"name": e.Name,
	}
}

// NewEntityChangedEvent creates a new EntityChangedEvent.
func NewEntityChangedEvent(eventType EventType, id int64, name string) EntityChangedEvent {
	return EntityChangedEvent{
		BaseEvent: NewBaseEvent(eventType, id),
		Name:      name,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Social Events
// ═══════════════════════════════════════════════════════════════════════════

// LikeEvent is emitted when a like edge is added or removed.
type LikeEvent struct {
	BaseEvent
	FilmID int64 `json:"film_id"`
	UserID int64 `json:"user_id"`
}

// Payload implements Event interface.
func (e LikeEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"film_id": e.FilmID,
		"user_id": e.UserID,
	}
}

// NewFilmLikedEvent creates a new LikeEvent of type EventFilmLiked.
func NewFilmLikedEvent(filmID, userID int64) LikeEvent {
	return LikeEvent{
		BaseEvent: NewBaseEvent(EventFilmLiked, filmID),
		FilmID:    filmID,
		UserID:    userID,
	}
}

// NewFilmUnlikedEvent creates a new LikeEvent of type EventFilmUnliked.
func NewFilmUnlikedEvent(filmID, userID int64) LikeEvent {
	return LikeEvent{
		BaseEvent: NewBaseEvent(EventFilmUnliked, filmID),
		FilmID:    filmID,
		UserID:    userID,
	}
}

// FriendshipEvent is emitted when a friendship is created or removed.
type FriendshipEvent struct {
	BaseEvent
	UserID   int64 `json:"user_id"`
	FriendID int64 `json:"friend_id"`
}

// Payload implements Event interface.
func (e FriendshipEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"friend_id": e.FriendID,
	}
}

// NewFriendAddedEvent creates a new FriendshipEvent of type EventFriendAdded.
func NewFriendAddedEvent(userID, friendID int64) FriendshipEvent {
	return FriendshipEvent{
		BaseEvent: NewBaseEvent(EventFriendAdded, userID),
		UserID:    userID,
		FriendID:  friendID,
	}
}

// NewFriendRemovedEvent creates a new FriendshipEvent of type EventFriendRemoved.
func NewFriendRemovedEvent(userID, friendID int64) FriendshipEvent {
	return FriendshipEvent{
		BaseEvent: NewBaseEvent(EventFriendRemoved, userID),
		UserID:    userID,
		FriendID:  friendID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler handles one delivered event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher drops every event. Used where no bus is wired.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
