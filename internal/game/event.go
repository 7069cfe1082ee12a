package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeDamage
	EventTypeDefeat
	EventTypeAbility
	EventTypeStatus
	EventTypeEnemySpawn
	EventTypeEnemyRemove
	EventTypeOwnerChange
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	Frame     uint64    `json:"frame"`     // Simulation frame this occurred in
	Source    string    `json:"source"`    // Player or enemy id; rate limited per source
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeDamage:
		return "damage"
	case EventTypeDefeat:
		return "defeat"
	case EventTypeAbility:
		return "ability"
	case EventTypeStatus:
		return "status"
	case EventTypeEnemySpawn:
		return "enemy_spawn"
	case EventTypeEnemyRemove:
		return "enemy_remove"
	case EventTypeOwnerChange:
		return "owner_change"
	default:
		return "unknown"
	}
}

// DamagePayload contains damage event details
type DamagePayload struct {
	SourceID string  `json:"sourceId"`
	TargetID string  `json:"targetId"`
	Amount   float64 `json:"amount"`
	TargetHP float64 `json:"targetHp"`
}

// DefeatPayload is recorded when health first reaches zero
type DefeatPayload struct {
	TargetID string `json:"targetId"`
	Enemy    bool   `json:"enemy"`
}

// OwnerChangePayload records an enemy-authority handoff
type OwnerChangePayload struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, frame uint64, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Frame:     frame,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}
