package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"tally/internal/core"
)

// Event operations.
const (
	OpCreated = "created"
	OpDeleted = "deleted"
)

// EventVersion is bumped whenever the payload shape changes.
const EventVersion = 1

// RecordPayload is the wire form of a ledger record. Events carry the
// whole record so consumers never need database access.
type RecordPayload struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Note        string `json:"note,omitempty"`
}

// RecordEvent is published after every successful ledger write.
type RecordEvent struct {
	Op         string        `json:"op"`
	Record     RecordPayload `json:"record"`
	OccurredAt time.Time     `json:"occurred_at"`
	Version    int           `json:"version"`
}

// NewRecordEvent builds an event describing op applied to record.
func NewRecordEvent(op string, record core.Record) *RecordEvent {
	return &RecordEvent{
		Op: op,
		Record: RecordPayload{
			ID:          record.ID,
			Date:        record.Date.String(),
			Category:    string(record.Category),
			AmountCents: record.Amount.Cents,
			Note:        record.Note,
		},
		OccurredAt: time.Now().UTC(),
		Version:    EventVersion,
	}
}

// ToJSON converts the event to JSON bytes.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON parses an event, rejecting unknown operations.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var event RecordEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.Op != OpCreated && event.Op != OpDeleted {
		return nil, fmt.Errorf("unknown event op %q", event.Op)
	}
	return &event, nil
}

// ToRecord reconstructs the ledger record carried by the event.
func (e *RecordEvent) ToRecord() (core.Record, error) {
	date, err := core.ParseDate(e.Record.Date)
	if err != nil {
		return core.Record{}, fmt.Errorf("event carries malformed date %q: %w", e.Record.Date, err)
	}
	return core.Record{
		ID:       e.Record.ID,
		Date:     date,
		Category: core.Category(e.Record.Category),
		Amount:   core.Money{Cents: e.Record.AmountCents},
		Note:     e.Record.Note,
	}, nil
}
