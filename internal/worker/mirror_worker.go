// Package worker turns record events into writes against the external
// ledger copy.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"tally/internal/amqp"
	"tally/internal/log"
	"tally/internal/mirror"
)

// MirrorWorker applies record events to a mirror.Writer. Created
// records become plain entries, deleted records become voiding entries
// with the negated amount.
type MirrorWorker struct {
	writer   mirror.Writer
	logger   *log.Logger
	mirrored atomic.Int64
}

func NewMirrorWorker(writer mirror.Writer, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		writer: writer,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent mirrors one event. A returned error requeues the
// delivery, so it propagates only failures that can succeed on retry;
// undecodable payloads are logged and dropped.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.RecordEvent) error {
	record, err := event.ToRecord()
	if err != nil {
		w.logger.ErrorContext(ctx, "dropping undecodable event",
			log.FieldOperation, event.Op,
			log.FieldRecordID, event.Record.ID,
			log.FieldError, err.Error())
		return nil
	}

	var entry mirror.Entry
	switch event.Op {
	case amqp.OpCreated:
		entry = mirror.FromRecord(record)
	case amqp.OpDeleted:
		entry = mirror.Voiding(record)
	default:
		w.logger.WarnContext(ctx, "ignoring unknown event op",
			log.FieldOperation, event.Op,
			log.FieldRecordID, record.ID)
		return nil
	}

	rowRef, err := w.writer.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("mirror %s event for record %d: %w", event.Op, record.ID, err)
	}

	w.mirrored.Add(1)
	w.logger.InfoContext(ctx, "event mirrored",
		log.FieldOperation, event.Op,
		log.FieldRecordID, record.ID,
		log.FieldMirrorRef, rowRef)

	return nil
}

// Mirrored reports how many entries reached the mirror since startup.
func (w *MirrorWorker) Mirrored() int64 {
	return w.mirrored.Load()
}
