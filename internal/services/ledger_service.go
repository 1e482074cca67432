// Package services orchestrates ledger operations across storage, the
// snapshot cache, and the event stream.
package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"tally/internal/amqp"
	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/log"
)

// RecordStore is the persistence the service drives.
type RecordStore interface {
	Insert(ctx context.Context, record core.Record) (core.Record, error)
	Get(ctx context.Context, id int64) (core.Record, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ListAll(ctx context.Context) ([]core.Record, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// EventPublisher pushes record events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.RecordEvent) error
	Close() error
}

const snapshotKey = "ledger:all"

// LedgerService is the write and read path for records. Writes go to
// SQLite first, then purge the snapshot cache, then publish an event
// best-effort: a broker outage never fails the request.
type LedgerService struct {
	store     RecordStore
	snapshots *cache.LRU[[]core.Record]
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
	published atomic.Int64
}

// NewLedgerService wires the service. publisher may be nil when the
// event stream is disabled.
func NewLedgerService(store RecordStore, snapshots *cache.LRU[[]core.Record], publisher EventPublisher, logger *log.Logger) *LedgerService {
	return &LedgerService{
		store:     store,
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		now:       time.Now,
	}
}

// CreateRecord validates and stores a record, returning it with the
// assigned id. The record's ID field is ignored on the way in.
func (s *LedgerService) CreateRecord(ctx context.Context, record core.Record) (core.Record, error) {
	today := core.Today(s.now())
	if err := record.ValidateAt(today); err != nil {
		return core.Record{}, err
	}

	stored, err := s.store.Insert(ctx, record)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}

	s.snapshots.Purge()
	s.publish(ctx, amqp.OpCreated, stored)

	s.logger.InfoContext(ctx, "record created",
		log.FieldRecordID, stored.ID,
		log.FieldRecordDate, stored.Date.String(),
		log.FieldCategory, string(stored.Category),
		log.FieldAmountCents, stored.Amount.Cents)

	return stored, nil
}

// DeleteRecord removes a record by id. It reports false, without an
// error, when the id does not exist.
func (s *LedgerService) DeleteRecord(ctx context.Context, id int64) (bool, error) {
	record, found, err := s.store.Get(ctx, id)
	if err != nil {
		return false, fmt.Errorf("load record %d: %w", id, err)
	}
	if !found {
		return false, nil
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete record %d: %w", id, err)
	}
	if !deleted {
		return false, nil
	}

	s.snapshots.Purge()
	s.publish(ctx, amqp.OpDeleted, record)

	s.logger.InfoContext(ctx, "record deleted", log.FieldRecordID, id)
	return true, nil
}

// ListRecords returns the whole ledger, newest date first. The slice
// may be shared with the cache; callers must not mutate it.
func (s *LedgerService) ListRecords(ctx context.Context) ([]core.Record, error) {
	if records, ok := s.snapshots.Get(snapshotKey); ok {
		return records, nil
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	s.snapshots.Set(snapshotKey, records)
	return records, nil
}

// Health reports whether the backing database is reachable.
func (s *LedgerService) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// TotalRecords returns the ledger row count straight from storage.
func (s *LedgerService) TotalRecords(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// CacheStats exposes snapshot cache counters for the metrics endpoint.
func (s *LedgerService) CacheStats() cache.Stats {
	return s.snapshots.Stats()
}

func (s *LedgerService) publish(ctx context.Context, op string, record core.Record) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "event stream disabled, skipping publish",
			log.FieldOperation, op,
			log.FieldRecordID, record.ID)
		return
	}

	if err := s.publisher.Publish(ctx, amqp.NewRecordEvent(op, record)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish record event",
			log.FieldOperation, op,
			log.FieldRecordID, record.ID,
			log.FieldError, err.Error())
		return
	}
	s.published.Add(1)
}

// EventsPublished reports how many record events reached the broker.
func (s *LedgerService) EventsPublished() int64 {
	return s.published.Load()
}

// Close releases storage and broker connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
