package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date with no time-of-day component. All
	// constructors normalize to midnight UTC so values compare cleanly.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is one persisted expense entry. Records are immutable once
	// stored: the ledger supports insert and delete, never update.
	Record struct {
		ID       int64
		Date     Date
		Category Category
		Amount   Money
		Note     string
	}
)

const NoteMaxLen = 200

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrFutureDate      = errors.New("date is in the future")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCategory = errors.New("unknown category")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

// Today truncates a wall-clock instant to its calendar date.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date shifted by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the shape invariants that hold for every stored record.
func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if !r.Category.Valid() {
		return ErrUnknownCategory
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if len(r.Note) > NoteMaxLen {
		return ErrNoteTooLong
	}
	return nil
}

// ValidateAt applies the entry-form rules: everything Validate checks plus
// the no-future-dates rule, judged against an explicit today.
func (r Record) ValidateAt(today Date) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Date.After(today.Time) {
		return ErrFutureDate
	}
	return nil
}
