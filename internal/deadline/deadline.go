package deadline

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

// defaultClosingOffset is used when a transaction is submitted without a closing date.
const defaultClosingOffset = 30

var (
	ErrMissingContractDate   = errors.New("contract date is required")
	ErrInvalidDate           = errors.New("date must be formatted YYYY-MM-DD")
	ErrInvalidType           = errors.New("transaction type must be purchase or sale")
	ErrClosingBeforeContract = errors.New("closing date must not be before contract date")
	ErrUnknownMilestone      = errors.New("unknown milestone")
)

// TransactionType is the kind of deal a transaction tracks.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeSale     TransactionType = "sale"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypePurchase || t == TransactionTypeSale
}

// Milestone names a contractual deadline on a transaction.
type Milestone string

const (
	MilestoneOptionPeriodEnd   Milestone = "optionPeriodEnd"
	MilestoneInspectionDate    Milestone = "inspectionDate"
	MilestoneAppraisalDate     Milestone = "appraisalDate"
	MilestoneFinancingDeadline Milestone = "financingDeadline"
	MilestoneClosingDate       Milestone = "closingDate"
)

// Milestones lists every milestone in chronological order of their default offsets.
var Milestones = []Milestone{
	MilestoneOptionPeriodEnd,
	MilestoneInspectionDate,
	MilestoneAppraisalDate,
	MilestoneFinancingDeadline,
	MilestoneClosingDate,
}

var milestoneLabels = map[Milestone]string{
	MilestoneOptionPeriodEnd:   "Option Period End",
	MilestoneInspectionDate:    "Inspection",
	MilestoneAppraisalDate:     "Appraisal",
	MilestoneFinancingDeadline: "Financing Deadline",
	MilestoneClosingDate:       "Closing",
}

// Valid reports whether m is one of the five known milestones.
func (m Milestone) Valid() bool {
	_, ok := milestoneLabels[m]
	return ok
}

// Label is the human readable milestone name used in notifications.
func (m Milestone) Label() string {
	if label, ok := milestoneLabels[m]; ok {
		return label
	}
	return string(m)
}

// offsetDays holds the calendar-day offset from the contract date for every derived milestone.
// The closing date is supplied by the caller and has no entry.
var offsetDays = map[TransactionType]map[Milestone]int{
	TransactionTypePurchase: {
		MilestoneOptionPeriodEnd:   7,
		MilestoneInspectionDate:    10,
		MilestoneAppraisalDate:     14,
		MilestoneFinancingDeadline: 21,
	},
	TransactionTypeSale: {
		MilestoneOptionPeriodEnd:   7,
		MilestoneInspectionDate:    10,
		MilestoneAppraisalDate:     14,
		MilestoneFinancingDeadline: 21,
	},
}

// OffsetDays returns the fixed offset for a derived milestone.
func OffsetDays(t TransactionType, m Milestone) (int, bool) {
	offsets, ok := offsetDays[t]
	if !ok {
		return 0, false
	}
	days, ok := offsets[m]
	return days, ok
}

// Schedule is the set of computed milestone dates for one transaction.
type Schedule struct {
	OptionPeriodEnd   time.Time
	InspectionDate    time.Time
	AppraisalDate     time.Time
	FinancingDeadline time.Time
	ClosingDate       time.Time
}

// Get returns the computed date for m.
func (s Schedule) Get(m Milestone) time.Time {
	switch m {
	case MilestoneOptionPeriodEnd:
		return s.OptionPeriodEnd
	case MilestoneInspectionDate:
		return s.InspectionDate
	case MilestoneAppraisalDate:
		return s.AppraisalDate
	case MilestoneFinancingDeadline:
		return s.FinancingDeadline
	case MilestoneClosingDate:
		return s.ClosingDate
	}
	return time.Time{}
}

// Calculate derives the milestone schedule from the contract date. A zero closing date
// defaults to defaultClosingOffset days after the contract date.
func Calculate(contractDate time.Time, closingDate time.Time, t TransactionType) (Schedule, error) {
	if contractDate.IsZero() {
		return Schedule{}, ErrMissingContractDate
	}
	if !t.Valid() {
		return Schedule{}, ErrInvalidType
	}

	contract := Normalize(contractDate)
	closing := contract.AddDate(0, 0, defaultClosingOffset)
	if !closingDate.IsZero() {
		closing = Normalize(closingDate)
	}
	if closing.Before(contract) {
		return Schedule{}, ErrClosingBeforeContract
	}

	offsets := offsetDays[t]
	return Schedule{
		OptionPeriodEnd:   contract.AddDate(0, 0, offsets[MilestoneOptionPeriodEnd]),
		InspectionDate:    contract.AddDate(0, 0, offsets[MilestoneInspectionDate]),
		AppraisalDate:     contract.AddDate(0, 0, offsets[MilestoneAppraisalDate]),
		FinancingDeadline: contract.AddDate(0, 0, offsets[MilestoneFinancingDeadline]),
		ClosingDate:       closing,
	}, nil
}

// Effective resolves the date reminders use for m: the override when present, else the computed value.
func Effective(s Schedule, overrides Overrides, m Milestone) time.Time {
	if d, ok := overrides[m]; ok && !d.IsZero() {
		return Normalize(d)
	}
	return s.Get(m)
}

// EffectiveSchedule applies every override to s.
func EffectiveSchedule(s Schedule, overrides Overrides) Schedule {
	return Schedule{
		OptionPeriodEnd:   Effective(s, overrides, MilestoneOptionPeriodEnd),
		InspectionDate:    Effective(s, overrides, MilestoneInspectionDate),
		AppraisalDate:     Effective(s, overrides, MilestoneAppraisalDate),
		FinancingDeadline: Effective(s, overrides, MilestoneFinancingDeadline),
		ClosingDate:       Effective(s, overrides, MilestoneClosingDate),
	}
}

// Normalize drops the time of day, keeping the calendar date as UTC midnight.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from one date to another.
func DaysBetween(from, to time.Time) int {
	return int(Normalize(to).Sub(Normalize(from)).Hours() / 24)
}

// ParseDate parses an ISO calendar date. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
