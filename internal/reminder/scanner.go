package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/deadline-server/internal/deadline"
	"github.com/carson-networks/deadline-server/internal/notify"
	"github.com/carson-networks/deadline-server/internal/storage/delivery"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

const (
	DefaultWindowDays  = 7
	DefaultSendTimeout = 15 * time.Second
)

// Summary counts the outcome of one scan pass.
type Summary struct {
	Sent    int
	Errors  int
	Skipped int
}

type transactionSource interface {
	ListOpen(ctx context.Context, onOrAfter time.Time) ([]*transaction.Transaction, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type reminderPolicy interface {
	RemindersEnabled(u *user.User, now time.Time) bool
}

// Config wires a Scanner. Zero values fall back to defaults, except WindowDays where zero
// means "due today only" and only a negative value selects the default.
type Config struct {
	Transactions transactionSource
	Users        userFinder
	Ledger       delivery.ILedger
	Sender       notify.Sender
	Policy       reminderPolicy
	Logger       *logrus.Logger

	WindowDays  int
	SendTimeout time.Duration
	Location    *time.Location
	FromName    string
	Now         func() time.Time
}

// Scanner finds milestones entering the reminder window and sends one notice per
// (transaction, milestone, effective date).
type Scanner struct {
	cfg  Config
	slot chan struct{}
}

func NewScanner(cfg Config) *Scanner {
	if cfg.WindowDays < 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Scanner{
		cfg:  cfg,
		slot: make(chan struct{}, 1),
	}
}

// SenderInitialized reports whether notifications can currently be delivered.
func (s *Scanner) SenderInitialized() bool {
	return s.cfg.Sender != nil && s.cfg.Sender.Initialized()
}

// Scan runs one pass. Only one pass runs at a time; a caller arriving mid-pass waits for it
// to finish and then runs its own.
func (s *Scanner) Scan(ctx context.Context) (Summary, error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
	defer func() { <-s.slot }()

	now := s.cfg.Now()
	today := deadline.Normalize(now.In(s.cfg.Location))
	log := s.cfg.Logger.WithField("scanDate", deadline.FormatDate(today))

	transactions, err := s.cfg.Transactions.ListOpen(ctx, today)
	if err != nil {
		return Summary{}, fmt.Errorf("list open transactions: %w", err)
	}

	pass := &scanPass{
		Scanner: s,
		now:     now,
		today:   today,
		log:     log,
		owners:  make(map[uuid.UUID]*user.User),
	}
	for _, tx := range transactions {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).Warn("Reminder.Scan.Abandoned")
			return pass.summary, ctx.Err()
		}
		pass.scanTransaction(ctx, tx)
	}

	log.WithFields(logrus.Fields{
		"transactions": len(transactions),
		"sent":         pass.summary.Sent,
		"errors":       pass.summary.Errors,
		"skipped":      pass.summary.Skipped,
	}).Info("Reminder.Scan.Complete")
	return pass.summary, nil
}

type scanPass struct {
	*Scanner
	now     time.Time
	today   time.Time
	log     *logrus.Entry
	owners  map[uuid.UUID]*user.User
	summary Summary
}

func (p *scanPass) scanTransaction(ctx context.Context, tx *transaction.Transaction) {
	log := p.log.WithField("transactionID", tx.ID.String())

	owner, err := p.owner(ctx, tx.UserID)
	if err != nil {
		p.summary.Errors++
		log.WithError(err).Error("Reminder.Scan.OwnerLookup")
		return
	}
	if owner == nil || !p.cfg.Policy.RemindersEnabled(owner, p.now) {
		p.summary.Skipped++
		return
	}

	for _, m := range deadline.Milestones {
		effective := deadline.Effective(tx.Schedule, tx.Overrides, m)
		if effective.IsZero() {
			continue
		}
		daysUntil := deadline.DaysBetween(p.today, effective)
		if daysUntil < 0 || daysUntil > p.cfg.WindowDays {
			continue
		}
		p.remind(ctx, log.WithField("milestone", string(m)), tx, owner, m, effective, daysUntil)
	}
}

// owner memoizes user lookups for the pass. A deleted owner resolves to nil.
func (p *scanPass) owner(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := p.owners[id]; ok {
		return u, nil
	}
	u, err := p.cfg.Users.FindByID(ctx, id)
	if errors.Is(err, user.ErrNotFound) {
		u, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.owners[id] = u
	return u, nil
}

func (p *scanPass) remind(
	ctx context.Context,
	log *logrus.Entry,
	tx *transaction.Transaction,
	owner *user.User,
	m deadline.Milestone,
	effective time.Time,
	daysUntil int,
) {
	key := delivery.Key{TransactionID: tx.ID, Milestone: m, EffectiveDate: effective}

	claimed, err := p.cfg.Ledger.Claim(ctx, key)
	if err != nil {
		p.summary.Errors++
		log.WithError(err).Error("Reminder.Scan.Claim")
		return
	}
	if !claimed {
		return
	}

	notice := FormatReminder(tx, m, effective, daysUntil)
	msg := notify.Message{
		To:       recipient(tx, owner),
		Subject:  notice.Subject,
		Body:     notice.Body,
		FromName: p.cfg.FromName,
	}

	receipt, err := p.send(ctx, msg)
	if err != nil {
		p.summary.Errors++
		log.WithError(err).Error("Reminder.Scan.Send")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// The relay may have accepted the message; keep the claim so no later pass resends.
			return
		}
		if releaseErr := p.cfg.Ledger.Release(ctx, key); releaseErr != nil {
			log.WithError(releaseErr).Error("Reminder.Scan.Release")
		}
		return
	}

	if err := p.cfg.Ledger.MarkSent(ctx, key, receipt.MessageID, p.cfg.Now()); err != nil {
		// The notice went out; the claim row still blocks a resend.
		log.WithError(err).Error("Reminder.Scan.MarkSent")
	}
	p.summary.Sent++
	log.WithField("messageID", receipt.MessageID).Info("Reminder.Scan.Sent")
}

func (p *scanPass) send(ctx context.Context, msg notify.Message) (notify.Receipt, error) {
	if p.cfg.Sender == nil || !p.cfg.Sender.Initialized() {
		return notify.Receipt{}, notify.ErrNotInitialized
	}
	sendCtx, cancel := context.WithTimeout(ctx, p.cfg.SendTimeout)
	defer cancel()

	type result struct {
		receipt notify.Receipt
		err     error
	}
	done := make(chan result, 1)
	go func() {
		receipt, err := p.cfg.Sender.Send(sendCtx, msg)
		done <- result{receipt: receipt, err: err}
	}()

	select {
	case r := <-done:
		return r.receipt, r.err
	case <-sendCtx.Done():
		return notify.Receipt{}, fmt.Errorf("send timed out: %w", sendCtx.Err())
	}
}

// recipient is the owning agent, falling back to the client when the agent has no address.
func recipient(tx *transaction.Transaction, owner *user.User) string {
	if owner.Email != "" {
		return owner.Email
	}
	return tx.ClientEmail
}
