package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/notify"
	"github.com/jazanyumba/chama-vault/internal/repository"
	"github.com/jazanyumba/chama-vault/pkg/utils"
)

const (
	reminderKindContribution = "contribution"
	reminderKindLoan         = "loan"
)

// ReminderService sends the scheduled contribution and loan reminders.
type ReminderService struct {
	repos    repository.Repos
	notifier notify.Sender
	ledger   ReminderLedger
	leadDays int
}

func NewReminderService(repos repository.Repos, notifier notify.Sender, ledger ReminderLedger, leadDays int) *ReminderService {
	return &ReminderService{repos: repos, notifier: notifier, ledger: ledger, leadDays: leadDays}
}

// SendContributionReminders reminds members of contributions that are overdue or
// due within the lead window. It returns how many reminders were handed off.
func (s *ReminderService) SendContributionReminders(ctx context.Context, now time.Time) (int, error) {
	cutoff := utils.StartOfDay(now).AddDate(0, 0, s.leadDays+1)
	contributions, err := s.repos.Contributions.ListOutstandingDueBefore(ctx, cutoff)
	if err != nil {
		return 0, storeError(err, "contributions")
	}

	sent := 0
	for _, c := range contributions {
		if !s.firstToday(ctx, reminderKindContribution, c.ID, now) {
			continue
		}
		notifyQuietly(ctx, s.notifier, notify.Notification{
			MemberID: c.MemberID,
			Template: notify.TemplateContributionReminder,
			Variables: map[string]string{
				"amount":   money(c.ExpectedAmount.Sub(c.PaidAmount)),
				"due_date": day(c.DueDate),
			},
		})
		sent++
	}

	log.Printf("[reminder] contribution reminders sent: %d of %d outstanding", sent, len(contributions))
	return sent, nil
}

// SendLoanReminders reminds borrowers whose active loan falls due within the lead window.
func (s *ReminderService) SendLoanReminders(ctx context.Context, now time.Time) (int, error) {
	from := utils.StartOfDay(now)
	to := from.AddDate(0, 0, s.leadDays+1)
	loans, err := s.repos.Loans.ListActiveDueBetween(ctx, from, to)
	if err != nil {
		return 0, storeError(err, "loans")
	}

	sent := 0
	for _, l := range loans {
		if !s.firstToday(ctx, reminderKindLoan, l.ID, now) {
			continue
		}
		due := ""
		if l.DueDate != nil {
			due = day(*l.DueDate)
		}
		notifyQuietly(ctx, s.notifier, notify.Notification{
			MemberID:  l.MemberID,
			Template:  notify.TemplateLoanReminder,
			Variables: map[string]string{"total_due": money(l.TotalDue), "due_date": due},
		})
		sent++
	}

	log.Printf("[reminder] loan reminders sent: %d of %d due", sent, len(loans))
	return sent, nil
}

// firstToday reports whether no reminder of kind went out for id today.
// Without a ledger, or when it fails, every run sends.
func (s *ReminderService) firstToday(ctx context.Context, kind string, id uuid.UUID, now time.Time) bool {
	if s.ledger == nil {
		return true
	}
	first, err := s.ledger.MarkReminded(ctx, kind, id, now)
	if err != nil {
		log.Printf("[reminder] warning: de-dupe for %s %s failed: %v", kind, id, err)
		return true
	}
	return first
}
