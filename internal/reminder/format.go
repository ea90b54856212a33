package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/carson-networks/deadline-server/internal/deadline"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
)

// Notice is the rendered text of one reminder.
type Notice struct {
	Subject string
	Body    string
}

// FormatReminder renders the reminder for one due milestone of tx.
func FormatReminder(tx *transaction.Transaction, m deadline.Milestone, date time.Time, daysUntil int) Notice {
	subject := fmt.Sprintf("%s %s: %s", m.Label(), dueIn(daysUntil), tx.PropertyAddress)

	var body strings.Builder
	fmt.Fprintf(&body, "Upcoming deadline for %s.\n\n", tx.PropertyAddress)
	fmt.Fprintf(&body, "Milestone: %s\n", m.Label())
	fmt.Fprintf(&body, "Date: %s (%s)\n", deadline.FormatDate(date), dueIn(daysUntil))
	fmt.Fprintf(&body, "Client: %s\n", tx.ClientName)
	fmt.Fprintf(&body, "Transaction type: %s\n", tx.Type)
	if tx.Notes != "" {
		fmt.Fprintf(&body, "\nNotes: %s\n", tx.Notes)
	}

	return Notice{Subject: subject, Body: body.String()}
}

func dueIn(days int) string {
	switch days {
	case 0:
		return "due today"
	case 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}
