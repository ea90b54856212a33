package transaction

import (
	"time"

	"github.com/carson-networks/deadline-server/internal/deadline"
	"github.com/carson-networks/deadline-server/internal/service"
)

// Milestones lists the five milestone dates of a transaction as YYYY-MM-DD.
type Milestones struct {
	OptionPeriodEnd   string `json:"optionPeriodEnd" doc:"Option period end"`
	InspectionDate    string `json:"inspectionDate" doc:"Inspection date"`
	AppraisalDate     string `json:"appraisalDate" doc:"Appraisal date"`
	FinancingDeadline string `json:"financingDeadline" doc:"Financing deadline"`
	ClosingDate       string `json:"closingDate" doc:"Closing date"`
}

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID                 string            `json:"id" doc:"Transaction UUID"`
	PropertyAddress    string            `json:"propertyAddress" doc:"Property address"`
	ClientName         string            `json:"clientName" doc:"Client name"`
	ClientEmail        string            `json:"clientEmail" doc:"Client email, empty when unknown"`
	TransactionType    string            `json:"transactionType" doc:"purchase or sale"`
	ContractDate       string            `json:"contractDate" doc:"Contract date (YYYY-MM-DD)"`
	ListPrice          string            `json:"listPrice" doc:"Decimal list price"`
	Milestones         Milestones        `json:"milestones" doc:"Effective milestone dates, overrides applied"`
	ComputedMilestones Milestones        `json:"computedMilestones" doc:"Milestone dates derived from the contract date"`
	Overrides          map[string]string `json:"overrides" doc:"Manually overridden milestone dates by milestone name"`
	Notes              string            `json:"notes" doc:"Free-form notes"`
	CreatedAt          string            `json:"createdAt" doc:"RFC3339 creation time"`
}

func milestonesFrom(s deadline.Schedule) Milestones {
	return Milestones{
		OptionPeriodEnd:   deadline.FormatDate(s.OptionPeriodEnd),
		InspectionDate:    deadline.FormatDate(s.InspectionDate),
		AppraisalDate:     deadline.FormatDate(s.AppraisalDate),
		FinancingDeadline: deadline.FormatDate(s.FinancingDeadline),
		ClosingDate:       deadline.FormatDate(s.ClosingDate),
	}
}

func transactionFrom(tx *service.Transaction) Transaction {
	return Transaction{
		ID:                 tx.ID.String(),
		PropertyAddress:    tx.PropertyAddress,
		ClientName:         tx.ClientName,
		ClientEmail:        tx.ClientEmail,
		TransactionType:    string(tx.Type),
		ContractDate:       deadline.FormatDate(tx.ContractDate),
		ListPrice:          tx.ListPrice.String(),
		Milestones:         milestonesFrom(tx.Effective),
		ComputedMilestones: milestonesFrom(tx.Computed),
		Overrides:          tx.Overrides.Strings(),
		Notes:              tx.Notes,
		CreatedAt:          tx.CreatedAt.Format(time.RFC3339),
	}
}
