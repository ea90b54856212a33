package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/handlers"
	"github.com/carson-networks/deadline-server/internal/logging"
	"github.com/carson-networks/deadline-server/internal/service"
)

// CreateTransactionBody is the request body for submitting a transaction.
type CreateTransactionBody struct {
	PropertyAddress string `json:"propertyAddress" minLength:"1" doc:"Property address"`
	ClientName      string `json:"clientName" minLength:"1" doc:"Client name"`
	ClientEmail     string `json:"clientEmail,omitempty" doc:"Client email"`
	TransactionType string `json:"transactionType" enum:"purchase,sale" doc:"Transaction type"`
	ContractDate    string `json:"contractDate,omitempty" doc:"Contract date (YYYY-MM-DD)"`
	ClosingDate     string `json:"closingDate,omitempty" doc:"Closing date (YYYY-MM-DD), defaults to 30 days after the contract date"`
	ListPrice       string `json:"listPrice,omitempty" doc:"Decimal list price, defaults to 0 when absent or invalid"`
	Notes           string `json:"notes,omitempty" doc:"Free-form notes"`
}

// CreateTransactionInput is the Huma input for submitting a transaction.
type CreateTransactionInput struct {
	Body CreateTransactionBody
}

// CreateTransactionOutput is the Huma output for submitting a transaction.
type CreateTransactionOutput struct {
	Body Transaction
}

// transactionCreator is the interface for creating transactions.
type transactionCreator interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, sub service.TransactionSubmission) (*service.Transaction, error)
}

// CreateTransactionHandler handles POST /v1/transactions.
type CreateTransactionHandler struct {
	TransactionService transactionCreator
}

func NewCreateTransactionHandler(svc transactionCreator) *CreateTransactionHandler {
	return &CreateTransactionHandler{TransactionService: svc}
}

// Register registers the create transaction endpoint with the Huma API.
func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transaction",
		Method:        http.MethodPost,
		Path:          "/v1/transactions",
		Summary:       "Submit transaction",
		Description:   "Stores a transaction and returns its computed milestone dates.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusCreated,
		Security:      auth.BearerSecurity,
		Metadata:      map[string]any{auth.RequiresSubscription: true},
	}, h.handle)
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*CreateTransactionOutput, error) {
	userID, err := handlers.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := h.TransactionService.CreateTransaction(ctx, userID, service.TransactionSubmission{
		PropertyAddress: input.Body.PropertyAddress,
		ClientName:      input.Body.ClientName,
		ClientEmail:     input.Body.ClientEmail,
		Type:            input.Body.TransactionType,
		ContractDate:    input.Body.ContractDate,
		ClosingDate:     input.Body.ClosingDate,
		ListPrice:       input.Body.ListPrice,
		Notes:           input.Body.Notes,
	})
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to create transaction")
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("transactionID", tx.ID.String())
	}
	return &CreateTransactionOutput{Body: transactionFrom(tx)}, nil
}
