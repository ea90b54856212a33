package transaction

import (
	"context"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/handlers"
	"github.com/carson-networks/deadline-server/internal/service"
)

// UpdateTransactionBody lists the fields a caller may change. Absent fields are left untouched.
type UpdateTransactionBody struct {
	PropertyAddress *string           `json:"propertyAddress,omitempty" doc:"Property address"`
	ClientName      *string           `json:"clientName,omitempty" doc:"Client name"`
	ClientEmail     *string           `json:"clientEmail,omitempty" doc:"Client email"`
	TransactionType *string           `json:"transactionType,omitempty" enum:"purchase,sale" doc:"Transaction type"`
	ContractDate    *string           `json:"contractDate,omitempty" doc:"Contract date (YYYY-MM-DD); recomputes milestones"`
	ClosingDate     *string           `json:"closingDate,omitempty" doc:"Closing date (YYYY-MM-DD)"`
	ListPrice       *string           `json:"listPrice,omitempty" doc:"Decimal list price"`
	Notes           *string           `json:"notes,omitempty" doc:"Free-form notes"`
	Overrides       map[string]string `json:"overrides,omitempty" doc:"Replaces the override map; keys are milestone names, values YYYY-MM-DD"`
}

type UpdateTransactionInput struct {
	ID   string `path:"id" format:"uuid" doc:"Transaction UUID"`
	Body UpdateTransactionBody
}

type UpdateTransactionOutput struct {
	Body Transaction
}

type transactionUpdater interface {
	UpdateTransaction(ctx context.Context, userID, id uuid.UUID, changes service.TransactionChanges) (*service.Transaction, error)
}

// UpdateTransactionHandler handles PATCH /v1/transactions/{id}.
type UpdateTransactionHandler struct {
	TransactionService transactionUpdater
}

func NewUpdateTransactionHandler(svc transactionUpdater) *UpdateTransactionHandler {
	return &UpdateTransactionHandler{TransactionService: svc}
}

func (h *UpdateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-transaction",
		Method:      http.MethodPatch,
		Path:        "/v1/transactions/{id}",
		Summary:     "Update transaction",
		Description: "Applies an explicit field update, including milestone overrides.",
		Tags:        []string{"Transactions"},
		Security:    auth.BearerSecurity,
		Metadata:    map[string]any{auth.RequiresSubscription: true},
	}, h.handle)
}

func parseUpdateTransactionInput(input *UpdateTransactionInput) (uuid.UUID, service.TransactionChanges, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return uuid.Nil, service.TransactionChanges{}, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}

	body := input.Body
	changes := service.TransactionChanges{
		PropertyAddress: omit.FromPtr(body.PropertyAddress),
		ClientName:      omit.FromPtr(body.ClientName),
		ClientEmail:     omit.FromPtr(body.ClientEmail),
		Type:            omit.FromPtr(body.TransactionType),
		ContractDate:    omit.FromPtr(body.ContractDate),
		ClosingDate:     omit.FromPtr(body.ClosingDate),
		ListPrice:       omit.FromPtr(body.ListPrice),
		Notes:           omit.FromPtr(body.Notes),
	}
	if body.Overrides != nil {
		changes.Overrides = omit.From(body.Overrides)
	}
	return id, changes, nil
}

func (h *UpdateTransactionHandler) handle(ctx context.Context, input *UpdateTransactionInput) (*UpdateTransactionOutput, error) {
	userID, err := handlers.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	id, changes, err := parseUpdateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	tx, err := h.TransactionService.UpdateTransaction(ctx, userID, id, changes)
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to update transaction")
	}
	return &UpdateTransactionOutput{Body: transactionFrom(tx)}, nil
}
