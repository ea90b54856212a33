package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/handlers"
	"github.com/carson-networks/deadline-server/internal/service"
)

// TransactionPathInput identifies a transaction in the URL.
type TransactionPathInput struct {
	ID string `path:"id" format:"uuid" doc:"Transaction UUID"`
}

type GetTransactionOutput struct {
	Body Transaction
}

type transactionGetter interface {
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*service.Transaction, error)
}

// GetTransactionHandler handles GET /v1/transactions/{id}.
type GetTransactionHandler struct {
	TransactionService transactionGetter
}

func NewGetTransactionHandler(svc transactionGetter) *GetTransactionHandler {
	return &GetTransactionHandler{TransactionService: svc}
}

func (h *GetTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-transaction",
		Method:      http.MethodGet,
		Path:        "/v1/transactions/{id}",
		Summary:     "Get transaction",
		Tags:        []string{"Transactions"},
		Security:    auth.BearerSecurity,
		Metadata:    map[string]any{auth.RequiresSubscription: true},
	}, h.handle)
}

func (h *GetTransactionHandler) handle(ctx context.Context, input *TransactionPathInput) (*GetTransactionOutput, error) {
	userID, err := handlers.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}

	tx, err := h.TransactionService.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to get transaction")
	}
	return &GetTransactionOutput{Body: transactionFrom(tx)}, nil
}
