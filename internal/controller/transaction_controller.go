package controller

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"estatedeal_backend/internal/middleware"
	"estatedeal_backend/internal/service"
	"estatedeal_backend/pkg/utils/storage"
)

type InterestInput struct {
	BrokerID *uint `json:"broker_id"`
}

// DepositInput accepts the amount as a JSON number or string.
type DepositInput struct {
	DepositAmount *decimal.Decimal `json:"deposit_amount"`
}

var transactionService *service.TransactionService

func InitTransactionController(transactions *service.TransactionService) {
	transactionService = transactions
}

func ExpressInterest(c *fiber.Ctx) error {
	propertyID, err := paramID(c, "property_id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(InterestInput)
	if err := bindOptionalJSON(c, input); err != nil {
		return respondError(c, err)
	}

	t, created, err := transactionService.ExpressInterest(c.UserContext(), middleware.GetPrincipal(c), propertyID, input.BrokerID)
	if err != nil {
		return respondError(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"transaction": t,
		"created":     created,
	})
}

func ListTransactions(c *fiber.Ctx) error {
	list, err := transactionService.List(c.UserContext(), middleware.GetPrincipal(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func PayDeposit(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	input := new(DepositInput)
	if err := bindOptionalJSON(c, input); err != nil {
		return respondError(c, err)
	}

	t, err := transactionService.PayDeposit(c.UserContext(), middleware.GetPrincipal(c), id, input.DepositAmount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Deposit paid, property reserved",
		"transaction": t,
	})
}

// formDocument opens an optional multipart file. The returned closer is
// never nil.
func formDocument(c *fiber.Ctx, field string) (*storage.Document, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &storage.Document{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { f.Close() }
}

func UploadTransactionDocuments(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	contract, closeContract, err := formDocument(c, "final_contract_doc")
	if err != nil {
		return respondError(c, err)
	}
	defer closeContract()
	proof, closeProof, err := formDocument(c, "proof_of_payment_doc")
	if err != nil {
		return respondError(c, err)
	}
	defer closeProof()

	t, err := transactionService.UploadDocuments(c.UserContext(), middleware.GetPrincipal(c), id, contract, proof)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Documents uploaded",
		"transaction": t,
	})
}

func FinalizeTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	t, payout, err := transactionService.Finalize(c.UserContext(), middleware.GetPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Transaction finalized, property sold",
		"transaction": t,
		"payout":      payout,
	})
}

func GetTransactionPayout(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	payout, err := transactionService.Payout(c.UserContext(), middleware.GetPrincipal(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payout)
}
