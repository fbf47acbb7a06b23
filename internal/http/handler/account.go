package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"userapi/internal/model"
	"userapi/internal/service"
)

// amountRequest is the JSON body for deposits and withdrawals.
// Amount is in integer cents and must be positive.
type amountRequest struct {
	Amount int64 `json:"amount"`
}

// OpenAccount handles POST /users/:id/accounts.
func OpenAccount(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if _, err := uuid.Parse(userID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		a, err := svc.Open(c.UserContext(), userID)
		if err != nil {
			return writeAccountError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// ListUserAccounts handles GET /users/:id/accounts.
func ListUserAccounts(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if _, err := uuid.Parse(userID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		items, err := svc.ListByUser(c.UserContext(), userID)
		if err != nil {
			return writeAccountError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// GetAccount handles GET /accounts/:id.
func GetAccount(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeAccountError(c, err)
		}
		return c.JSON(a)
	}
}

// Deposit handles POST /accounts/:id/deposits.
func Deposit(svc service.AccountService) fiber.Handler {
	return accountMutation(svc.Deposit)
}

// Withdraw handles POST /accounts/:id/withdrawals.
func Withdraw(svc service.AccountService) fiber.Handler {
	return accountMutation(svc.Withdraw)
}

// accountMutation shares the parse/validate/respond flow of deposits and withdrawals.
func accountMutation(op func(ctx context.Context, id string, amount int64) (*model.Account, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req amountRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		a, err := op(c.UserContext(), id, req.Amount)
		if err != nil {
			return writeAccountError(c, err)
		}
		return c.JSON(a)
	}
}

// writeAccountError translates account service errors to the standard envelope.
func writeAccountError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrAmountInvalid):
		return writeError(c, fiber.StatusBadRequest, "AMOUNT_INVALID", "amount must be positive")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
	case errors.Is(err, service.ErrAccountNotFound):
		return writeError(c, fiber.StatusNotFound, "ACCOUNT_NOT_FOUND", "account not found")
	case errors.Is(err, service.ErrInsufficientBalance):
		return writeError(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", "insufficient balance")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
