package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SaaSFox/app/models"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/billing"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/usercontext"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/utils"
)

type consumeCreditsRequest struct {
	Amount int64 `json:"amount" form:"amount" validate:"required,gt=0"`
}

// HandleGetUserAccount returns account information and the credit balance for the session user.
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	account, err := userRepositoryFn().GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	return c.JSON(accountPayload(account))
}

// HandleListCreditTransactions returns the newest ledger entries, ?limit= caps the count.
func HandleListCreditTransactions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	txs, err := billingServiceFn().ListTransactions(ctx, userCtx.UserID, c.QueryInt("limit", 0))
	if err != nil {
		log.Errorf("[Account] listing transactions for user %d failed: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load transactions"})
	}
	if txs == nil {
		txs = []models.CreditTransaction{}
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

// HandleConsumeCredits spends credits of the session user.
func HandleConsumeCredits(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req consumeCreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "request body could not be parsed")
	}
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "amount must be a positive integer")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := billingServiceFn().ConsumeCredits(ctx, userCtx.UserID, req.Amount)
	switch {
	case errors.Is(err, billing.ErrInsufficientCredits):
		return jsonError(c, fiber.StatusPaymentRequired, "insufficient_credits", "not enough credits available")
	case errors.Is(err, billing.ErrUserNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
	case err != nil:
		log.Errorf("[Account] consuming credits for user %d failed: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}

	return c.JSON(fiber.Map{
		"ok":                true,
		"credits_total":     user.CreditsTotal,
		"credits_used":      user.CreditsUsed,
		"credits_available": user.CreditsAvailable(),
	})
}

func accountPayload(account *models.User) fiber.Map {
	return fiber.Map{
		"id":            account.ID,
		"uuid":          account.UUID,
		"username":      account.Name,
		"email":         account.Email,
		"status":        account.Status,
		"is_admin":      account.Role == models.ROLE_ADMIN,
		"avatar_url":    utils.AvatarURL(account.AvatarURL, account.Email),
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
		"credits": fiber.Map{
			"total":     account.CreditsTotal,
			"used":      account.CreditsUsed,
			"available": account.CreditsAvailable(),
		},
	}
}
