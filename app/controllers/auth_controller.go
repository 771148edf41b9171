package controllers

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SaaSFox/app/models"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/mail"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/session"
)

const activationTokenTTL = 48 * time.Hour

var validate = validator.New()

// sendActivationMail is swapped in tests.
var sendActivationMail = mail.SendActivationMail

type registerRequest struct {
	Name     string `json:"name" form:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" form:"email" validate:"required,email,max=200"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
	Captcha  string `json:"h-captcha-response" form:"h-captcha-response"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

func HandleAuthRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "request body could not be parsed")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	if hcaptcha.Enabled() {
		if ok, err := hcaptcha.Verify(req.Captcha); !ok {
			log.Warnf("[Auth] captcha rejected: %v", err)
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed", "captcha verification failed")
		}
	}

	repo := userRepositoryFn()
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, "email_taken", "an account with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("[Auth] email lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	if err := user.GenerateActivationToken(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}
	if err := repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return jsonError(c, fiber.StatusConflict, "email_taken", "an account with this email already exists")
		}
		log.Errorf("[Auth] create user failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}

	if err := sendActivationMail(user.Email, activationLink(user.ActivationToken)); err != nil {
		// the account exists; activation can be re-requested
		log.Errorf("[Auth] activation mail to user %d failed: %v", user.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":     true,
		"uuid":   user.UUID,
		"status": user.Status,
	})
}

func HandleAuthActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_token", "token is required")
	}

	repo := userRepositoryFn()
	user, err := repo.GetByActivationToken(token)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "invalid_token", "activation token is unknown or used")
	}
	if user.ActivationSentAt != nil && time.Since(*user.ActivationSentAt) > activationTokenTTL {
		return jsonError(c, fiber.StatusGone, "token_expired", "activation token has expired")
	}

	user.Activate()
	if err := repo.Update(user); err != nil {
		log.Errorf("[Auth] activating user %d failed: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "")
	}
	return c.JSON(fiber.Map{"ok": true, "status": user.Status})
}

func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "request body could not be parsed")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	repo := userRepositoryFn()
	user, err := repo.GetByEmail(req.Email)
	// same answer for unknown email and wrong password
	if err != nil || !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "email or password is wrong")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "account_inactive", "please activate your account first")
	}

	if err := loginUser(c, user); err != nil {
		log.Errorf("[Auth] session save failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "session_failed", "")
	}
	if err := repo.TouchLastLogin(user.ID); err != nil {
		log.Warnf("[Auth] last login update for user %d failed: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{"ok": true, "user": accountPayload(user)})
}

func HandleAuthLogout(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store == nil {
		return c.JSON(fiber.Map{"ok": true})
	}
	sess, err := store.Get(c)
	if err != nil {
		return c.JSON(fiber.Map{"ok": true})
	}
	if err := sess.Destroy(); err != nil {
		log.Errorf("[Auth] session destroy failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "session_failed", "")
	}
	return c.JSON(fiber.Map{"ok": true})
}

func activationLink(token string) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/api/v1/auth/activate?token=" + url.QueryEscape(token)
}
