package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SaaSFox/app/models"
	"github.com/ManuelReschke/SaaSFox/app/repository"
)

// HandleOAuthBegin redirects to the provider named in the path.
func HandleOAuthBegin(c *fiber.Ctx) error {
	if _, err := goth.GetProvider(c.Params("provider")); err != nil {
		return jsonError(c, fiber.StatusNotFound, "unknown_provider", "login provider is not configured")
	}
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "oauth_failed", err.Error())
	}

	appUser, err := resolveOAuthUser(userRepositoryFn(), providerAccountRepositoryFn(), u)
	if err != nil {
		log.Errorf("[OAuth] %s login for %s failed: %v", u.Provider, u.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "oauth_failed", "")
	}
	if !appUser.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "account_inactive", "account is disabled")
	}

	if err := loginUser(c, appUser); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "session_failed", "")
	}
	_ = userRepositoryFn().TouchLastLogin(appUser.ID)

	return c.Redirect("/", fiber.StatusSeeOther)
}

// resolveOAuthUser finds or creates the local user for a provider identity
// and stores fresh tokens on the link.
func resolveOAuthUser(users repository.UserRepository, accounts repository.ProviderAccountRepository, u goth.User) (*models.User, error) {
	var appUser *models.User

	link, err := accounts.GetByProviderUserID(u.Provider, u.UserID)
	switch {
	case err == nil:
		appUser, err = users.GetByID(link.UserID)
		if err != nil {
			return nil, fmt.Errorf("linked user %d: %w", link.UserID, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if u.Email != "" {
			if existing, lookupErr := users.GetByEmail(strings.ToLower(u.Email)); lookupErr == nil {
				appUser = existing
			}
		}
		if appUser == nil {
			appUser, err = createOAuthUser(users, u)
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, err
	}

	var exp *time.Time
	if !u.ExpiresAt.IsZero() {
		t := u.ExpiresAt
		exp = &t
	}
	if err := accounts.Upsert(&models.ProviderAccount{
		UserID:         appUser.ID,
		Provider:       u.Provider,
		ProviderUserID: u.UserID,
		AccessToken:    u.AccessToken,
		RefreshToken:   u.RefreshToken,
		ExpiresAt:      exp,
	}); err != nil {
		return nil, fmt.Errorf("link provider: %w", err)
	}
	return appUser, nil
}

func createOAuthUser(users repository.UserRepository, u goth.User) (*models.User, error) {
	// random placeholder, password login stays impossible until reset
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	hash, err := models.HashPassword(hex.EncodeToString(b))
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(u.Email)
	if email == "" {
		email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
	}
	appUser := &models.User{
		Name:      firstNonEmpty(u.Name, u.NickName, u.Email, "User"),
		Email:     email,
		Password:  hash,
		AvatarURL: u.AvatarURL,
		Role:      models.ROLE_USER,
		Status:    models.STATUS_ACTIVE,
	}
	if err := users.Create(appUser); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return appUser, nil
}
