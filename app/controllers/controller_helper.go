package controllers

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SaaSFox/app/models"
	"github.com/ManuelReschke/SaaSFox/app/repository"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/billing"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/blob"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/cache"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/cms"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/database"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/notion"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/session"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/usercontext"
)

const requestTimeout = 15 * time.Second

// BlobStore is the part of blob.Client used by the blob handlers.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*blob.Object, error)
	Delete(ctx context.Context, key string) error
}

// Service constructors, swapped in tests.
var (
	billingServiceFn = func() *billing.Service {
		return billing.NewServiceFromDB(database.GetDB())
	}
	userRepositoryFn = func() repository.UserRepository {
		return repository.GetGlobalFactory().GetUserRepository()
	}
	providerAccountRepositoryFn = func() repository.ProviderAccountRepository {
		return repository.GetGlobalFactory().GetProviderAccountRepository()
	}
	cmsServiceFn = func() *cms.Service {
		return cms.NewService(
			notion.NewClientFromEnv(),
			cache.NewStore(cache.GetClient()),
			env.GetEnvDuration("CMS_CACHE_TTL", 5*time.Minute),
		)
	}
	blobStoreFn = func(ctx context.Context) (BlobStore, error) {
		client, err := blob.NewClientFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
)

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	body := fiber.Map{"error": code}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// loginUser stores the user in the app session.
func loginUser(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	// new session id on privilege change
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUserUUID, user.UUID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	return sess.Save()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(c.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
