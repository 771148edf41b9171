package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/SaaSFox/app/models"
	"github.com/ManuelReschke/SaaSFox/app/repository"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/usercontext"
)

type fakeUserRepository struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepository(seed ...models.User) *fakeUserRepository {
	r := &fakeUserRepository{users: map[uint]*models.User{}}
	for _, u := range seed {
		u := u
		r.users[u.ID] = &u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *fakeUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepository) GetByID(id uint) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *fakeUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepository) GetByActivationToken(token string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return token != "" && u.ActivationToken == token })
}

func (r *fakeUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepository) TouchLastLogin(id uint) error { return nil }

func (r *fakeUserRepository) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func useUserRepository(t *testing.T, repo repository.UserRepository) {
	t.Helper()
	orig := userRepositoryFn
	userRepositoryFn = func() repository.UserRepository { return repo }
	t.Cleanup(func() { userRepositoryFn = orig })
}

// asUser injects a logged-in user context, standing in for the session middleware.
func asUser(id uint, uuid string, admin bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     id,
			UserUUID:   uuid,
			Username:   "tester",
			IsLoggedIn: true,
			IsAdmin:    admin,
		})
		return c.Next()
	}
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(strings.TrimSpace(string(raw))) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}
