package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "renewmart-backend/internal/auth"
	"renewmart-backend/internal/domain"
	"renewmart-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserFinder returns the configured user for the right password.
type fakeUserFinder struct {
	user *domain.User
}

func (f *fakeUserFinder) FindByEmailAndPassword(email, password string) (*domain.User, error) {
	if f.user != nil && f.user.Email == email {
		if password == "Passw0rd!" {
			return f.user, nil
		}
		return nil, authsvc.ErrIncorrectPassword
	}
	return nil, authsvc.ErrInvalidEmail
}

func setupAuthHandlers(t *testing.T, finder authsvc.UserFinder) (*Handlers, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		UserFinder: finder,
		Rdb:        rdb,
		Config: middleware.SessionConfig{
			AllowCrossSiteDev: false,
			IsProduction:      false,
		},
	}
	return h, rdb
}

func testUser() *domain.User {
	return &domain.User{
		UserID:   uuid.New(),
		Fullname: "Jane Doe",
		Email:    "jane@example.com",
		Role:     "analyst",
	}
}

func TestLogin_Success(t *testing.T) {
	user := testUser()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: user})
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"email": user.Email, "password": "Passw0rd!"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// Session cookie set with the "s:" prefix.
	var cookie string
	for _, c := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(c, "renewmart.sid=") {
			cookie = c
		}
	}
	require.NotEmpty(t, cookie)
	assert.Contains(t, cookie, "renewmart.sid=s:")

	// The session is tracked in the user's session set.
	members, err := rdb.SMembers(context.Background(), "user_sessions:"+user.UserID.String()).Result()
	require.NoError(t, err)
	assert.Len(t, members, 1)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data := result["data"].(map[string]interface{})
	assert.Equal(t, user.Email, data["user"].(map[string]interface{})["email"])
}

func TestLogin_WrongPassword(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{user: testUser()})
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"email": "jane@example.com", "password": "wrong"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestLogin_MissingFields(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"email": "jane@example.com"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestMe_NotAuthenticated(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Get("/me", h.Me)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMe_WithSessionUser(t *testing.T) {
	user := testUser()
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":  user.UserID.String(),
			"fullname": user.Fullname,
			"email":    user.Email,
			"role":     user.Role,
		})
		return c.Next()
	})
	app.Get("/me", h.Me)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data := result["data"].(map[string]interface{})
	assert.Equal(t, user.Email, data["user"].(map[string]interface{})["email"])
}

func TestLogout_ClearsSession(t *testing.T) {
	user := testUser()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{})
	sessionID := uuid.New().String()

	require.NoError(t, rdb.SAdd(context.Background(), "user_sessions:"+user.UserID.String(), sessionID).Err())
	require.NoError(t, rdb.Set(context.Background(), middleware.SessionRedisPrefix+sessionID, "{}", 0).Err())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session_id", sessionID)
		c.Locals("user", map[string]interface{}{"user_id": user.UserID.String()})
		return c.Next()
	})
	app.Delete("/logout", h.Logout)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	exists, err := rdb.Exists(context.Background(), middleware.SessionRedisPrefix+sessionID).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	members, err := rdb.SMembers(context.Background(), "user_sessions:"+user.UserID.String()).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}
