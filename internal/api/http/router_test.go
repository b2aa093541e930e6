package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/streetlight-service/internal/api/http/handlers"
	"github.com/spec-kit/streetlight-service/internal/auth"
	"github.com/spec-kit/streetlight-service/internal/config"
	"github.com/spec-kit/streetlight-service/internal/events"
	"github.com/spec-kit/streetlight-service/internal/observability"
	"github.com/spec-kit/streetlight-service/internal/repository"
	"github.com/spec-kit/streetlight-service/internal/seed"
	"github.com/spec-kit/streetlight-service/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	complaints := repository.NewMemoryComplaintRepository()
	sessions := repository.NewMemorySessionRepository()
	dispatcher := events.NewInMemoryDispatcher(nil)

	file, err := seed.Load("")
	require.NoError(t, err)
	require.NoError(t, seed.Seeder{Users: users, Complaints: complaints, BcryptCost: bcrypt.MinCost}.Apply(ctx, file))

	identity := service.NewIdentityService(
		config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost},
		service.IdentityDependencies{UserRepo: users, SessionRepo: sessions},
	)
	registry := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaints,
		UserRepo:      users,
		Dispatcher:    dispatcher,
	})
	metrics := observability.NewMetrics()

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("streetlight", "test", nil, nil, metrics),
		Auth:           handlers.NewAuthHandler(identity),
		Complaints:     handlers.NewComplaintsHandler(registry),
		Admin:          handlers.NewAdminHandler(registry),
		AuthMiddleware: auth.NewAuthMiddleware(identity),
	})
	return app
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, env := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, fiber.StatusOK, status)
	var session struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	return session.Auth.Token
}

type complaintView struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	UserName   string  `json:"user_name"`
	Status     string  `json:"status"`
	AdminNotes *string `json:"admin_notes"`
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)

	req := httptest.NewRequest(fiber.MethodGet, "/health/ready", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var ready struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "memory", ready.Dependencies["postgres"])
	assert.Equal(t, "memory", ready.Dependencies["redis"])
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	app := newTestApp(t)
	status, env := call(t, app, fiber.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "user@example.com", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	status, env = call(t, app, fiber.MethodPost, "/auth/register", "", map[string]string{"name": "Dup", "email": "user@example.com", "password": "x"})
	assert.Equal(t, fiber.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_ACCOUNT", env.Error.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, fiber.MethodGet, "/complaints", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	userToken := login(t, app, "user@example.com", "user123")
	status, env = call(t, app, fiber.MethodGet, "/admin/complaints", userToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	status, _ = call(t, app, fiber.MethodPatch, "/admin/complaints/1/status", userToken, map[string]string{"status": "resolved"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestOwnerScoping(t *testing.T) {
	app := newTestApp(t)
	janeToken := login(t, app, "jane@example.com", "jane123")

	status, env := call(t, app, fiber.MethodGet, "/complaints", janeToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var mine []complaintView
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "Jane Smith", mine[0].UserName)

	status, env = call(t, app, fiber.MethodGet, "/complaints/1", janeToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = call(t, app, fiber.MethodGet, "/complaints/99", janeToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAdminViews(t *testing.T) {
	app := newTestApp(t)
	adminToken := login(t, app, "admin@example.com", "admin123")

	status, env := call(t, app, fiber.MethodGet, "/admin/complaints?status=pending", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var pending []complaintView
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "1", pending[0].ID)

	status, env = call(t, app, fiber.MethodGet, "/admin/complaints?q=oak", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var search []complaintView
	require.NoError(t, json.Unmarshal(env.Data, &search))
	require.Len(t, search, 1)
	assert.Equal(t, "resolved", search[0].Status)

	status, _ = call(t, app, fiber.MethodGet, "/admin/complaints?status=closed", adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = call(t, app, fiber.MethodGet, "/admin/complaints/stats", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var stats struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.ByStatus["in-progress"])
	assert.Equal(t, 0, stats.ByStatus["rejected"])

	status, env = call(t, app, fiber.MethodGet, "/admin/users", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var users []struct {
		Email           string `json:"email"`
		ComplaintsCount int    `json:"complaints_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 4)
	assert.Equal(t, "user@example.com", users[1].Email)
	assert.Equal(t, 2, users[1].ComplaintsCount)
}

func TestRegisterFileResolveOverHTTP(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, fiber.MethodPost, "/auth/register", "", map[string]string{
		"name": "Jane Doe", "email": "jane@x.com", "password": "pw1",
	})
	require.Equal(t, fiber.StatusCreated, status)
	var session struct {
		User struct {
			Role string `json:"role"`
		} `json:"user"`
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "user", session.User.Role)
	janeToken := session.Auth.Token

	status, env = call(t, app, fiber.MethodPost, "/complaints", janeToken, map[string]any{
		"location":    map[string]any{"address": "1 Elm St", "coordinates": map[string]float64{"lat": 40.0, "lng": -74.0}},
		"description": "light out",
	})
	require.Equal(t, fiber.StatusCreated, status)
	var created complaintView
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "Jane Doe", created.UserName)

	adminToken := login(t, app, "admin@example.com", "admin123")
	status, env = call(t, app, fiber.MethodPatch, "/admin/complaints/"+created.ID+"/status", adminToken, map[string]string{
		"status": "resolved", "notes": "fixed",
	})
	require.Equal(t, fiber.StatusOK, status)
	var resolved complaintView
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.Equal(t, "resolved", resolved.Status)
	require.NotNil(t, resolved.AdminNotes)
	assert.Equal(t, "fixed", *resolved.AdminNotes)

	status, env = call(t, app, fiber.MethodGet, "/complaints/"+created.ID, janeToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var seen complaintView
	require.NoError(t, json.Unmarshal(env.Data, &seen))
	assert.Equal(t, "resolved", seen.Status)

	status, _ = call(t, app, fiber.MethodPost, "/auth/logout", janeToken, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, env = call(t, app, fiber.MethodGet, "/auth/me", janeToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "null", string(env.Data))

	status, _ = call(t, app, fiber.MethodGet, "/complaints", janeToken, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLogoutIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "user@example.com", "user123")

	status, _ := call(t, app, fiber.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = call(t, app, fiber.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = call(t, app, fiber.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = call(t, app, fiber.MethodGet, "/complaints", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
