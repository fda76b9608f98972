package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerhub/offerhub/internal/config"
	"github.com/offerhub/offerhub/internal/logging"
	"github.com/offerhub/offerhub/internal/media"
)

func testConfig() config.Config {
	return config.Config{
		AppName:            "offerhub-test",
		AppEnv:             "test",
		CORSAllowedOrigins: "*",
		MaxUploadBytes:     1 << 20,
		ImageRoot:          "vinted-api",
		TokenCacheTTL:      time.Minute,
		IdempotencyTTL:     time.Minute,
	}
}

func newTestServer(t *testing.T) (*fiber.App, *media.MemoryStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	images := media.NewMemoryStore()
	srv, err := New(testConfig(), nil, cache, images, logging.Discard())
	require.NoError(t, err)
	return srv.App(), images
}

func call(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func publishRequest(t *testing.T, token string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("picture", "jacket.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("\xff\xd8\xff\xe0fake-jpeg"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/offer/publish", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

type session struct {
	ID    string `json:"_id"`
	Token string `json:"token"`
}

func TestOfferLifecycle(t *testing.T) {
	app, images := newTestServer(t)

	var signedUp session
	status := call(t, app, jsonRequest(fiber.MethodPost, "/user/signup",
		`{"email":"ana@x.com","password":"pw1","username":"ana","phone":"0600"}`), &signedUp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, signedUp.Token)

	var loggedIn session
	status = call(t, app, jsonRequest(fiber.MethodPost, "/user/login", `{"email":"ana@x.com","password":"pw1"}`), &loggedIn)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, signedUp, loggedIn)

	var published struct {
		ID    string `json:"_id"`
		Owner struct {
			ID      string `json:"_id"`
			Account struct {
				Username string `json:"username"`
			} `json:"account"`
		} `json:"owner"`
	}
	status = call(t, app, publishRequest(t, loggedIn.Token, map[string]string{
		"title": "Jacket", "description": "Warm", "price": "40",
		"brand": "Zara", "size": "M", "condition": "good", "color": "blue", "city": "Paris",
	}), &published)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, signedUp.ID, published.Owner.ID)
	assert.Equal(t, "ana", published.Owner.Account.Username)
	folder := "vinted-api/offers/" + published.ID
	assert.Len(t, images.Objects(folder), 1)

	var list struct {
		Count  int `json:"count"`
		Offers []struct {
			ID string `json:"_id"`
		} `json:"offers"`
	}
	status = call(t, app, httptest.NewRequest(fiber.MethodGet, "/offers?title=jack&priceMax=50", nil), &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, list.Count)
	require.Len(t, list.Offers, 1)
	assert.Equal(t, published.ID, list.Offers[0].ID)

	update := jsonRequest(fiber.MethodPut, "/offer/update/"+published.ID, `{"brand":"H&M"}`)
	update.Header.Set(fiber.HeaderAuthorization, "Bearer "+loggedIn.Token)
	var updated struct {
		Details []map[string]string `json:"product_details"`
	}
	require.Equal(t, http.StatusOK, call(t, app, update, &updated))
	require.Len(t, updated.Details, 5)
	assert.Equal(t, map[string]string{"BRAND": "H&M"}, updated.Details[0])
	assert.Equal(t, map[string]string{"CITY": "Paris"}, updated.Details[4])

	del := httptest.NewRequest(fiber.MethodDelete, "/offer/delete/"+published.ID, nil)
	del.Header.Set(fiber.HeaderAuthorization, "Bearer "+loggedIn.Token)
	var msg map[string]string
	require.Equal(t, http.StatusOK, call(t, app, del, &msg))
	assert.Equal(t, "Offer deleted", msg["message"])
	assert.False(t, images.HasFolder(folder))

	status = call(t, app, httptest.NewRequest(fiber.MethodGet, "/offers/"+published.ID, nil), &msg)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWriteRoutesRequireToken(t *testing.T) {
	app, _ := newTestServer(t)

	var msg map[string]string
	status := call(t, app, jsonRequest(fiber.MethodPost, "/offer/publish", `{"title":"x"}`), &msg)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", msg["message"])

	req := httptest.NewRequest(fiber.MethodDelete, "/offer/delete/abc", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, call(t, app, req, nil))
}

func TestAuthErrorsAreIndistinguishable(t *testing.T) {
	app, _ := newTestServer(t)
	require.Equal(t, http.StatusOK, call(t, app, jsonRequest(fiber.MethodPost, "/user/signup",
		`{"email":"ana@x.com","password":"pw1","username":"ana"}`), nil))

	var wrongPassword, unknownEmail map[string]string
	s1 := call(t, app, jsonRequest(fiber.MethodPost, "/user/login", `{"email":"ana@x.com","password":"nope"}`), &wrongPassword)
	s2 := call(t, app, jsonRequest(fiber.MethodPost, "/user/login", `{"email":"bob@x.com","password":"pw1"}`), &unknownEmail)
	assert.Equal(t, http.StatusUnauthorized, s1)
	assert.Equal(t, s1, s2)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestSignupConflictAndMissingFields(t *testing.T) {
	app, _ := newTestServer(t)
	body := `{"email":"ana@x.com","password":"pw1","username":"ana"}`
	require.Equal(t, http.StatusOK, call(t, app, jsonRequest(fiber.MethodPost, "/user/signup", body), nil))

	var msg map[string]string
	assert.Equal(t, http.StatusConflict, call(t, app, jsonRequest(fiber.MethodPost, "/user/signup", body), &msg))
	assert.Equal(t, "email already in use", msg["message"])

	assert.Equal(t, http.StatusBadRequest, call(t, app, jsonRequest(fiber.MethodPost, "/user/signup", `{"email":"b@x.com"}`), &msg))
	assert.Equal(t, "Required field", msg["message"])
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestServer(t)

	var msg map[string]string
	status := call(t, app, httptest.NewRequest(fiber.MethodGet, "/nowhere", nil), &msg)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Page not found", msg["message"])
}

func TestHealthz(t *testing.T) {
	app, _ := newTestServer(t)

	var body struct {
		Status map[string]string `json:"status"`
	}
	require.Equal(t, http.StatusOK, call(t, app, httptest.NewRequest(fiber.MethodGet, "/healthz", nil), &body))
	assert.Equal(t, "memory", body.Status["postgres"])
	assert.Equal(t, "ok", body.Status["redis"])
	assert.Equal(t, "ok", body.Status["images"])
}

func TestNewRequiresBackendsOutsideDevelopment(t *testing.T) {
	cfg := testConfig()
	cfg.AppEnv = "production"
	_, err := New(cfg, nil, nil, nil, logging.Discard())
	assert.Error(t, err)
}
