package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/profilepanel/internal/client/account"
	"github.com/atinyakov/profilepanel/internal/models"
	"github.com/atinyakov/profilepanel/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeUserService implements UserService for testing.
type fakeUserService struct {
	user      *models.User
	getErr    error
	updateErr error

	gotID  string
	gotReq service.UpdateRequest
}

func (f *fakeUserService) GetUser(_ context.Context, id string) (*models.User, error) {
	f.gotID = id
	return f.user, f.getErr
}

func (f *fakeUserService) UpdateUser(_ context.Context, id string, req service.UpdateRequest) (*models.User, error) {
	f.gotID, f.gotReq = id, req
	return f.user, f.updateErr
}

// panickingUserService panics on every call.
type panickingUserService struct{}

func (panickingUserService) GetUser(context.Context, string) (*models.User, error) {
	panic("boom")
}

func (panickingUserService) UpdateUser(context.Context, string, service.UpdateRequest) (*models.User, error) {
	panic("boom")
}

func newServer(svc UserService) http.Handler {
	return NewRouter(&UserHandler{UserService: svc, Logger: zap.NewNop()}, zap.NewNop())
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message
}

func TestUserHandler_Update(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		service     *fakeUserService
		wantCode    int
		wantMessage string
	}{
		{
			name:        "invalid JSON",
			body:        `not a json`,
			contentType: "application/json",
			service:     &fakeUserService{},
			wantCode:    http.StatusBadRequest,
			wantMessage: "invalid request",
		},
		{
			name:        "validation error",
			body:        `{"username":"Bad"}`,
			contentType: "application/json",
			service:     &fakeUserService{updateErr: &service.ValidationError{Message: "Username must be lowercase"}},
			wantCode:    http.StatusBadRequest,
			wantMessage: "Username must be lowercase",
		},
		{
			name:        "not found",
			body:        `{"email":"a@b.co"}`,
			contentType: "application/json",
			service:     &fakeUserService{updateErr: models.ErrUserNotFound},
			wantCode:    http.StatusNotFound,
			wantMessage: "User not found",
		},
		{
			name:        "conflict",
			body:        `{"email":"a@b.co"}`,
			contentType: "application/json",
			service:     &fakeUserService{updateErr: models.ErrUserConflict},
			wantCode:    http.StatusConflict,
			wantMessage: "Username or email already taken",
		},
		{
			name:        "internal error",
			body:        `{"email":"a@b.co"}`,
			contentType: "application/json",
			service:     &fakeUserService{updateErr: errors.New("db down")},
			wantCode:    http.StatusInternalServerError,
			wantMessage: "internal error",
		},
		{
			name:        "wrong content type",
			body:        `{"email":"a@b.co"}`,
			contentType: "text/plain",
			service:     &fakeUserService{},
			wantCode:    http.StatusUnsupportedMediaType,
			wantMessage: "Content-Type must be application/json",
		},
		{
			name:        "JSON with charset",
			body:        `{"email":"a@b.co"}`,
			contentType: "application/json; charset=utf-8",
			service:     &fakeUserService{user: &models.User{ID: "u1"}},
			wantCode:    http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/user/update/u1", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			newServer(tt.service).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decodeMessage(t, rec))
			}
		})
	}
}

func TestUserHandler_UpdateSuccess(t *testing.T) {
	svc := &fakeUserService{user: &models.User{ID: "u1", Username: "newuser1", ProfilePicture: "https://cdn/a.png"}}
	body := `{"username":"newuser1","profilePicture":"https://cdn/a.png","isAdmin":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/user/update/u1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newServer(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", svc.gotID)
	assert.Equal(t, service.UpdateRequest{Username: "newuser1", ProfilePicture: "https://cdn/a.png"}, svc.gotReq)

	var got models.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "newuser1", got.Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserHandler_Get(t *testing.T) {
	svc := &fakeUserService{user: &models.User{ID: "u1", Username: "alice123"}}
	rec := httptest.NewRecorder()

	newServer(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "u1", svc.gotID)

	rec = httptest.NewRecorder()
	newServer(&fakeUserService{getErr: models.ErrUserNotFound}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeMessage(t, rec))
}

func TestNewRouter_RateLimit(t *testing.T) {
	prev := RateLimit
	RateLimit = 2
	defer func() { RateLimit = prev }()

	h := newServer(&fakeUserService{user: &models.User{ID: "u1"}})

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/u1", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewRouter_ErrorsAreJSON(t *testing.T) {
	prev := RateLimit
	RateLimit = 1
	defer func() { RateLimit = prev }()

	tests := []struct {
		name        string
		svc         UserService
		requests    int
		method      string
		target      string
		wantCode    int
		wantMessage string
	}{
		{"rate limited", &fakeUserService{user: &models.User{ID: "u1"}}, 2, http.MethodGet, "/api/user/u1", http.StatusTooManyRequests, "Too many requests"},
		{"panic", panickingUserService{}, 1, http.MethodGet, "/api/user/u1", http.StatusInternalServerError, "Internal server error"},
		{"unknown route", &fakeUserService{}, 1, http.MethodGet, "/api/nope", http.StatusNotFound, "Not found"},
		{"wrong method", &fakeUserService{}, 1, http.MethodDelete, "/api/user/u1", http.StatusMethodNotAllowed, "Method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newServer(tt.svc)
			var rec *httptest.ResponseRecorder
			for range tt.requests {
				rec = httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			}

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantMessage, decodeMessage(t, rec))
		})
	}
}

func TestNewRouter_AccountClientSeesRejections(t *testing.T) {
	prev := RateLimit
	RateLimit = 1
	defer func() { RateLimit = prev }()

	srv := httptest.NewServer(newServer(&fakeUserService{user: &models.User{ID: "u1", Username: "alice123"}}))
	defer srv.Close()

	client := account.NewClient(srv.Client(), srv.URL, zap.NewNop())

	got, err := client.UpdateUser(context.Background(), "u1", models.Draft{models.FieldUsername: "alice123"})
	require.NoError(t, err)
	assert.Equal(t, "alice123", got.Username)

	_, err = client.UpdateUser(context.Background(), "u1", models.Draft{models.FieldUsername: "alice123"})
	var rerr *account.ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusTooManyRequests, rerr.StatusCode)
	assert.Equal(t, "Too many requests", rerr.Message)
}
