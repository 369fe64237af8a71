package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	authhttp "github.com/yaddak/yaddak/internal/auth/http"
	"github.com/yaddak/yaddak/internal/auth/service"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

type mockUserService struct {
	registerFunc func(ctx context.Context, input service.RegisterInput) (userdomain.User, error)
	loginFunc    func(ctx context.Context, input service.LoginInput) (service.LoginResult, error)
	getFunc      func(ctx context.Context, id uuid.UUID) (userdomain.User, error)
	listFunc     func(ctx context.Context) ([]userdomain.User, error)
	updateFunc   func(ctx context.Context, id uuid.UUID, input service.UpdateInput) (userdomain.User, error)
	deleteFunc   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserService) Register(ctx context.Context, input service.RegisterInput) (userdomain.User, error) {
	return m.registerFunc(ctx, input)
}

func (m *mockUserService) Login(ctx context.Context, input service.LoginInput) (service.LoginResult, error) {
	return m.loginFunc(ctx, input)
}

func (m *mockUserService) GetUser(ctx context.Context, id uuid.UUID) (userdomain.User, error) {
	return m.getFunc(ctx, id)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]userdomain.User, error) {
	return m.listFunc(ctx)
}

func (m *mockUserService) UpdateUser(ctx context.Context, id uuid.UUID, input service.UpdateInput) (userdomain.User, error) {
	return m.updateFunc(ctx, id, input)
}

func (m *mockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

var aliceID = uuid.MustParse("c7a1d2e3-4b5f-4a6b-8c9d-0e1f2a3b4c5d")

type envelope struct {
	Data  json.RawMessage          `json:"data"`
	Error *commonerrors.Descriptor `json:"error"`
}

func setupMux(svc *mockUserService, auth func(http.Handler) http.Handler) *http.ServeMux {
	log, _ := logger.New("", "test", "error")
	if auth == nil {
		auth = func(next http.Handler) http.Handler { return next }
	}
	mux := http.NewServeMux()
	authhttp.NewHandler(svc, log).Routes(mux, auth)
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestRegister(t *testing.T) {
	svc := &mockUserService{
		registerFunc: func(ctx context.Context, input service.RegisterInput) (userdomain.User, error) {
			if input.UserName == "alice" {
				return userdomain.User{}, service.ErrUserNameTaken
			}
			return userdomain.User{ID: aliceID, UserName: input.UserName, UserEmail: input.UserEmail, UserAuth: "digest"}, nil
		},
	}
	mux := setupMux(svc, nil)

	rec, env := do(t, mux, http.MethodPost, "/user", `{"user_name":"bob","user_email":"b@x.io","user_pass":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if env.Error != nil {
		t.Errorf("expected null error, got %+v", env.Error)
	}
	if strings.Contains(string(env.Data), "digest") || strings.Contains(string(env.Data), "user_auth") {
		t.Errorf("credential digest leaked: %s", env.Data)
	}

	rec, env = do(t, mux, http.MethodPost, "/user", `{"user_name":"alice","user_email":"a@x.io","user_pass":"secret1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "AUTH_ALREADY_EXISTS" || env.Error.Kind != commonerrors.KindAuth {
		t.Errorf("unexpected error %+v", env.Error)
	}
	if string(env.Data) != "null" {
		t.Errorf("expected null data, got %s", env.Data)
	}

	rec, env = do(t, mux, http.MethodPost, "/user", `{not json`)
	if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != "INVALID_JSON" {
		t.Errorf("expected INVALID_JSON 400, got %d %+v", rec.Code, env.Error)
	}
}

func TestLogin(t *testing.T) {
	svc := &mockUserService{
		loginFunc: func(ctx context.Context, input service.LoginInput) (service.LoginResult, error) {
			if input.Password != "secret1" {
				return service.LoginResult{}, service.ErrInvalidCredentials
			}
			return service.LoginResult{User: userdomain.User{ID: aliceID, UserName: "alice"}, Token: "tok"}, nil
		},
	}
	mux := setupMux(svc, nil)

	rec, env := do(t, mux, http.MethodPost, "/user/login", `{"user_name":"alice","user_pass":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var result struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if result.Token != "tok" || result.User["user_name"] != "alice" {
		t.Errorf("unexpected login result %+v", result)
	}

	rec, env = do(t, mux, http.MethodPost, "/user/login", `{"user_name":"alice","user_pass":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "AUTH_INVALID_CREDENTIAL" {
		t.Errorf("unexpected error %+v", env.Error)
	}
}

func TestProtectedRoutesUseAuth(t *testing.T) {
	svc := &mockUserService{
		listFunc: func(ctx context.Context) ([]userdomain.User, error) {
			t.Error("list must not be reached without auth")
			return nil, nil
		},
	}
	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	}
	mux := setupMux(svc, deny)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/user"},
		{http.MethodGet, "/user/" + aliceID.String()},
		{http.MethodPut, "/user/" + aliceID.String()},
		{http.MethodDelete, "/user/" + aliceID.String()},
	} {
		rec, _ := do(t, mux, tc.method, tc.path, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s: expected 403, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestGetUser(t *testing.T) {
	svc := &mockUserService{
		getFunc: func(ctx context.Context, id uuid.UUID) (userdomain.User, error) {
			if id != aliceID {
				return userdomain.User{}, commonerrors.ErrNotFound
			}
			return userdomain.User{ID: id, UserName: "alice"}, nil
		},
	}
	mux := setupMux(svc, nil)

	testCases := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"found", "/user/" + aliceID.String(), http.StatusOK, ""},
		{"missing", "/user/" + uuid.New().String(), http.StatusNotFound, "STORAGE_NOT_FOUND"},
		{"bad id", "/user/not-a-uuid", http.StatusBadRequest, "INVALID_ID"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(t, mux, http.MethodGet, tc.path, "")
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantCode != "" && (env.Error == nil || env.Error.Code != tc.wantCode) {
				t.Errorf("expected code %s, got %+v", tc.wantCode, env.Error)
			}
		})
	}
}

func TestUpdateAndDelete_NotModified(t *testing.T) {
	svc := &mockUserService{
		updateFunc: func(ctx context.Context, id uuid.UUID, input service.UpdateInput) (userdomain.User, error) {
			if id != aliceID {
				return userdomain.User{}, commonerrors.ErrNotFound
			}
			if input.Password != "secret1" {
				return userdomain.User{}, service.ErrInvalidCredentials
			}
			return userdomain.User{ID: id, UserName: input.UserName, UserEmail: input.UserEmail}, nil
		},
		deleteFunc: func(ctx context.Context, id uuid.UUID) error {
			if id != aliceID {
				return commonerrors.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(svc, nil)
	body := `{"user_name":"alice2","user_email":"a2@x.io","user_pass":"secret1"}`

	rec, _ := do(t, mux, http.MethodPut, "/user/"+aliceID.String(), body)
	if rec.Code != http.StatusOK {
		t.Errorf("update: expected 200, got %d", rec.Code)
	}

	rec, _ = do(t, mux, http.MethodPut, "/user/"+uuid.New().String(), body)
	if rec.Code != http.StatusNotModified {
		t.Errorf("update missing: expected 304, got %d", rec.Code)
	}

	rec, _ = do(t, mux, http.MethodPut, "/user/"+aliceID.String(), strings.Replace(body, "secret1", "wrong1", 1))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("update wrong password: expected 401, got %d", rec.Code)
	}

	rec, env := do(t, mux, http.MethodDelete, "/user/"+aliceID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if string(env.Data) != `"`+aliceID.String()+`"` {
		t.Errorf("delete: expected id in data, got %s", env.Data)
	}

	rec, _ = do(t, mux, http.MethodDelete, "/user/"+uuid.New().String(), "")
	if rec.Code != http.StatusNotModified {
		t.Errorf("delete missing: expected 304, got %d", rec.Code)
	}
}

func TestUpdate_NameClashHasOneStatus(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{"caught by lookup", service.ErrUserNameTaken},
		{"caught by unique index", commonerrors.ErrAlreadyExists.WithMessage("user name is already used").WithCause(commonerrors.ErrConflict)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockUserService{
				updateFunc: func(ctx context.Context, id uuid.UUID, input service.UpdateInput) (userdomain.User, error) {
					return userdomain.User{}, tc.err
				},
			}
			mux := setupMux(svc, nil)
			body := `{"user_name":"bob","user_email":"a2@x.io","user_pass":"secret1"}`

			rec, env := do(t, mux, http.MethodPut, "/user/"+aliceID.String(), body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if env.Error == nil || env.Error.Code != commonerrors.ErrAlreadyExists.Code() {
				t.Errorf("expected %s, got %+v", commonerrors.ErrAlreadyExists.Code(), env.Error)
			}
		})
	}
}
