package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evoluciona-hipotecaria/apiserver/internal/services"
	"github.com/evoluciona-hipotecaria/apiserver/internal/store"
	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	users   map[string]types.User
	updated map[string]string
}

func newFakeUserRepo(users ...types.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:   make(map[string]types.User),
		updated: make(map[string]string),
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByRut(ctx context.Context, rut string) (types.User, error) {
	for _, u := range f.users {
		if u.Rut == rut {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.MustChangePassword = false
	f.users[id] = u
	f.updated[id] = passwordHash
	return nil
}

func testVendedor(t *testing.T) types.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("12345"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return types.User{
		ID:                 "user-1",
		Rut:                "12345678-5",
		PasswordHash:       string(hash),
		Rol:                types.RoleVendedor,
		MustChangePassword: true,
	}
}

func authRouter(repo *fakeUserRepo) chi.Router {
	r := chi.NewRouter()
	AuthRouter(r, services.NewUserService(repo), testSecret)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo(testVendedor(t))
	router := authRouter(repo)

	rec := postJSON(t, router, "/login", LoginRequest{Rut: "12.345.678-5", Password: "12345"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AccessToken == "" {
		t.Error("empty access token")
	}
	if !resp.MustChangePassword {
		t.Error("MustChangePassword = false, want true")
	}
	if resp.User.Rut != "12345678-5" || resp.User.Rol != types.RoleVendedor {
		t.Errorf("user = %+v", resp.User)
	}

	claims, err := parseToken(resp.AccessToken, []byte(testSecret))
	if err != nil {
		t.Fatalf("parseToken: %v", err)
	}
	if claims.Subject != "user-1" || claims.Rut != "12345678-5" || claims.Rol != types.RoleVendedor {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginInvalidRutFormat(t *testing.T) {
	router := authRouter(newFakeUserRepo())
	rec := postJSON(t, router, "/login", LoginRequest{Rut: "no es rut", Password: "x"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := authRouter(newFakeUserRepo(testVendedor(t)))
	rec := postJSON(t, router, "/login", LoginRequest{Rut: "12345678-5", Password: "incorrecta"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	router := authRouter(newFakeUserRepo())
	rec := postJSON(t, router, "/login", LoginRequest{Rut: "76453723-8", Password: "x"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo(testVendedor(t))
	router := authRouter(repo)

	login := postJSON(t, router, "/login", LoginRequest{Rut: "12345678-5", Password: "12345"}, "")
	var resp LoginResponse
	if err := json.Unmarshal(login.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, router, "/change-password", ChangePasswordRequest{
		CurrentPassword: "12345",
		NewPassword:     "nueva-clave",
	}, resp.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if _, ok := repo.updated["user-1"]; !ok {
		t.Error("password not persisted")
	}
	if repo.users["user-1"].MustChangePassword {
		t.Error("must_change_password not cleared")
	}
}

func TestChangePasswordSameAsCurrent(t *testing.T) {
	repo := newFakeUserRepo(testVendedor(t))
	router := authRouter(repo)

	login := postJSON(t, router, "/login", LoginRequest{Rut: "12345678-5", Password: "12345"}, "")
	var resp LoginResponse
	if err := json.Unmarshal(login.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, router, "/change-password", ChangePasswordRequest{
		CurrentPassword: "12345",
		NewPassword:     "12345",
	}, resp.AccessToken)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChangePasswordRequiresAuth(t *testing.T) {
	router := authRouter(newFakeUserRepo())
	rec := postJSON(t, router, "/change-password", ChangePasswordRequest{
		CurrentPassword: "a",
		NewPassword:     "b",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRoleForbidsSeller(t *testing.T) {
	repo := newFakeUserRepo(testVendedor(t))
	authMiddleware := RequireAuth(testSecret)

	router := chi.NewRouter()
	router.With(authMiddleware, RequireRole(types.RoleAdmin)).Get("/admin-only", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	loginRouter := authRouter(repo)
	login := postJSON(t, loginRouter, "/login", LoginRequest{Rut: "12345678-5", Password: "12345"}, "")
	var resp LoginResponse
	if err := json.Unmarshal(login.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	router := chi.NewRouter()
	router.With(RequireAuth(testSecret)).Get("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer no-es-un-jwt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
