package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	existing    []types.User
	created     []types.User
	batchErr    error
	createErr   map[string]error
	nextID      int
	batchCalls  int
	createCalls int
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]types.User, error) {
	var out []types.User
	for _, u := range f.existing {
		if u.Rol == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.createCalls++
	if err := f.createErr[user.Rut]; err != nil {
		return types.User{}, err
	}
	f.nextID++
	user.ID = testID(f.nextID)
	f.created = append(f.created, user)
	return user, nil
}

func (f *fakeUserRepo) CreateBatch(ctx context.Context, users []types.User) ([]types.User, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([]types.User, 0, len(users))
	for _, u := range users {
		f.nextID++
		u.ID = testID(f.nextID)
		f.created = append(f.created, u)
		out = append(out, u)
	}
	return out, nil
}

func testID(n int) string {
	return string(rune('a'+n-1)) + "-id"
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestSyncCreatesMissingSellers(t *testing.T) {
	repo := &fakeUserRepo{
		existing: []types.User{{ID: "existing-id", Rut: "12345678-5", Rol: types.RoleVendedor}},
	}
	s := NewSynchronizer(repo, bcrypt.MinCost, testLogger())

	rows := []Row{
		{"Rut Vendedor": "12.345.678-5"},
		{"Rut Vendedor": "76453723-8"},
		{"Rut Vendedor": "76453723-8"},
		{"Rut Vendedor": ""},
	}
	result, err := s.Sync(context.Background(), rows, "Rut Vendedor")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.CreatedCount != 1 {
		t.Errorf("CreatedCount = %d, want 1", result.CreatedCount)
	}
	if result.UserMap["12345678-5"] != "existing-id" {
		t.Errorf("existing seller not mapped: %v", result.UserMap)
	}
	if _, ok := result.UserMap["76453723-8"]; !ok {
		t.Errorf("new seller not mapped: %v", result.UserMap)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d, want 1", len(repo.created))
	}
	created := repo.created[0]
	if created.Rol != types.RoleVendedor || !created.MustChangePassword {
		t.Errorf("created user = %+v", created)
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(TempPasswordFromRut("76453723-8"))) != nil {
		t.Error("temp password hash does not match derived password")
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	repo := &fakeUserRepo{}
	s := NewSynchronizer(repo, bcrypt.MinCost, testLogger())
	rows := []Row{{"Rut Vendedor": "12345678-5"}}

	first, err := s.Sync(context.Background(), rows, "Rut Vendedor")
	if err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	if first.CreatedCount != 1 {
		t.Fatalf("first CreatedCount = %d", first.CreatedCount)
	}

	repo.existing = repo.created
	second, err := s.Sync(context.Background(), rows, "Rut Vendedor")
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if second.CreatedCount != 0 {
		t.Errorf("second CreatedCount = %d, want 0", second.CreatedCount)
	}
}

func TestSyncFallsBackPerUser(t *testing.T) {
	repo := &fakeUserRepo{
		batchErr:  errors.New("lote rechazado"),
		createErr: map[string]error{"1-9": errors.New("duplicado")},
	}
	s := NewSynchronizer(repo, bcrypt.MinCost, testLogger())

	rows := []Row{
		{"Rut Vendedor": "1-9"},
		{"Rut Vendedor": "76453723-8"},
	}
	result, err := s.Sync(context.Background(), rows, "Rut Vendedor")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if repo.batchCalls != 1 || repo.createCalls != 2 {
		t.Errorf("batchCalls=%d createCalls=%d", repo.batchCalls, repo.createCalls)
	}
	if result.CreatedCount != 1 {
		t.Errorf("CreatedCount = %d, want 1", result.CreatedCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].Rut != "1-9" {
		t.Errorf("Errors = %v", result.Errors)
	}
	if _, ok := result.UserMap["76453723-8"]; !ok {
		t.Errorf("surviving seller not mapped: %v", result.UserMap)
	}
}

func TestTempPasswordFromRut(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12345678-5", "12345"},
		{"76453723-8", "76458"},
		{"6-K", "6K"},
		{"1-9", "19"},
	}
	for _, tc := range cases {
		if got := TempPasswordFromRut(tc.in); got != tc.want {
			t.Errorf("TempPasswordFromRut(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
