package importer

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/evoluciona-hipotecaria/apiserver/internal/rut"
	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// defaultSyncBatchSize bounds how many accounts are created per statement and
// how many bcrypt hashes run concurrently.
const defaultSyncBatchSize = 100

// UserSyncRepository is the slice of user persistence the synchronizer needs.
type UserSyncRepository interface {
	ListByRole(ctx context.Context, role string) ([]types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	CreateBatch(ctx context.Context, users []types.User) ([]types.User, error)
}

// Synchronizer provisions seller accounts for RUTs seen in an import. It is
// idempotent: a second run over the same rows creates nothing.
type Synchronizer struct {
	repo       UserSyncRepository
	bcryptCost int
	batchSize  int
	log        *logrus.Logger
}

func NewSynchronizer(repo UserSyncRepository, bcryptCost int, log *logrus.Logger) *Synchronizer {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Synchronizer{
		repo:       repo,
		bcryptCost: bcryptCost,
		batchSize:  defaultSyncBatchSize,
		log:        log,
	}
}

// SyncResult maps every seller RUT seen in the rows to a user id and reports
// how many accounts had to be created, plus the per-account shortfall.
type SyncResult struct {
	UserMap      map[string]string
	CreatedCount int
	Errors       []AccountError
}

// Sync extracts the distinct seller RUTs, diffs them against the existing
// VENDEDOR accounts and creates the missing ones in batches. One failed
// account never aborts the rest.
func (s *Synchronizer) Sync(ctx context.Context, rows []Row, sellerColumn string) (SyncResult, error) {
	distinct := make(map[string]struct{})
	for _, row := range rows {
		value := strings.TrimSpace(row[sellerColumn])
		if value == "" {
			continue
		}
		distinct[rut.Normalize(value)] = struct{}{}
	}

	existing, err := s.repo.ListByRole(ctx, types.RoleVendedor)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{UserMap: make(map[string]string, len(distinct)+len(existing))}
	for _, user := range existing {
		result.UserMap[user.Rut] = user.ID
	}

	var toCreate []string
	for r := range distinct {
		if _, ok := result.UserMap[r]; !ok {
			toCreate = append(toCreate, r)
		}
	}
	sort.Strings(toCreate)

	if len(toCreate) == 0 {
		return result, nil
	}
	s.log.WithFields(logrus.Fields{
		"distintos": len(distinct),
		"a_crear":   len(toCreate),
	}).Info("sincronizando usuarios vendedores")

	for start := 0; start < len(toCreate); start += s.batchSize {
		end := start + s.batchSize
		if end > len(toCreate) {
			end = len(toCreate)
		}
		s.createBatch(ctx, toCreate[start:end], &result)
	}

	return result, nil
}

// createBatch hashes the batch's temp passwords concurrently and persists the
// accounts in one statement; if the batch insert fails it retries each RUT
// sequentially so a single bad record does not lose the whole batch.
func (s *Synchronizer) createBatch(ctx context.Context, ruts []string, result *SyncResult) {
	type hashed struct {
		rut  string
		hash string
		err  error
	}

	hashes := make([]hashed, len(ruts))
	var wg sync.WaitGroup
	for i, r := range ruts {
		wg.Add(1)
		go func(i int, r string) {
			defer wg.Done()
			hash, err := bcrypt.GenerateFromPassword([]byte(TempPasswordFromRut(r)), s.bcryptCost)
			hashes[i] = hashed{rut: r, hash: string(hash), err: err}
		}(i, r)
	}
	wg.Wait()

	users := make([]types.User, 0, len(ruts))
	for _, h := range hashes {
		if h.err != nil {
			result.Errors = append(result.Errors, AccountError{Rut: h.rut, Message: h.err.Error()})
			continue
		}
		users = append(users, types.User{
			Rut:                h.rut,
			PasswordHash:       h.hash,
			Rol:                types.RoleVendedor,
			MustChangePassword: true,
		})
	}
	if len(users) == 0 {
		return
	}

	created, err := s.repo.CreateBatch(ctx, users)
	if err == nil {
		for _, user := range created {
			result.UserMap[user.Rut] = user.ID
			result.CreatedCount++
		}
		return
	}

	s.log.WithError(err).Warn("fallo el lote de usuarios, creando uno por uno")
	for _, user := range users {
		createdUser, err := s.repo.Create(ctx, user)
		if err != nil {
			result.Errors = append(result.Errors, AccountError{Rut: user.Rut, Message: err.Error()})
			continue
		}
		result.UserMap[createdUser.Rut] = createdUser.ID
		result.CreatedCount++
	}
}

var nonRutChars = regexp.MustCompile(`[^0-9kK]`)

// TempPasswordFromRut derives the deterministic temporary password for an
// auto-provisioned seller: the first four digits plus the check character,
// or the cleaned string as-is when it is shorter than five characters.
// Support staff can reconstruct it from the RUT; mustChangePassword forces a
// rotation on first login.
func TempPasswordFromRut(r string) string {
	cleaned := nonRutChars.ReplaceAllString(r, "")
	if len(cleaned) < 5 {
		return cleaned
	}
	return cleaned[:4] + cleaned[len(cleaned)-1:]
}
