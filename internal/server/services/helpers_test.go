package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/server/auth"
	"github.com/dmitrijs2005/a2hand/internal/server/config"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/products"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type env struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	store    *memStore
	tokens   *auth.TokenIssuer
	users    *UserService
	products *ProductService
	messages *MessageService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := repotest.OpenSQLite(t)
	return newEnvWith(t, db, repomanager.NewSQLRepositoryManager(dbx.SQLite, nil))
}

func newEnvWith(t *testing.T, db *sql.DB, rm repomanager.RepositoryManager) *env {
	t.Helper()
	cfg := &config.Config{BcryptCost: auth.MinBcryptCost}
	tokens := auth.NewTokenIssuer([]byte("k"), time.Hour)
	store := newMemStore()
	return &env{
		db:       db,
		rm:       rm,
		store:    store,
		tokens:   tokens,
		users:    NewUserService(db, rm, tokens, cfg, nil),
		products: NewProductService(db, rm, store, nil),
		messages: NewMessageService(db, rm, store, nil),
	}
}

func (e *env) register(t *testing.T, username string) {
	t.Helper()
	_, err := e.users.Register(context.Background(), username, username+"@example.com", "password123")
	require.NoError(t, err)
}

func (e *env) listing(t *testing.T, seller, title string, images ...Upload) *models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), NewProduct{
		Title: title, Description: "desc", Price: 10, Category: "home", Location: "Berlin", Seller: seller,
	}, images)
	require.NoError(t, err)
	return p
}

// memStore is an in-memory storage.Store.
type memStore struct {
	mu        sync.Mutex
	seq       int
	files     map[string][]byte
	saveErr   map[string]error
	removeErr error
	removed   []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}, saveErr: map[string]error{}}
}

func (m *memStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	m.mu.Lock()
	err := m.saveErr[name]
	m.mu.Unlock()
	if err != nil {
		return "", err
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	path := fmt.Sprintf("uploads/%03d_%s", m.seq, name)
	m.files[path] = b
	return path, nil
}

func (m *memStore) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, path)
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.files, path)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// stubManager overrides selected repositories of a real manager.
type stubManager struct {
	repomanager.RepositoryManager
	users    func(db dbx.DBTX) users.Repository
	products func(db dbx.DBTX) products.Repository
}

func (m *stubManager) Users(db dbx.DBTX) users.Repository {
	if m.users != nil {
		return m.users(db)
	}
	return m.RepositoryManager.Users(db)
}

func (m *stubManager) Products(db dbx.DBTX) products.Repository {
	if m.products != nil {
		return m.products(db)
	}
	return m.RepositoryManager.Products(db)
}

var errDBDown = errors.New("db down")

type failingProducts struct {
	products.Repository
}

func (failingProducts) Create(context.Context, *models.Product) (*models.Product, error) {
	return nil, errDBDown
}

// racingUsers reports both fields free, then loses the insert.
type racingUsers struct {
	users.Repository
	calls int
}

func (r *racingUsers) CheckExists(ctx context.Context, username, email string) (bool, bool, error) {
	r.calls++
	if r.calls == 1 {
		return false, false, nil
	}
	return r.Repository.CheckExists(ctx, username, email)
}
