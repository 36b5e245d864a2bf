package service

import (
	"context"
	"course_market_backend/internal/repository"
	"course_market_backend/pkg/database"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stores struct {
	courses      *repository.CourseRepository
	transactions *repository.TransactionRepository
	progress     *repository.ProgressRepository
}

func newStores(t *testing.T) *stores {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &stores{
		courses:      repository.NewCourseRepository(db),
		transactions: repository.NewTransactionRepository(db),
		progress:     repository.NewProgressRepository(db),
	}
}

// memoryStorage 记录上传与删除的键
type memoryStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	deleted  []string
	presign  bool
	presigns []string
}

func newMemoryStorage(presign bool) *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, presign: presign}
}

func (m *memoryStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return m.GetURL(key), nil
}

func (m *memoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryStorage) PresignUpload(ctx context.Context, key string, contentType string, expiry time.Duration) (string, error) {
	if !m.presign {
		return "", errors.New("presign disabled")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presigns = append(m.presigns, key)
	return "https://upload.test/" + key + "?signature=x", nil
}

func (m *memoryStorage) GetURL(key string) string {
	return "https://cdn.test/" + key
}

type fakeGateway struct {
	amount   int64
	currency string
	err      error
}

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	g.amount = amount
	g.currency = currency
	if g.err != nil {
		return "", g.err
	}
	return "pi_secret_123", nil
}
