package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nssc-portal/database"
	"nssc-portal/store"
)

var errBoom = errors.New("boom")

type testEnv struct {
	db    *gorm.DB
	rdb   *redis.Client
	docs  *store.GormStore
	snaps *fakeSnapshots
	files *fakeFiles
	mail  *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.RunMigrations(db, zap.NewNop()))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &testEnv{
		db:    db,
		rdb:   rdb,
		docs:  store.NewGormStore(db, store.NewRedisNotifier(rdb, nil), nil),
		snaps: &fakeSnapshots{values: map[string]any{}},
		files: &fakeFiles{},
		mail:  &fakeMailer{},
	}
}

func (e *testEnv) auth() *AuthService {
	return NewAuthService(e.db, e.rdb, "test-secret", bcrypt.MinCost, nil)
}

func (e *testEnv) otp() *OTPService {
	return NewOTPService(e.db, e.mail, 10*time.Minute, nil)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type sentMail struct {
	To, Subject, HTML string
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

type fakeSnapshots struct {
	mu     sync.Mutex
	err    error
	values map[string]any
	writes int
	// afterSet runs once a value is stored, outside the lock.
	afterSet func(path string)
}

func (s *fakeSnapshots) SetValue(_ context.Context, path string, value any) error {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return s.err
	}
	s.values[path] = value
	s.writes++
	hook := s.afterSet
	s.mu.Unlock()

	if hook != nil {
		hook(path)
	}
	return nil
}

type fakeFiles struct {
	mu      sync.Mutex
	err     error
	uploads []string
}

func (f *fakeFiles) Upload(_ context.Context, folder, filename string, r io.Reader, size int64) (store.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return store.StoredFile{}, f.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return store.StoredFile{}, err
	}
	object := fmt.Sprintf("%s/%d-%s", folder, len(f.uploads)+1, filename)
	f.uploads = append(f.uploads, object)
	return store.StoredFile{Name: filename, URL: "https://files.test/" + object, Object: object, Size: size}, nil
}

func (f *fakeFiles) PresignedURL(_ context.Context, object string) (string, error) {
	return "https://minio.test/" + object, nil
}

// flakyDocs fails selected write operations of an otherwise working store.
// patchErr sees every Merge and Transact patch before it is written.
type flakyDocs struct {
	store.DocumentStore
	setErr      error
	patchErr    func(patch map[string]any) error
	transactErr error
}

func (f *flakyDocs) Set(ctx context.Context, collection, id string, data map[string]any) (store.Snapshot, error) {
	if f.setErr != nil {
		return store.Snapshot{}, f.setErr
	}
	return f.DocumentStore.Set(ctx, collection, id, data)
}

func (f *flakyDocs) Merge(ctx context.Context, collection, id string, patch map[string]any) (store.Snapshot, error) {
	if f.patchErr != nil {
		if err := f.patchErr(patch); err != nil {
			return store.Snapshot{}, err
		}
	}
	return f.DocumentStore.Merge(ctx, collection, id, patch)
}

func (f *flakyDocs) Transact(ctx context.Context, collection, id string, fn func(store.Snapshot) (map[string]any, error)) (store.Snapshot, error) {
	if f.transactErr != nil {
		return store.Snapshot{}, f.transactErr
	}
	if f.patchErr == nil {
		return f.DocumentStore.Transact(ctx, collection, id, fn)
	}
	return f.DocumentStore.Transact(ctx, collection, id, func(current store.Snapshot) (map[string]any, error) {
		patch, err := fn(current)
		if err != nil || patch == nil {
			return patch, err
		}
		if err := f.patchErr(patch); err != nil {
			return nil, err
		}
		return patch, nil
	})
}
