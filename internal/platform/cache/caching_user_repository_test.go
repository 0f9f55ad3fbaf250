package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth_backend/internal/feature/auth/domain/entity"
	"auth_backend/internal/feature/auth/usecase"
)

// mockUserRepository はテスト用のUserRepositoryモック実装です。
type mockUserRepository struct {
	createFn      func(ctx context.Context, user *entity.User) error
	findByEmailFn func(ctx context.Context, email string) (*entity.User, error)
	findByIDFn    func(ctx context.Context, id uint) (*entity.User, error)
	findByIDCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, usecase.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	m.findByIDCalls++
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, usecase.ErrUserNotFound
}

// testUser はテスト用ユーザーです。時刻は秒精度に丸めています。
func testUser() *entity.User {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &entity.User{ID: 1, Name: "Alice", Email: "alice@example.com", Password: "hash", CreatedAt: ts, UpdatedAt: ts}
}

// TestNewCachingUserRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingUserRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "users"},
		{"negative ttl uses default", -1 * time.Minute, "", 5 * time.Minute, "users"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingUserRepository(nil, tt.ttl, &mockUserRepository{}, tt.namespace)

			assert.Equal(t, tt.expectedTTL, repo.ttl)
			assert.Equal(t, tt.expectedNamespace, repo.namespace)
		})
	}
}

// TestCachingUserRepository_FindByID_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingUserRepository_FindByID_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id uint) (*entity.User, error) { return testUser(), nil },
	}
	repo := NewCachingUserRepository(nil, time.Minute, inner, "users")

	user, err := repo.FindByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, 1, inner.findByIDCalls)
}

// TestCachingUserRepository_FindByID_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingUserRepository_FindByID_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(toCached(testUser()))
	mock.ExpectGet("users:1").SetVal(string(cached))

	inner := &mockUserRepository{}
	repo := NewCachingUserRepository(rdb, 5*time.Minute, inner, "users")

	user, err := repo.FindByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, user.Password, "cached users carry no password hash")
	assert.Equal(t, "Alice", user.Name)
	assert.True(t, testUser().CreatedAt.Equal(user.CreatedAt))
	assert.Equal(t, 0, inner.findByIDCalls, "inner repository should not be called")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_FindByID_CacheMiss はキャッシュミス時にDBから取得してキャッシュに保存することを検証します。
func TestCachingUserRepository_FindByID_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(toCached(testUser()))
	mock.ExpectGet("users:1").RedisNil()
	mock.ExpectSet("users:1", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id uint) (*entity.User, error) { return testUser(), nil },
	}
	repo := NewCachingUserRepository(rdb, 5*time.Minute, inner, "users")

	user, err := repo.FindByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, 1, inner.findByIDCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_FindByID_InnerError は内部リポジトリのエラーが伝播され、キャッシュされないことを検証します。
func TestCachingUserRepository_FindByID_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("users:9").RedisNil()

	repo := NewCachingUserRepository(rdb, 5*time.Minute, &mockUserRepository{}, "users")
	_, err := repo.FindByID(context.Background(), 9)

	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_FindByID_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingUserRepository_FindByID_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(toCached(testUser()))
	mock.ExpectGet("users:1").SetVal("invalid json")
	mock.ExpectDel("users:1").SetVal(1)
	mock.ExpectSet("users:1", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id uint) (*entity.User, error) { return testUser(), nil },
	}
	repo := NewCachingUserRepository(rdb, 5*time.Minute, inner, "users")

	user, err := repo.FindByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_PassThrough はCreateとFindByEmailがキャッシュを経由しないことを検証します。
func TestCachingUserRepository_PassThrough(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	dbErr := errors.New("database error")
	inner := &mockUserRepository{
		createFn: func(ctx context.Context, user *entity.User) error { return dbErr },
		findByEmailFn: func(ctx context.Context, email string) (*entity.User, error) {
			return testUser(), nil
		},
	}
	repo := NewCachingUserRepository(rdb, time.Minute, inner, "users")

	assert.ErrorIs(t, repo.Create(context.Background(), testUser()), dbErr)
	user, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.Password)

	// No Redis commands expected
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingUserRepository_FindByID_NoHashInCache はパスワードハッシュがRedisに書き込まれないことを検証します。
func TestCachingUserRepository_FindByID_NoHashInCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	payload, _ := json.Marshal(toCached(testUser()))
	assert.NotContains(t, string(payload), "hash")
	assert.NotContains(t, string(payload), "password")

	mock.ExpectGet("users:1").RedisNil()
	mock.ExpectSet("users:1", payload, 5*time.Minute).SetVal("OK")

	inner := &mockUserRepository{
		findByIDFn: func(ctx context.Context, id uint) (*entity.User, error) { return testUser(), nil },
	}
	repo := NewCachingUserRepository(rdb, 5*time.Minute, inner, "users")

	user, err := repo.FindByID(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "hash", user.Password, "a cache miss returns the repository's user unchanged")
	assert.NoError(t, mock.ExpectationsWereMet())
}
