package directory

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return NewStore(repository.NewUserRepository(db)), db
}

func TestStore_Resolve(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	user := models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleDeveloper}
	require.NoError(t, db.Create(&user).Error)

	entry, err := store.ResolveByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, entry.ID)
	assert.Equal(t, models.RoleDeveloper, entry.Role)

	entry, err = store.ResolveByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", entry.Username)

	_, err = store.ResolveByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := store.ResolveEmails(ctx, []string{"alice@example.com", "ghost@example.com"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Contains(t, found, "alice@example.com")
}

type countingDirectory struct {
	entries map[string]Entry
	calls   int
}

func (d *countingDirectory) ResolveByEmail(_ context.Context, email string) (Entry, error) {
	d.calls++
	e, ok := d.entries[email]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (d *countingDirectory) ResolveByID(_ context.Context, id string) (Entry, error) {
	d.calls++
	for _, e := range d.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

func (d *countingDirectory) ResolveEmails(ctx context.Context, emails []string) (map[string]Entry, error) {
	found := map[string]Entry{}
	for _, email := range emails {
		if e, err := d.ResolveByEmail(ctx, email); err == nil {
			found[email] = e
		}
	}
	return found, nil
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCached_FallsBackWhenRedisDown(t *testing.T) {
	next := &countingDirectory{entries: map[string]Entry{
		"bob@example.com": {ID: "u-bob", Email: "bob@example.com", Username: "bob", Role: models.RoleQA},
	}}
	cached := NewCached(next, unreachableRedis(t), time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry, err := cached.ResolveByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u-bob", entry.ID)
	}

	assert.Equal(t, 3, next.calls)
	assert.Equal(t, gobreaker.StateOpen, cached.BreakerState())

	entry, err := cached.ResolveByID(ctx, "u-bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", entry.Username)
}

func TestCached_NotFoundPassesThrough(t *testing.T) {
	next := &countingDirectory{entries: map[string]Entry{
		"bob@example.com": {ID: "u-bob", Email: "bob@example.com"},
	}}
	cached := NewCached(next, unreachableRedis(t), time.Minute)

	_, err := cached.ResolveByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := cached.ResolveEmails(context.Background(), []string{"bob@example.com", "ghost@example.com"})
	require.NoError(t, err)
	assert.Equal(t, map[string]Entry{"bob@example.com": next.entries["bob@example.com"]}, found)
}
