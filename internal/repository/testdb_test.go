package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mr0ak1/social-app/internal/database"
	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/repository"
)

// openTestDB connects to the database named by TEST_DATABASE_URL and applies
// the schema. Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db))
	return db
}

// createUser inserts a user with a unique email so tests never share rows.
func createUser(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	u := &model.User{
		Name:           name,
		Email:          uuid.NewString() + "@example.com",
		PasswordHashed: "x",
		Gender:         "male",
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u.ID
}

func createPost(t *testing.T, db *sqlx.DB, ownerID int64) int64 {
	t.Helper()
	post, err := repository.NewPostRepository(db).Create(context.Background(), ownerID, model.CreatePostRequest{
		Type:     model.PostTypePost,
		Caption:  "caption",
		MediaURL: "https://cdn.example.com/" + uuid.NewString() + ".jpg",
	})
	require.NoError(t, err)
	return post.ID
}

// testClock is a settable clock. TIMESTAMPTZ keeps microseconds, so times
// are truncated to make round-tripped values compare equal.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Now().UTC().Truncate(time.Microsecond)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
