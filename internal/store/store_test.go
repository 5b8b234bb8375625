package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MediSynth-io/postsvc/internal/config"
	"github.com/MediSynth-io/postsvc/internal/database"
	"github.com/MediSynth-io/postsvc/internal/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite runs every test against a fresh database from open
type StoreTestSuite struct {
	suite.Suite
	open  func(testing.TB) *database.DB
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.store = New(s.open(s.T()))
	s.ctx = context.Background()
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, &StoreTestSuite{open: dbtest.Open})
}

// Covers the RETURNING statements; needs DB_TYPE=postgres and a reachable server.
func TestStoreTestSuitePostgres(t *testing.T) {
	suite.Run(t, &StoreTestSuite{open: dbtest.OpenPostgres})
}

func strPtr(v string) *string { return &v }

func (s *StoreTestSuite) TestCreateAndGetUser() {
	user, err := s.store.CreateUser(s.ctx, "test@example.com", "hashed")
	s.Require().NoError(err)
	s.NotZero(user.ID)
	s.Equal("test@example.com", user.Email)

	retrieved, err := s.store.GetUserByEmail(s.ctx, "test@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, retrieved.ID)
	s.Equal("hashed", retrieved.Password)

	_, err = s.store.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *StoreTestSuite) TestCreateUserDuplicateEmail() {
	_, err := s.store.CreateUser(s.ctx, "dup@example.com", "first")
	s.Require().NoError(err)

	_, err = s.store.CreateUser(s.ctx, "dup@example.com", "second")
	s.ErrorIs(err, ErrEmailTaken)

	user, err := s.store.GetUserByEmail(s.ctx, "dup@example.com")
	s.Require().NoError(err)
	s.Equal("first", user.Password)
}

func (s *StoreTestSuite) TestEmailExists() {
	exists, err := s.store.EmailExists(s.ctx, "a@b.com")
	s.Require().NoError(err)
	s.False(exists)

	_, err = s.store.CreateUser(s.ctx, "a@b.com", "hashed")
	s.Require().NoError(err)

	exists, err = s.store.EmailExists(s.ctx, "a@b.com")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StoreTestSuite) TestCreateAndGetPost() {
	post, err := s.store.CreatePost(s.ctx, strPtr("hello"))
	s.Require().NoError(err)
	s.NotZero(post.ID)
	s.Equal("hello", post.Body)
	s.False(post.CreatedAt.IsZero())

	got, err := s.store.GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(post.ID, got.ID)
	s.Equal("hello", got.Body)
}

func (s *StoreTestSuite) TestCreatePostNilBody() {
	_, err := s.store.CreatePost(s.ctx, nil)
	s.Error(err)

	posts, err := s.store.ListPosts(s.ctx)
	s.Require().NoError(err)
	s.Empty(posts)
}

func (s *StoreTestSuite) TestGetPostNotFound() {
	_, err := s.store.GetPost(s.ctx, 42)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestListPostsNewestFirst() {
	posts, err := s.store.ListPosts(s.ctx)
	s.Require().NoError(err)
	s.NotNil(posts)
	s.Empty(posts)

	for _, body := range []string{"first", "second", "third"} {
		_, err := s.store.CreatePost(s.ctx, strPtr(body))
		s.Require().NoError(err)
	}

	posts, err = s.store.ListPosts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(posts, 3)
	s.Equal("third", posts[0].Body)
	s.Equal("second", posts[1].Body)
	s.Equal("first", posts[2].Body)
}

func (s *StoreTestSuite) TestUpdatePost() {
	post, err := s.store.CreatePost(s.ctx, strPtr("before"))
	s.Require().NoError(err)

	updated, err := s.store.UpdatePost(s.ctx, post.ID, strPtr("after"))
	s.Require().NoError(err)
	s.Equal(post.ID, updated.ID)
	s.Equal("after", updated.Body)
	s.True(post.CreatedAt.Equal(updated.CreatedAt))

	_, err = s.store.UpdatePost(s.ctx, post.ID+100, strPtr("nope"))
	s.ErrorIs(err, ErrNotFound)

	_, err = s.store.UpdatePost(s.ctx, post.ID, nil)
	s.Error(err)
	s.NotErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestDeletePost() {
	post, err := s.store.CreatePost(s.ctx, strPtr("bye"))
	s.Require().NoError(err)

	s.NoError(s.store.DeletePost(s.ctx, post.ID))
	_, err = s.store.GetPost(s.ctx, post.ID)
	s.ErrorIs(err, ErrNotFound)

	// Deleting again is still fine
	s.NoError(s.store.DeletePost(s.ctx, post.ID))
}

func (s *StoreTestSuite) TestDeleteAllPosts() {
	for _, body := range []string{"a", "b"} {
		_, err := s.store.CreatePost(s.ctx, strPtr(body))
		s.Require().NoError(err)
	}

	result, err := s.store.DeleteAllPosts(s.ctx)
	s.Require().NoError(err)
	assert.Equal(s.T(), "DELETE", result.Command)
	assert.Equal(s.T(), int64(2), result.RowCount)

	result, err = s.store.DeleteAllPosts(s.ctx)
	s.Require().NoError(err)
	s.Zero(result.RowCount)
}

func (s *StoreTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.store.ListPosts(ctx)
	s.Error(err)
}

func (s *StoreTestSuite) TestStats() {
	_, err := s.store.CreateUser(s.ctx, "a@b.com", "hashed")
	s.Require().NoError(err)
	for _, body := range []string{"a", "b", "c"} {
		_, err := s.store.CreatePost(s.ctx, strPtr(body))
		s.Require().NoError(err)
	}

	stats, err := s.store.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), stats.Users)
	s.Equal(int64(3), stats.Posts)
}

func (s *StoreTestSuite) TestStatsMissingTable() {
	_, err := s.store.db.ExecContext(s.ctx, "DROP TABLE posttable")
	s.Require().NoError(err)

	_, err = s.store.Stats(s.ctx)
	s.ErrorContains(err, "count posts")
}

func TestUsersWithMinimalSchema(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{
		Type: database.TypeSQLite,
		Path: filepath.Join(t.TempDir(), "minimal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT UNIQUE NOT NULL, password TEXT NOT NULL)`)
	require.NoError(t, err)

	st := New(db)
	ctx := context.Background()

	created, err := st.CreateUser(ctx, "a@b.com", "hashed")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	user, err := st.GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "hashed", user.Password)
}
