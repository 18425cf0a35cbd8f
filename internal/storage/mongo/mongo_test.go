package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/bragboard/internal/config"
	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/storage"
)

// Интеграционные тесты хранилища MongoDB. Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/mongo -v -count=1

const testTimeout = 10 * time.Second

// TestMain поднимает MongoDB один раз на пакет; каждый тест получает свою БД.
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	_ = os.Setenv("DATABASE_URL", fmt.Sprintf("mongodb://%s:%s", host, port.Port()))

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

func mustNewMongo(t *testing.T) *Mongo {
	t.Helper()

	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	cfg := &config.Config{DB: config.DBConfig{URL: os.Getenv("DATABASE_URL") + "/bragboard_test_" + uuid.NewString()}}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func TestDatabaseFromURI(t *testing.T) {
	require.Equal(t, "x", databaseFromURI("mongodb://h:1/x"))
	require.Equal(t, defaultDBName, databaseFromURI("mongodb://h:1"))
	require.Equal(t, defaultDBName, databaseFromURI("mongodb://h:1/"))
}

func TestValidKey(t *testing.T) {
	require.True(t, validKey("8f14e45f-ceea-467a-9af0-9a1b3a6c2c1f"))
	require.False(t, validKey(""))
	require.False(t, validKey("a.b"))
	require.False(t, validKey("$where"))
}

func TestIntegration_CreateListOrder(t *testing.T) {
	m := mustNewMongo(t)
	ctx := context.Background()

	root, err := m.CreateComment(ctx, models.CommentRecord{PostID: "p1", AuthorID: "u1", Content: "root"})
	require.NoError(t, err)
	require.NotEmpty(t, root.ID)
	require.False(t, root.CreatedAt.IsZero())

	reply, err := m.CreateComment(ctx, models.CommentRecord{PostID: "p1", ParentID: root.ID, AuthorID: "u2", Content: "reply"})
	require.NoError(t, err)

	_, err = m.CreateComment(ctx, models.CommentRecord{PostID: "other", AuthorID: "u1", Content: "x"})
	require.NoError(t, err)

	list, err := m.ListByPost(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, root.ID, list[0].ID)
	require.Equal(t, reply.ID, list[1].ID)
	require.Equal(t, root.ID, list[1].ParentID)

	empty, err := m.ListByPost(ctx, "nothing")
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)
}

func TestIntegration_UpdateContent(t *testing.T) {
	m := mustNewMongo(t)
	ctx := context.Background()

	c, err := m.CreateComment(ctx, models.CommentRecord{PostID: "p1", AuthorID: "u1", Content: "v1"})
	require.NoError(t, err)

	at := time.Now().Add(time.Minute)
	got, err := m.UpdateContent(ctx, c.ID, "v2", at)
	require.NoError(t, err)
	require.Equal(t, "v2", got.Content)
	require.True(t, got.IsEdited)
	require.WithinDuration(t, at, got.UpdatedAt, time.Millisecond)

	_, err = m.UpdateContent(ctx, "000000000000000000000000", "x", at)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = m.UpdateContent(ctx, "bad-id", "x", at)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_DeleteCascade(t *testing.T) {
	m := mustNewMongo(t)
	ctx := context.Background()

	root, err := m.CreateComment(ctx, models.CommentRecord{PostID: "p1", AuthorID: "u1", Content: "root"})
	require.NoError(t, err)
	reply, err := m.CreateComment(ctx, models.CommentRecord{PostID: "p1", ParentID: root.ID, AuthorID: "u1", Content: "r"})
	require.NoError(t, err)

	require.NoError(t, m.DeleteComment(ctx, root.ID))

	_, err = m.CommentByID(ctx, reply.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, m.DeleteComment(ctx, root.ID), storage.ErrNotFound)
}

func TestIntegration_ToggleReaction(t *testing.T) {
	m := mustNewMongo(t)
	ctx := context.Background()

	c, err := m.CreateComment(ctx, models.CommentRecord{PostID: "p1", AuthorID: "u1", Content: "x"})
	require.NoError(t, err)

	got, err := m.ToggleReaction(ctx, c.ID, "u2", models.ReactionLike)
	require.NoError(t, err)
	require.Equal(t, models.ReactionLike, got.Reactions["u2"])
	require.Equal(t, 1, got.View("u2").ReactionCounts.Like)

	got, err = m.ToggleReaction(ctx, c.ID, "u2", models.ReactionDislike)
	require.NoError(t, err)
	require.Equal(t, models.ReactionCounts{Dislike: 1}, got.View("u2").ReactionCounts)

	got, err = m.ToggleReaction(ctx, c.ID, "u2", models.ReactionDislike)
	require.NoError(t, err)
	require.Empty(t, got.Reactions)

	_, err = m.ToggleReaction(ctx, c.ID, "a.b", models.ReactionLike)
	require.ErrorIs(t, err, storage.ErrInvalidID)

	_, err = m.ToggleReaction(ctx, "000000000000000000000000", "u2", models.ReactionLike)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
