package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/olist-intelligence/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := &domain.ChatSession{UserID: "u1"}
	require.NoError(t, store.CreateSession(ctx, session))
	require.NotEmpty(t, session.ID)

	loaded, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, domain.UserID("u1"), loaded.UserID)

	_, err = store.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMessagesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session := &domain.ChatSession{}
	require.NoError(t, store.CreateSession(ctx, session))

	require.NoError(t, store.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   "quantos pedidos?",
	}))
	require.NoError(t, store.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: session.ID,
		Role:      domain.RoleAssistant,
		Content:   "Temos 99441 pedidos.",
		Metadata:  `{"confidence":0.97}`,
	}))

	msgs, err := store.GetMessagesBySession(ctx, session.ID, 50)
	require.NoError(t, err)

	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "quantos pedidos?", msgs[0].Content)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
	assert.Equal(t, `{"confidence":0.97}`, msgs[1].Metadata)
}

func TestListSessionsFiltersByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, &domain.ChatSession{UserID: "alice"}))
	require.NoError(t, store.CreateSession(ctx, &domain.ChatSession{UserID: "bob"}))
	require.NoError(t, store.CreateSession(ctx, &domain.ChatSession{UserID: "alice"}))

	all, err := store.ListSessions(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	alice, err := store.ListSessions(ctx, "alice", 0)
	require.NoError(t, err)
	assert.Len(t, alice, 2)
}

func TestExecuteQueryReturnsColumnKeyedRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Seed through the read-write connection.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO olist_customers (customer_id, customer_unique_id, customer_state) VALUES
		 ('c1', 'u1', 'SP'), ('c2', 'u2', 'SP'), ('c3', 'u3', 'RJ')`)
	require.NoError(t, err)

	rows, err := store.ExecuteQuery(ctx,
		`SELECT customer_state, COUNT(*) as total FROM olist_customers GROUP BY customer_state ORDER BY total DESC`)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "SP", rows[0]["customer_state"])
	assert.EqualValues(t, 2, rows[0]["total"])
}

func TestExecuteQueryCannotWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.ExecuteQuery(ctx,
		`INSERT INTO olist_customers (customer_id, customer_unique_id) VALUES ('x', 'y')`)
	require.Error(t, err, "the query connection must be read-only")

	rows, err := store.ExecuteQuery(ctx, `SELECT COUNT(*) as total FROM olist_customers`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 0, rows[0]["total"])
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
