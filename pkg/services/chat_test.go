package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tably-ai/tably-engine/pkg/apperrors"
	"github.com/tably-ai/tably-engine/pkg/config"
	"github.com/tably-ai/tably-engine/pkg/llm"
	"github.com/tably-ai/tably-engine/pkg/metrics"
	"github.com/tably-ai/tably-engine/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Provider:       "openai",
			Model:          "test-model",
			TimeoutSeconds: 5,
		},
		Session: config.SessionConfig{
			TTLMinutes:       30,
			SweepProbability: 0, // keep turns deterministic in tests
		},
		Sampling: config.SamplingConfig{
			ContextRadius:           20,
			RepresentativeThreshold: 1000,
			SampleSize:              200,
		},
	}
}

func newTestChat(t *testing.T, mock *llm.MockClient) (ChatService, SessionStore) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	store := NewSessionStore(m, zap.NewNop())
	chat := NewChatService(store, mock, testConfig(), m, zap.NewNop())
	return chat, store
}

func initTestSession(t *testing.T, chat ChatService) string {
	t.Helper()
	resp, err := chat.InitializeSession(context.Background(), "sales.csv",
		[]models.Row{
			{"name": "x", "rev": nil},
			{"name": "y", "rev": 5.0},
		},
		[]string{"name", "rev"})
	require.NoError(t, err)
	return resp.SessionID
}

func TestInitializeSession_ReportsStats(t *testing.T) {
	chat, store := newTestChat(t, llm.NewMockClient())

	resp, err := chat.InitializeSession(context.Background(), "sales.csv",
		[]models.Row{
			{"name": "x", "rev": nil},
			{"name": "y", "rev": 5.0},
		},
		[]string{"name", "rev"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Message, "2 rows")
	assert.Contains(t, resp.Message, "missing values")

	session, err := store.Get(resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Stats.RowCount)
	assert.Equal(t, map[string]int{"rev": 1}, session.Stats.NullCounts)
}

func TestInitializeSession_Validation(t *testing.T) {
	chat, _ := newTestChat(t, llm.NewMockClient())

	_, err := chat.InitializeSession(context.Background(), "", nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuery_CleaningTurn(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "Filled the gap using the neighboring value.\n" +
			"[DATA_UPDATE][{\"_row_index\": 0, \"rev\": 5}][/DATA_UPDATE]", nil
	}
	chat, store := newTestChat(t, mock)
	sessionID := initTestSession(t, chat)

	resp, err := chat.Query(context.Background(), sessionID, "clean the missing revenue")
	require.NoError(t, err)

	// Cleaning intent: the prompt carried the patch protocol and both
	// rows, since row 1 sits within the context radius of anchor row 0.
	assert.Contains(t, mock.LastSystem, "[DATA_UPDATE]")
	assert.Contains(t, mock.LastUser, `"name":"x"`)
	assert.Contains(t, mock.LastUser, `"name":"y"`)

	assert.Equal(t, "Filled the gap using the neighboring value.", resp.Message)
	require.Len(t, resp.UpdatedRows, 2)
	assert.Equal(t, 5.0, resp.UpdatedRows[0]["rev"])
	assert.Equal(t, "x", resp.UpdatedRows[0]["name"])

	// The committed table is the one returned.
	session, err := store.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, session.Rows[0]["rev"])
}

func TestQuery_AnalysisTurn(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "Sales peaked in March.", nil
	}
	chat, store := newTestChat(t, mock)
	sessionID := initTestSession(t, chat)

	resp, err := chat.Query(context.Background(), sessionID, "what do you see in the data?")
	require.NoError(t, err)

	assert.NotContains(t, mock.LastSystem, "[DATA_UPDATE]")
	// No markers in the reply: message verbatim, no table update.
	assert.Equal(t, "Sales peaked in March.", resp.Message)
	assert.Nil(t, resp.UpdatedRows)

	session, err := store.Get(sessionID)
	require.NoError(t, err)
	assert.Nil(t, session.Rows[0]["rev"])
}

func TestQuery_UnknownSession(t *testing.T) {
	chat, _ := newTestChat(t, llm.NewMockClient())

	_, err := chat.Query(context.Background(), "sess-never-created", "hello")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuery_EmptyMessage(t *testing.T) {
	chat, _ := newTestChat(t, llm.NewMockClient())
	sessionID := initTestSession(t, chat)

	_, err := chat.Query(context.Background(), sessionID, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuery_ServiceErrorLeavesTableUnchanged(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "", llm.NewError(llm.ErrorTypeEndpoint, "server error", true, nil)
	}
	chat, store := newTestChat(t, mock)
	sessionID := initTestSession(t, chat)

	_, err := chat.Query(context.Background(), sessionID, "clean the data")
	require.Error(t, err)

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrorTypeEndpoint, llmErr.Type)

	session, err := store.Get(sessionID)
	require.NoError(t, err)
	assert.Nil(t, session.Rows[0]["rev"])
}

func TestQuery_MalformedPatchDegradesToFallback(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "Fixed it.\n[DATA_UPDATE]oops[/DATA_UPDATE]", nil
	}
	chat, store := newTestChat(t, mock)
	sessionID := initTestSession(t, chat)

	resp, err := chat.Query(context.Background(), sessionID, "clean the data")
	require.NoError(t, err)

	assert.Equal(t, MalformedPatchMessage, resp.Message)
	assert.Nil(t, resp.UpdatedRows)

	session, err := store.Get(sessionID)
	require.NoError(t, err)
	assert.Nil(t, session.Rows[0]["rev"])
}

func TestQuery_LargeTableGetsStrideSample(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "Looks uniform.", nil
	}
	chat, _ := newTestChat(t, mock)

	rows := make([]models.Row, 2000)
	for i := range rows {
		rows[i] = models.Row{"n": float64(i)}
	}
	resp, err := chat.InitializeSession(context.Background(), "big.csv", rows, []string{"n"})
	require.NoError(t, err)

	_, err = chat.Query(context.Background(), resp.SessionID, "summarize the distribution")
	require.NoError(t, err)

	assert.Contains(t, mock.LastUser, "stride-sampled preview of 200 of 2000 rows")
	// 200 sampled rows, not 2000.
	assert.Equal(t, 200, strings.Count(mock.LastUser, `"`+models.RowIndexKey+`":`))
}

func TestSweep_RemovesExpiredSessions(t *testing.T) {
	chat, store := newTestChat(t, llm.NewMockClient())
	sessionID := initTestSession(t, chat)

	mem := store.(*memorySessionStore)
	mem.mu.Lock()
	mem.sessions[sessionID].LastAccessed = time.Now().Add(-31 * time.Minute)
	mem.mu.Unlock()

	assert.Equal(t, 1, chat.Sweep())

	_, err := store.Get(sessionID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
