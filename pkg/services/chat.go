package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/tably-ai/tably-engine/pkg/apperrors"
	"github.com/tably-ai/tably-engine/pkg/config"
	"github.com/tably-ai/tably-engine/pkg/llm"
	"github.com/tably-ai/tably-engine/pkg/logging"
	"github.com/tably-ai/tably-engine/pkg/metrics"
	"github.com/tably-ai/tably-engine/pkg/models"
)

// ChatService is the conversational facade over the engine: create a
// session from a dataset, answer query turns, and garbage-collect stale
// sessions.
type ChatService interface {
	// InitializeSession stores the dataset and returns the new session
	// identifier with an opening message.
	InitializeSession(ctx context.Context, name string, rows []models.Row, columns []string) (*models.SessionInitResponse, error)

	// Query runs one conversational turn: classify intent, sample the
	// table, consult the model, and commit any patch it produced. A
	// failed turn leaves the session's table exactly as it was.
	Query(ctx context.Context, sessionID string, message string) (*models.QueryResponse, error)

	// Sweep removes expired sessions, best effort.
	Sweep() int
}

type chatService struct {
	store   SessionStore
	client  llm.Client
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewChatService creates the chat orchestrator.
func NewChatService(
	store SessionStore,
	client llm.Client,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		store:   store,
		client:  client,
		cfg:     cfg,
		metrics: m,
		logger:  logger.Named("chat"),
	}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) InitializeSession(ctx context.Context, name string, rows []models.Row, columns []string) (*models.SessionInitResponse, error) {
	sessionID, err := s.store.Create(rows, name, columns)
	if err != nil {
		return nil, err
	}

	// Amortized maintenance: session creation occasionally kicks off a
	// sweep in the background. A stale session outliving its TTL by a
	// few requests only costs memory, never correctness.
	if rand.Float64() < s.cfg.Session.SweepProbability {
		go s.store.SweepExpired(s.cfg.Session.TTL())
	}

	session, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Loaded %q with %d rows and %d columns.",
		name, session.Stats.RowCount, len(columns))
	if n := len(session.Stats.NullCounts); n > 0 {
		message += fmt.Sprintf(" %d columns contain missing values; ask me to clean them, or ask anything about your data.", n)
	} else {
		message += " Ask me anything about your data."
	}

	return &models.SessionInitResponse{
		SessionID: sessionID,
		Message:   message,
	}, nil
}

func (s *chatService) Query(ctx context.Context, sessionID string, message string) (*models.QueryResponse, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", apperrors.ErrValidation)
	}

	session, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}

	intent := DetectIntent(message)
	sample, note := s.buildSample(session, intent)

	system, user, err := BuildPrompt(PromptInput{
		Session:    session,
		Intent:     intent,
		Sample:     sample,
		SampleNote: note,
		Message:    message,
	})
	if err != nil {
		s.metrics.QueriesTotal.WithLabelValues(string(intent), "error").Inc()
		return nil, err
	}

	s.logger.Debug("Running query turn",
		zap.String("session_id", sessionID),
		zap.String("intent", string(intent)),
		zap.Int("sample_rows", len(sample)),
		zap.String("message", logging.SanitizeMessage(message)))

	llmCtx, cancel := context.WithTimeout(ctx, s.cfg.LLM.Timeout())
	defer cancel()

	start := time.Now()
	reply, err := s.client.Complete(llmCtx, system, user)
	s.metrics.LLMRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// Session state is untouched; the caller sees the upstream
		// failure and may retry on its own terms.
		s.metrics.QueriesTotal.WithLabelValues(string(intent), "error").Inc()
		return nil, err
	}

	parsed := ParseReply(reply)

	resp := &models.QueryResponse{
		SessionID: sessionID,
		Message:   parsed.Message,
	}

	if parsed.HasPatch {
		applied := CountPatchedRows(parsed.Patch, len(session.Rows))
		newRows := ApplyPatch(session.Rows, parsed.Patch)

		if err := s.store.ReplaceTable(sessionID, newRows); err != nil {
			// The session expired mid-turn. The prose is still useful;
			// the edit is simply lost with the session.
			s.logger.Warn("Session vanished before patch commit",
				zap.String("session_id", sessionID))
		} else {
			resp.UpdatedRows = newRows
			s.metrics.RowsPatched.Add(float64(applied))
			s.logger.Info("Patch applied",
				zap.String("session_id", sessionID),
				zap.Int("entries", len(parsed.Patch)),
				zap.Int("rows_patched", applied))
		}
	}

	s.metrics.QueriesTotal.WithLabelValues(string(intent), "ok").Inc()
	return resp, nil
}

// buildSample picks the sampling strategy for the intent and describes it.
func (s *chatService) buildSample(session *models.Session, intent models.Intent) ([]models.Row, string) {
	totalRows := len(session.Rows)

	if intent == models.IntentCleaning {
		anchors, _ := ClassifyMissingRows(session.Rows, session.Columns)
		if len(anchors) > 0 {
			sample := SampleContext(session.Rows, anchors, s.cfg.Sampling.ContextRadius)
			return sample, BuildSampleNote(intent, len(anchors), totalRows, len(sample), true)
		}
		// Nothing is missing; give the model a preview to work against
		// for format fixes and other non-fill mutations.
		sample, _ := SampleForAnalysis(session.Rows, s.cfg.Sampling.RepresentativeThreshold, s.cfg.Sampling.SampleSize)
		return sample, BuildSampleNote(intent, 0, totalRows, len(sample), false)
	}

	sample, sampled := SampleForAnalysis(session.Rows, s.cfg.Sampling.RepresentativeThreshold, s.cfg.Sampling.SampleSize)
	return sample, BuildSampleNote(intent, 0, totalRows, len(sample), sampled)
}

func (s *chatService) Sweep() int {
	return s.store.SweepExpired(s.cfg.Session.TTL())
}
