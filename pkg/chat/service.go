package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/tutorgraph/internal/logging"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/graph"
	"github.com/aretw0/tutorgraph/pkg/prompts"
	"github.com/aretw0/tutorgraph/pkg/session"
)

// Fixed replies shown instead of internal failures.
const (
	SenderTutor  = "tutor"
	ApologyText  = "죄송합니다. 답변을 생성하는 중 오류가 발생했어요. 다시 시도해 주세요."
	OffTopicText = "죄송합니다. 코딩과 관련된 질문만 답변해드릴 수 있어요. 어떤 것을 도와드릴까요?"
	defaultGraph = "tutoring"
)

// Reply is the tutor turn returned to the caller.
type Reply struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Response is the caller-facing result of a chat exchange.
type Response struct {
	Response Reply `json:"response"`
}

// Request is one learner utterance.
type Request struct {
	SessionID string
	// Message may be empty; the tutoring graph then answers with a greeting.
	Message string
	Code    string
	// Graph selects the topology. Empty uses the service default.
	Graph string
}

// Runner executes a compiled graph. Implemented by runtime.Engine.
type Runner interface {
	Run(ctx context.Context, def *graph.Definition, initial *domain.State, cfg config.Config) (*domain.State, error)
}

// Graphs resolves a topology by name. Implemented by registry.Registry.
type Graphs interface {
	Get(name string) (*graph.Definition, error)
}

// Sessions is the part of the session manager the service needs.
type Sessions interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	AppendHistory(ctx context.Context, sessionID string, messages ...domain.Message) error
}

// Service turns a learner message into a tutor reply by running a graph.
type Service struct {
	runner       Runner
	graphs       Graphs
	cfg          config.Config
	sessions     Sessions
	defaultGraph string
	maxInput     int
	logger       *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithSessions enables session lookup and history recording.
func WithSessions(sessions Sessions) Option {
	return func(s *Service) {
		s.sessions = sessions
	}
}

// WithDefaultGraph sets the topology used when a request names none.
func WithDefaultGraph(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultGraph = name
		}
	}
}

// WithMaxInputSize caps the message size in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Service) {
		s.maxInput = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a chat service.
func NewService(runner Runner, graphs Graphs, cfg config.Config, opts ...Option) *Service {
	s := &Service{
		runner:       runner,
		graphs:       graphs,
		cfg:          cfg,
		defaultGraph: defaultGraph,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultGraph returns the topology used when a request names none.
func (s *Service) DefaultGraph() string {
	return s.defaultGraph
}

// Handle runs one exchange and maps the final state to the caller-facing reply.
// Errors are returned only for rejected requests: invalid input, an unknown
// graph or session. Pipeline failures become the apology text.
func (s *Service) Handle(ctx context.Context, req Request) (Response, error) {
	resp, _, err := s.Exchange(ctx, req)
	return resp, err
}

// Exchange is like Handle but also returns the final pipeline state.
func (s *Service) Exchange(ctx context.Context, req Request) (resp Response, final *domain.State, err error) {
	message, err := SanitizeInput(req.Message, s.maxInput)
	if err != nil {
		return Response{}, nil, err
	}
	code, err := SanitizeInput(req.Code, DefaultMaxCodeSize)
	if err != nil {
		return Response{}, nil, fmt.Errorf("code: %w", err)
	}

	name := req.Graph
	if name == "" {
		name = s.defaultGraph
	}
	def, err := s.graphs.Get(name)
	if err != nil {
		return Response{}, nil, err
	}

	initial := domain.NewState()
	var sess *domain.Session
	if req.SessionID != "" && s.sessions != nil {
		sess, err = s.sessions.Get(ctx, req.SessionID)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return Response{}, nil, err
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "session lookup failed", "session_id", req.SessionID, "error", err)
			return apology(), nil, nil
		}
		if !sess.Active() {
			return Response{}, nil, session.ErrSessionEnded
		}
		initial.Messages = append(initial.Messages, sess.History...)
		initial.Persona = sess.Persona
		initial.Topics = sess.Topics
	}

	var turn []domain.Message
	if text, ok := prompts.NormalizeUserMessage(message); ok {
		turn = append(turn, domain.UserMessage(text))
		initial.Messages = append(initial.Messages, turn...)
	}
	if code != "" {
		initial.CurrentCode = &code
	}

	logger := s.logger.With("graph", name, "session_id", req.SessionID)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "chat exchange panicked", "panic", r)
			resp, final, err = apology(), nil, nil
		}
	}()

	final, err = s.runner.Run(ctx, def, initial, s.cfg)
	if err != nil {
		logger.ErrorContext(ctx, "graph run failed", "error", err)
		return apology(), nil, nil
	}

	if final.Error != nil {
		logger.ErrorContext(ctx, "pipeline failed",
			"stage", final.Error.Stage,
			"kind", final.Error.Message,
			"error", final.Error.Detail)
		return apology(), final, nil
	}

	text := final.UserResponse
	if text == "" {
		text = OffTopicText
	}

	if sess != nil {
		turn = append(turn, domain.AssistantMessage(text))
		if err := s.sessions.AppendHistory(ctx, sess.ID, turn...); err != nil && !errors.Is(err, context.Canceled) {
			logger.WarnContext(ctx, "failed to record session history", "error", err)
		}
	}

	logger.InfoContext(ctx, "chat exchange completed", "steps", len(final.History))
	return reply(text), final, nil
}

func reply(text string) Response {
	return Response{Response: Reply{Sender: SenderTutor, Text: text}}
}

func apology() Response {
	return reply(ApologyText)
}
