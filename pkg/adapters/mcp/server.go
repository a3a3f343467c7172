package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tutorgraph"
	"github.com/aretw0/tutorgraph/internal/logging"
	"github.com/aretw0/tutorgraph/pkg/chat"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/graph"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const graphsURI = "tutorgraph://graphs"

// ChatService answers learner messages. Implemented by chat.Service.
type ChatService interface {
	Exchange(ctx context.Context, req chat.Request) (chat.Response, *domain.State, error)
	DefaultGraph() string
}

// Graphs resolves topologies by name. Implemented by registry.Registry.
type Graphs interface {
	Get(name string) (*graph.Definition, error)
	Names() []string
}

// AskArgs are the arguments of the ask_tutor tool.
type AskArgs struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Graph     string `json:"graph,omitempty"`
}

// AskResult is the structured answer of the ask_tutor tool.
type AskResult struct {
	Sender  string   `json:"sender" jsonschema_description:"Always 'tutor'"`
	Text    string   `json:"text" jsonschema_description:"The tutor reply shown to the learner"`
	Graph   string   `json:"graph" jsonschema_description:"Topology that produced the reply"`
	Path    []string `json:"path,omitempty" jsonschema_description:"Nodes visited during the run"`
	Queries []string `json:"queries,omitempty" jsonschema_description:"Search queries produced by enrichment"`
}

// DescribeArgs are the arguments of the describe_graph tool.
type DescribeArgs struct {
	Name string `json:"name"`
}

// Server exposes the tutoring service as an MCP server.
type Server struct {
	chat      ChatService
	graphs    Graphs
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(chatSvc ChatService, graphs Graphs, opts ...Option) *Server {
	s := &Server{
		chat:      chatSvc,
		graphs:    graphs,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("tutorgraph-mcp", strings.TrimSpace(tutorgraph.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool("ask_tutor",
		mcp.WithDescription("Ask the coding tutor a question, optionally about a code snippet."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The learner's question")),
		mcp.WithString("code", mcp.Description("Code the learner is working on")),
		mcp.WithString("session_id", mcp.Description("Session to continue (optional)")),
		mcp.WithString("graph", mcp.Description("Topology to run: validation, enriched or tutoring"),
			mcp.Enum(s.graphs.Names()...)),
		mcp.WithOutputSchema[AskResult](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args AskArgs) (AskResult, error) {
		return s.AskTutor(ctx, args)
	}))

	describeTool := mcp.NewTool("describe_graph",
		mcp.WithDescription("Render a topology as a Mermaid flowchart."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Topology name"),
			mcp.Enum(s.graphs.Names()...)),
	)
	s.mcpServer.AddTool(describeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args DescribeArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		chart, err := s.DescribeGraph(args.Name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(chart), nil
	})
}

// AskTutor runs one chat exchange.
func (s *Server) AskTutor(ctx context.Context, args AskArgs) (AskResult, error) {
	req := chat.Request{
		SessionID: args.SessionID,
		Message:   args.Message,
		Code:      args.Code,
		Graph:     args.Graph,
	}
	resp, final, err := s.chat.Exchange(ctx, req)
	if err != nil {
		return AskResult{}, fmt.Errorf("ask_tutor failed: %w", err)
	}

	result := AskResult{
		Sender: resp.Response.Sender,
		Text:   resp.Response.Text,
		Graph:  args.Graph,
	}
	if result.Graph == "" {
		result.Graph = s.chat.DefaultGraph()
	}
	if final != nil {
		result.Path = final.History
		result.Queries = final.SearchQueries
	}
	s.logger.DebugContext(ctx, "ask_tutor", "graph", result.Graph, "path", result.Path)
	return result, nil
}

// DescribeGraph renders the named topology as Mermaid.
func (s *Server) DescribeGraph(name string) (string, error) {
	def, err := s.graphs.Get(name)
	if err != nil {
		return "", err
	}
	return def.Mermaid(nil), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphsURI, "Available Topologies",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      graphsURI,
				MIMEType: "text/plain",
				Text:     strings.Join(s.graphs.Names(), "\n"),
			},
		}, nil
	})
}
