package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/video-stream/whisper-mcp/internal/logger"
	"github.com/video-stream/whisper-mcp/internal/tool"
)

const (
	ServerName    = "mcp-openai-whisper"
	ServerVersion = "1.0.0"
)

// Server exposes the transcribe_audio tool over the MCP stdio transport.
type Server struct {
	mcp    *server.MCPServer
	tool   *tool.Tool
	logger *logger.Logger
}

func New(t *tool.Tool, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		mcp: server.NewMCPServer(ServerName, ServerVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		tool:   t,
		logger: log,
	}
	s.mcp.AddTool(Definition(t.DefaultLanguage()), s.handleTranscribe)
	return s
}

// Definition describes transcribe_audio and its input schema. lang is the
// language applied when a call omits one.
func Definition(lang string) mcp.Tool {
	return mcp.NewTool(tool.Name,
		mcp.WithDescription(tool.Description),
		mcp.WithTitleAnnotation(tool.Title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description(tool.FilePathDescription),
		),
		mcp.WithString("language",
			mcp.Description(tool.LanguageDescription),
			mcp.DefaultString(lang),
		),
		mcp.WithBoolean("include_timestamps",
			mcp.Description(tool.IncludeTimestampsDescription),
			mcp.DefaultBool(false),
		),
	)
}

func (s *Server) handleTranscribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError("Failed to transcribe audio: " + err.Error()), nil
	}
	out := s.tool.Call(ctx, tool.Input{
		FilePath:          path,
		Language:          req.GetString("language", ""),
		IncludeTimestamps: req.GetBool("include_timestamps", false),
	})
	if out.IsError {
		return mcp.NewToolResultError(out.Text()), nil
	}
	return mcp.NewToolResultText(out.Text()), nil
}

// Serve speaks MCP on in/out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Desugar()))
	s.logger.Infof("[mcp] %s %s listening on stdio", ServerName, ServerVersion)
	return stdio.Listen(ctx, in, out)
}
