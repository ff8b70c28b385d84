package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/chandler767/mcp-video-editor-sub000/internal/app"
	"github.com/chandler767/mcp-video-editor-sub000/internal/timeline"
)

// Server exposes the edit-planning core as MCP tools over stdio
type Server struct {
	app    *app.Application
	logger *zap.Logger
	mcp    *server.MCPServer
}

// NewServer creates an MCP server with all editing tools registered
func NewServer(application *app.Application, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop() // Use no-op logger if nil is passed
	}

	s := &Server{
		app:    application,
		logger: logger,
		mcp: server.NewMCPServer(
			"video-editor",
			"1.0.0",
			server.WithToolCapabilities(false),
		),
	}

	s.registerTools()
	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects
func (s *Server) Serve() error {
	s.logger.Info("starting MCP server on stdio")
	if err := server.ServeStdio(s.mcp); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

// registerTools wires every editing tool onto the MCP server
func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("create_timeline",
		mcp.WithDescription("Create a new edit-history timeline for a video project"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable timeline name")),
		mcp.WithString("base_file", mcp.Description("Path of the unedited source video")),
	), s.handleCreateTimeline)

	s.mcp.AddTool(mcp.NewTool("transcribe_video",
		mcp.WithDescription("Transcribe a video's audio with word-level timestamps"),
		mcp.WithString("video_path", mcp.Required(), mcp.Description("Path of the video to transcribe")),
	), s.handleTranscribeVideo)

	s.mcp.AddTool(mcp.NewTool("remove_by_transcript",
		mcp.WithDescription("Cut every spoken occurrence of a phrase out of a video"),
		mcp.WithString("video_path", mcp.Required(), mcp.Description("Path of the video to edit")),
		mcp.WithString("text_to_remove", mcp.Required(), mcp.Description("Spoken phrase to remove")),
		mcp.WithString("output_path", mcp.Required(), mcp.Description("Path for the edited video")),
		mcp.WithString("timeline_id", mcp.Description("Timeline to record the edit on")),
	), s.handleRemoveByTranscript)

	s.mcp.AddTool(mcp.NewTool("trim_to_script",
		mcp.WithDescription("Keep only the parts of a video referenced by a multi-line script"),
		mcp.WithString("video_path", mcp.Required(), mcp.Description("Path of the video to edit")),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script whose lines select the audio to keep")),
		mcp.WithString("output_path", mcp.Required(), mcp.Description("Path for the edited video")),
		mcp.WithString("timeline_id", mcp.Description("Timeline to record the edit on")),
	), s.handleTrimToScript)

	s.mcp.AddTool(mcp.NewTool("undo_edit",
		mcp.WithDescription("Move a timeline one step back and report the file that is now current"),
		mcp.WithString("timeline_id", mcp.Required(), mcp.Description("Timeline to undo on")),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo_edit",
		mcp.WithDescription("Move a timeline one step forward and report the file that is now current"),
		mcp.WithString("timeline_id", mcp.Required(), mcp.Description("Timeline to redo on")),
	), s.handleRedo)

	s.mcp.AddTool(mcp.NewTool("jump_to_edit",
		mcp.WithDescription("Jump a timeline's cursor to an absolute operation index (-1 for the base file)"),
		mcp.WithString("timeline_id", mcp.Required(), mcp.Description("Timeline to move")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Target operation index, -1 through the last operation")),
	), s.handleJumpTo)

	s.mcp.AddTool(mcp.NewTool("timeline_stats",
		mcp.WithDescription("Aggregate operation counts and durations for a timeline"),
		mcp.WithString("timeline_id", mcp.Required(), mcp.Description("Timeline to summarize")),
	), s.handleStatistics)

	s.mcp.AddTool(mcp.NewTool("list_timelines",
		mcp.WithDescription("List all persisted timelines"),
	), s.handleListTimelines)

	s.mcp.AddTool(mcp.NewTool("delete_timeline",
		mcp.WithDescription("Delete a persisted timeline"),
		mcp.WithString("timeline_id", mcp.Required(), mcp.Description("Timeline to delete")),
	), s.handleDeleteTimeline)
}

// stringArg extracts a required string argument from a tool request
func stringArg(request mcp.CallToolRequest, key string) (string, error) {
	value, ok := request.Params.Arguments[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return value, nil
}

// optionalStringArg extracts an optional string argument, defaulting to empty
func optionalStringArg(request mcp.CallToolRequest, key string) string {
	value, _ := request.Params.Arguments[key].(string)
	return value
}

// jsonResult renders a value as an indented JSON text result
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError maps core errors onto MCP tool errors, keeping the error kind
// visible to the model driving the tools
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Warn("tool call failed",
		zap.String("tool", tool),
		zap.Error(err))

	switch {
	case errors.Is(err, timeline.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v", err))
	case errors.Is(err, timeline.ErrInvalidIndex):
		return mcp.NewToolResultError(fmt.Sprintf("invalid index: %v", err))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) handleCreateTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := stringArg(request, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t, err := s.app.Timelines().Create(name, optionalStringArg(request, "base_file"))
	if err != nil {
		return s.toolError("create_timeline", err), nil
	}

	return jsonResult(t)
}

func (s *Server) handleTranscribeVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoPath, err := stringArg(request, "video_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tr, err := s.app.TranscribeVideo(ctx, videoPath)
	if err != nil {
		return s.toolError("transcribe_video", err), nil
	}

	return jsonResult(tr)
}

func (s *Server) handleRemoveByTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoPath, err := stringArg(request, "video_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	textToRemove, err := stringArg(request, "text_to_remove")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := stringArg(request, "output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.app.RemoveByTranscript(ctx, videoPath, textToRemove, outputPath, optionalStringArg(request, "timeline_id"))
	if err != nil {
		return s.toolError("remove_by_transcript", err), nil
	}

	return jsonResult(result)
}

func (s *Server) handleTrimToScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoPath, err := stringArg(request, "video_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	script, err := stringArg(request, "script")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := stringArg(request, "output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.app.TrimToScript(ctx, videoPath, script, outputPath, optionalStringArg(request, "timeline_id"))
	if err != nil {
		return s.toolError("trim_to_script", err), nil
	}

	return jsonResult(result)
}

// cursorMove is the shared response shape of undo/redo/jump tools
type cursorMove struct {
	Timeline *timeline.Timeline `json:"timeline"`
	Output   string             `json:"output"`
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(request, "timeline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t, output, err := s.app.Timelines().Undo(id)
	if err != nil {
		return s.toolError("undo_edit", err), nil
	}

	return jsonResult(cursorMove{Timeline: t, Output: output})
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(request, "timeline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t, output, err := s.app.Timelines().Redo(id)
	if err != nil {
		return s.toolError("redo_edit", err), nil
	}

	return jsonResult(cursorMove{Timeline: t, Output: output})
}

func (s *Server) handleJumpTo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(request, "timeline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	indexRaw, ok := request.Params.Arguments["index"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing required argument \"index\""), nil
	}

	t, output, err := s.app.Timelines().JumpTo(id, int(indexRaw))
	if err != nil {
		return s.toolError("jump_to_edit", err), nil
	}

	return jsonResult(cursorMove{Timeline: t, Output: output})
}

func (s *Server) handleStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(request, "timeline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stats, err := s.app.Timelines().Statistics(id)
	if err != nil {
		return s.toolError("timeline_stats", err), nil
	}

	return jsonResult(stats)
}

func (s *Server) handleListTimelines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	timelines, err := s.app.Timelines().List()
	if err != nil {
		return s.toolError("list_timelines", err), nil
	}

	return jsonResult(timelines)
}

func (s *Server) handleDeleteTimeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := stringArg(request, "timeline_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.app.Timelines().Delete(id); err != nil {
		return s.toolError("delete_timeline", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("timeline %s deleted", id)), nil
}
