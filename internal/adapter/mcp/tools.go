package mcp

import (
	"context"
	"encoding/json"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/arenlabs/aren/internal/domain/task"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.askTool(),
		s.rememberTool(),
		s.addTaskTool(),
		s.pendingTasksTool(),
	)
}

func (s *Server) askTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("aren_ask",
		mcplib.WithDescription("Ask the assistant a question and get its reply"),
		mcplib.WithString("text",
			mcplib.Required(),
			mcplib.Description("The question or instruction for the assistant"),
		),
		mcplib.WithString("device_id",
			mcplib.Description("Conversation context to use; defaults to the shared one"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleAsk,
	}
}

func (s *Server) rememberTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("aren_remember",
		mcplib.WithDescription("Store a long-term memory for later recall"),
		mcplib.WithString("note",
			mcplib.Required(),
			mcplib.Description("The fact to remember"),
		),
		mcplib.WithString("context",
			mcplib.Description("Category tag, e.g. \"conversation\""),
		),
		mcplib.WithString("device_id",
			mcplib.Description("Conversation context to use; defaults to the shared one"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleRemember,
	}
}

func (s *Server) addTaskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("aren_add_task",
		mcplib.WithDescription("Create a task on the user's pending list"),
		mcplib.WithString("description",
			mcplib.Required(),
			mcplib.Description("What needs to be done"),
		),
		mcplib.WithNumber("priority",
			mcplib.Description("1 low, 2 medium, 3 high; defaults to low"),
		),
		mcplib.WithString("due",
			mcplib.Description("Due date in RFC 3339; defaults to one day out"),
		),
		mcplib.WithString("device_id",
			mcplib.Description("Conversation context to use; defaults to the shared one"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleAddTask,
	}
}

func (s *Server) pendingTasksTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("aren_pending_tasks",
		mcplib.WithDescription("List the user's open tasks"),
		mcplib.WithString("device_id",
			mcplib.Description("Conversation context to use; defaults to the shared one"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handlePendingTasks,
	}
}

func (s *Server) handleAsk(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Processor == nil {
		return mcplib.NewToolResultError("processor not configured"), nil
	}
	args := req.GetArguments()
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcplib.NewToolResultError("text is required"), nil
	}
	reply := s.deps.Processor.ProcessInput(ctx, deviceArg(args), text)
	return mcplib.NewToolResultText(reply), nil
}

func (s *Server) handleRemember(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Contexts == nil {
		return mcplib.NewToolResultError("context store not configured"), nil
	}
	args := req.GetArguments()
	note, ok := args["note"].(string)
	if !ok || note == "" {
		return mcplib.NewToolResultError("note is required"), nil
	}
	contextTag, _ := args["context"].(string)
	n, err := s.deps.Contexts.AddMemory(ctx, deviceArg(args), note, contextTag, nil)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to store memory", err), nil
	}
	data, err := json.Marshal(n)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal memory", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleAddTask(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Contexts == nil {
		return mcplib.NewToolResultError("context store not configured"), nil
	}
	args := req.GetArguments()
	description, ok := args["description"].(string)
	if !ok || description == "" {
		return mcplib.NewToolResultError("description is required"), nil
	}

	priority := task.PriorityLow
	if p, ok := args["priority"].(float64); ok {
		priority = int(p)
	}
	var due *time.Time
	if raw, ok := args["due"].(string); ok && raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return mcplib.NewToolResultError("due must be RFC 3339"), nil
		}
		due = &parsed
	}

	t, err := s.deps.Contexts.AddTask(ctx, deviceArg(args), description, priority, due)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to create task", err), nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal task", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handlePendingTasks(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Contexts == nil {
		return mcplib.NewToolResultError("context store not configured"), nil
	}
	tasks, err := s.deps.Contexts.PendingTasks(ctx, deviceArg(req.GetArguments()))
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list tasks", err), nil
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal tasks", err), nil
	}
	return toolResultJSON(string(data)), nil
}

// deviceArg pulls the optional device_id argument, falling back to the
// shared context.
func deviceArg(args map[string]any) string {
	if d, ok := args["device_id"].(string); ok && d != "" {
		return d
	}
	return defaultDevice
}
