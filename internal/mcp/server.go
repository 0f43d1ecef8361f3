package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ldi/dayplan/internal/calendar"
	"github.com/ldi/dayplan/internal/db"
	"github.com/ldi/dayplan/pkg/models"
)

const dateLayout = "2006-01-02"

// Tools bundles what the tool handlers share.
type Tools struct {
	DB       *db.DB
	Surface  *calendar.Surface
	Location *time.Location
	Now      func() time.Time
}

// NewServer creates a new MCP server exposing the day planner.
func NewServer(t *Tools) *server.MCPServer {
	if t.Location == nil {
		t.Location = time.Local
	}
	if t.Now == nil {
		t.Now = time.Now
	}

	s := server.NewMCPServer("Dayplan", "0.1.0")

	// Day view
	s.AddTool(mcp.NewTool("day_view",
		mcp.WithDescription("Lay out one day: positioned events with columns plus that day's deadlines."),
		mcp.WithString("date", mcp.Description("Day as YYYY-MM-DD (defaults to today)")),
	), t.dayViewHandler)

	s.AddTool(mcp.NewTool("deadlines",
		mcp.WithDescription("List deadlines due on a day with their urgency."),
		mcp.WithString("date", mcp.Description("Day as YYYY-MM-DD (defaults to today)")),
	), t.deadlinesHandler)

	// Gestures
	s.AddTool(mcp.NewTool("move_entry",
		mcp.WithDescription("Move a schedule entry by dropping it at a vertical pixel offset of the day grid."),
		mcp.WithString("task_id", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("entry_id", mcp.Description("Schedule entry ID"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Day the entry is shown on, YYYY-MM-DD"), mcp.Required()),
		mcp.WithNumber("pointer_y", mcp.Description("Drop position in pixels from midnight"), mcp.Required()),
	), t.moveEntryHandler)

	s.AddTool(mcp.NewTool("resize_entry",
		mcp.WithDescription("Drag the top or bottom edge of a schedule entry."),
		mcp.WithString("task_id", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("entry_id", mcp.Description("Schedule entry ID"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Day the entry is shown on, YYYY-MM-DD"), mcp.Required()),
		mcp.WithString("edge", mcp.Description("Edge to drag (top|bottom)"), mcp.Required()),
		mcp.WithNumber("anchor_y", mcp.Description("Pointer position where the drag started"), mcp.Required()),
		mcp.WithNumber("pointer_y", mcp.Description("Pointer position where the drag ended"), mcp.Required()),
	), t.resizeEntryHandler)

	// Task Management
	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
		mcp.WithString("due", mcp.Description("Deadline as RFC3339")),
		mcp.WithNumber("estimated_hours", mcp.Description("Estimated effort in hours")),
	), t.createTaskHandler)

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with an optional state filter."),
		mcp.WithString("state", mcp.Description("Filter by state")),
	), t.listTasksHandler)

	s.AddTool(mcp.NewTool("add_schedule_entry",
		mcp.WithDescription("Block time for a task."),
		mcp.WithString("task_id", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("start", mcp.Description("Start as RFC3339"), mcp.Required()),
		mcp.WithString("end", mcp.Description("End as RFC3339"), mcp.Required()),
	), t.addScheduleEntryHandler)

	s.AddTool(mcp.NewTool("set_task_state",
		mcp.WithDescription("Move a task to another state (filed|scheduled|doing|finished|failed|deferred|removed)."),
		mcp.WithString("task_id", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithString("state", mcp.Description("New state"), mcp.Required()),
	), t.setTaskStateHandler)

	s.AddTool(mcp.NewTool("estimate_report",
		mcp.WithDescription("Compare the total time scheduled for a task with its estimate."),
		mcp.WithString("task_id", mcp.Description("Task ID"), mcp.Required()),
	), t.estimateReportHandler)

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (t *Tools) parseDate(v string) (time.Time, error) {
	if v == "" {
		start, _ := calendar.DayBounds(t.Now().In(t.Location))
		return start, nil
	}
	day, err := time.ParseInLocation(dateLayout, v, t.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return day, nil
}

func (t *Tools) dayView(ctx context.Context, request mcp.CallToolRequest) (calendar.DayView, error) {
	day, err := t.parseDate(mcp.ParseString(request, "date", ""))
	if err != nil {
		return calendar.DayView{}, err
	}
	return t.Surface.Day(ctx, day, t.Now())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// gestureError turns an engine failure into the user-facing tool error.
func gestureError(err error) *mcp.CallToolResult {
	if errors.Is(err, calendar.ErrCollaboratorUnavailable) || errors.Is(err, calendar.ErrConcurrentGesture) {
		return mcp.NewToolResultError(calendar.FailureNotice(err))
	}
	return mcp.NewToolResultError(err.Error())
}

func (t *Tools) dayViewHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := t.dayView(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view)
}

func (t *Tools) deadlinesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := t.dayView(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"deadlines": view.Deadlines})
}

func (t *Tools) moveEntryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := t.parseDate(mcp.ParseString(request, "date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := t.Surface.MoveEntry(ctx, day,
		mcp.ParseString(request, "task_id", ""),
		mcp.ParseString(request, "entry_id", ""),
		mcp.ParseFloat64(request, "pointer_y", 0),
	)
	if err != nil {
		return gestureError(err), nil
	}
	return jsonResult(r)
}

func (t *Tools) resizeEntryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	day, err := t.parseDate(mcp.ParseString(request, "date", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	edge, err := calendar.ParseEdge(mcp.ParseString(request, "edge", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := t.Surface.ResizeEntry(ctx, day,
		mcp.ParseString(request, "task_id", ""),
		mcp.ParseString(request, "entry_id", ""),
		edge,
		mcp.ParseFloat64(request, "anchor_y", 0),
		mcp.ParseFloat64(request, "pointer_y", 0),
	)
	if err != nil {
		return gestureError(err), nil
	}
	return jsonResult(r)
}

func (t *Tools) createTaskHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task := &models.Task{Title: mcp.ParseString(request, "title", "")}

	if due := mcp.ParseString(request, "due", ""); due != "" {
		d, err := time.Parse(time.RFC3339, due)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid due %q: %v", due, err)), nil
		}
		task.DueDateTime = &d
	}

	args, _ := request.Params.Arguments.(map[string]any)
	if _, ok := args["estimated_hours"]; ok {
		hours := mcp.ParseFloat64(request, "estimated_hours", 0)
		task.EstimatedHours = &hours
	}

	if err := t.DB.CreateTask(ctx, task); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(task)
}

func (t *Tools) listTasksHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter *models.TaskState
	if s := mcp.ParseString(request, "state", ""); s != "" {
		state, err := models.ParseTaskState(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter = &state
	}

	tasks, err := t.DB.ListTasks(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"tasks": tasks})
}

func (t *Tools) addScheduleEntryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := time.Parse(time.RFC3339, mcp.ParseString(request, "start", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start: %v", err)), nil
	}
	end, err := time.Parse(time.RFC3339, mcp.ParseString(request, "end", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end: %v", err)), nil
	}

	e := &models.ScheduleEntry{
		TaskID:    mcp.ParseString(request, "task_id", ""),
		StartTime: start,
		EndTime:   end,
	}
	if err := t.DB.AddScheduleEntry(ctx, e); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(e)
}

func (t *Tools) setTaskStateHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "task_id", "")
	state, err := models.ParseTaskState(mcp.ParseString(request, "state", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.DB.UpdateTaskState(ctx, id, state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task '%s' is now %s", id, state)), nil
}

func (t *Tools) estimateReportHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := mcp.ParseString(request, "task_id", "")
	task, err := t.DB.GetTask(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if task == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
	}

	r := calendar.Estimate(task)
	return jsonResult(map[string]any{
		"task_id":         task.ID,
		"scheduled_hours": r.Scheduled.Hours(),
		"estimated_hours": r.Estimated.Hours(),
		"has_estimate":    r.HasEstimate,
		"exceeds":         r.Exceeds,
	})
}
