package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/ldi/dayplan/internal/calendar"
	"github.com/ldi/dayplan/internal/db"
	"github.com/ldi/dayplan/pkg/models"
)

var (
	addTaskFlags = []cli.Flag{
		cli.StringFlag{Name: "title", Usage: "task title"},
		cli.StringFlag{Name: "due", Usage: "due time as YYYY-MM-DD HH:MM or RFC3339"},
		cli.Float64Flag{Name: "estimate", Usage: "estimated hours of work"},
		cli.StringFlag{Name: "state", Value: string(models.TaskStateFiled), Usage: "initial state"},
	}

	addEntryFlags = []cli.Flag{
		cli.StringFlag{Name: "task", Usage: "task id"},
		cli.StringFlag{Name: "start", Usage: "start as YYYY-MM-DD HH:MM or RFC3339"},
		cli.StringFlag{Name: "end", Usage: "end as YYYY-MM-DD HH:MM or RFC3339"},
	}
)

func runInit(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "✓ Config at %s\n", configPath)

	dataDir := filepath.Dir(cfg.DBPath)
	if err := fsys.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dataDir, err)
	}
	gitignore := filepath.Join(dataDir, ".gitignore")
	if err := afero.WriteFile(fsys, gitignore, []byte(filepath.Base(cfg.DBPath)+"*\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	ctx := context.Background()
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "✓ Initialized database at %s\n", cfg.DBPath)

	if cfg.SnapshotPath != "" {
		if _, err := os.Stat(cfg.SnapshotPath); err == nil {
			if err := database.ImportSnapshot(ctx, cfg.SnapshotPath); err != nil {
				return fmt.Errorf("failed to import snapshot: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "✓ Imported snapshot from %s\n", cfg.SnapshotPath)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat snapshot: %w", err)
		}
	}

	fmt.Fprintln(c.App.Writer, "✓ Dayplan initialized successfully")
	return nil
}

func runAddTask(c *cli.Context) error {
	title := strings.TrimSpace(c.String("title"))
	if title == "" {
		return errors.New("--title is required")
	}
	state, err := models.ParseTaskState(c.String("state"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	task := &models.Task{Title: title, State: state}
	if v := c.String("due"); v != "" {
		due, err := e.parseDateTime(v)
		if err != nil {
			return err
		}
		task.DueDateTime = &due
	}
	if c.IsSet("estimate") {
		hours := c.Float64("estimate")
		task.EstimatedHours = &hours
	}

	if err := e.db.CreateTask(ctx, task); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, task.ID)
	return nil
}

func runAddEntry(c *cli.Context) error {
	taskID := c.String("task")
	if taskID == "" {
		return errors.New("--task is required")
	}

	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	start, err := e.parseDateTime(c.String("start"))
	if err != nil {
		return err
	}
	end, err := e.parseDateTime(c.String("end"))
	if err != nil {
		return err
	}

	entry := &models.ScheduleEntry{TaskID: taskID, StartTime: start, EndTime: end}
	if err := e.db.AddScheduleEntry(ctx, entry); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, entry.ID)
	return nil
}

func runSetState(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: dayplan set-state <task-id> <state>")
	}
	state, err := models.ParseTaskState(c.Args().Get(1))
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.db.UpdateTaskState(ctx, c.Args().First(), state); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "✓ %s is now %s\n", c.Args().First(), state)
	return nil
}

func runListTasks(c *cli.Context) error {
	var state *models.TaskState
	if v := c.String("state"); v != "" {
		s, err := models.ParseTaskState(v)
		if err != nil {
			return err
		}
		state = &s
	}

	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	tasks, err := e.db.ListTasks(ctx, state)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%-36s %-10s %-16s %-8s %s\n", "ID", "STATE", "DUE", "ENTRIES", "TITLE")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, t := range tasks {
		due := "-"
		if t.DueDateTime != nil {
			due = t.DueDateTime.In(e.loc).Format(dateTimeLayout)
		}
		fmt.Fprintf(w, "%-36s %-10s %-16s %-8d %s\n", t.ID, t.State, due, len(t.ScheduleHistory), t.Title)
	}
	return nil
}

func runStatus(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	view, err := e.surface.Day(ctx, e.today(), now())
	if err != nil {
		return err
	}
	tasks, err := e.db.GetAllTasks(ctx)
	if err != nil {
		return err
	}

	counts := make(map[models.TaskState]int)
	var over []*models.Task
	for _, t := range tasks {
		counts[t.State]++
		if calendar.Estimate(t).Exceeds {
			over = append(over, t)
		}
	}

	w := c.App.Writer
	fmt.Fprintln(w, "Dayplan Status")
	fmt.Fprintln(w, "==============")
	fmt.Fprintf(w, "Total Tasks:     %d\n", len(tasks))
	fmt.Fprintf(w, "Today's Blocks:  %d\n", len(view.Events))
	fmt.Fprintf(w, "Due Today:       %d\n", len(view.Deadlines))

	fmt.Fprintln(w, "\nTask Breakdown:")
	for _, st := range models.TaskStates {
		fmt.Fprintf(w, "  %-10s %d\n", st+":", counts[st])
	}

	if len(over) > 0 {
		fmt.Fprintln(w, "\nOver Estimate:")
		for _, t := range over {
			r := calendar.Estimate(t)
			fmt.Fprintf(w, "  - %s (%s scheduled, %s estimated)\n", t.Title, r.Scheduled, r.Estimated)
		}
	}
	return nil
}
