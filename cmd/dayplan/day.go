package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ldi/dayplan/internal/calendar"
)

var (
	moveFlags = []cli.Flag{
		cli.StringFlag{Name: "task", Usage: "task id"},
		cli.StringFlag{Name: "entry", Usage: "schedule entry id"},
		dateFlag,
		cli.StringFlag{Name: "to", Usage: "new start as HH:MM"},
		cli.Float64Flag{Name: "pointer-y", Usage: "drop position in grid pixels, used when --to is empty"},
	}

	resizeFlags = []cli.Flag{
		cli.StringFlag{Name: "task", Usage: "task id"},
		cli.StringFlag{Name: "entry", Usage: "schedule entry id"},
		dateFlag,
		cli.StringFlag{Name: "edge", Value: "bottom", Usage: "edge to move: top or bottom"},
		cli.StringFlag{Name: "to", Usage: "new edge time as HH:MM"},
	}
)

func runDay(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	day, err := e.parseDay(c.String("date"))
	if err != nil {
		return err
	}
	view, err := e.surface.Day(ctx, day, now())
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintln(w, day.Format("Monday, 02 Jan 2006"))
	if len(view.Events) == 0 {
		fmt.Fprintln(w, "No scheduled blocks")
		return nil
	}
	fmt.Fprintf(w, "%-11s %-7s %-8s %-8s %-36s %s\n", "TIME", "COLUMN", "TOP", "HEIGHT", "ENTRY", "TITLE")
	for _, ev := range view.Events {
		fmt.Fprintf(w, "%-11s %-7s %-8.1f %-8.1f %-36s %s\n",
			formatRange(ev.Range(), e.loc),
			fmt.Sprintf("%d/%d", ev.Column+1, ev.TotalColumns),
			ev.Position.Top,
			ev.Position.Height,
			ev.Entry.ID,
			ev.Title,
		)
	}
	return nil
}

func runDeadlines(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	day, err := e.parseDay(c.String("date"))
	if err != nil {
		return err
	}
	view, err := e.surface.Day(ctx, day, now())
	if err != nil {
		return err
	}

	w := c.App.Writer
	if len(view.Deadlines) == 0 {
		fmt.Fprintln(w, "Nothing due")
		return nil
	}
	for _, d := range view.Deadlines {
		fmt.Fprintf(w, "%-6s %-6s %s\n", d.Urgency, d.DueDateTime.In(e.loc).Format(clockLayout), d.Title)
	}
	return nil
}

func runMove(c *cli.Context) error {
	taskID, entryID := c.String("task"), c.String("entry")
	if taskID == "" || entryID == "" {
		return errors.New("--task and --entry are required")
	}

	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	day, err := e.parseDay(c.String("date"))
	if err != nil {
		return err
	}

	pointerY := c.Float64("pointer-y")
	if v := c.String("to"); v != "" {
		to, err := parseClock(day, v)
		if err != nil {
			return err
		}
		pointerY = pointerFor(day, to, e.surface.Geometry())
	} else if !c.IsSet("pointer-y") {
		return errors.New("one of --to or --pointer-y is required")
	}

	r, err := e.surface.MoveEntry(ctx, day, taskID, entryID, pointerY)
	if err != nil {
		return gestureFailure(err)
	}
	fmt.Fprintf(c.App.Writer, "✓ Moved to %s\n", formatRange(r, e.loc))
	return nil
}

func runResize(c *cli.Context) error {
	taskID, entryID := c.String("task"), c.String("entry")
	if taskID == "" || entryID == "" {
		return errors.New("--task and --entry are required")
	}
	edge, err := calendar.ParseEdge(c.String("edge"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	day, err := e.parseDay(c.String("date"))
	if err != nil {
		return err
	}
	to, err := parseClock(day, c.String("to"))
	if err != nil {
		return err
	}

	view, err := e.surface.Day(ctx, day, now())
	if err != nil {
		return err
	}
	ev, ok := view.FindEvent(entryID)
	if !ok {
		return calendar.ErrEventNotFound
	}

	// Anchor on the stored edge time so the delta is exact even when the
	// drawn box was clipped or padded to its minimum height.
	g := e.surface.Geometry()
	anchor := pointerFor(day, ev.EndTime, g)
	if edge == calendar.EdgeTop {
		anchor = pointerFor(day, ev.StartTime, g)
	}

	r, err := e.surface.ResizeEntry(ctx, day, taskID, entryID, edge, anchor, pointerFor(day, to, g))
	if err != nil {
		return gestureFailure(err)
	}
	fmt.Fprintf(c.App.Writer, "✓ Resized to %s\n", formatRange(r, e.loc))
	return nil
}

// gestureFailure keeps the cause for the error output but leads with the
// notice the other surfaces show.
func gestureFailure(err error) error {
	return fmt.Errorf("%s (%w)", calendar.FailureNotice(err), err)
}

func runTUI(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.SnapshotPath != "" {
		e.db.EnableAutoSnapshot(e.cfg.SnapshotPath)
	}

	day, err := e.parseDay(c.String("date"))
	if err != nil {
		return err
	}
	return runDayView(ctx, e.surface, day)
}
