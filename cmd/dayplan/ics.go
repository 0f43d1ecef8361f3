package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/ldi/dayplan/internal/ics"
)

const defaultImportDays = 30

var (
	exportICSFlags = []cli.Flag{
		cli.StringFlag{Name: "from", Usage: "first day as YYYY-MM-DD (default: today)"},
		cli.StringFlag{Name: "to", Usage: "day after the last one as YYYY-MM-DD (default: from + 1 day)"},
		cli.StringFlag{Name: "out, o", Usage: "write to this file instead of stdout"},
	}

	importICSFlags = []cli.Flag{
		cli.StringFlag{Name: "from", Usage: "window start as YYYY-MM-DD (default: today)"},
		cli.StringFlag{Name: "to", Usage: "window end as YYYY-MM-DD (default: from + 30 days)"},
	}
)

// window resolves --from/--to into a half-open day range.
func (e *env) window(c *cli.Context, defaultDays int) (from, to time.Time, err error) {
	from, err = e.parseDay(c.String("from"))
	if err != nil {
		return
	}
	if v := c.String("to"); v != "" {
		to, err = e.parseDay(v)
		return
	}
	to = from.AddDate(0, 0, defaultDays)
	return
}

func runExportICS(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	from, to, err := e.window(c, 1)
	if err != nil {
		return err
	}
	tasks, err := e.db.GetAllTasks(ctx)
	if err != nil {
		return err
	}
	feed := ics.ExportRange(tasks, from, to)

	out := c.String("out")
	if out == "" {
		_, err := fmt.Fprint(c.App.Writer, feed)
		return err
	}
	if err := afero.WriteFile(fsys, out, []byte(feed), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(c.App.Writer, "✓ Wrote %s\n", out)
	return nil
}

func runImportICS(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("usage: dayplan import-ics <file.ics>")
	}

	ctx := context.Background()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	from, to, err := e.window(c, defaultImportDays)
	if err != nil {
		return err
	}

	f, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	res, err := ics.Import(ctx, e.db, f, from, to)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "✓ Created %d tasks with %d schedule entries\n", res.Created, res.Occurrences)
	if res.Skipped > 0 {
		fmt.Fprintf(w, "  Skipped %d already imported\n", res.Skipped)
	}
	for _, uid := range res.Truncated {
		fmt.Fprintf(w, "  Truncated recurrence %s\n", uid)
	}
	return nil
}
