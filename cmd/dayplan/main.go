package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/ldi/dayplan/internal/calendar"
	"github.com/ldi/dayplan/internal/config"
	"github.com/ldi/dayplan/internal/db"
	appLog "github.com/ldi/dayplan/internal/log"
	"github.com/ldi/dayplan/internal/mcp"
	"github.com/ldi/dayplan/internal/ui"
)

const version = "0.1.0"

var (
	configPath string
	dbPath     string
	verbose    bool

	fsys afero.Fs = afero.NewOsFs()
	now           = time.Now

	runMenu    = ui.RunMenu
	runDayView = ui.RunDay
	serveMCP   = mcp.Serve
)

func main() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, stdout io.Writer) error {
	app := newApp(stdout)
	return app.Run(append([]string{app.Name}, args...))
}

func newApp(stdout io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "dayplan"
	app.HelpName = "dayplan"
	app.Usage = "plan your day on a drag-and-drop time grid"
	app.UsageText = "dayplan [global options] <command> [arguments...]"
	app.Version = version
	app.Writer = stdout
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "config",
			Value:       config.DefaultPath,
			Usage:       "path to the YAML config file",
			Destination: &configPath,
		},
		cli.StringFlag{
			Name:        "db-path",
			Usage:       "path to the database file (overrides config)",
			Destination: &dbPath,
		},
		cli.BoolFlag{
			Name:        "verbose",
			Usage:       "enable debug logging",
			Destination: &verbose,
		},
	}
	app.Action = runRoot
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "create the config, database and snapshot import",
			Action: runInit,
		},
		{
			Name:   "add-task",
			Usage:  "file a new task",
			Action: runAddTask,
			Flags:  addTaskFlags,
		},
		{
			Name:   "add-entry",
			Usage:  "block time for a task",
			Action: runAddEntry,
			Flags:  addEntryFlags,
		},
		{
			Name:      "set-state",
			Usage:     "change the lifecycle state of a task",
			ArgsUsage: "<task-id> <state>",
			Action:    runSetState,
		},
		{
			Name:   "list-tasks",
			Usage:  "list tasks",
			Action: runListTasks,
			Flags:  []cli.Flag{cli.StringFlag{Name: "state", Usage: "only tasks in this state"}},
		},
		{
			Name:   "day",
			Usage:  "print the laid out schedule of a day",
			Action: runDay,
			Flags:  []cli.Flag{dateFlag},
		},
		{
			Name:   "deadlines",
			Usage:  "print the deadlines of a day by urgency",
			Action: runDeadlines,
			Flags:  []cli.Flag{dateFlag},
		},
		{
			Name:   "move",
			Usage:  "move a schedule entry to a new start time",
			Action: runMove,
			Flags:  moveFlags,
		},
		{
			Name:   "resize",
			Usage:  "move one edge of a schedule entry",
			Action: runResize,
			Flags:  resizeFlags,
		},
		{
			Name:   "export-ics",
			Usage:  "write schedule entries as an iCalendar feed",
			Action: runExportICS,
			Flags:  exportICSFlags,
		},
		{
			Name:      "import-ics",
			Usage:     "create tasks from an iCalendar feed",
			ArgsUsage: "<file.ics>",
			Action:    runImportICS,
			Flags:     importICSFlags,
		},
		{
			Name:   "status",
			Usage:  "summarize tasks and today's plan",
			Action: runStatus,
		},
		{
			Name:   "web",
			Usage:  "serve the HTTP API",
			Action: runWeb,
			Flags:  []cli.Flag{cli.StringFlag{Name: "listen", Usage: "listen address (overrides config)"}},
		},
		{
			Name:   "mcp",
			Usage:  "serve MCP tools on stdio",
			Action: runMCP,
		},
		{
			Name:   "tui",
			Usage:  "open the interactive day view",
			Action: runTUI,
			Flags:  []cli.Flag{dateFlag},
		},
	}
	return app
}

var dateFlag = cli.StringFlag{Name: "date", Usage: "day as YYYY-MM-DD (default: today)"}

// runRoot opens the launcher menu when no command is given.
func runRoot(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command: %s", c.Args().First())
	}

	selected, err := runMenu(now())
	if err != nil {
		return fmt.Errorf("failed to run menu: %w", err)
	}

	switch selected {
	case "":
		return nil
	case "init":
		return runInit(c)
	case "day":
		return runTUI(c)
	case "web":
		return runWeb(c)
	case "mcp":
		return runMCP(c)
	case "status":
		return runStatus(c)
	default:
		return fmt.Errorf("unknown command: %s", selected)
	}
}

// env is what most commands need: the loaded config, an initialized store
// and a calendar surface over it.
type env struct {
	cfg     *config.Config
	db      *db.DB
	loc     *time.Location
	surface *calendar.Surface
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(fsys, configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	if verbose {
		appLog.SetLevel(appLog.LevelDebug)
	} else {
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	}
	return cfg, nil
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("using local time zone", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := database.Init(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	surface, err := calendar.NewSurface(database, calendar.Geometry{
		HourHeightPx: cfg.HourHeightPx,
		Snap:         cfg.Snap(),
	})
	if err != nil {
		database.Close()
		return nil, err
	}
	surface.CommitTimeout = cfg.CommitTimeout

	return &env{cfg: cfg, db: database, loc: loc, surface: surface}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}

func (e *env) today() time.Time {
	start, _ := calendar.DayBounds(now().In(e.loc))
	return start
}
