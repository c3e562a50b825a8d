// Package main is the entry point for glucodash, a terminal dashboard that
// reconciles a day of glucose readings from Nightscout and device exports.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/glucodash/internal/app"
	"github.com/j-veylop/glucodash/internal/config"
	"github.com/j-veylop/glucodash/internal/logger"
	"github.com/j-veylop/glucodash/internal/services"
	"github.com/j-veylop/glucodash/internal/ui/tabs/day"
	"github.com/j-veylop/glucodash/internal/ui/tabs/importer"
	"github.com/j-veylop/glucodash/internal/ui/tabs/info"
	"github.com/j-veylop/glucodash/internal/ui/tabs/quality"
	"github.com/j-veylop/glucodash/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Route logs away from the terminal
	logFile, err := logger.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger.Info("starting glucodash", "version", version.GetVersion(), "import_dir", cfg.ImportDir)

	// 3. Start the services: day loading, import watching and polling
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 4. Create the root model and its tabs around the shared state
	model := app.NewModel(svcManager)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		day.New(state),       // Tab 0: Day - readings, chart and summary
		quality.New(state),   // Tab 1: Quality - gaps, anomalies and timezone findings
		importer.New(state),  // Tab 2: Import - device exports
		info.New(state, cfg), // Tab 3: Info - configuration and build
	})

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 6. Run the TUI; blocks until the user quits
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("glucodash stopped")
	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`glucodash - glucose day reconciliation and data quality dashboard

Usage:
  glucodash [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-4             Switch between tabs (Day, Quality, Import, Info)
  Tab/Shift+Tab   Navigate between tabs
  [ / ]           Previous / next day
  t               Jump to today
  m / s / f       Toggle manual, sensor and meal records
  j/k, Up/Down    Navigate lists
  Enter           Open the selected export
  r               Reload the selected day
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  NIGHTSCOUT_URL           Nightscout base URL (required)
  NIGHTSCOUT_TOKEN         Nightscout access token
  NIGHTSCOUT_API_SECRET    Nightscout API secret (sent hashed)
  TIMEZONE                 IANA zone for day boundaries (default: host zone)
  TIMEZONE_OFFSET_MINUTES  Fixed UTC offset override in minutes
  TARGET_LOW, TARGET_HIGH  Target range in mg/dL (default: 70-180)
  IMPORT_DIR               Directory watched for device database exports
  QUALITY_PROFILE          YAML file with quality thresholds
  REFRESH_INTERVAL         Polling interval while viewing today (default: 5m)
  REQUEST_TIMEOUT          Nightscout request timeout (default: 30s)
  LOG_FILE                 Log file path (default: no logging)
  LOG_LEVEL                debug, info, warn or error (default: info)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/glucodash/.env
  - ~/.glucodash/.env`)
}
