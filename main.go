// persona-desk - A terminal front-end for the persona assistant backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/persona-desk/internal/backend"
	"github.com/morganforge/persona-desk/internal/config"
	"github.com/morganforge/persona-desk/internal/persona"
	"github.com/morganforge/persona-desk/internal/transfer"
	"github.com/morganforge/persona-desk/internal/ui/chat"
	"github.com/morganforge/persona-desk/internal/ui/components"
	"github.com/morganforge/persona-desk/internal/ui/files"
	"github.com/morganforge/persona-desk/internal/ui/styles"
	"github.com/morganforge/persona-desk/internal/ui/upload"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for messages that originate outside the
// program loop (upload progress, config reloads).
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	var (
		flagURL     = flag.String("url", "", "backend base URL (overrides config)")
		flagPersona = flag.String("persona", "", "startup persona: HR, Legal, L1, L2")
		flagDir     = flag.String("download-dir", "", "directory for downloaded documents")
		flagConfig  = flag.String("config", "", "path to config file")
		flagVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *flagVersion {
		fmt.Printf("persona-desk %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// CLI args override config.
	if *flagURL != "" {
		cfg.Backend.URL = *flagURL
	}
	if *flagDir != "" {
		cfg.Downloads.Dir = *flagDir
	}
	if *flagPersona != "" {
		cfg.UI.DefaultPersona = *flagPersona
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	m := newRootModel(cfg)

	// Reload on config file edits. The watcher only delivers configs
	// that validate; CLI overrides are reapplied on top.
	if path, err := configPath(*flagConfig); err == nil {
		watcher, werr := config.NewWatcher(path, func(next *config.Config) {
			if *flagURL != "" {
				next.Backend.URL = *flagURL
			}
			if *flagDir != "" {
				next.Downloads.Dir = *flagDir
			}
			sendToProgram(configReloadedMsg{cfg: next})
		})
		if werr == nil {
			defer watcher.Close()
		}
	}

	opts := []tea.ProgramOption{}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, opts...)

	programMu.Lock()
	programRef = p
	programMu.Unlock()
	m.upload.SetSend(sendToProgram)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running persona-desk: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// Seed the default file on first run so there is something to edit
	// (and for the watcher to watch). Best effort; the app runs fine on
	// defaults if the write fails.
	if p, perr := config.Path(); perr == nil {
		if _, serr := os.Stat(p); os.IsNotExist(serr) {
			if werr := config.Save(cfg); werr != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not write %s: %v\n", p, werr)
			}
		}
	}
	return cfg, nil
}

func configPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	return config.Path()
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// configReloadedMsg carries a validated config picked up by the watcher.
type configReloadedMsg struct {
	cfg *config.Config
}

// rootModel owns the tab strip and routes messages to the active view.
type rootModel struct {
	theme    *styles.Theme
	registry persona.Registry
	client   *backend.Client
	tracker  *transfer.Tracker

	tab    components.Tab
	chat   *chat.Model
	files  *files.Model
	upload *upload.Model

	backendURL string
	width      int
	height     int
}

func newRootModel(cfg *config.Config) *rootModel {
	theme := styles.NewTheme()
	registry := persona.NewRegistry()
	client := clientFor(cfg)
	tracker := transfer.NewTracker()

	active := registry.Default().ID
	if registry.Contains(persona.ID(cfg.UI.DefaultPersona)) {
		active = persona.ID(cfg.UI.DefaultPersona)
	}

	return &rootModel{
		theme:      theme,
		registry:   registry,
		client:     client,
		tracker:    tracker,
		tab:        components.TabChat,
		chat:       chat.New(theme, registry, client, active),
		files:      files.New(theme, registry, client, tracker, active),
		upload:     upload.New(theme, registry, client, tracker, active, sendToProgram),
		backendURL: cfg.Backend.URL,
	}
}

func clientFor(cfg *config.Config) *backend.Client {
	return backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:     cfg.Backend.URL,
		Timeout:     time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		DownloadDir: cfg.Downloads.Dir,
	})
}

func (m *rootModel) Init() tea.Cmd {
	return m.chat.Init()
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := m.height - 4 // tab strip + status bar
		if body < 6 {
			body = 6
		}
		m.chat.SetSize(m.width, body)
		m.files.SetSize(m.width, body)
		m.upload.SetSize(m.width, body)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.chat.Teardown()
			m.files.Teardown()
			m.upload.Teardown()
			return m, tea.Quit
		case "tab":
			return m, m.switchTab(m.tab.Next())
		case "shift+tab":
			return m, m.switchTab(m.tab.Prev())
		}
		return m, m.routeToActive(msg)

	case configReloadedMsg:
		next := clientFor(msg.cfg)
		m.client = next
		m.backendURL = msg.cfg.Backend.URL
		m.chat.SetClient(next)
		m.files.SetClient(next)
		m.upload.SetClient(next)
		return m, nil
	}

	// Everything else (async results, ticks, spinner frames) fans out
	// to all views; epoch checks drop whatever is not theirs.
	cmds := []tea.Cmd{
		m.chat.Update(msg),
		m.files.Update(msg),
		m.upload.Update(msg),
	}
	return m, tea.Batch(cmds...)
}

func (m *rootModel) switchTab(next components.Tab) tea.Cmd {
	if next == m.tab {
		return nil
	}
	if m.tab == components.TabFiles {
		m.files.Teardown()
	}
	m.tab = next
	if next == components.TabFiles {
		return m.files.Activate()
	}
	return nil
}

func (m *rootModel) routeToActive(msg tea.Msg) tea.Cmd {
	switch m.tab {
	case components.TabChat:
		return m.chat.Update(msg)
	case components.TabUpload:
		return m.upload.Update(msg)
	case components.TabFiles:
		return m.files.Update(msg)
	}
	return nil
}

func (m *rootModel) View() string {
	var body string
	switch m.tab {
	case components.TabChat:
		body = m.chat.View()
	case components.TabUpload:
		body = m.upload.View()
	case components.TabFiles:
		body = m.files.View()
	}

	inFlight := 0
	for _, st := range m.tracker.States() {
		if st.Status == transfer.StatusInFlight {
			inFlight++
		}
	}

	return components.RenderTabs(m.theme, m.tab) + "\n" +
		body + "\n" +
		components.StatusBar(m.theme, m.width, m.backendURL, inFlight, m.hint())
}

func (m *rootModel) hint() string {
	switch m.tab {
	case components.TabChat:
		return "enter send · ctrl+a attach · ctrl+p persona · ctrl+l clear · tab views"
	case components.TabUpload:
		return "enter upload · ctrl+p persona · tab views"
	case components.TabFiles:
		return "enter download · / filter · r refresh · tab views"
	}
	return ""
}
