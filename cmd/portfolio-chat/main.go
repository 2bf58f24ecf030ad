package main

import (
	"flag"

	tea "github.com/charmbracelet/bubbletea"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/logging"
	"portfolio-backend/internal/store"
	"portfolio-backend/internal/tui"
	"portfolio-backend/internal/widget"
)

func main() {
	cfg := config.Load()

	endpoint := flag.String("endpoint", cfg.AssistantURL, "assistant chat endpoint")
	stateFile := flag.String("state", cfg.ChatStateFile, "file the panel visibility is persisted to")
	style := flag.String("style", "", "glamour style (dark, light, notty); empty picks from the terminal")
	flag.Parse()

	// stdout belongs to the terminal UI, so logs only go to the file.
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "portfolio-chat.log"
	}
	logging.SetupFile(cfg.LogLevel, logFile)

	w := widget.New(store.NewFileKV(*stateFile), widget.NewClient(*endpoint, cfg.AssistantToken))
	p := tea.NewProgram(tui.New(w, "Portfolio", *style), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Fatal("chat UI failed", "error", err)
	}
}
