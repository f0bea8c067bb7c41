package main

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"taxadvisor/internal/tui"
)

func main() {
	_ = godotenv.Load()
	if _, err := tea.NewProgram(tui.New()).Run(); err != nil {
		log.Fatal(err)
	}
}
