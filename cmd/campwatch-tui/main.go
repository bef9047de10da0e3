// Command campwatch-tui is the operator dashboard: a live crew-list view
// polling a running cmd/campwatch instance's activity snapshot endpoint,
// grounded on deeklead-horde's cobra-rooted bubbletea TUI commands.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-falcon/internal/tui/dashboard"
)

func main() {
	var apiURL string

	root := &cobra.Command{
		Use:   "campwatch-tui",
		Short: "Live crew-list dashboard for a running campwatch instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := dashboard.NewClient(apiURL)
			model := dashboard.New(client)
			program := tea.NewProgram(model, tea.WithAltScreen())
			_, err := program.Run()
			return err
		},
	}

	root.Flags().StringVar(&apiURL, "api-url", "http://localhost:8090", "base URL of the campwatch HTTP API")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
