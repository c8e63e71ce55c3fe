package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mock-swap/pkg/client"
)

var (
	watchStatus   bool
	watchInterval int
	serverURL     string
)

var statusCmd = &cobra.Command{
	Use:   "status [swap-id]",
	Short: "Check swaps on a running server",
	Long: `Check the status of swaps submitted to a running 'mock-swap serve'.
Without an ID the whole session history is listed.

Examples:
  mock-swap status
  mock-swap status 6f1c0d1e-...
  mock-swap status 6f1c0d1e-... --watch --interval 1
  mock-swap status --server http://127.0.0.1:9000`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 2, "Polling interval in seconds (when watching)")
	statusCmd.Flags().StringVar(&serverURL, "server", client.DefaultBaseURL, "Base URL of the mock-swap server")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	apiClient := client.New(serverURL)

	if len(args) == 0 {
		showHistory(apiClient, jsonOutput)
		return
	}

	if watchStatus {
		watchSwapStatus(apiClient, args[0], jsonOutput)
	} else {
		checkSwapStatus(apiClient, args[0], jsonOutput)
	}
}

func showHistory(apiClient *client.Client, jsonOutput bool) {
	h, err := apiClient.GetHistory(context.Background())
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(h)
		return
	}
	displayHistory(h.Executions, h.Stats)
}

func checkSwapStatus(apiClient *client.Client, id string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	execution, err := apiClient.GetExecution(context.Background(), id)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(execution)
	} else {
		displayExecution(*execution)
	}
}

func watchSwapStatus(apiClient *client.Client, id string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching swap %s\n", color.CyanString("%s", id))
	fmt.Printf("Checking every %d seconds until it settles. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	for {
		execution, err := apiClient.GetExecution(context.Background(), id)
		if err != nil {
			color.Red("Error: %v", err)
		} else {
			displayExecution(*execution)
			if execution.IsTerminal() {
				return
			}
		}
		<-ticker.C
	}
}
