package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/parley/internal/core"
	"github.com/valter-silva-au/parley/internal/llm"
	parleymcp "github.com/valter-silva-au/parley/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the parley MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the parley MCP server on stdio",
	Long: `Start the parley MCP server on stdio transport.

The server exposes the negotiation simulator as MCP tools AI assistants can
call: run_negotiation, list_negotiations, get_negotiation, get_metrics.
Sessions run through MCP use the deterministic scripted voice, so no API
credential is needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := parleymcp.NewServer(mcpRun, Store, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

// mcpRun executes one session with the scripted collaborator for MCP clients.
func mcpRun(ctx context.Context, cfg core.Config, eventProbability float64, seed int64) (*core.Result, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	orc := core.NewOrchestrator(
		core.NewCorporateStrategist(rng),
		core.NewNonprofitStrategist(rng),
		llm.NewScripted(),
		core.NewEventRoller(rng, eventProbability),
		OrchestratorLogger,
	)

	return orc.Run(ctx, cfg)
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
