package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/parley/internal/core"
	"github.com/valter-silva-au/parley/internal/observability"
	"github.com/valter-silva-au/parley/pkg/models"
)

var (
	runInitial   float64
	runRequested float64
	runMaxRounds int
	runEventProb float64
	runSeed      int64
	runModel     string
	runOffline   bool
	runSave      bool
	runTUI       bool
	runJSON      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one negotiation session",
	Long: `Run one negotiation session between the corporate and nonprofit personas.

Turns alternate strictly, each following the speaker's scripted tactic
playbook. By default the LLM collaborator voices every line in persona,
which requires OPENROUTER_API_KEY; use --offline for the deterministic
scripted voice. Random events fire between turns per --event-prob.

Use --save to record the transcript under negotiations/, --tui for a live
terminal view, and --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if NewCollaborator == nil {
			return fmt.Errorf("collaborator factory not initialized")
		}

		cfg, eventProb, seed := sessionSettings()

		offline := effectiveOffline()
		collab, err := NewCollaborator(runModel, offline)
		if err != nil {
			return err
		}

		rng := rand.New(rand.NewSource(seed))
		orc := core.NewOrchestrator(
			core.NewCorporateStrategist(rng),
			core.NewNonprofitStrategist(rng),
			collab,
			core.NewEventRoller(rng, eventProb),
			OrchestratorLogger,
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var res *core.Result
		if runTUI {
			res, err = runSessionTUI(ctx, orc, cfg)
		} else {
			if !runJSON {
				orc.OnTurn = printTurn
				orc.OnEvent = printEvent
			}
			res, err = orc.Run(ctx, cfg)
		}
		if err != nil {
			return err
		}

		return finishRun(res, offline)
	},
}

// effectiveOffline reports whether the session uses the scripted voice,
// whether by flag or by config.
func effectiveOffline() bool {
	return runOffline || (GlobalCfg != nil && GlobalCfg.OfflineMode)
}

// sessionSettings merges global config defaults with the run flags.
func sessionSettings() (core.Config, float64, int64) {
	cfg := core.Config{
		InitialFunding:   runInitial,
		RequestedFunding: runRequested,
		MaxRounds:        runMaxRounds,
	}
	eventProb := runEventProb

	if GlobalCfg != nil {
		if cfg.InitialFunding == 0 {
			cfg.InitialFunding = GlobalCfg.InitialFunding
		}
		if cfg.RequestedFunding == 0 {
			cfg.RequestedFunding = GlobalCfg.RequestedFunding
		}
		if cfg.MaxRounds == 0 {
			cfg.MaxRounds = GlobalCfg.MaxRounds
		}
		if eventProb < 0 {
			eventProb = GlobalCfg.EventProbability
		}
	}

	seed := runSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return cfg, eventProb, seed
}

func printTurn(t models.Turn) {
	label := "Corporate"
	if t.Speaker == models.SpeakerNonprofit {
		label = "Nonprofit"
	}
	fmt.Printf("\n[round %d] %s (%s)\n  %s\n", t.Round, label, t.Tactic, t.Message)
}

func printEvent(ev models.AppliedEvent) {
	fmt.Printf("\n  !! %s: %s\n", ev.Kind, ev.Description)
}

// finishRun renders output, persists the transcript when requested, and
// sends the outcome notification.
func finishRun(res *core.Result, offline bool) error {
	var savedID string
	if runSave {
		id, err := saveResult(res, offline)
		if err != nil {
			return fmt.Errorf("saving negotiation: %w", err)
		}
		savedID = id
	}

	if runJSON {
		payload := struct {
			ID      string        `json:"id,omitempty"`
			Outcome string        `json:"outcome"`
			Rounds  int           `json:"rounds"`
			Offered float64       `json:"final_offered"`
			Ask     float64       `json:"final_ask"`
			Turns   []models.Turn `json:"turns"`
		}{savedID, string(res.Outcome), res.RoundsCompleted, res.FinalOffered, res.FinalAsk, res.Turns}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("formatting result as JSON: %w", err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Println()
		fmt.Print(core.RenderReport(res))
		if savedID != "" {
			fmt.Printf("\nSaved as %s\n", savedID)
		}
	}

	if Notifier != nil {
		summary := observability.OutcomeSummary{
			ID:           savedID,
			Outcome:      res.Outcome,
			Rounds:       res.RoundsCompleted,
			FinalOffered: res.FinalOffered,
			FinalAsk:     res.FinalAsk,
			Events:       len(res.Events),
		}
		if err := Notifier.Notify(summary); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: outcome notification failed: %v\n", err)
		}
	}

	return nil
}

// saveResult records the transcript in the negotiation store.
func saveResult(res *core.Result, offline bool) (string, error) {
	if Store == nil {
		return "", fmt.Errorf("negotiation store not initialized")
	}

	id, err := Store.GenerateID()
	if err != nil {
		return "", err
	}

	model := runModel
	if model == "" && GlobalCfg != nil {
		model = GlobalCfg.DefaultModel
	}

	rec := models.RecordedNegotiation{
		ID:               id,
		StartedAt:        res.StartedAt,
		EndedAt:          res.EndedAt,
		Rounds:           res.RoundsCompleted,
		Outcome:          res.Outcome,
		InitialFunding:   res.InitialFunding,
		FinalOffered:     res.FinalOffered,
		FundingRequested: res.FundingRequested,
		FinalAsk:         res.FinalAsk,
		Model:            model,
		Offline:          offline,
		EventCount:       len(res.Events),
	}

	if _, err := Store.Add(rec, res.Turns, res.Events, core.RenderReport(res)); err != nil {
		return "", err
	}
	if err := Store.Save(); err != nil {
		return "", err
	}

	return id, nil
}

func init() {
	runCmd.Flags().Float64Var(&runInitial, "initial", 0, "Opening corporate offer in dollars (default from config)")
	runCmd.Flags().Float64Var(&runRequested, "requested", 0, "Nonprofit's opening ask in dollars (default from config)")
	runCmd.Flags().IntVar(&runMaxRounds, "max-rounds", 0, "Maximum number of turns (default from config)")
	runCmd.Flags().Float64Var(&runEventProb, "event-prob", -1, "Per-boundary random event probability, 0 to 1 (default from config)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Random seed for reproducible sessions (0 = time-based)")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model for the LLM collaborator (default from config)")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "Use the deterministic scripted voice instead of the LLM")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Record the transcript under negotiations/")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Show the session in a live terminal view")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output the result as JSON")
	rootCmd.AddCommand(runCmd)
}
