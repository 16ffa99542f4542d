package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/parley/internal/core"
	"github.com/valter-silva-au/parley/pkg/models"
)

var (
	sessionsOutcome string
	sessionsLimit   int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded negotiations",
	Long: `List negotiations recorded with 'parley run --save', newest first.

Use --outcome to filter by terminal outcome and 'parley sessions show <id>'
to replay a stored transcript.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("negotiation store not initialized")
		}

		recs, err := Store.GetRecent(0)
		if err != nil {
			return fmt.Errorf("listing negotiations: %w", err)
		}

		shown := 0
		for _, rec := range recs {
			if sessionsOutcome != "" && rec.Outcome != models.Outcome(sessionsOutcome) {
				continue
			}
			if shown == 0 {
				fmt.Printf("%-10s %-18s %7s %14s %14s  %s\n",
					"ID", "OUTCOME", "ROUNDS", "FINAL OFFER", "FINAL ASK", "ENDED")
			}
			fmt.Printf("%-10s %-18s %7d %14.2f %14.2f  %s\n",
				rec.ID, rec.Outcome, rec.Rounds, rec.FinalOffered, rec.FinalAsk,
				rec.EndedAt.Format(time.RFC3339))
			shown++
			if sessionsLimit > 0 && shown >= sessionsLimit {
				break
			}
		}

		if shown == 0 {
			fmt.Println("No recorded negotiations found. Run 'parley run --save' to record one.")
		}

		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Replay a recorded negotiation transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("negotiation store not initialized")
		}
		id := args[0]

		rec, err := Store.Get(id)
		if err != nil {
			return err
		}

		turns, err := Store.GetTurns(id)
		if err != nil {
			return fmt.Errorf("loading transcript: %w", err)
		}

		events, err := Store.GetEvents(id)
		if err != nil {
			return fmt.Errorf("loading events: %w", err)
		}

		fmt.Printf("Negotiation %s (%s, %d rounds)\n\n", rec.ID, rec.Outcome, rec.Rounds)
		fmt.Print(core.RenderTranscript(turns))
		if len(events) > 0 {
			fmt.Println("\nEvents:")
			for _, ev := range events {
				fmt.Printf("  round %d: %s: %s\n", ev.Round, ev.Kind, ev.Description)
			}
		}

		return nil
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsOutcome, "outcome", "", "Filter by outcome (agreed, walked_away, round_limit, event_terminated)")
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 0, "Maximum number of records to show (0 = all)")
	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}
