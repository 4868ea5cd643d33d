package cli

import (
	"github.com/spf13/cobra"
)

func newScoreCmds() []*cobra.Command {
	return []*cobra.Command{
		newSubmitScoreCmd(),
		newPlayerScoreCmd(),
		newPlayerStatsCmd(),
		newCheckUserCmd(),
	}
}

func newSubmitScoreCmd() *cobra.Command {
	var score int64
	var balance float64

	cmd := &cobra.Command{
		Use:   "submit-score <address>",
		Short: "Submit a game result for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"userAddress":  args[0],
				"score":        score,
				"tokenBalance": balance,
			}
			var result SubmitScoreResult
			if err := client.Post(cmd.Context(), "/submit-score", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&score, "score", 0, "Score achieved (required)")
	cmd.Flags().Float64Var(&balance, "balance", 0, "Current token balance (required)")
	_ = cmd.MarkFlagRequired("score")
	_ = cmd.MarkFlagRequired("balance")

	return cmd
}

func newPlayerScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player-score <address>",
		Short: "Show a player's best score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Standing
			req := map[string]string{"userAddress": args[0]}
			if err := client.Post(cmd.Context(), "/get-player-score", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player-stats <address>",
		Short: "Show a player's score and games played",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerStats
			if err := client.Get(cmd.Context(), "/player-stats/"+pathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newCheckUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-user <address>",
		Short: "Report whether a player has never submitted a score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CheckUserResult
			req := map[string]string{"userAddress": args[0]}
			if err := client.Post(cmd.Context(), "/check-user", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
