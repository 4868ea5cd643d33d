package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRankingCmds() []*cobra.Command {
	return []*cobra.Command{
		newLeaderboardCmd(),
		newHallOfFameCmd(),
	}
}

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard <room-id>",
		Short: "Show a room's leaderboard with position bonuses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}

			var result Ranking
			if err := client.Get(cmd.Context(), fmt.Sprintf("/leaderboard/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newHallOfFameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hall-of-fame [room-id]",
		Short: "Show the hall of fame, optionally for one room",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/hall-of-fame"
			if len(args) == 1 {
				id, err := parseRoomID(args[0])
				if err != nil {
					return err
				}
				path = fmt.Sprintf("/hall-of-fame/%d", id)
			}

			var result Ranking
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
