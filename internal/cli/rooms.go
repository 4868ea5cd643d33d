package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRoomCmds() []*cobra.Command {
	return []*cobra.Command{
		newAssignRoomCmd(),
		newRoomIDCmd(),
		newRoomsCmd(),
	}
}

func newAssignRoomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign-room <address>",
		Short: "Assign a player to a room (returns the existing room if already assigned)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomIDResult
			req := map[string]string{"userAddress": args[0]}
			if err := client.Post(cmd.Context(), "/assign-room", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "room-id <address>",
		Short: "Show the room a player was assigned to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomIDResult
			req := map[string]string{"userAddress": args[0]}
			if err := client.Post(cmd.Context(), "/get-room-id", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms [room-id]",
		Short: "List rooms, or show one room",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			if len(args) == 1 {
				id, err := parseRoomID(args[0])
				if err != nil {
					return err
				}
				var room Room
				if err := client.Get(cmd.Context(), fmt.Sprintf("/rooms/%d", id), &room); err != nil {
					return err
				}
				out.Print(room)
				return nil
			}

			var rooms RoomList
			if err := client.Get(cmd.Context(), "/rooms", &rooms); err != nil {
				return err
			}
			out.Print(rooms)
			return nil
		},
	}
}

// parseRoomID validates a room id argument before it reaches the server
func parseRoomID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid room id %q: must be a positive integer", s)
	}
	return id, nil
}
