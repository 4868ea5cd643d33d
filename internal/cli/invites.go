package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/roomrank/internal/model"
	"github.com/mcoot/roomrank/internal/services/invitation"
)

func newInviteCmds() []*cobra.Command {
	return []*cobra.Command{
		newInviteCodeCmd(),
		newInviteCmd(),
		newApplyBonusCmd(),
		newInvitesCountCmd(),
	}
}

func newInviteCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite-code <inviter> <invitee>",
		Short: "Print the invite code an inviter hands to an invitee",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := invitation.EncodeCode(model.Address(args[0]), model.Address(args[1]))
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(InviteCode{Code: code})
			return nil
		},
	}
}

func newInviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite <code>",
		Short: "Record the invitation carried by an invite code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MessageResult
			req := map[string]string{"code": args[0]}
			if err := client.Post(cmd.Context(), "/submit-invite", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newApplyBonusCmd() *cobra.Command {
	var score int64

	cmd := &cobra.Command{
		Use:   "apply-bonus <invitee>",
		Short: "Apply an invitee's referral bonus for the given score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"inviteeAddress": args[0],
				"score":          score,
			}
			var result ApplyBonusResult
			if err := client.Post(cmd.Context(), "/apply-bonus", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&score, "score", 0, "Score the bonus is computed from (required)")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newInvitesCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invites-count <address>",
		Short: "Show how many invitations a player has sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result InviteCountResult
			if err := client.Get(cmd.Context(), "/invites-count/"+pathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
