package cli

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/bragboard/internal/models"
)

func listCmd(a *app) *cobra.Command {
	var postID string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the comment thread of a post",
		Example: heredoc.Doc(`
			$ commentctl list --post 42
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd, postID)
			if err != nil {
				return err
			}

			s.show()

			return nil
		},
	}

	postFlag(cmd, &postID)

	return cmd
}

func postCmd(a *app) *cobra.Command {
	var postID string

	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Add a top-level comment",
		Example: heredoc.Doc(`
			$ commentctl post --post 42 "Well deserved!"
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd, postID)
			if err != nil {
				return err
			}

			if _, err := s.manager.Post(s.ctx, strings.Join(args, " "), ""); err != nil {
				return err
			}

			s.show()

			return nil
		},
	}

	postFlag(cmd, &postID)

	return cmd
}

func replyCmd(a *app) *cobra.Command {
	var postID, parentID string

	cmd := &cobra.Command{
		Use:   "reply <content>",
		Short: "Reply to a comment",
		Long: heredoc.Doc(`
			Reply to a comment. Threads are two levels deep: a reply to a reply
			is attached to the top-level comment.
		`),
		Example: heredoc.Doc(`
			$ commentctl reply --post 42 --to 65f1c0 "+1"
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd, postID)
			if err != nil {
				return err
			}

			if _, err := s.manager.Post(s.ctx, strings.Join(args, " "), parentID); err != nil {
				return err
			}

			s.show()

			return nil
		},
	}

	postFlag(cmd, &postID)
	cmd.Flags().StringVarP(&parentID, "to", "t", "", "ID of the comment to reply to")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func editCmd(a *app) *cobra.Command {
	var postID string

	cmd := &cobra.Command{
		Use:   "edit <id> <content>",
		Short: "Change the text of a comment",
		Example: heredoc.Doc(`
			$ commentctl edit --post 42 65f1c0 "Well deserved, team!"
		`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd, postID)
			if err != nil {
				return err
			}

			if _, err := s.manager.Edit(s.ctx, args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}

			s.show()

			return nil
		},
	}

	postFlag(cmd, &postID)

	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	var postID string

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a comment together with its replies",
		Example: heredoc.Doc(`
			$ commentctl delete --post 42 65f1c0
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd, postID)
			if err != nil {
				return err
			}

			if err := s.manager.Delete(s.ctx, args[0]); err != nil {
				return err
			}

			s.show()

			return nil
		},
	}

	postFlag(cmd, &postID)

	return cmd
}

func reactCmd(a *app) *cobra.Command {
	var postID string

	cmd := &cobra.Command{
		Use:   "react <id> like|dislike",
		Short: "Toggle your reaction on a comment",
		Long: heredoc.Doc(`
			Toggle a reaction. Sending the reaction you already have removes it,
			sending the other one replaces it.
		`),
		Example: heredoc.Doc(`
			$ commentctl react --post 42 65f1c0 like
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := models.ReactionKind(strings.ToLower(args[1]))
			if !kind.Valid() {
				return fmt.Errorf("unknown reaction %q: want like or dislike", args[1])
			}

			s, err := a.open(cmd, postID)
			if err != nil {
				return err
			}

			if _, err := s.manager.React(s.ctx, args[0], kind); err != nil {
				return err
			}

			s.show()

			return nil
		},
	}

	postFlag(cmd, &postID)

	return cmd
}
