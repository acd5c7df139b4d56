package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/prolearn/prolearn/frontend/internal/apiclient"
	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/utils"
)

func newCommentsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Add and delete comments",
	}
	cmd.AddCommand(newCommentsAddCmd(c), newCommentsDeleteCmd(c))
	return cmd
}

func newCommentsAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <post-id> <text>...",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0])
			if err != nil {
				return err
			}
			body := api.CommentRequest{Content: strings.Join(args[1:], " ")}
			if err := utils.Validate(body); err != nil {
				return err
			}
			return c.withClient(func(client *apiclient.APIClient) error {
				comment, err := client.AddComment(cmd.Context(), postID, body.Content)
				if err != nil {
					return err
				}
				if c.jsonOutput {
					return writeJSON(comment)
				}
				return writePlain("comment %d added to post %d\n", comment.Id, postID)
			})
		},
	}
}

func newCommentsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id> <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0])
			if err != nil {
				return err
			}
			commentID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return c.withClient(func(client *apiclient.APIClient) error {
				if err := client.DeleteComment(cmd.Context(), postID, commentID); err != nil {
					return err
				}
				if c.jsonOutput {
					return writeJSON(map[string]any{"postId": postID, "commentId": commentID, "status": "deleted"})
				}
				return writePlain("comment %d deleted\n", commentID)
			})
		},
	}
}
