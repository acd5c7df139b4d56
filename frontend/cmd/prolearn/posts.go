package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prolearn/prolearn/frontend/internal/apiclient"
	"github.com/prolearn/prolearn/shared/api"
	"github.com/prolearn/prolearn/shared/domain"
)

func newPostsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse and manage posts",
	}
	cmd.AddCommand(
		newPostsListCmd(c),
		newPostsShowCmd(c),
		newPostsCreateCmd(c),
		newPostsEditCmd(c),
		newPostActionCmd(c, "delete", "Delete a post", (*apiclient.APIClient).DeletePost, "deleted"),
		newPostActionCmd(c, "like", "Like a post", (*apiclient.APIClient).LikePost, "liked"),
		newPostActionCmd(c, "unlike", "Remove a like", (*apiclient.APIClient).UnlikePost, "unliked"),
	)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}

func newPostsListCmd(c *cli) *cobra.Command {
	var (
		page     int
		size     int
		category string
		user     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 {
				size = c.cfg.Public.PageSize
			}
			if category != "" && user != "" {
				return errors.New("--category and --user cannot be combined")
			}
			return c.withClient(func(client *apiclient.APIClient) error {
				var (
					resp *api.PostPage
					err  error
				)
				if category != "" {
					parsed, perr := domain.ParseCategory(category)
					if perr != nil {
						return perr
					}
					resp, err = client.ListPostsByCategory(cmd.Context(), parsed, page, size)
				} else if user != "" {
					resp, err = client.ListPostsByUser(cmd.Context(), user, page, size)
				} else {
					resp, err = client.ListPosts(cmd.Context(), page, size)
				}
				if err != nil {
					return err
				}
				if c.jsonOutput {
					return writeJSON(resp)
				}
				return writePostList(resp)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "zero-based page")
	cmd.Flags().IntVar(&size, "size", 0, "page size (default from config)")
	cmd.Flags().StringVar(&category, "category", "", "only posts in this category, e.g. DATA_SCIENCE")
	cmd.Flags().StringVar(&user, "user", "", "only posts by this username")
	return cmd
}

func newPostsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withClient(func(client *apiclient.APIClient) error {
				post, err := client.GetPost(cmd.Context(), id)
				if err != nil {
					return err
				}
				if c.jsonOutput {
					return writeJSON(post)
				}
				return writePostDetail(post, client.MediaURL)
			})
		},
	}
}

type postAction func(client *apiclient.APIClient, ctx context.Context, id int64) error

func newPostActionCmd(c *cli, use, short string, action postAction, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withClient(func(client *apiclient.APIClient) error {
				if err := action(client, cmd.Context(), id); err != nil {
					return err
				}
				if c.jsonOutput {
					return writeJSON(map[string]any{"id": id, "status": done})
				}
				return writePlain("post %d %s\n", id, done)
			})
		},
	}
}
