package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/prolearn/prolearn/frontend/internal/apiclient"
	"github.com/prolearn/prolearn/frontend/internal/compose"
	"github.com/prolearn/prolearn/frontend/internal/setup"
	"github.com/prolearn/prolearn/shared/domain"
)

// draftFlags are the post fields shared by create and edit.
type draftFlags struct {
	title       string
	description string
	category    string
	files       []string
}

func (d *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.title, "title", "", "post title")
	cmd.Flags().StringVar(&d.description, "description", "", "post description (markdown)")
	cmd.Flags().StringVar(&d.category, "category", "", "post category, e.g. CODING")
	cmd.Flags().StringArrayVar(&d.files, "file", nil, "attach an image or video (repeatable)")
}

// actions returns the draft updates for the flags given on the command line.
func (d *draftFlags) actions(cmd *cobra.Command) []compose.Action {
	var actions []compose.Action
	if cmd.Flags().Changed("title") {
		actions = append(actions, compose.SetTitle{Title: d.title})
	}
	if cmd.Flags().Changed("description") {
		actions = append(actions, compose.SetDescription{Description: d.description})
	}
	if cmd.Flags().Changed("category") {
		actions = append(actions, compose.SetCategory{Category: domain.Category(d.category)})
	}
	return actions
}

func readFiles(paths []string) ([]compose.File, error) {
	files := make([]compose.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, compose.File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// runEditor drives one editor through the same reducer the web editor uses and submits it.
func runEditor(ctx context.Context, e *compose.Editor, actions []compose.Action, paths []string) (*domain.Post, error) {
	for _, a := range actions {
		if err := e.Dispatch(a); err != nil {
			return nil, err
		}
	}

	if len(paths) > 0 {
		files, err := readFiles(paths)
		if err != nil {
			return nil, err
		}
		if err := e.Dispatch(compose.AddFiles{Files: files}); err != nil {
			return nil, err
		}
		if err := e.AwaitProbes(ctx); err != nil {
			return nil, err
		}
		if notice := e.View().Notice; notice != "" {
			return nil, errors.New(notice)
		}
	}

	return e.Submit(ctx)
}

func (c *cli) withEditor(client *apiclient.APIClient, open func(compose.Config) *compose.Editor, fn func(*compose.Editor) error) error {
	previews := compose.NewPreviewStore()
	defer previews.Close()

	e := open(setup.EditorConfig(c.cfg, client, previews))
	defer e.Close()
	return fn(e)
}

func (c *cli) printPost(client *apiclient.APIClient, verb string, post *domain.Post) error {
	if post == nil {
		// accepted upstream, reply unreadable; resubmitting would duplicate it
		return writePlain("%s post, but the backend reply could not be read\n", verb)
	}
	if c.jsonOutput {
		return writeJSON(post)
	}
	if err := writePlain("%s post %d\n\n", verb, post.Id); err != nil {
		return err
	}
	return writePostDetail(post, client.MediaURL)
}

func newPostsCreateCmd(c *cli) *cobra.Command {
	var d draftFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(func(client *apiclient.APIClient) error {
				return c.withEditor(client, compose.NewCreateEditor, func(e *compose.Editor) error {
					post, err := runEditor(cmd.Context(), e, d.actions(cmd), d.files)
					if err != nil {
						return err
					}
					return c.printPost(client, "created", post)
				})
			})
		},
	}

	d.register(cmd)
	return cmd
}

func newPostsEditCmd(c *cli) *cobra.Command {
	var (
		d    draftFlags
		drop []int64
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a post; unspecified fields and media are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withClient(func(client *apiclient.APIClient) error {
				existing, err := client.GetPost(cmd.Context(), id)
				if err != nil {
					return err
				}
				open := func(cfg compose.Config) *compose.Editor { return compose.NewEditEditor(cfg, existing) }

				return c.withEditor(client, open, func(e *compose.Editor) error {
					actions := d.actions(cmd)
					for _, mediaID := range drop {
						actions = append(actions, compose.ToggleRetain{ID: mediaID})
					}
					post, err := runEditor(cmd.Context(), e, actions, d.files)
					if err != nil {
						return fmt.Errorf("edit post %d: %w", id, err)
					}
					return c.printPost(client, "updated", post)
				})
			})
		},
	}

	d.register(cmd)
	cmd.Flags().Int64SliceVar(&drop, "drop-media", nil, "ids of existing media to remove")
	return cmd
}
