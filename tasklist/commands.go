package main

import (
	"fmt"
	"io"
	"time"

	"github.com/chepyr/go-task-list/internal/models"
	"github.com/spf13/cobra"
)

const timeFormat = "2006-01-02 15:04"

func printTask(w io.Writer, t models.Task) {
	mark := " "
	if t.IsCompleted {
		mark = "x"
	}
	fmt.Fprintf(w, "[%s] %s  %s", mark, t.ID, t.Title)
	if t.IsCompleted {
		fmt.Fprintf(w, "  (done %s)", t.CompletedAt.Local().Format(timeFormat))
	}
	fmt.Fprintln(w)
	if t.Description != "" {
		fmt.Fprintf(w, "      %s\n", t.Description)
	}
}

func listCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			completed, _ := cmd.Flags().GetBool("completed")
			if all && completed {
				return fmt.Errorf("--all and --completed cannot be used together")
			}

			return withApp(cmd.Context(), load, func(a *app) error {
				ctx := cmd.Context()
				var list []models.Task
				switch {
				case all:
					list = a.tasks.List(ctx)
				case completed:
					list = a.tasks.History(ctx)
				default:
					list = a.tasks.Pending(ctx)
				}

				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No tasks.")
				}
				for _, t := range list {
					printTask(out, t)
				}
				if pending, done, err := a.tasks.Count(ctx); err == nil {
					fmt.Fprintf(out, "%d pending, %d completed\n", pending, done)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolP("all", "a", false, "Include completed tasks")
	cmd.Flags().BoolP("completed", "c", false, "Only completed tasks")

	return cmd
}

func addCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			return withApp(cmd.Context(), load, func(a *app) error {
				task, err := a.tasks.Create(cmd.Context(), models.NewTask{Title: args[0], Description: description})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", task.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringP("description", "d", "", "Task description")

	return cmd
}

func editCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.TaskPatch
			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				description, _ := cmd.Flags().GetString("description")
				patch.Description = &description
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change: pass --title or --description")
			}

			return withApp(cmd.Context(), load, func(a *app) error {
				task, err := a.tasks.Update(cmd.Context(), args[0], patch)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), task)
				return nil
			})
		},
	}

	cmd.Flags().StringP("title", "t", "", "New title")
	cmd.Flags().StringP("description", "d", "", "New description")

	return cmd
}

func completeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), load, func(a *app) error {
				return a.tasks.Complete(cmd.Context(), args[0])
			})
		},
	}
}

func deleteCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), load, func(a *app) error {
				return a.tasks.Delete(cmd.Context(), args[0])
			})
		},
	}
}

func historyCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show completed tasks, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), load, func(a *app) error {
				out := cmd.OutOrStdout()
				history := a.tasks.History(cmd.Context())
				if len(history) == 0 {
					fmt.Fprintln(out, "Nothing completed yet.")
					return nil
				}
				var day string
				for _, t := range history {
					if d := t.CompletedAt.Local().Format(time.DateOnly); d != day {
						day = d
						fmt.Fprintf(out, "%s\n", day)
					}
					printTask(out, t)
				}
				return nil
			})
		},
	}
}

func themeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), load, func(a *app) error {
				ctx := cmd.Context()
				theme := a.settings.Theme(ctx)
				switch {
				case len(args) == 0:
				case args[0] == "toggle":
					next, err := a.settings.ToggleTheme(ctx)
					if err != nil {
						return err
					}
					theme = next
				default:
					parsed, err := models.ParseTheme(args[0])
					if err != nil {
						return err
					}
					if err := a.settings.SetTheme(ctx, parsed); err != nil {
						return err
					}
					theme = parsed
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme)
				return nil
			})
		},
	}
}
