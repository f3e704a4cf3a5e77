package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"taskboard/pkg/client"
	"taskboard/pkg/task"
)

var apiURL string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "board:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "board",
		Short:         "Command-line client for the task board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	def := os.Getenv("TASKBOARD_API")
	if def == "" {
		def = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&apiURL, "api", def, "task board server URL (env TASKBOARD_API)")

	root.AddCommand(
		listCmd(),
		boardCmd(),
		createCmd(),
		updateCmd(),
		completeCmd(),
		deleteCmd(),
		statusCmd(),
		activityCmd(),
		exportCmd(),
	)
	return root
}

func api() *client.Client { return client.New(apiURL) }

func listCmd() *cobra.Command {
	var kind string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (all, active or completed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if kind == "all" {
				kind = client.ListAll
			}
			tasks, err := api().List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(tasks)
			}
			printShortTasks(tasks)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "type", "all", "all|active|completed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func boardCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the To-Do / In Progress / Completed columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := api().Board(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(renderBoard(b, width))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 32, "column width")
	return cmd
}

func createCmd() *cobra.Command {
	var nt task.NewTask
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := api().Create(cmd.Context(), nt); err != nil {
				return err
			}
			fmt.Println("Task created successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&nt.Title, "title", "", "task title")
	cmd.Flags().StringVar(&nt.Description, "description", "", "task description")
	cmd.Flags().StringVar(&nt.Persona, "persona", "", "who does the work")
	cmd.Flags().IntVar(&nt.Group, "group", 1, "sequencing group; lower groups unlock first")
	return cmd
}

func updateCmd() *cobra.Command {
	var (
		title, description, persona string
		group                       int
		completed                   bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			var p task.Patch
			f := cmd.Flags()
			if f.Changed("title") {
				p.Title = &title
			}
			if f.Changed("description") {
				p.Description = &description
			}
			if f.Changed("persona") {
				p.Persona = &persona
			}
			if f.Changed("group") {
				p.Group = &group
			}
			if f.Changed("completed") {
				p.Completed = &completed
			}
			if p.IsEmpty() {
				return fmt.Errorf("nothing to update")
			}
			if err := api().Update(cmd.Context(), id, p); err != nil {
				return err
			}
			fmt.Println("Task updated successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&persona, "persona", "", "new persona")
	cmd.Flags().IntVar(&group, "group", 0, "new group")
	cmd.Flags().BoolVar(&completed, "completed", false, "set the completed flag directly")
	return cmd
}

func completeCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "complete [id]",
		Short: "Complete a task by id, or by exact title with --title",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := api()
			switch {
			case len(args) == 1:
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid task id %q", args[0])
				}
				if err := c.Complete(cmd.Context(), id); err != nil {
					return err
				}
			case title != "":
				if err := c.CompleteByTitle(cmd.Context(), title); err != nil {
					return err
				}
			default:
				return fmt.Errorf("task id or --title is required")
			}
			fmt.Println("Task completed successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "complete the first task with this exact title")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			if err := api().Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Println("Task deleted successfully")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show board summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := api().Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(renderStatus(st))
			return nil
		},
	}
}

func activityCmd() *cobra.Command {
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := api().Activity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(events)
			}
			printShortEvents(events)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of events")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as json, csv or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := api().Export(cmd.Context(), format)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json|csv|pdf")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
