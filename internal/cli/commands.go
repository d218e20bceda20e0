package cli

import (
	"fmt"
	"strings"

	"taskmanager/internal/client"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/dto"

	"github.com/spf13/cobra"
)

func newListCmd(e *env) *cobra.Command {
	var (
		statuses []string
		sort     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		Example: `  taskctl list
  taskctl list --status pending --status in-progress
  taskctl list --sort updatedAt:asc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := e.store()
			if err := s.Fetch(cmd.Context(), client.ListParams{Statuses: statuses, Sort: sort}); err != nil {
				return err
			}
			e.renderer(cmd).Tasks(s.Snapshot().Tasks)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&statuses, "status", nil, "only tasks with this status (repeatable)")
	cmd.Flags().StringVar(&sort, "sort", "", "field:asc|desc, e.g. title:asc (default createdAt:desc)")
	_ = cmd.RegisterFlagCompletionFunc("status", completeStatus)
	return cmd
}

func newGetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := e.store().Refresh(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			e.renderer(cmd).Task(t)
			return nil
		},
	}
}

func newCreateCmd(e *env) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Example: `  taskctl create --title "Write report" --description "Q3 numbers"
  taskctl create --title "Fix bug" --status in-progress`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := dto.CreateTaskRequest{Title: &title}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("status") {
				req.Status = &status
			}
			t, err := e.store().Add(cmd.Context(), req)
			if err != nil {
				return err
			}
			r := e.renderer(cmd)
			r.Success("Created task " + t.ID)
			r.Task(t)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title (required, max 100 characters)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description (max 500 characters)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "pending, in-progress or completed (default pending)")
	_ = cmd.RegisterFlagCompletionFunc("status", completeStatus)
	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title, description or status",
		Example: `  taskctl edit 6650c3f1a2b4c5d6e7f80912 --status completed`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.UpdateTaskRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("status") {
				req.Status = &status
			}
			if req == (dto.UpdateTaskRequest{}) {
				return fmt.Errorf("nothing to change: pass --title, --description or --status")
			}
			t, err := e.store().Edit(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			r := e.renderer(cmd)
			r.Success("Updated task " + t.ID)
			r.Task(t)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "pending, in-progress or completed")
	_ = cmd.RegisterFlagCompletionFunc("status", completeStatus)
	return cmd
}

func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.store().Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			e.renderer(cmd).Success("Deleted task " + args[0])
			return nil
		},
	}
}

// completeStatus offers the accepted status values for --status.
func completeStatus(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, s := range dom.Statuses {
		if strings.HasPrefix(string(s), toComplete) {
			out = append(out, string(s))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
