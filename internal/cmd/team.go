package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/guard"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
	"github.com/opsdeck/opsdeck/internal/tui"
)

func errUserNotFound(id string) error {
	return errors.New(errors.ErrCodeAPINotFound, fmt.Sprintf("no user with id %s", id)).
		WithSuggestion("Run 'opsdeck team list' to look up the id")
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage team members",
	Long: `Manage team members.

Admins see every user and may add, update, and remove them. Managers
see their own reports, read-only. Employees cannot use this command.

Subcommands:
  list    List team members
  add     Add a team member (Admin only)
  update  Update a team member (Admin only)
  remove  Remove a team member (Admin only)

Examples:
  opsdeck team list --sort email --order desc
  opsdeck team list --search ada --role Employee
  opsdeck team remove 64af3b2c91`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// teamListCmd lists team members page by page
var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List team members",
	Long: `List team members.

Admins list all users and may filter by role with --role; Managers
list their own reports.

Examples:
  opsdeck team list
  opsdeck team list --page 2 --sort email
  opsdeck team list --role Manager`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireRoute(cmd.Context(), guard.RouteTeam); err != nil {
			return err
		}

		sess := app.store.Snapshot()
		query := queryFromFlags(cmd)

		fetch := app.client.ListTeam
		if sess.User.Role == model.RoleAdmin {
			fetch = app.client.ListUsers
			if role, _ := cmd.Flags().GetString("role"); role != "" && role != "All" {
				query.RoleFilter = role
			}
		}

		page, err := fetch(cmd.Context(), query)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(page.Items))
		for _, u := range page.Items {
			rows = append(rows, []string{u.ID, u.Name, u.Email, string(u.Role)})
		}
		printTable([]string{"ID", "Name", "Email", "Role"}, rows, query.Page, page.TotalPages)
		return nil
	},
}

// teamAddCmd creates a team member through the interactive form
var teamAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a team member (Admin only)",
	Long: `Add a team member.

Opens an interactive form for the member's name, email, password,
role, and optional manager.

Examples:
  opsdeck team add`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireAdmin(cmd.Context()); err != nil {
			return err
		}

		in, err := tui.RunTeamMemberForm(nil, true)
		if err != nil {
			return err
		}

		// New members go through the registration endpoint; /api/users
		// only serves updates and deletes.
		reg := api.RegisterInput{
			Name:      in.Name,
			Email:     in.Email,
			Password:  in.Password,
			Role:      in.Role,
			ManagerID: in.ManagerID,
		}
		if err := app.client.Register(cmd.Context(), reg); err != nil {
			return err
		}

		app.notifier.Success(fmt.Sprintf("Added %s", in.Name))
		return nil
	},
}

// teamUpdateCmd edits an existing member
var teamUpdateCmd = &cobra.Command{
	Use:   "update <user-id>",
	Short: "Update a team member (Admin only)",
	Long: `Update a team member.

Fetches the member's current record and opens the form pre-filled.
Leave the password empty to keep the current one.

Examples:
  opsdeck team update 64af3b2c91`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireAdmin(cmd.Context()); err != nil {
			return err
		}

		user, err := findUser(cmd, app, args[0])
		if err != nil {
			return err
		}

		in, err := tui.RunTeamMemberForm(&user, true)
		if err != nil {
			return err
		}

		if err := app.client.UpdateUser(cmd.Context(), in); err != nil {
			return err
		}

		app.notifier.Success(fmt.Sprintf("Updated %s", in.Name))
		return nil
	},
}

// teamRemoveCmd deletes a member after confirmation
var teamRemoveCmd = &cobra.Command{
	Use:   "remove <user-id>",
	Short: "Remove a team member (Admin only)",
	Long: `Remove a team member.

Asks for confirmation before deleting. Use --yes to skip the prompt.

Examples:
  opsdeck team remove 64af3b2c91
  opsdeck team remove 64af3b2c91 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := app.requireAdmin(cmd.Context()); err != nil {
			return err
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirmed, err := tui.Confirmer{}.Confirm(fmt.Sprintf("Remove team member %s?", args[0]))
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := app.client.DeleteUser(cmd.Context(), args[0]); err != nil {
			return err
		}

		app.notifier.Success("Team member removed")
		return nil
	},
}

// findUser resolves a user ID to its current record by scanning the
// user list. The API has no single-user endpoint.
func findUser(cmd *cobra.Command, app *app, id string) (model.User, error) {
	query := resource.Query{Page: 1, SortKey: "name", SortOrder: resource.SortAsc}

	for {
		page, err := app.client.ListUsers(cmd.Context(), query)
		if err != nil {
			return model.User{}, err
		}
		for _, u := range page.Items {
			if u.ID == id {
				return u, nil
			}
		}
		if query.Page >= page.TotalPages {
			return model.User{}, errUserNotFound(id)
		}
		query.Page++
	}
}

func init() {
	teamCmd.AddCommand(teamListCmd)
	teamCmd.AddCommand(teamAddCmd)
	teamCmd.AddCommand(teamUpdateCmd)
	teamCmd.AddCommand(teamRemoveCmd)

	addListFlags(teamListCmd, "name")
	teamListCmd.Flags().String("role", "", "Filter by role (Admin only): Admin, Manager or Employee")

	teamRemoveCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(teamCmd)
}
