package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/credential"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the signed-in session",
	Long: `Manage the signed-in session for the admin API.

The auth command provides subcommands for registering, logging in,
logging out, and checking the current session.

Credentials are stored in ~/.opsdeck/auth.json.

Subcommands:
  register  Register a new account
  login     Sign in with email and password
  logout    Sign out and remove the stored token
  status    Show the current session

Examples:
  opsdeck auth login --email user@example.com
  opsdeck auth status
  opsdeck auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// authLoginCmd signs in and persists the session token
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the admin API",
	Long: `Sign in to the admin API with your email and password.

Missing credentials are prompted for interactively; the password
prompt never echoes. After signing in the session token is saved
locally and reused by every other command.

Examples:
  opsdeck auth login
  opsdeck auth login --email user@example.com --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" && password == "" {
			in, err := tui.RunLoginForm()
			if err != nil {
				return err
			}
			email, password = in.Email, in.Password
		}
		if email == "" {
			return errors.New(errors.ErrCodeValidationRequired, "email is required")
		}
		if password == "" {
			return errors.New(errors.ErrCodeValidationRequired, "password is required")
		}

		user, err := app.store.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		app.notifier.Success(fmt.Sprintf("Signed in as %s (%s)", user.Name, user.Role))
		return nil
	},
}

// authLogoutCmd ends the session and removes the stored token
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored token",
	Long: `Sign out and remove the stored session token.

Examples:
  opsdeck auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		token, err := app.creds.Get()
		if err != nil {
			return err
		}
		if token == "" {
			fmt.Println("Not signed in.")
			return nil
		}

		app.store.Logout()
		if err := app.creds.Remove(); err != nil {
			return err
		}

		fmt.Println("Signed out.")
		return nil
	},
}

// authStatusCmd reports on the stored session without calling the API
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Show the current session.

Reads the stored token and reports who it belongs to and whether it
has expired, without contacting the API. Use --verify to check the
token against the API as well.

Examples:
  opsdeck auth status
  opsdeck auth status --verify`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		token, err := app.creds.Get()
		if err != nil {
			return err
		}
		if token == "" {
			fmt.Println("Not signed in.")
			return nil
		}

		info, err := credential.Inspect(token)
		if err != nil {
			fmt.Println("Stored token is not a valid JWT.")
			return nil
		}

		if info.Subject != "" {
			fmt.Printf("Token subject: %s\n", info.Subject)
		}
		if !info.ExpiresAt.IsZero() {
			fmt.Printf("Expires: %s\n", info.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		}
		if info.Expired() {
			fmt.Println("Status: expired")
			return nil
		}
		fmt.Println("Status: valid")

		if verify, _ := cmd.Flags().GetBool("verify"); verify {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			sess := app.store.Snapshot()
			fmt.Printf("Verified: %s (%s)\n", sess.User.Name, sess.User.Role)
		}

		return nil
	},
}

// authRegisterCmd creates a new account
var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Long: `Register a new account on the admin API.

Examples:
  opsdeck auth register --name "Ada" --email ada@example.com --password secret --role Employee`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		roleName, _ := cmd.Flags().GetString("role")
		managerID, _ := cmd.Flags().GetString("manager-id")

		if name == "" || email == "" || password == "" {
			return errors.New(errors.ErrCodeValidationRequired, "--name, --email and --password are required")
		}

		role := model.Role(roleName)
		if !role.Valid() {
			return errors.New(errors.ErrCodeValidationFormat,
				fmt.Sprintf("invalid role %q (want Admin, Manager or Employee)", roleName))
		}

		err = app.client.Register(cmd.Context(), api.RegisterInput{
			Name:      name,
			Email:     email,
			Password:  password,
			Role:      role,
			ManagerID: managerID,
		})
		if err != nil {
			return err
		}

		app.notifier.Success(fmt.Sprintf("Registered %s. Run 'opsdeck auth login' to sign in.", email))
		return nil
	},
}

func errNotSignedIn() error {
	return errors.New(errors.ErrCodeAuthRequired, "not signed in").
		WithSuggestion("Run 'opsdeck auth login' first")
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRegisterCmd)

	authLoginCmd.Flags().String("email", "", "Email address")
	authLoginCmd.Flags().String("password", "", "Password")

	authStatusCmd.Flags().Bool("verify", false, "Verify the token against the API")

	authRegisterCmd.Flags().String("name", "", "Full name (required)")
	authRegisterCmd.Flags().String("email", "", "Email address (required)")
	authRegisterCmd.Flags().String("password", "", "Password (required)")
	authRegisterCmd.Flags().String("role", "Employee", "Role: Admin, Manager or Employee")
	authRegisterCmd.Flags().String("manager-id", "", "Manager ID for Employee accounts")

	rootCmd.AddCommand(authCmd)
}
