package main

import (
	"fmt"
	"io"

	"galaxy-airline/internal/domain/auth"
	"galaxy-airline/internal/gateway"

	"github.com/spf13/cobra"
)

// Credentials filled in by the quick login button of the mobile app.
const (
	quickLoginEmail    = "user@example.com"
	quickLoginPassword = "password"
)

func newLoginCmd(e *env) *cobra.Command {
	var email, password string
	var quick bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Example: `  galaxy login --email demo@galaxy.com --password demo123
  galaxy login --quick`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quick {
				email, password = quickLoginEmail, quickLoginPassword
			}
			id, err := e.gateway.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), "Welcome back", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&quick, "quick", false, "use the demo quick-login credentials")
	return cmd
}

func newSignupCmd(e *env) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.gateway.Signup(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created successfully!")
			printWelcome(cmd.OutOrStdout(), "Welcome", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newAdminDemoCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "admin-demo",
		Short: "Sign in as the demo administrator",
		Long: `Signs in with the configured demo administrator account. If the account
does not exist yet it is created and you are asked to sign in again. If the
identity service cannot be reached a local administrator session is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := e.gateway.BootstrapPrivileged(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.NeedsReauth {
				fmt.Fprintln(out, res.Message())
				return nil
			}
			if res.Path == gateway.PathLocalFallback {
				fmt.Fprintln(out, "Identity service unavailable, using a local admin session")
			}
			printWelcome(out, "Welcome", res.Identity)
			return nil
		},
	}
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.gateway.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the app would open",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.store.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			dest := gateway.Route(sess)
			if dest == gateway.DestLogin {
				fmt.Fprintln(out, "Not signed in")
			} else {
				fmt.Fprintf(out, "Signed in as %s <%s>\n", sess.Identity.DisplayName, sess.Identity.Email)
			}
			fmt.Fprintf(out, "-> %s\n", dest)
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.store.Current(cmd.Context())
			if err != nil {
				return err
			}
			if !sess.LoggedIn {
				return fmt.Errorf("not signed in")
			}
			id := *sess.Identity
			if remote {
				me, err := e.api.Me(cmd.Context(), sess.AccessToken)
				if err != nil {
					return err
				}
				id = *me
			}
			printIdentity(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the identity service instead of reading the local session")
	return cmd
}

func printWelcome(w io.Writer, greeting string, id auth.Identity) {
	fmt.Fprintf(w, "%s, %s!\n", greeting, id.DisplayName)
	fmt.Fprintf(w, "-> %s\n", gateway.Route(auth.Session{Identity: &id, LoggedIn: true}))
}

func printIdentity(w io.Writer, id auth.Identity) {
	fmt.Fprintf(w, "id:    %s\n", id.ID)
	fmt.Fprintf(w, "email: %s\n", id.Email)
	fmt.Fprintf(w, "name:  %s\n", id.DisplayName)
	fmt.Fprintf(w, "role:  %s\n", id.Role)
}
