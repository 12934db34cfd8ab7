package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/classfeed/internal/application"
	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the classroom service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if strings.TrimSpace(email) == "" {
				if email, err = app.promptLine("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = app.promptPassword(); err != nil {
					return err
				}
			}
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			var cred *model.Credential
			err = app.withSpinner("Signing in...", func() error {
				cred, err = app.Session.SignIn(cmd.Context(), email, password)
				return err
			})
			if err != nil {
				return err
			}

			printSuccess(app.Out, "Signed in as %s", cred.User.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.Session.SignOut(cmd.Context()); err != nil {
				return err
			}
			printSuccess(app.Out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cred, ok := app.Session.Current()
			if !ok {
				return application.ErrNotSignedIn
			}

			u := cred.User
			_, _ = fmt.Fprintf(app.Out, "%s <%s>\n", u.DisplayName(), u.Email)
			if u.Role != "" || u.Type != "" {
				_, _ = mutedColor.Fprintf(app.Out, "%s %s\n", u.Role, u.Type)
			}
			if u.ID != "" {
				_, _ = mutedColor.Fprintf(app.Out, "id: %s\n", u.ID)
			}
			return nil
		},
	}
}
