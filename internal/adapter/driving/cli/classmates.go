package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
)

func newClassmatesCmd(app *App) *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "classmates",
		Short: "List classmates, newest enrollment year first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				mates []model.Classmate
				err   error
			)
			err = app.withSpinner("Loading classmates...", func() error {
				mates, err = app.Classmates.List(cmd.Context(), year)
				return err
			})
			if err != nil {
				return err
			}

			if len(mates) == 0 {
				_, _ = mutedColor.Fprintln(app.Out, "No classmates found.")
				return nil
			}

			table := newTable(app.Out, "Name", "Email", "Major", "Year", "Student ID")
			for _, m := range mates {
				var major, enrolled, studentID string
				if m.Education != nil {
					major = m.Education.Major
					enrolled = m.Education.EnrollmentYear
					studentID = m.Education.StudentID
				}
				name := strings.TrimSpace(m.FirstName + " " + m.LastName)
				table.Append([]string{name, m.Email, major, enrolled, studentID})
			}
			table.Render()

			_, _ = mutedColor.Fprintf(app.Out, "%d classmates\n", len(mates))
			return nil
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "enrollment year, e.g. 2565")

	return cmd
}
