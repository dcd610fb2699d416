package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bto/internal/domain"
)

// UserView is the show form of a user.
type UserView struct {
	domain.User
	Application   *domain.Application          `json:"application,omitempty"`
	Registrations []domain.OfficerRegistration `json:"registrations,omitempty"`
}

// ProjectDetail is the show form of a project.
type ProjectDetail struct {
	ProjectView
	Applications  []domain.Application         `json:"applications"`
	Registrations []domain.OfficerRegistration `json:"registrations"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one user, project or application",
		Long: `Show a single record from the current state.

Examples:
  bto show user S9876543C
  bto show project "Birch Grove"
  bto show application S9876543C --format json`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "user <nric>",
		Short: "Show a user with their application and registrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showUser(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "project <name>",
		Short: "Show a project with its applications and registrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showProject(rootOpts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "application <nric>",
		Short: "Show an applicant's application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showApplication(rootOpts, args[0], cmd)
		},
	})

	return cmd
}

func showUser(opts *RootOptions, nric string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts)
	if err != nil {
		return out.Fail(err)
	}
	defer s.close()

	u, err := s.engine.User(nric)
	if err != nil {
		return out.Fail(err)
	}
	view := UserView{User: u, Registrations: s.engine.Registrations(u.NRIC)}
	if app, err := s.engine.Application(u.NRIC); err == nil {
		view.Application = &app
	}

	return out.Render(view, func(w io.Writer) {
		fmt.Fprintf(w, "%s (%s)\n", u.Name, u.NRIC)
		fmt.Fprintf(w, "  Role:     %s\n", u.Role)
		fmt.Fprintf(w, "  Age:      %d\n", u.Age)
		fmt.Fprintf(w, "  Marital:  %s\n", u.MaritalStatus)
		if u.AssignedProject != "" {
			fmt.Fprintf(w, "  Assigned: %s\n", u.AssignedProject)
		}
		if view.Application != nil {
			fmt.Fprintf(w, "  Application: %s %s (%s)\n",
				view.Application.ProjectName, view.Application.FlatType, view.Application.Status)
		}
		for _, r := range view.Registrations {
			fmt.Fprintf(w, "  Registration: %s (%s)\n", r.ProjectName, r.Status)
		}
	})
}

func showProject(opts *RootOptions, name string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts)
	if err != nil {
		return out.Fail(err)
	}
	defer s.close()

	p, err := s.engine.Project(name)
	if err != nil {
		return out.Fail(err)
	}
	detail := ProjectDetail{
		ProjectView:   newProjectView(p),
		Applications:  s.engine.ApplicationsForProject(p.Name),
		Registrations: s.engine.RegistrationsForProject(p.Name),
	}

	return out.Render(detail, func(w io.Writer) {
		writeProjectTable(w, []ProjectView{detail.ProjectView})
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Applications ===")
		if len(detail.Applications) == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, a := range detail.Applications {
			fmt.Fprintf(w, "  %s  %s  %s\n", a.ApplicantNRIC, a.FlatType, a.Status)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Officer registrations ===")
		if len(detail.Registrations) == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, r := range detail.Registrations {
			fmt.Fprintf(w, "  %s  %s\n", r.OfficerNRIC, r.Status)
		}
	})
}

func showApplication(opts *RootOptions, nric string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	s, err := openSession(cmd.Context(), opts)
	if err != nil {
		return out.Fail(err)
	}
	defer s.close()

	app, err := s.engine.Application(nric)
	if err != nil {
		return out.Fail(err)
	}
	return out.Render(app, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %s %s (%s)\n", app.ApplicantNRIC, app.ProjectName, app.FlatType, app.Status)
		if app.PreviousStatus != "" {
			fmt.Fprintf(w, "  Withdrawal requested from %s\n", app.PreviousStatus)
		}
	})
}
