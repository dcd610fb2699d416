package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/bto/internal/domain"
)

// ProjectsOptions holds flags for the projects command.
type ProjectsOptions struct {
	*RootOptions
	As string
}

// ProjectView is the listing form of a project.
type ProjectView struct {
	Name         string         `json:"name"`
	Neighborhood string         `json:"neighborhood"`
	OpenDate     string         `json:"open_date"`
	CloseDate    string         `json:"close_date"`
	Visible      bool           `json:"visible"`
	Manager      string         `json:"manager"`
	OfficerSlots string         `json:"officer_slots"`
	Officers     []string       `json:"officers"`
	FlatTypes    []FlatTypeView `json:"flat_types"`
}

// FlatTypeView is one flat type of a listed project.
type FlatTypeView struct {
	Label     string `json:"label"`
	Remaining int    `json:"remaining"`
	Total     int    `json:"total"`
	Price     int64  `json:"price"`
}

func newProjectView(p domain.Project) ProjectView {
	v := ProjectView{
		Name:         p.Name,
		Neighborhood: p.Neighborhood,
		OpenDate:     p.OpenDate.Format(domain.DateLayout),
		CloseDate:    p.CloseDate.Format(domain.DateLayout),
		Visible:      p.Visible,
		Manager:      p.ManagerNRIC,
		OfficerSlots: fmt.Sprintf("%d/%d", p.OfficerSlots, p.MaxOfficerSlots),
		Officers:     append([]string{}, p.Officers...),
		FlatTypes:    []FlatTypeView{},
	}
	for _, label := range p.FlatTypeLabels() {
		ft, _ := p.FlatType(label)
		v.FlatTypes = append(v.FlatTypes, FlatTypeView{
			Label:     ft.Label,
			Remaining: ft.RemainingUnits,
			Total:     ft.TotalUnits,
			Price:     ft.Price,
		})
	}
	return v
}

// NewProjectsCommand creates the projects command.
func NewProjectsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProjectsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Long: `List projects as a user sees them.

Applicants and officers see the visible projects with the flat types they
are eligible for. Managers see the projects they manage. Without --as every
project is listed, hidden ones included.

Examples:
  bto projects --as S9876543C
  bto projects --as T8765432F --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProjects(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "NRIC of the viewing user")

	return cmd
}

func listProjects(opts *ProjectsOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return out.Fail(err)
	}
	defer s.close()

	var projects []domain.Project
	switch {
	case opts.As == "":
		projects = s.engine.Projects()
	default:
		u, err := s.engine.User(opts.As)
		if err != nil {
			return out.Fail(err)
		}
		if u.IsManager() {
			projects = s.engine.ProjectsManagedBy(u.NRIC)
		} else {
			projects = s.engine.QueryAvailableProjects(u)
		}
	}

	views := make([]ProjectView, len(projects))
	for i, p := range projects {
		views[i] = newProjectView(p)
	}
	return out.Render(views, func(w io.Writer) {
		writeProjectTable(w, views)
	})
}

func writeProjectTable(w io.Writer, views []ProjectView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No projects.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tNEIGHBORHOOD\tOPEN\tCLOSE\tVISIBLE\tOFFICERS\tFLATS")
	for _, v := range views {
		flats := make([]string, len(v.FlatTypes))
		for i, ft := range v.FlatTypes {
			flats[i] = fmt.Sprintf("%s %d/%d @%d", ft.Label, ft.Remaining, ft.Total, ft.Price)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			v.Name, v.Neighborhood, v.OpenDate, v.CloseDate, v.Visible, v.OfficerSlots, strings.Join(flats, ", "))
	}
	tw.Flush()
}
