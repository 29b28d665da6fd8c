package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/metrics"
	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/projects"
)

// ProjectsCmd manages projects
type ProjectsCmd struct {
	List      ProjectsListCmd      `cmd:"list" help:"List projects" default:"1"`
	Add       ProjectsAddCmd       `cmd:"add" help:"Add a new project"`
	Archive   ProjectsArchiveCmd   `cmd:"archive" help:"Archive a project"`
	Unarchive ProjectsUnarchiveCmd `cmd:"unarchive" help:"Restore an archived project"`
	Rm        ProjectsRmCmd        `cmd:"rm" aliases:"del" help:"Delete a project (its sessions are kept)"`
}

// ProjectsListCmd lists projects
type ProjectsListCmd struct {
	All bool `help:"Include archived projects" short:"a"`
}

// Run executes the list command
func (p *ProjectsListCmd) Run(cli *CLI) error {
	list := cli.Container.Projects.Active()
	if p.All {
		list = cli.Container.Projects.All()
	}

	out := cli.out()
	if len(list) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tSTATUS\tNOTES")
	for _, proj := range list {
		status := "active"
		if proj.IsArchived {
			status = "archived"
		}
		notes, _, _ := strings.Cut(proj.Notes, "\n")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(proj.ID), proj.Name, proj.Color, status, notes)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal: %d projects\n", len(list))
	return nil
}

// ProjectsAddCmd adds a project
type ProjectsAddCmd struct {
	Name  string `arg:"" help:"Project name"`
	Color string `help:"Hex color used in charts" default:"#6C63FF"`
	Notes string `help:"Free-form notes"`
}

// Run executes the add command
func (p *ProjectsAddCmd) Run(cli *CLI) error {
	proj, err := cli.Container.Projects.Add(p.Name, p.Color, p.Notes)
	if err != nil {
		return fmt.Errorf("failed to add project: %w", err)
	}
	fmt.Fprintf(cli.out(), "Added project %q (%s)\n", proj.Name, proj.ID)
	return nil
}

// ProjectsArchiveCmd archives a project
type ProjectsArchiveCmd struct {
	ID string `arg:"" help:"Project ID, unique ID prefix, or name"`
}

// Run executes the archive command
func (p *ProjectsArchiveCmd) Run(cli *CLI) error {
	proj, err := resolveProject(cli.Container.Projects, p.ID)
	if err != nil {
		return err
	}
	if err := cli.Container.Projects.Archive(proj.ID); err != nil {
		return fmt.Errorf("failed to archive project: %w", err)
	}
	fmt.Fprintf(cli.out(), "Archived project %q\n", proj.Name)
	return nil
}

// ProjectsUnarchiveCmd restores an archived project
type ProjectsUnarchiveCmd struct {
	ID string `arg:"" help:"Project ID, unique ID prefix, or name"`
}

// Run executes the unarchive command
func (p *ProjectsUnarchiveCmd) Run(cli *CLI) error {
	proj, err := resolveProject(cli.Container.Projects, p.ID)
	if err != nil {
		return err
	}
	if err := cli.Container.Projects.Unarchive(proj.ID); err != nil {
		return fmt.Errorf("failed to unarchive project: %w", err)
	}
	fmt.Fprintf(cli.out(), "Restored project %q\n", proj.Name)
	return nil
}

// ProjectsRmCmd deletes a project
type ProjectsRmCmd struct {
	ID    string `arg:"" help:"Project ID, unique ID prefix, or name"`
	Force bool   `help:"Delete without confirmation" short:"f"`
}

// Run executes the rm command
func (p *ProjectsRmCmd) Run(cli *CLI) error {
	proj, err := resolveProject(cli.Container.Projects, p.ID)
	if err != nil {
		return err
	}

	if !p.Force && !cli.confirm(fmt.Sprintf("Delete project %q? Its sessions will show as %q.", proj.Name, metrics.UnknownProjectName)) {
		logging.Logger.Info("User cancelled project deletion", "project_id", proj.ID)
		fmt.Fprintln(cli.out(), "Cancelled")
		return nil
	}

	if err := cli.Container.Projects.Delete(proj.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	fmt.Fprintf(cli.out(), "Deleted project %q\n", proj.Name)
	return nil
}

var errAmbiguousProject = errors.New("ambiguous project reference")

// resolveProject finds a project by exact ID, unique ID prefix or case-insensitive name.
func resolveProject(s *projects.Store, ref string) (model.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Project{}, fmt.Errorf("empty project reference: %w", projects.ErrNotFound)
	}
	if p, err := s.Get(ref); err == nil {
		return p, nil
	}

	var matches []model.Project
	for _, p := range s.All() {
		if strings.HasPrefix(p.ID, ref) || strings.EqualFold(p.Name, ref) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return model.Project{}, fmt.Errorf("project %q: %w", ref, projects.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Project{}, fmt.Errorf("project %q matches %d projects: %w", ref, len(matches), errAmbiguousProject)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
