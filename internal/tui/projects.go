package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timeplease/internal/model"
	"github.com/sadopc/timeplease/internal/projects"
)

var projectColors = []string{projects.DefaultColor, "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

type projectForm int

const (
	formNewProject projectForm = iota
	formEditProject
	formDeleteProject
)

type projectsModel struct {
	store  *projects.Store
	width  int
	height int

	projects     []model.Project
	cursor       int
	showArchived bool

	formActive bool
	form       *huh.Form
	formType   projectForm

	// Form field pointers (survive value copies)
	formName    *string
	formColor   *string
	formNotes   *string
	formConfirm *bool

	editingID string
}

func newProjectsModel(s *projects.Store) projectsModel {
	name, color, notes, confirm := "", projectColors[0], "", false
	return projectsModel{
		store:       s,
		formName:    &name,
		formColor:   &color,
		formNotes:   &notes,
		formConfirm: &confirm,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	projects []model.Project
}

func (p projectsModel) refresh() tea.Cmd {
	showArchived := p.showArchived
	return func() tea.Msg {
		if showArchived {
			return projectsDataMsg{projects: p.store.All()}
		}
		return projectsDataMsg{projects: p.store.Active()}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.projects = msg.projects
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		return p, nil

	case tea.KeyMsg:
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) selected() (model.Project, bool) {
	if p.cursor < 0 || p.cursor >= len(p.projects) {
		return model.Project{}, false
	}
	return p.projects[p.cursor], true
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.New):
		return p.showProjectForm(formNewProject, model.Project{Color: projectColors[0]})
	case key.Matches(msg, keys.Edit):
		if proj, ok := p.selected(); ok {
			return p.showProjectForm(formEditProject, proj)
		}
	case key.Matches(msg, keys.Delete):
		if proj, ok := p.selected(); ok {
			return p, p.toggleArchived(proj)
		}
	case key.Matches(msg, keys.Remove):
		if proj, ok := p.selected(); ok {
			return p.showDeleteForm(proj)
		}
	case key.Matches(msg, keys.Archived):
		p.showArchived = !p.showArchived
		p.cursor = 0
		return p, p.refresh()
	}
	return p, nil
}

func (p projectsModel) toggleArchived(proj model.Project) tea.Cmd {
	var err error
	verb := "Archived"
	if proj.IsArchived {
		err = p.store.Unarchive(proj.ID)
		verb = "Restored"
	} else {
		err = p.store.Archive(proj.ID)
	}
	if err != nil {
		return statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return tea.Batch(p.refresh(), statusCmd(verb+" "+proj.Name, false))
}

func validateProjectName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

func (p projectsModel) showProjectForm(kind projectForm, proj model.Project) (projectsModel, tea.Cmd) {
	*p.formName = proj.Name
	*p.formColor = proj.Color
	if *p.formColor == "" {
		*p.formColor = projectColors[0]
	}
	*p.formNotes = proj.Notes
	p.formType = kind
	p.editingID = proj.ID

	colors := projectColors
	if proj.Color != "" && !containsColor(colors, proj.Color) {
		colors = append([]string{proj.Color}, colors...)
	}
	colorOptions := make([]huh.Option[string], len(colors))
	for i, c := range colors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName).Validate(validateProjectName),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
			huh.NewText().Title("Notes").Lines(3).Value(p.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showDeleteForm(proj model.Project) (projectsModel, tea.Cmd) {
	*p.formConfirm = false
	p.formType = formDeleteProject
	p.editingID = proj.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", proj.Name)).
				Description("Its sessions stay in your history as Unknown Project.").
				Affirmative("Delete").
				Negative("Keep").
				Value(p.formConfirm),
		),
	).WithShowHelp(true)

	p.formActive = true
	return p, p.form.Init()
}

func containsColor(colors []string, c string) bool {
	for _, v := range colors {
		if strings.EqualFold(v, c) {
			return true
		}
	}
	return false
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		return p, p.submitForm()
	}

	return p, cmd
}

func (p projectsModel) submitForm() tea.Cmd {
	name := strings.TrimSpace(*p.formName)
	var err error
	status := ""

	switch p.formType {
	case formNewProject:
		_, err = p.store.Add(name, *p.formColor, *p.formNotes)
		status = "Created " + name
	case formEditProject:
		var proj model.Project
		proj, err = p.store.Get(p.editingID)
		if err == nil {
			proj.Name = name
			proj.Color = *p.formColor
			proj.Notes = *p.formNotes
			err = p.store.Update(proj)
			status = "Updated " + name
		}
	case formDeleteProject:
		if !*p.formConfirm {
			return nil
		}
		err = p.store.Delete(p.editingID)
		status = "Project deleted"
	}

	if err != nil {
		return statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return tea.Batch(p.refresh(), statusCmd(status, false))
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		switch p.formType {
		case formEditProject:
			title = titleStyle.Render("Edit Project")
		case formDeleteProject:
			title = titleStyle.Render("Delete Project")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	return p.renderProjectList()
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")
	if p.showArchived {
		title += mutedStyle.Render("  (including archived)")
	}

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s %s", "", "Name", "Color", "Notes"))
	rows = append(rows, header)

	for i, proj := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		notes := firstLine(proj.Notes)
		row := style.Render(fmt.Sprintf("%s%s %-24s %-10s %s", cursor, projectDot(proj.Color), proj.Name, proj.Color, notes))
		if proj.IsArchived {
			row += mutedStyle.Render("  archived")
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: edit  d: archive/restore  r: remove  a: show archived"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if len(line) > 32 {
		line = line[:31] + "…"
	}
	return line
}
