package projects

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

var (
	ErrNotFound  = errors.New("project not found")
	ErrEmptyName = errors.New("project name is required")
)

// DefaultColor is used when a project is added without a color.
const DefaultColor = "#6C63FF"

// Gateway is the persistence the project store needs.
type Gateway interface {
	LoadProjects() []model.Project
	SaveProjects([]model.Project) error
}

// Store keeps the project list in memory and writes the whole list on every change.
type Store struct {
	mu       sync.RWMutex
	gateway  Gateway
	projects []model.Project
}

func New(gateway Gateway) *Store {
	return &Store{gateway: gateway}
}

// Load reads the stored projects, replacing the in-memory list.
func (s *Store) Load() []model.Project {
	loaded := s.gateway.LoadProjects()
	s.mu.Lock()
	s.projects = loaded
	s.mu.Unlock()
	return clone(loaded)
}

// All returns every project, archived included, in stored order.
func (s *Store) All() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.projects)
}

// Active returns the projects that are not archived.
func (s *Store) Active() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []model.Project
	for _, p := range s.projects {
		if !p.IsArchived {
			active = append(active, p)
		}
	}
	return active
}

func (s *Store) Get(id string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.projects[i], nil
	}
	return model.Project{}, fmt.Errorf("get project %q: %w", id, ErrNotFound)
}

// Add creates a project with a fresh id and persists it.
func (s *Store) Add(name, color, notes string) (model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, ErrEmptyName
	}
	if color == "" {
		color = DefaultColor
	}
	p := model.Project{
		ID:    uuid.NewString(),
		Name:  name,
		Color: color,
		Notes: notes,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(clone(s.projects), p)
	if err := s.commitLocked(next); err != nil {
		return model.Project{}, err
	}
	logging.Logger.Info("project added", "project_id", p.ID, "name", p.Name)
	return p, nil
}

// Update replaces the name, color and notes of an existing project.
func (s *Store) Update(p model.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return s.mutate(p.ID, func(dst *model.Project) {
		dst.Name = strings.TrimSpace(p.Name)
		dst.Color = p.Color
		dst.Notes = p.Notes
	})
}

func (s *Store) Archive(id string) error {
	return s.mutate(id, func(p *model.Project) { p.IsArchived = true })
}

func (s *Store) Unarchive(id string) error {
	return s.mutate(id, func(p *model.Project) { p.IsArchived = false })
}

// Delete removes the project. Sessions recorded against it are kept and
// show up as an unknown project in reports.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("delete project %q: %w", id, ErrNotFound)
	}
	next := append(clone(s.projects[:i]), s.projects[i+1:]...)
	if err := s.commitLocked(next); err != nil {
		return err
	}
	logging.Logger.Info("project deleted", "project_id", id)
	return nil
}

func (s *Store) mutate(id string, fn func(*model.Project)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("update project %q: %w", id, ErrNotFound)
	}
	next := clone(s.projects)
	fn(&next[i])
	return s.commitLocked(next)
}

// commitLocked persists next and only then swaps it in.
func (s *Store) commitLocked(next []model.Project) error {
	if err := s.gateway.SaveProjects(next); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	s.projects = next
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clone(in []model.Project) []model.Project {
	out := make([]model.Project, len(in))
	copy(out, in)
	return out
}
