package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/timeplease/internal/logging"
	"github.com/sadopc/timeplease/internal/model"
)

// LoadProjects returns every stored project in saved order. Read failures yield an empty list.
func (s *Store) LoadProjects() []model.Project {
	rows, err := s.db.Query(`SELECT id, name, color, notes, archived FROM projects ORDER BY position, created_at`)
	if err != nil {
		logging.Logger.Warn("failed to load projects", "error", err)
		return []model.Project{}
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		var archived int
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Notes, &archived); err != nil {
			logging.Logger.Warn("failed to scan project", "error", err)
			return []model.Project{}
		}
		p.IsArchived = archived == 1
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		logging.Logger.Warn("failed to load projects", "error", err)
		return []model.Project{}
	}
	logging.Logger.Debug("loaded projects", "count", len(projects))
	return projects
}

// SaveProjects replaces the stored project set with projects.
func (s *Store) SaveProjects(projects []model.Project) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	ids := make([]any, 0, len(projects))
	for i, p := range projects {
		archived := 0
		if p.IsArchived {
			archived = 1
		}
		_, err := tx.Exec(
			`INSERT INTO projects (id, name, color, notes, archived, position, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, color = excluded.color, notes = excluded.notes,
				archived = excluded.archived, position = excluded.position, updated_at = excluded.updated_at`,
			p.ID, p.Name, p.Color, p.Notes, archived, i, now, now,
		)
		if err != nil {
			return fmt.Errorf("save project %q: %w", p.ID, err)
		}
		ids = append(ids, p.ID)
	}

	query := `DELETE FROM projects`
	if len(ids) > 0 {
		query += ` WHERE id NOT IN (` + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + `)`
	}
	if _, err := tx.Exec(query, ids...); err != nil {
		return fmt.Errorf("prune projects: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	logging.Logger.Debug("saved projects", "count", len(projects))
	return nil
}
