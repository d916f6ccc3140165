package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/andrejsstepanovs/hackbright/models"
)

// ProjectsByTitle returns every project whose title equals title, in id order.
// Titles are not unique, so more than one row may come back.
func (s *Store) ProjectsByTitle(ctx context.Context, title string) ([]models.Project, error) {
	query := `
		SELECT id, title, description, max_grade
		FROM projects
		WHERE title = @title
		ORDER BY id ASC
	`
	rows, err := s.gorm.WithContext(ctx).Raw(query, sql.Named("title", title)).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query projects with title '%s': %w", title, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("closing project rows", "error", closeErr)
		}
	}()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(&project.ID, &project.Title, &project.Description, &project.MaxGrade); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during project row iteration: %w", err)
	}

	return projects, nil
}

// CreateProject inserts project and returns the id the database assigned to it.
func (s *Store) CreateProject(ctx context.Context, project models.Project) (int64, error) {
	query := `
		INSERT INTO projects (title, description, max_grade)
		VALUES (@title, @description, @max_grade)
		RETURNING id
	`
	row := s.gorm.WithContext(ctx).Raw(query,
		sql.Named("title", project.Title),
		sql.Named("description", project.Description),
		sql.Named("max_grade", project.MaxGrade),
	).Row()

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert project '%s': %w", project.Title, err)
	}
	return id, nil
}
