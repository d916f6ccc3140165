package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/andrejsstepanovs/hackbright/models"
)

// GradeFor returns the grade github received for the project titled title.
func (s *Store) GradeFor(ctx context.Context, github, title string) (int, error) {
	query := `
		SELECT grade
		FROM grades
		WHERE student_github = @github AND project_title = @title
	`
	row := s.gorm.WithContext(ctx).Raw(query,
		sql.Named("github", github),
		sql.Named("title", title),
	).Row()

	var grade int
	if err := row.Scan(&grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &NotFoundError{Entity: "grade", Github: github, Title: title}
		}
		return 0, fmt.Errorf("failed to get grade for '%s' on '%s': %w", github, title, err)
	}
	return grade, nil
}

// CreateGrade records a new grade row. It does not check for an existing
// row for the same student and project.
func (s *Store) CreateGrade(ctx context.Context, grade models.Grade) error {
	query := `
		INSERT INTO grades (student_github, project_title, grade)
		VALUES (@github, @title, @grade)
	`
	err := s.gorm.WithContext(ctx).Exec(query,
		sql.Named("github", grade.StudentGithub),
		sql.Named("title", grade.ProjectTitle),
		sql.Named("grade", grade.Grade),
	).Error
	if err != nil {
		return fmt.Errorf("failed to insert grade for '%s' on '%s': %w", grade.StudentGithub, grade.ProjectTitle, err)
	}
	return nil
}

// UpdateGrade overwrites an existing grade and reports how many rows changed.
// Zero rows affected is not an error.
func (s *Store) UpdateGrade(ctx context.Context, grade models.Grade) (int64, error) {
	query := `
		UPDATE grades
		SET grade = @grade
		WHERE student_github = @github AND project_title = @title
	`
	res := s.gorm.WithContext(ctx).Exec(query,
		sql.Named("grade", grade.Grade),
		sql.Named("github", grade.StudentGithub),
		sql.Named("title", grade.ProjectTitle),
	)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update grade for '%s' on '%s': %w", grade.StudentGithub, grade.ProjectTitle, res.Error)
	}

	if res.RowsAffected == 0 {
		s.logger.Debug("grade update matched no rows",
			slog.String("github", grade.StudentGithub),
			slog.String("title", grade.ProjectTitle))
	}
	return res.RowsAffected, nil
}
