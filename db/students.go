package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andrejsstepanovs/hackbright/models"
)

// StudentByGithub returns the student with the given github handle.
func (s *Store) StudentByGithub(ctx context.Context, github string) (models.Student, error) {
	query := `
		SELECT first_name, last_name, github
		FROM students
		WHERE github = @github
	`
	row := s.gorm.WithContext(ctx).Raw(query, sql.Named("github", github)).Row()

	var student models.Student
	err := row.Scan(&student.FirstName, &student.LastName, &student.Github)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Student{}, &NotFoundError{Entity: "student", Github: github}
		}
		return models.Student{}, fmt.Errorf("failed to get student with github '%s': %w", github, err)
	}

	return student, nil
}

func (s *Store) CreateStudent(ctx context.Context, student models.Student) error {
	query := `INSERT INTO students (first_name, last_name, github) VALUES (@first_name, @last_name, @github)`
	err := s.gorm.WithContext(ctx).Exec(query,
		sql.Named("first_name", student.FirstName),
		sql.Named("last_name", student.LastName),
		sql.Named("github", student.Github),
	).Error
	if err != nil {
		return fmt.Errorf("failed to insert student '%s': %w", student.Github, err)
	}
	return nil
}
