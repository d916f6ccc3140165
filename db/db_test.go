package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/andrejsstepanovs/hackbright/models"
	"github.com/andrejsstepanovs/hackbright/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, testutil.SQLiteDSN(t), testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	store, err := Open(context.Background(), "oracle", "whatever", nil)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.EnsureSchema(context.Background()))
}

func TestEnsureSchema_GradesColumns(t *testing.T) {
	store := openTestStore(t)

	rows, err := store.conn.Query("SELECT name FROM pragma_table_info('grades') ORDER BY cid")
	require.NoError(t, err)
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns = append(columns, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"student_github", "project_title", "grade"}, columns)
}

func TestNotFoundError(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	testCases := []struct {
		name      string
		lookup    func() error
		expect    NotFoundError
		expectMsg string
	}{
		{
			name: "student",
			lookup: func() error {
				_, err := store.StudentByGithub(ctx, "ghost")
				return err
			},
			expect:    NotFoundError{Entity: "student", Github: "ghost"},
			expectMsg: "student with github 'ghost': not found",
		},
		{
			name: "grade",
			lookup: func() error {
				_, err := store.GradeFor(ctx, "ghost", "Tracker")
				return err
			},
			expect:    NotFoundError{Entity: "grade", Github: "ghost", Title: "Tracker"},
			expectMsg: "grade for 'ghost' on 'Tracker': not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", tc.lookup())
			assert.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.True(t, errors.As(err, &notFound))
			assert.Equal(t, tc.expect, *notFound)
			assert.Equal(t, tc.expectMsg, notFound.Error())
		})
	}
}

func TestStudentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	err := store.CreateStudent(ctx, models.Student{FirstName: "J", LastName: "Smith", Github: "jsmith"})
	require.NoError(t, err)

	testCases := []struct {
		name      string
		github    string
		expectErr error
		expected  models.Student
	}{
		{
			name:     "existing student",
			github:   "jsmith",
			expected: models.Student{FirstName: "J", LastName: "Smith", Github: "jsmith"},
		},
		{
			name:      "missing student",
			github:    "nobody",
			expectErr: ErrNotFound,
		},
		{
			name:      "match is exact",
			github:    "JSMITH",
			expectErr: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			student, err := store.StudentByGithub(ctx, tc.github)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				assert.Equal(t, models.Student{}, student)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, student)
		})
	}
}

func TestProjectsByTitle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	// Empty table
	projects, err := store.ProjectsByTitle(ctx, "Tracker")
	require.NoError(t, err)
	assert.Empty(t, projects)

	firstID, err := store.CreateProject(ctx, models.Project{Title: "Tracker", Description: "A fun project", MaxGrade: 100})
	require.NoError(t, err)
	_, err = store.CreateProject(ctx, models.Project{Title: "Blockly", Description: "Blocks", MaxGrade: 50})
	require.NoError(t, err)
	secondID, err := store.CreateProject(ctx, models.Project{Title: "Tracker", Description: "Again", MaxGrade: 10})
	require.NoError(t, err)
	assert.Greater(t, secondID, firstID)

	projects, err = store.ProjectsByTitle(ctx, "Tracker")
	require.NoError(t, err)
	require.Len(t, projects, 2)

	assert.Equal(t, models.Project{ID: firstID, Title: "Tracker", Description: "A fun project", MaxGrade: 100}, projects[0])
	assert.Equal(t, models.Project{ID: secondID, Title: "Tracker", Description: "Again", MaxGrade: 10}, projects[1])
}

func TestGrades(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	t.Run("lookup before any grade exists", func(t *testing.T) {
		_, err := store.GradeFor(ctx, "jsmith", "Tracker")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update without a row is a no-op", func(t *testing.T) {
		affected, err := store.UpdateGrade(ctx, models.Grade{StudentGithub: "jsmith", ProjectTitle: "Tracker", Grade: 95})
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)

		var count int
		require.NoError(t, store.conn.QueryRow("SELECT COUNT(*) FROM grades").Scan(&count))
		assert.Equal(t, 0, count)
	})

	t.Run("create then update", func(t *testing.T) {
		err := store.CreateGrade(ctx, models.Grade{StudentGithub: "jsmith", ProjectTitle: "Tracker", Grade: 70})
		require.NoError(t, err)

		grade, err := store.GradeFor(ctx, "jsmith", "Tracker")
		require.NoError(t, err)
		assert.Equal(t, 70, grade)

		affected, err := store.UpdateGrade(ctx, models.Grade{StudentGithub: "jsmith", ProjectTitle: "Tracker", Grade: 95})
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		grade, err = store.GradeFor(ctx, "jsmith", "Tracker")
		require.NoError(t, err)
		assert.Equal(t, 95, grade)
	})

	t.Run("update only touches the matching pair", func(t *testing.T) {
		err := store.CreateGrade(ctx, models.Grade{StudentGithub: "jdoe", ProjectTitle: "Tracker", Grade: 60})
		require.NoError(t, err)

		_, err = store.UpdateGrade(ctx, models.Grade{StudentGithub: "jdoe", ProjectTitle: "Tracker", Grade: 80})
		require.NoError(t, err)

		grade, err := store.GradeFor(ctx, "jsmith", "Tracker")
		require.NoError(t, err)
		assert.Equal(t, 95, grade)
	})
}

func TestNamedParametersAreNotInterpolated(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	hostile := "x'); DROP TABLE students; --"
	require.NoError(t, store.CreateStudent(ctx, models.Student{FirstName: "Bobby", LastName: "Tables", Github: hostile}))

	student, err := store.StudentByGithub(ctx, hostile)
	require.NoError(t, err)
	assert.Equal(t, hostile, student.Github)
}
