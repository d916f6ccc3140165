package shell

import (
	"github.com/andrejsstepanovs/hackbright/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

func (s *Shell) renderStudent(student models.Student) {
	if s.format == FormatTable {
		s.renderTable(table.Row{"first_name", "last_name", "github"},
			table.Row{student.FirstName, student.LastName, student.Github})
		return
	}
	s.printf("Student: %s %s\nGithub account: %s\n", student.FirstName, student.LastName, student.Github)
}

// renderProjects prints nothing in text mode when no project matched. Table
// mode still prints the header.
func (s *Shell) renderProjects(projects []models.Project) {
	if s.format == FormatTable {
		rows := make([]table.Row, 0, len(projects))
		for _, p := range projects {
			rows = append(rows, table.Row{p.ID, p.Title, p.Description, p.MaxGrade})
		}
		s.renderTable(table.Row{"id", "title", "description", "max_grade"}, rows...)
		return
	}
	for _, p := range projects {
		s.printf("Project %s: ID is %d; Description: %s; Max Possible Grade is %d.\n",
			p.Title, p.ID, p.Description, p.MaxGrade)
	}
}

func (s *Shell) renderGrade(grade models.Grade) {
	if s.format == FormatTable {
		s.renderTable(table.Row{"student_github", "project_title", "grade"},
			table.Row{grade.StudentGithub, grade.ProjectTitle, grade.Grade})
		return
	}
	s.printf("The grade for that project is: %d\n", grade.Grade)
}

func (s *Shell) renderTable(header table.Row, rows ...table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.SetStyle(table.StyleLight)
	t.Render()
}
