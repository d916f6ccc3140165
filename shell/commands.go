package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andrejsstepanovs/hackbright/models"
)

// QuitCommand ends the session.
const QuitCommand = "quit"

// variadic marks a command without an upper argument bound.
const variadic = -1

type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	maxArgs int
	run     func(ctx context.Context, s *Shell, args []string) error
}

// ArgsError reports a command invoked with arguments it cannot use. Usage is
// filled in by the dispatcher.
type ArgsError struct {
	Command string
	Usage   string
	Reason  string
}

func (e *ArgsError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (usage: %s)", e.Command, e.Reason, e.Usage)
	}
	return fmt.Sprintf("usage: %s", e.Usage)
}

var commands = []command{
	{
		name:    "student",
		usage:   "student <github>",
		summary: "Show the student with a github account",
		minArgs: 1,
		maxArgs: 1,
		run: func(ctx context.Context, s *Shell, args []string) error {
			student, err := s.store.StudentByGithub(ctx, args[0])
			if err != nil {
				return err
			}
			s.renderStudent(student)
			return nil
		},
	},
	{
		name:    "new_student",
		usage:   "new_student <first_name> <last_name> <github>",
		summary: "Add a student",
		minArgs: 3,
		maxArgs: 3,
		run: func(ctx context.Context, s *Shell, args []string) error {
			student := models.Student{FirstName: args[0], LastName: args[1], Github: args[2]}
			if err := s.store.CreateStudent(ctx, student); err != nil {
				return err
			}
			s.printf("Successfully added student: %s %s\n", student.FirstName, student.LastName)
			return nil
		},
	},
	{
		name:    "project_info",
		usage:   "project_info <title>",
		summary: "Show every project with a title",
		minArgs: 1,
		maxArgs: 1,
		run: func(ctx context.Context, s *Shell, args []string) error {
			projects, err := s.store.ProjectsByTitle(ctx, args[0])
			if err != nil {
				return err
			}
			s.renderProjects(projects)
			return nil
		},
	},
	{
		name:    "grade_info",
		usage:   "grade_info <github> <title>",
		summary: "Show the grade a student received for a project",
		minArgs: 2,
		maxArgs: 2,
		run: func(ctx context.Context, s *Shell, args []string) error {
			grade, err := s.store.GradeFor(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			s.renderGrade(models.Grade{StudentGithub: args[0], ProjectTitle: args[1], Grade: grade})
			return nil
		},
	},
	{
		name:    "set_grade",
		usage:   "set_grade <github> <title> <grade>",
		summary: "Change an existing grade",
		minArgs: 3,
		maxArgs: 3,
		run: func(ctx context.Context, s *Shell, args []string) error {
			grade, err := gradeFromArgs("set_grade", args)
			if err != nil {
				return err
			}
			if _, err := s.store.UpdateGrade(ctx, grade); err != nil {
				return err
			}
			s.printf("Successfully updated grade for %s: %s now has grade %d\n", grade.ProjectTitle, grade.StudentGithub, grade.Grade)
			return nil
		},
	},
	{
		name:    "add_grade",
		usage:   "add_grade <github> <title> <grade>",
		summary: "Record a new grade",
		minArgs: 3,
		maxArgs: 3,
		run: func(ctx context.Context, s *Shell, args []string) error {
			grade, err := gradeFromArgs("add_grade", args)
			if err != nil {
				return err
			}
			if err := s.store.CreateGrade(ctx, grade); err != nil {
				return err
			}
			s.printf("Successfully added grade for %s: %s earned %d\n", grade.ProjectTitle, grade.StudentGithub, grade.Grade)
			return nil
		},
	},
	{
		name:    "new_project",
		usage:   "new_project <title> [description words...] <max_grade>",
		summary: "Add a project",
		minArgs: 2,
		maxArgs: variadic,
		run: func(ctx context.Context, s *Shell, args []string) error {
			last := len(args) - 1
			maxGrade, err := parseInt("new_project", "max_grade", args[last])
			if err != nil {
				return err
			}
			project := models.Project{
				Title:       args[0],
				Description: strings.Join(args[1:last], " "),
				MaxGrade:    maxGrade,
			}
			if _, err := s.store.CreateProject(ctx, project); err != nil {
				return err
			}
			s.printf("Successfully added project %s with description %s and maximum grade %d\n",
				project.Title, project.Description, project.MaxGrade)
			return nil
		},
	},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// Commands lists the names and usage lines of every dispatchable command,
// in the order they are documented.
func Commands() []Usage {
	usages := make([]Usage, 0, len(commands))
	for _, c := range commands {
		usages = append(usages, Usage{Name: c.name, Usage: c.usage, Summary: c.summary})
	}
	return usages
}

// Usage describes one command for help output.
type Usage struct {
	Name    string
	Usage   string
	Summary string
}

func (c command) checkArity(args []string) error {
	if len(args) < c.minArgs || (c.maxArgs != variadic && len(args) > c.maxArgs) {
		return &ArgsError{Command: c.name, Usage: c.usage}
	}
	return nil
}

func gradeFromArgs(name string, args []string) (models.Grade, error) {
	value, err := parseInt(name, "grade", args[2])
	if err != nil {
		return models.Grade{}, err
	}
	return models.Grade{StudentGithub: args[0], ProjectTitle: args[1], Grade: value}, nil
}

func parseInt(name, field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ArgsError{
			Command: name,
			Reason:  fmt.Sprintf("%s must be a whole number, got %q", field, value),
		}
	}
	return n, nil
}
