package models

// Student is a row in the students table. Github is the lookup key.
type Student struct {
	FirstName string
	LastName  string
	Github    string
}

// Project is a row in the projects table. ID is assigned by the database.
type Project struct {
	ID          int64
	Title       string
	Description string
	MaxGrade    int
}

// Grade links a student (by github) to a project (by title).
type Grade struct {
	StudentGithub string
	ProjectTitle  string
	Grade         int
}
