package model

// DatabaseID names one database instance inside one project.
type DatabaseID struct {
	ProjectID  string
	DatabaseID string
}
