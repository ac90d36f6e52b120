package models

import "strings"

// Profile is the subset of a GitHub user we render.
type Profile struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// DisplayName falls back to the handle when the profile has no name.
func (p Profile) DisplayName() string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Login
}

type Repository struct {
	Name string `json:"name"`
}

// ReadmeEntry pairs a repository with its decoded README. Only entries
// with non-blank text are produced.
type ReadmeEntry struct {
	RepositoryName string
	Text           string
}

type KeywordSet struct {
	RepositoryName string
	Keywords       []string
}

type Project struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// Categorization is the model's grouping of projects. Project categories
// are not guaranteed to appear in Categories.
type Categorization struct {
	Categories []string  `json:"categories"`
	Projects   []Project `json:"projects"`
}

// Site maps output filenames to their contents.
type Site map[string]string

const (
	IndexPage    = "index.html"
	AboutPage    = "about.html"
	ResumePage   = "resume.html"
	ProjectsPage = "projects.html"
	Stylesheet   = "style.css"
)

// SiteFiles lists every key a rendered Site carries.
var SiteFiles = []string{IndexPage, AboutPage, ResumePage, ProjectsPage, Stylesheet}
