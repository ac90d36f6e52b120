// Package render turns generated copy and categorized projects into the
// five static files of the portfolio site.
//
// Every model- or user-supplied string goes through html/template. About
// text is treated as markdown and sanitized.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"github.com/kevinmichaelchen/folio/internal/models"
)

//go:embed templates
var templateFS embed.FS

var (
	pageTemplates = map[string]*template.Template{
		models.IndexPage:    mustPage(models.IndexPage),
		models.AboutPage:    mustPage(models.AboutPage),
		models.ResumePage:   mustPage(models.ResumePage),
		models.ProjectsPage: mustPage(models.ProjectsPage),
	}
	styleTemplate = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/"+models.Stylesheet))
)

func mustPage(name string) *template.Template {
	return template.Must(template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// Page holds everything the site is rendered from.
type Page struct {
	Profile        models.Profile
	Handle         string
	AboutText      string
	LandingText    string
	ResumeFilename string
	Categorization models.Categorization
	AccentColor    string
	// WebURL is the platform root used for avatar and repository links.
	WebURL string
}

// Tile is one project card on the listing page.
type Tile struct {
	Title   string
	Summary string
	URL     string
}

type tileSection struct {
	Category string
	Tiles    []Tile
}

type view struct {
	Name           string
	LandingText    string
	AboutHTML      template.HTML
	AvatarURL      string
	ResumeFilename string
	Sections       []tileSection
}

type style struct {
	Accent     string
	HeaderText string
}

// Render builds the site. It fails only on an invalid accent color.
func Render(p Page) (models.Site, error) {
	headerText, err := ContrastColor(p.AccentColor)
	if err != nil {
		return nil, err
	}
	about, err := Markdown(p.AboutText)
	if err != nil {
		return nil, fmt.Errorf("rendering about text: %w", err)
	}

	web := strings.TrimSuffix(p.WebURL, "/")
	v := view{
		Name:           p.Profile.DisplayName(),
		LandingText:    p.LandingText,
		AboutHTML:      about,
		AvatarURL:      fmt.Sprintf("%s/%s.png", web, url.PathEscape(p.Handle)),
		ResumeFilename: p.ResumeFilename,
	}
	for _, s := range Group(p.Categorization) {
		ts := tileSection{Category: s.Category}
		for _, proj := range s.Projects {
			ts.Tiles = append(ts.Tiles, Tile{
				Title:   Capitalize(proj.Name),
				Summary: proj.Summary,
				URL:     RepoURL(web, p.Handle, proj.Name),
			})
		}
		v.Sections = append(v.Sections, ts)
	}

	site := make(models.Site, len(models.SiteFiles))
	for name, tmpl := range pageTemplates {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		site[name] = buf.String()
	}

	var css bytes.Buffer
	accent := "#" + strings.TrimPrefix(strings.TrimSpace(p.AccentColor), "#")
	if err := styleTemplate.Execute(&css, style{Accent: accent, HeaderText: headerText}); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", models.Stylesheet, err)
	}
	site[models.Stylesheet] = css.String()

	return site, nil
}

// RepoURL links a project tile to its repository page.
func RepoURL(web, handle, name string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(web, "/"), url.PathEscape(handle), url.PathEscape(name))
}
