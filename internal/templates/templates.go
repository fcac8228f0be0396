// Package templates holds the embedded file templates filter renders into
// projects and workspaces.
package templates

import (
	"embed"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.tmpl scaffold/*.tmpl
var files embed.FS

// StoryData fills the canonical story markdown template.
type StoryData struct {
	ID          string
	Title       string
	Created     string
	Description string
	RepoURL     string
}

// RenderStory renders the canonical story markdown content.
func RenderStory(data StoryData) (string, error) {
	if data.Description == "" {
		data.Description = "No description provided."
	}
	return render("story.md.tmpl", data)
}

// GetProjectReadme returns the README content generated at project create.
func GetProjectReadme() (string, error) {
	content, err := files.ReadFile("readme.md.tmpl")
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ScaffoldData fills the workspace scaffold templates.
type ScaffoldData struct {
	ID      string
	Title   string
	Branch  string
	RepoURL string
}

// RenderScaffold renders every scaffold template, keyed by output filename.
func RenderScaffold(data ScaffoldData) (map[string]string, error) {
	names, err := fs.Glob(files, "scaffold/*.tmpl")
	if err != nil {
		return nil, err
	}

	rendered := make(map[string]string, len(names))
	for _, name := range names {
		content, err := render(name, data)
		if err != nil {
			return nil, err
		}
		outName := strings.TrimSuffix(strings.TrimPrefix(name, "scaffold/"), ".tmpl")
		rendered[outName] = content
	}
	return rendered, nil
}

func render(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(files, name)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
