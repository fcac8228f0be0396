// Package story contains the pure domain logic for stories: identifier and
// prefix generation, markdown title extraction, and branch-name slugs.
package story

import (
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"
)

// PrefixLength is the fixed length of generated project prefixes.
const PrefixLength = 5

// Story is the canonical story record. The current stage is derived from the
// kanban board and never stored here.
type Story struct {
	ID          string
	Title       string
	Description string
	Created     time.Time
	RepoURL     string
}

var (
	trailingJunk = regexp.MustCompile(`[-_0-9]+$`)
	idPattern    = regexp.MustCompile(`^[A-Z]+-[0-9]+$`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	multiHyphen  = regexp.MustCompile(`-+`)
)

// GeneratePrefix derives a story prefix from a project name: trailing
// digits/hyphens/underscores stripped, first five characters uppercased,
// right-padded with X when shorter (e.g. "filter" -> "FILTE", "api" -> "APIXX").
func GeneratePrefix(projectName string) string {
	clean := trailingJunk.ReplaceAllString(strings.ToLower(projectName), "")
	if len(clean) >= PrefixLength {
		return strings.ToUpper(clean[:PrefixLength])
	}
	padded := strings.ToUpper(clean)
	for len(padded) < PrefixLength {
		padded += "X"
	}
	return padded
}

// FormatID builds a story identifier from a prefix and sequence number.
func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s-%d", prefix, n)
}

// ValidID reports whether s looks like a story identifier (PREFIX-n).
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

// ExtractTitle pulls the story title from markdown content. The first `# `
// heading wins; when the heading is "ID: Title" only the title part is
// returned. Falls back to the given default when no heading is found.
func ExtractTitle(content, fallback string) string {
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "# ") {
			continue
		}
		heading := strings.TrimSpace(line[2:])
		if _, title, ok := strings.Cut(heading, ": "); ok {
			return title
		}
		return heading
	}
	return fallback
}

// ExtractRepoURL pulls the optional "**Repository:** <url>" line from story
// markdown. Empty when the story has no repository override.
func ExtractRepoURL(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if rest, ok := strings.CutPrefix(line, "**Repository:**"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// BranchName renders a branch-naming template for a story. The derivation is
// deterministic so repeated provisioning targets the same branch. Available
// fields: ID, Title, Slug.
func BranchName(tmpl string, s Story) (string, error) {
	t, err := template.New("branch").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("invalid branch template %q: %w", tmpl, err)
	}
	data := struct {
		ID    string
		Title string
		Slug  string
	}{ID: s.ID, Title: s.Title, Slug: Slug(s.Title, 30)}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render branch template %q: %w", tmpl, err)
	}
	name := b.String()
	if name == "" {
		return "", fmt.Errorf("branch template %q rendered an empty name", tmpl)
	}
	return name, nil
}

// Slug creates a branch-safe slug from a title, truncated to maxLen without
// ending on a hyphen.
func Slug(title string, maxLen int) string {
	slug := strings.ToLower(title)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = nonSlugChars.ReplaceAllString(slug, "")
	slug = multiHyphen.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxLen {
		slug = slug[:maxLen]
		slug = strings.TrimRight(slug, "-")
	}
	return slug
}
