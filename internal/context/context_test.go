package context

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/filter/internal/fault"
)

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".filter"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "deep", "deeper")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		start string
	}{
		{"at root", root},
		{"nested", nested},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindProjectRoot(tt.start)
			if err != nil {
				t.Fatalf("FindProjectRoot: %v", err)
			}
			if got != root {
				t.Errorf("root = %q, want %q", got, root)
			}
		})
	}
}

func TestFindProjectRootOutsideProject(t *testing.T) {
	_, err := FindProjectRoot(t.TempDir())
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestFindProjectRootIgnoresFilterFile(t *testing.T) {
	// A plain file named .filter is not a project marker.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".filter"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(dir); err == nil {
		t.Error("a .filter file was treated as a project")
	}
}
