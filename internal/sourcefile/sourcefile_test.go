package sourcefile

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// createTree creates files (with parent directories) under a temp dir.
func createTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	slices.Sort(out)
	return out
}

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{".go", []string{".go"}},
		{"go, JS ,.go", []string{".go", ".js"}},
		{",,", nil},
	}
	for _, tt := range tests {
		got := ParseExtensions(tt.input)
		if !slices.Equal(got, tt.want) {
			t.Errorf("ParseExtensions(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFind(t *testing.T) {
	root := createTree(t, map[string]string{
		"main.go":                  "",
		"README.md":                "",
		"pkg/util.go":              "",
		"pkg/deep/more.go":         "",
		"node_modules/x/index.js":  "",
		".git/config":              "",
		".hidden.go":               "",
		"vendor/github.com/a/a.go": "",
	})

	tests := []struct {
		name      string
		recursive bool
		exts      []string
		want      []string
	}{
		{
			name: "top level only",
			exts: []string{".go"},
			want: []string{"main.go"},
		},
		{
			name:      "recursive with filter",
			recursive: true,
			exts:      []string{".go"},
			want:      []string{"main.go", "pkg/deep/more.go", "pkg/util.go"},
		},
		{
			name: "no filter",
			want: []string{"README.md", "main.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Find(root, tt.recursive, tt.exts)
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if rel := relative(t, root, got); !slices.Equal(rel, tt.want) {
				t.Errorf("Find() = %v, want %v", rel, tt.want)
			}
		})
	}
}

func TestFind_NotADirectory(t *testing.T) {
	root := createTree(t, map[string]string{"a.go": ""})
	if _, err := Find(filepath.Join(root, "a.go"), false, nil); err == nil {
		t.Error("Find() on a file: expected error")
	}
	if _, err := Find(filepath.Join(root, "missing"), false, nil); err == nil {
		t.Error("Find() on a missing path: expected error")
	}
}

func TestExpand(t *testing.T) {
	root := createTree(t, map[string]string{
		"a.go":     "",
		"b.txt":    "",
		"sub/c.go": "",
	})

	got, err := Expand([]string{
		filepath.Join(root, "b.txt"),
		root,
		filepath.Join(root, "a.go"),
	}, true, []string{".go"})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	want := []string{"a.go", "b.txt", "sub/c.go"}
	if rel := relative(t, root, got); !slices.Equal(rel, want) {
		t.Errorf("Expand() = %v, want %v", rel, want)
	}
}

func TestReadWrite(t *testing.T) {
	root := createTree(t, map[string]string{"script.sh": "# old\necho hi\n"})
	path := filepath.Join(root, "script.sh")
	if err := os.Chmod(path, 0755); err != nil {
		t.Fatal(err)
	}

	content, perm, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if content != "# old\necho hi\n" {
		t.Errorf("Read() content = %q", content)
	}

	if err := Write(path, "echo hi\n", perm); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "echo hi\n" {
		t.Errorf("after Write() content = %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("after Write() perm = %v, want 0755", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(root)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
