package frontmatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	crdberrors "github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type postMeta struct {
	Title string   `yaml:"title" toml:"title"`
	Tags  []string `yaml:"tags" toml:"tags"`
	Draft bool     `yaml:"draft" toml:"draft"`
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantSyntax Syntax
		wantMatter string
		wantBody   string
		wantErr    error
	}{
		{
			name:       "yaml block",
			input:      "---\ntitle: Hello\n---\n\nBody text.\n",
			wantSyntax: YAML,
			wantMatter: "title: Hello\n",
			wantBody:   "\nBody text.\n",
		},
		{
			name:       "toml block",
			input:      "+++\ntitle = \"Hello\"\n+++\nBody\n",
			wantSyntax: TOML,
			wantMatter: "title = \"Hello\"\n",
			wantBody:   "Body\n",
		},
		{
			name:       "empty block",
			input:      "---\n---\nBody\n",
			wantSyntax: YAML,
			wantMatter: "",
			wantBody:   "Body\n",
		},
		{
			name:       "closing fence without trailing newline",
			input:      "---\ntitle: x\n---",
			wantSyntax: YAML,
			wantMatter: "title: x\n",
			wantBody:   "",
		},
		{
			name:       "CRLF line endings",
			input:      "---\r\ntitle: Win\r\n---\r\n\r\nBody.\r\n",
			wantSyntax: YAML,
			wantMatter: "title: Win\n",
			wantBody:   "\nBody.\n",
		},
		{
			name:       "byte order mark",
			input:      "\xef\xbb\xbf---\ntitle: x\n---\nBody\n",
			wantSyntax: YAML,
			wantMatter: "title: x\n",
			wantBody:   "Body\n",
		},
		{
			name:       "mismatched fence does not close",
			input:      "+++\ntitle = 1\n---\n",
			wantSyntax: TOML,
			wantErr:    ErrUnclosedFrontmatter,
		},
		{
			name:     "no frontmatter",
			input:    "# Heading\n",
			wantBody: "# Heading\n",
			wantErr:  ErrMissingFrontmatter,
		},
		{
			name:     "partial delimiter",
			input:    "--\ntitle: x\n--\n",
			wantBody: "--\ntitle: x\n--\n",
			wantErr:  ErrMissingFrontmatter,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrMissingFrontmatter,
		},
		{
			name:       "unclosed",
			input:      "---\ntitle: x\n",
			wantSyntax: YAML,
			wantErr:    ErrUnclosedFrontmatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syntax, matter, body, err := Split([]byte(tt.input))
			if syntax != tt.wantSyntax {
				t.Errorf("syntax = %v, want %v", syntax, tt.wantSyntax)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(matter) != tt.wantMatter {
				t.Errorf("matter = %q, want %q", matter, tt.wantMatter)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestMustParse_Struct(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"yaml", "---\ntitle: Hello\ntags:\n  - go\n  - web\ndraft: true\n---\nBody\n"},
		{"toml", "+++\ntitle = \"Hello\"\ntags = [\"go\", \"web\"]\ndraft = true\n+++\nBody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta postMeta
			body, err := MustParse(strings.NewReader(tt.input), &meta)
			if err != nil {
				t.Fatalf("MustParse() error = %v", err)
			}
			if meta.Title != "Hello" {
				t.Errorf("Title = %q, want %q", meta.Title, "Hello")
			}
			if len(meta.Tags) != 2 || meta.Tags[0] != "go" || meta.Tags[1] != "web" {
				t.Errorf("Tags = %v, want [go web]", meta.Tags)
			}
			if !meta.Draft {
				t.Error("Draft = false, want true")
			}
			if string(body) != "Body\n" {
				t.Errorf("body = %q, want %q", body, "Body\n")
			}
		})
	}
}

func TestMustParse_Map(t *testing.T) {
	input := "+++\ntitle = \"Dated\"\ndate = 2025-03-01\n+++\nBody\n"
	var meta map[string]any
	if _, err := MustParse(strings.NewReader(input), &meta); err != nil {
		t.Fatalf("MustParse() error = %v", err)
	}
	if meta["title"] != "Dated" {
		t.Errorf("title = %v, want Dated", meta["title"])
	}
	d, ok := meta["date"].(toml.LocalDate)
	if !ok {
		t.Fatalf("date has type %T, want toml.LocalDate", meta["date"])
	}
	if got := d.AsTime(time.UTC); !got.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", got)
	}
}

func TestMustParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"missing", "no fences here\n", ErrMissingFrontmatter},
		{"unclosed", "---\ntitle: x\n", ErrUnclosedFrontmatter},
		{"invalid yaml", "---\ntitle: [broken\n---\nBody\n", ErrInvalidMatter},
		{"invalid toml", "+++\ntitle = \n+++\nBody\n", ErrInvalidMatter},
		{"yaml scalar", "---\njust a string\n---\nBody\n", ErrInvalidMatter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta map[string]any
			_, err := MustParse(strings.NewReader(tt.input), &meta)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnmarshal_InvalidMatter(t *testing.T) {
	var meta postMeta
	err := Unmarshal(YAML, []byte("just a string\n"), &meta)
	if err == nil {
		t.Fatal("Unmarshal() error = nil, want error")
	}
	if !errors.Is(err, ErrInvalidMatter) {
		t.Errorf("errors.Is(%v, ErrInvalidMatter) = false", err)
	}
	if !crdberrors.Is(err, ErrInvalidMatter) {
		t.Errorf("cockroachdb errors.Is(%v, ErrInvalidMatter) = false", err)
	}
	var typeErr *yaml.TypeError
	if !errors.As(err, &typeErr) {
		t.Errorf("errors.As(%v, *yaml.TypeError) = false, want decoder error in chain", err)
	}
	if !strings.HasPrefix(err.Error(), "decoding yaml frontmatter: ") {
		t.Errorf("Error() = %q, want decoding prefix", err.Error())
	}

	wrapped := crdberrors.Wrap(err, "posts/a.md")
	if !errors.Is(wrapped, ErrInvalidMatter) || !crdberrors.Is(wrapped, ErrInvalidMatter) {
		t.Errorf("wrapped error %v lost ErrInvalidMatter", wrapped)
	}
}

func TestParse_OptionalFrontmatter(t *testing.T) {
	var meta postMeta
	body, err := Parse(strings.NewReader("# Plain\n"), &meta)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if string(body) != "# Plain\n" {
		t.Errorf("body = %q, want full content", body)
	}
	if meta.Title != "" {
		t.Errorf("Title = %q, want empty", meta.Title)
	}
}

func TestFormat(t *testing.T) {
	meta := postMeta{Title: "New Post", Tags: []string{"go"}}

	for _, syntax := range []Syntax{YAML, TOML} {
		t.Run(syntax.String(), func(t *testing.T) {
			out, err := Format(syntax, meta, "Write here.")
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if !strings.HasPrefix(string(out), syntax.Delimiter()+"\n") {
				t.Errorf("output should open with %q: %q", syntax.Delimiter(), out)
			}
			if !strings.HasSuffix(string(out), "\nWrite here.\n") {
				t.Errorf("output should end with body: %q", out)
			}

			var got postMeta
			body, err := MustParse(strings.NewReader(string(out)), &got)
			if err != nil {
				t.Fatalf("MustParse(Format()) error = %v", err)
			}
			if got.Title != meta.Title {
				t.Errorf("Title = %q, want %q", got.Title, meta.Title)
			}
			if string(body) != "\nWrite here.\n" {
				t.Errorf("body = %q", body)
			}
		})
	}

	if _, err := Format(None, meta, ""); err == nil {
		t.Error("Format(None) should fail")
	}
}
