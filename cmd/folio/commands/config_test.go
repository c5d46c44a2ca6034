package commands

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	folioerrors "github.com/thoreinstein/folio/internal/errors"
)

func TestConfigCommand_Get(t *testing.T) {
	s := validSite(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"config", "get", "site.title"}, "Test\n"},
		{[]string{"config", "get", "RETENTION"}, "2\n"},
		{[]string{"config", "get", "publish.branch"}, "main\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[2:], " "), func(t *testing.T) {
			out, err := s.run(t, tt.args...)
			if err != nil {
				t.Fatalf("%v error = %v", tt.args, err)
			}
			if out != tt.want {
				t.Errorf("%v = %q, want %q", tt.args, out, tt.want)
			}
		})
	}

	t.Run("section", func(t *testing.T) {
		out, err := s.run(t, "config", "get", "site")
		if err != nil {
			t.Fatalf("config get site error = %v", err)
		}
		for _, want := range []string{"title: Test", "base_url: /", "recent_posts: 5"} {
			if !strings.Contains(out, want) {
				t.Errorf("config get site missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := s.run(t, "config", "get", "site.colour")
		if got := exitCode(t, err); got != folioerrors.ExitUser {
			t.Errorf("exit code = %d, want %d", got, folioerrors.ExitUser)
		}
	})
}

func TestConfigCommand_MasksSecrets(t *testing.T) {
	s := validSite(t)
	f, err := os.OpenFile(s.config, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("publish:\n  webhook_secret: hunter2\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"config"},
		{"config", "list"},
		{"config", "get", "publish"},
		{"config", "get", "publish.webhook_secret"},
	} {
		out, err := s.run(t, args...)
		if err != nil {
			t.Fatalf("%v error = %v", args, err)
		}
		if strings.Contains(out, "hunter2") {
			t.Errorf("%v leaks the webhook secret:\n%s", args, out)
		}
		if !strings.Contains(out, "********") {
			t.Errorf("%v should show the secret masked:\n%s", args, out)
		}
	}
}

func TestConfigCommand_List(t *testing.T) {
	s := validSite(t)

	out, err := s.run(t, "config", "list")
	if err != nil {
		t.Fatalf("config list error = %v", err)
	}
	for _, want := range []string{"# " + s.config, "title: Test", "retention: 2", "debounce: 500ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("config list missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommand_Set(t *testing.T) {
	s := validSite(t)

	out, err := s.run(t, "config", "set", "retention", "4")
	if err != nil {
		t.Fatalf("config set error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "set retention = 4") {
		t.Errorf("config set output = %q", out)
	}
	if out, err := s.run(t, "config", "get", "retention"); err != nil || out != "4\n" {
		t.Errorf("config get retention = %q, %v; want 4", out, err)
	}

	data, err := os.ReadFile(s.config)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "title: Test") {
		t.Errorf("config set dropped other values:\n%s", data)
	}

	for _, args := range [][]string{
		{"config", "set", "retention", "0"},
		{"config", "set", "retention", "lots"},
		{"config", "set", "site.colour", "blue"},
	} {
		_, err := s.run(t, args...)
		if got := exitCode(t, err); got != folioerrors.ExitUser {
			t.Errorf("%v exit code = %d, want %d", args, got, folioerrors.ExitUser)
		}
	}
	after, err := os.ReadFile(s.config)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != string(data) {
		t.Errorf("rejected config set changed the file:\n%s", after)
	}
}

func TestConfigCommand_InvalidConfig(t *testing.T) {
	s := validSite(t)
	writeFile(t, s.config, "site:\n  title: Broken\nretention: 0\n")

	if _, err := s.run(t, "check"); err == nil {
		t.Fatal("check should refuse an invalid config")
	}

	out, err := s.run(t, "config", "get", "retention")
	if err != nil || out != "0\n" {
		t.Errorf("config get on an invalid config = %q, %v", out, err)
	}

	// The file can be repaired from the command line.
	if out, err := s.run(t, "config", "set", "retention", "3"); err != nil {
		t.Fatalf("config set error = %v\n%s", err, out)
	}
	if out, err := s.run(t, "check"); err != nil {
		t.Errorf("check after repair error = %v\n%s", err, out)
	}
}

func TestConfigCommand_Edit(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	t.Setenv("FOLIO_EDITOR", "true")
	s := validSite(t)

	out, err := s.run(t, "config", "edit")
	if err != nil {
		t.Fatalf("config edit error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "is valid") {
		t.Errorf("config edit output = %q", out)
	}
}
