package trigger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/folio/internal/build"
	folioerrors "github.com/thoreinstein/folio/internal/errors"
)

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(slog.New(slog.NewTextHandler(&buf, nil)))
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r.Finished(Outcome{Generation: 4, Published: true, Pages: 12, Started: start, Finished: start.Add(time.Second)})
	if out := buf.String(); !strings.Contains(out, "published generation") || !strings.Contains(out, "generation=4") {
		t.Errorf("success log = %q", out)
	}

	buf.Reset()
	o := Outcome{Generation: 5, Stage: build.StageRender, Slug: "hello"}
	describe(&o, errors.Wrap(folioerrors.ErrUnresolvedReference, "post/ghost"))
	r.Finished(o)
	out := buf.String()
	for _, want := range []string{"build failed", "stage=render", "kind=UnresolvedReference", "slug=hello", "post/ghost"} {
		if !strings.Contains(out, want) {
			t.Errorf("failure log missing %q: %s", want, out)
		}
	}
}
