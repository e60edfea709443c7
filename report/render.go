package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Props is everything shown in a report.
type Props struct {
	Run   *Run
	Title string
	// Screenshots are image paths relative to the report file.
	Screenshots []string
	Generated   time.Time
}

// Render writes the report as a standalone HTML document.
func Render(ctx context.Context, w io.Writer, props Props) error {
	return Page(props).Render(ctx, w)
}

// WriteFile renders the report to path, creating parent directories.
func WriteFile(ctx context.Context, path string, props Props) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := Render(ctx, f, props); err != nil {
		f.Close()
		return fmt.Errorf("rendering report: %w", err)
	}
	return f.Close()
}

// FindScreenshots returns the PNG files in dir relative to the directory of reportPath.
func FindScreenshots(dir, reportPath string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(reportPath)
	shots := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(base, m)
		if err != nil {
			rel = m
		}
		shots = append(shots, filepath.ToSlash(rel))
	}
	return shots, nil
}

// writer collects the first write error so markup can be written without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) component(ctx context.Context, c templ.Component) {
	if w.err == nil {
		w.err = c.Render(ctx, w.w)
	}
}

// Page is the full report document.
func Page(props Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		run := props.Run
		counts := run.Counts()
		title := props.Title
		if title == "" {
			title = "Test report"
		}

		w.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>")
		w.text(title)
		w.raw("</title>")
		w.raw(baseStyles)
		w.component(ctx, chromaStyles())
		w.raw("</head><body>")

		w.raw(`<header><h1>`)
		w.text(title)
		w.raw(`</h1><p class="meta">`)
		w.text(fmt.Sprintf("Run %s · suite %s · browser %s · %s", run.ID, run.Suite, run.Browser, run.Duration().Round(time.Millisecond)))
		if !props.Generated.IsZero() {
			w.text(" · generated " + props.Generated.Format(time.RFC3339))
		}
		w.raw(`</p><div id="summary">`)
		w.component(ctx, badge(BadgeProps{Variant: BadgeVariantOutline, Class: "total"}, fmt.Sprintf("%d total", counts.Total)))
		w.component(ctx, badge(BadgeProps{Variant: BadgeVariantSuccess, Class: "passed"}, fmt.Sprintf("%d passed", counts.Passed)))
		w.component(ctx, badge(BadgeProps{Variant: BadgeVariantError, Class: "failed"}, fmt.Sprintf("%d failed", counts.Failed)))
		w.component(ctx, badge(BadgeProps{Variant: BadgeVariantWarning, Class: "skipped"}, fmt.Sprintf("%d skipped", counts.Skipped)))
		w.raw(`</div><div id="filters">`)
		w.component(ctx, filterButton(ButtonProps{}, "All"))
		w.component(ctx, filterButton(ButtonProps{Variant: ButtonVariantOutline, Filter: StatusFailed}, "Failed"))
		w.component(ctx, filterButton(ButtonProps{Variant: ButtonVariantOutline, Filter: StatusSkipped}, "Skipped"))
		w.raw(`</div></header>`)

		w.raw(`<main><table id="tests"><thead><tr><th>Test</th><th>Package</th><th>Status</th><th>Duration</th></tr></thead><tbody>`)
		for _, t := range run.Leaves() {
			w.component(ctx, testRow(t))
		}
		w.raw(`</tbody></table>`)

		if output := strings.TrimSpace(run.Output.String()); output != "" {
			w.raw(`<section id="run-output"><h2>Output</h2>`)
			w.component(ctx, highlightContent(output, "text/plain"))
			w.raw(`</section>`)
		}

		if len(props.Screenshots) > 0 {
			w.raw(`<section id="screenshots"><h2>Screenshots</h2><div class="gallery">`)
			for _, shot := range props.Screenshots {
				w.raw(`<figure><a href="`)
				w.text(shot)
				w.raw(`"><img loading="lazy" src="`)
				w.text(shot)
				w.raw(`" alt="`)
				w.text(filepath.Base(shot))
				w.raw(`"></a><figcaption>`)
				w.text(strings.TrimSuffix(filepath.Base(shot), ".png"))
				w.raw(`</figcaption></figure>`)
			}
			w.raw(`</div></section>`)
		}

		w.raw(`</main>`)
		w.raw(filterScript)
		w.raw("</body></html>\n")
		return w.err
	})
}

func testRow(t *TestResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<tr class="test" data-status="`)
		w.text(string(t.Status))
		w.raw(`"><td class="name">`)
		w.text(t.Name)
		w.raw(`</td><td class="package">`)
		w.text(t.Package)
		w.raw(`</td><td class="status">`)
		w.component(ctx, badge(BadgeProps{Variant: statusVariant(t.Status)}, string(t.Status)))
		w.raw(`</td><td class="duration">`)
		w.text(t.Elapsed.Round(time.Millisecond).String())
		w.raw(`</td></tr>`)

		if t.Status == StatusFailed || t.Status == StatusSkipped {
			w.raw(`<tr class="output" data-status="`)
			w.text(string(t.Status))
			w.raw(`"><td colspan="4">`)
			w.component(ctx, highlightContent(t.Output.String(), "text/plain"))
			w.raw(`</td></tr>`)
		}
		return w.err
	})
}

// highlightContent applies syntax highlighting to the content
func highlightContent(content string, contentType string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		contentType = strings.Split(contentType, ";")[0]

		lexer := lexers.MatchMimeType(contentType)
		if lexer == nil {
			lexer = lexers.Analyse(content)
		}
		if lexer == nil {
			lexer = lexers.Fallback
		}

		formatter, style := chromaFormatterAndStyle()

		iterator, err := lexer.Tokenise(nil, content)
		if err != nil {
			return err
		}

		return formatter.Format(w, style, iterator)
	})
}

func chromaFormatterAndStyle() (*html.Formatter, *chroma.Style) {
	formatter := html.New(
		html.Standalone(false),
		html.WithClasses(true),
		html.TabWidth(4),
	)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	return formatter, style
}

func chromaStyles() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, "<style>")
		formatter, style := chromaFormatterAndStyle()
		err := formatter.WriteCSS(w, style)

		_, _ = io.WriteString(w, ".chroma { white-space: pre-wrap; padding: 0.5rem; }\n")
		_, _ = io.WriteString(w, "</style>")
		return err
	})
}

const baseStyles = `<style>
body { font-family: system-ui, sans-serif; margin: 0; color: #111; }
header, main { padding: 1rem 2rem; }
.meta { color: #555; font-size: 0.875rem; }
#summary, #filters { display: flex; gap: 0.5rem; margin-top: 0.5rem; }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 0.375rem 0.5rem; border-bottom: 1px solid #e5e5e5; vertical-align: top; }
td.name, td.package, td.duration { font-family: ui-monospace, monospace; font-size: 0.875rem; }
.badge { display: inline-flex; border-radius: 9999px; border: 1px solid transparent; padding: 0.125rem 0.625rem; font-size: 0.75rem; font-weight: 600; font-family: ui-monospace, monospace; }
.badge-default { background: #000; color: #fff; }
.badge-secondary { background: #e5e5e5; color: #000; }
.badge-success { background: #16a34a; color: #fff; }
.badge-warning { background: #fb923c; color: #fff; }
.badge-error { background: #ef4444; color: #fff; }
.badge-outline { border-color: #d4d4d4; }
.button { cursor: pointer; border-radius: 0.375rem; font-size: 0.875rem; padding: 0.25rem 0.75rem; border: 1px solid transparent; }
.button-default { background: #000; color: #fff; }
.button-outline { background: #fff; border-color: #e5e5e5; }
.button-secondary { background: #e5e5e5; }
.gallery { display: grid; grid-template-columns: repeat(auto-fill, minmax(240px, 1fr)); gap: 1rem; }
.gallery img { width: 100%; border: 1px solid #e5e5e5; }
figcaption { font-family: ui-monospace, monospace; font-size: 0.75rem; }
</style>`

const filterScript = `<script>
document.querySelectorAll('#filters button').forEach(function (button) {
  button.addEventListener('click', function () {
    var filter = button.dataset.filter;
    document.querySelectorAll('#tests tbody tr').forEach(function (row) {
      row.hidden = filter !== '' && row.dataset.status !== filter;
    });
  });
});
</script>`
