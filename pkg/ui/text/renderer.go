// Package text lays out run results as plain text. The terminal renderer
// reuses the same layout with styles applied.
package text

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jibs-autolinker/pkg/types"
)

// Styler decorates s with the named style
type Styler func(style, s string) string

// Plain is the Styler that leaves text untouched
func Plain(_ string, s string) string {
	return s
}

const nameWidth = 28

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
	paint  Styler
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return NewStyled(output, Plain), nil
}

// NewStyled creates a renderer with the text layout and paint applied to
// every styled span
func NewStyled(output io.Writer, paint Styler) *Renderer {
	if paint == nil {
		paint = Plain
	}
	return &Renderer{output: output, paint: paint}
}

// RenderResult renders a run result or a status report
func (r *Renderer) RenderResult(result interface{}) error {
	var b strings.Builder

	switch v := result.(type) {
	case *types.Result:
		r.writeResult(&b, v)
	case *types.StatusReport:
		r.writeStatus(&b, v)
	default:
		fmt.Fprintf(&b, "%+v\n", result)
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "%s %v\n", r.paint("Error", "Error:"), err)
	return werr
}

func (r *Renderer) writeResult(b *strings.Builder, res *types.Result) {
	if res.DryRun {
		fmt.Fprintf(b, "%s no changes were made\n\n", r.paint("DryRunBanner", "DRY RUN"))
	}
	r.writeDirs(b, res.ModulesDir, res.NodeModulesDir)

	if len(res.Removed) > 0 {
		verb := "Removed"
		if res.DryRun {
			verb = "Would remove"
		}
		r.header(b, fmt.Sprintf("%s %s", verb, count(len(res.Removed), "link")))
		for _, p := range res.Removed {
			fmt.Fprintf(b, "  %s\n", r.paint("Muted", relTo(res.ModulesDir, p)))
		}
	}

	if len(res.Linked) > 0 {
		verb := "Linked"
		if res.DryRun {
			verb = "Would link"
		}
		r.header(b, fmt.Sprintf("%s %s", verb, count(len(res.Linked), "module")))
		for _, link := range res.Linked {
			r.writeLink(b, link)
		}
	} else if res.NodeModulesDir != "" && len(res.Entries) > 0 {
		r.header(b, "No modules to link")
	}

	if len(res.Conflicts) > 0 {
		r.header(b, r.paint("Error", fmt.Sprintf("%s would fail", count(len(res.Conflicts), "link"))))
		for _, link := range res.Conflicts {
			fmt.Fprintf(b, "  %s %s\n", r.paint("Conflict", pad(link.Name)), r.paint("Muted", "path already exists"))
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintf(b, "\n%s\n", r.paint("Muted", fmt.Sprintf("Skipped %s", count(len(res.Skipped), "dependency"))))
	}
}

func (r *Renderer) writeStatus(b *strings.Builder, report *types.StatusReport) {
	r.writeDirs(b, report.ModulesDir, report.NodeModulesDir)

	if len(report.Links) == 0 {
		r.header(b, "No modules")
		return
	}

	counts := make(map[types.LinkState]int)
	b.WriteString("\n")
	for _, s := range report.Links {
		counts[s.State]++
		state := r.paint(stateStyle(s.State), fmt.Sprintf("%-9s", s.State))

		var detail string
		switch s.State {
		case types.LinkConflict:
			detail = r.paint("Muted", "path occupied by a file or directory")
		case types.LinkStale:
			detail = "-> " + r.paint("Muted", s.Current)
			if s.Target != "" {
				detail += " (expected " + r.paint("FilePath", s.Target) + ")"
			}
		default:
			detail = "-> " + r.paint("FilePath", s.Target)
		}
		fmt.Fprintf(b, "  %s %s %s%s\n", state, r.paint("LinkName", pad(s.Name)), detail, r.version(s.Version))
	}

	fmt.Fprintf(b, "\n%d linked, %d missing, %d stale, %d conflict\n",
		counts[types.LinkLinked], counts[types.LinkMissing], counts[types.LinkStale], counts[types.LinkConflict])
}

func (r *Renderer) writeDirs(b *strings.Builder, modules, nodeModules string) {
	fmt.Fprintf(b, "%s %s\n", r.paint("Muted", "modules:     "), r.paint("FilePath", modules))
	if nodeModules != "" {
		fmt.Fprintf(b, "%s %s\n", r.paint("Muted", "dependencies:"), r.paint("FilePath", nodeModules))
	}
}

func (r *Renderer) writeLink(b *strings.Builder, link types.Link) {
	fmt.Fprintf(b, "  %s -> %s%s\n",
		r.paint("LinkName", pad(link.Name)), r.paint("FilePath", link.Target), r.version(link.Version))
}

func (r *Renderer) header(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n", r.paint("Header", title))
}

func (r *Renderer) version(v string) string {
	if v == "" {
		return ""
	}
	return " " + r.paint("Version", v)
}

func stateStyle(state types.LinkState) string {
	switch state {
	case types.LinkLinked:
		return "Linked"
	case types.LinkMissing:
		return "Missing"
	case types.LinkConflict:
		return "Conflict"
	default:
		return "Stale"
	}
}

func pad(name string) string {
	return fmt.Sprintf("%-*s", nameWidth, name)
}

func count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// relTo shows p relative to dir when it lives inside it
func relTo(dir, p string) string {
	rel, err := filepath.Rel(dir, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}
