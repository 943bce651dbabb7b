// Package export turns a board snapshot into documents: Markdown, HTML and terminal output.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"brainboard/internal/format"
	"brainboard/internal/model"
)

// Formats accepted by Write.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		// Raw HTML in card text is escaped, never passed through.
		html.WithHardWraps(),
	),
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Markdown renders the board as a Markdown document: the session header, the cards grouped by
// category in board order, then the groups.
func Markdown(snap model.Snapshot) string {
	var b strings.Builder

	title := strings.TrimSpace(snap.Session.Theme)
	if title == "" {
		title = "Brainstorm"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if d := strings.TrimSpace(snap.Session.Description); d != "" {
		b.WriteString(d + "\n\n")
	}
	meta := []string{fmt.Sprintf("Session %d", snap.Session.ID), fmt.Sprintf("%d cards", len(snap.Cards))}
	if s := strings.TrimSpace(snap.Session.Status); s != "" {
		meta = append(meta, s)
	}
	b.WriteString("_" + strings.Join(meta, " · ") + "_\n")

	var order []model.Category
	byCategory := map[model.Category][]model.Card{}
	for _, c := range snap.Cards {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		if _, ok := byCategory[c.Category]; !ok {
			order = append(order, c.Category)
		}
		byCategory[c.Category] = append(byCategory[c.Category], c)
	}
	for _, cat := range order {
		fmt.Fprintf(&b, "\n## %s\n\n", categoryHeading(cat))
		for _, c := range byCategory[cat] {
			b.WriteString("- " + cardLine(c) + "\n")
		}
	}

	if len(snap.Groups) > 0 {
		b.WriteString("\n## Groups\n\n")
		for _, g := range snap.Groups {
			line := "- **" + g.Name + "**"
			if d := strings.TrimSpace(g.Description); d != "" {
				line += ": " + d
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func categoryHeading(c model.Category) string {
	switch c {
	case model.CategoryManual:
		return "Ideas"
	case model.CategoryIASuggestion:
		return "AI suggestions :sparkles:"
	case "":
		return "Uncategorized"
	default:
		return string(c)
	}
}

// cardLine keeps a card on one list item; continuation lines are indented under the bullet.
func cardLine(c model.Card) string {
	lines := strings.Split(strings.TrimSpace(c.Text), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n  ")
}

// HTML renders the board as a standalone HTML page.
func HTML(snap model.Snapshot) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(Markdown(snap)), &body); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	title := strings.TrimSpace(snap.Session.Theme)
	if title == "" {
		title = "Brainstorm"
	}

	var out bytes.Buffer
	// goldmark output is trusted only because raw HTML is disabled above.
	err := page.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())})
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return out.Bytes(), nil
}

// Render formats the board for a terminal. style is a glamour standard style name
// ("dark", "light", "notty"); an empty style means "dark".
func Render(snap model.Snapshot, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(Markdown(snap))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// Write writes snap to w in the given format. json and yaml carry the raw snapshot.
func Write(w io.Writer, snap model.Snapshot, fmtName string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(fmtName)) {
	case "", FormatJSON:
		return format.WriteJSON(w, snap, pretty)
	case FormatYAML, "yml":
		return format.WriteYAML(w, snap)
	case FormatMarkdown, "md":
		_, err := io.WriteString(w, Markdown(snap))
		return err
	case FormatHTML:
		b, err := HTML(snap)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown export format: %s", fmtName)
	}
}
