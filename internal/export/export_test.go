package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainboard/internal/model"
)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Session: model.Session{ID: 42, Theme: "robots", Description: "School fair projects", Status: "active"},
		Cards: []model.Card{
			{ID: 1, Text: "Line follower", Category: model.CategoryManual},
			{ID: 2, Text: "Add sensors", Category: model.CategoryIASuggestion},
			{ID: 3, Text: "Cardboard arm\nwith servos", Category: model.CategoryManual},
			{ID: 4, Text: "   ", Category: model.CategoryManual},
		},
		Groups: []model.Group{{ID: 1, Name: "Hardware", Description: "Things with wires"}},
	}
}

func TestMarkdownGroupsCardsByCategory(t *testing.T) {
	md := Markdown(sampleSnapshot())

	assert.True(t, strings.HasPrefix(md, "# robots\n\nSchool fair projects\n"))
	assert.Contains(t, md, "_Session 42 · 4 cards · active_")
	assert.Contains(t, md, "## Ideas\n\n- Line follower\n- Cardboard arm\n  with servos\n")
	assert.Contains(t, md, "## AI suggestions :sparkles:\n\n- Add sensors\n")
	assert.Contains(t, md, "## Groups\n\n- **Hardware**: Things with wires\n")
	assert.Less(t, strings.Index(md, "## Ideas"), strings.Index(md, "## AI suggestions"))
}

func TestMarkdownWithoutTheme(t *testing.T) {
	md := Markdown(model.Snapshot{Session: model.Session{ID: 7}})
	assert.True(t, strings.HasPrefix(md, "# Brainstorm\n"))
	assert.NotContains(t, md, "## ")
}

func TestHTMLEscapesCardText(t *testing.T) {
	snap := sampleSnapshot()
	snap.Cards = append(snap.Cards, model.Card{ID: 5, Text: "<script>alert(1)</script>", Category: model.CategoryManual})

	b, err := HTML(snap)
	require.NoError(t, err)
	out := string(b)

	assert.Contains(t, out, "<title>robots</title>")
	assert.Contains(t, out, "<h2>Ideas</h2>")
	assert.NotContains(t, out, ":sparkles:")
	assert.NotContains(t, out, "<script>")
}

func TestRenderForTerminal(t *testing.T) {
	out, err := Render(sampleSnapshot(), 60, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "robots")
	assert.Contains(t, out, "Line follower")
}

func TestWriteFormats(t *testing.T) {
	snap := sampleSnapshot()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap, "json", false))
	assert.Contains(t, buf.String(), `"theme":"robots"`)

	buf.Reset()
	require.NoError(t, Write(&buf, snap, "yaml", false))
	assert.Contains(t, buf.String(), "theme: robots")

	buf.Reset()
	require.NoError(t, Write(&buf, snap, "md", false))
	assert.True(t, strings.HasPrefix(buf.String(), "# robots"))

	assert.Error(t, Write(&buf, snap, "pdf", false))
}
