package topics_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/jibs-autolinker/pkg/cobrax/topics"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFS() fstest.MapFS {
	return fstest.MapFS{
		"configuration.md":   {Data: []byte("# Configuration\n\nThe config file.\n")},
		"layout.txt":         {Data: []byte("Directory layout\n")},
		"option-dry-run.txt": {Data: []byte("Dry run explained\n")},
		"notes.html":         {Data: []byte("<p>ignored</p>")},
		"nested/scopes.md":   {Data: []byte("Scoped packages\n")},
	}
}

func TestScan(t *testing.T) {
	tm := topics.New(topicFS(), topics.Options{})
	require.NoError(t, tm.Scan())

	assert.Equal(t, []string{"configuration", "layout", "option-dry-run", "scopes"}, tm.ListTopics())

	topic, ok := tm.GetTopic("scopes")
	require.True(t, ok)
	assert.Equal(t, "nested/scopes.md", topic.FilePath)
}

func TestScan_NilFS(t *testing.T) {
	tm := topics.New(nil, topics.Options{})
	require.NoError(t, tm.Scan())
	assert.Empty(t, tm.ListTopics())
}

func TestScan_CustomExtensions(t *testing.T) {
	tm := topics.New(topicFS(), topics.Options{Extensions: []string{".html"}})
	require.NoError(t, tm.Scan())
	assert.Equal(t, []string{"notes"}, tm.ListTopics())
}

func TestGetTopic(t *testing.T) {
	tm := topics.New(topicFS(), topics.Options{})
	require.NoError(t, tm.Scan())

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"configuration", "configuration", true},
		{"--dry-run", "option-dry-run", true},
		{"-dry-run", "option-dry-run", true},
		{"dry-run", "option-dry-run", true},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			topic, ok := tm.GetTopic(tt.query)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, topic.Name)
			}
		})
	}
}

type upperRenderer struct{}

func (upperRenderer) Render(content, format string) string {
	return format + ":" + strings.ToUpper(content)
}

func newRoot(t *testing.T, opts topics.Options) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	root := &cobra.Command{Use: "tool", Short: "A tool", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(&cobra.Command{Use: "link", Short: "Link things", Run: func(*cobra.Command, []string) {}})

	_, err := topics.Initialize(root, topicFS(), opts)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	return root, buf
}

func TestInitialize_HelpTopic(t *testing.T) {
	root, buf := newRoot(t, topics.Options{Renderer: upperRenderer{}})

	root.SetArgs([]string{"help", "configuration"})
	require.NoError(t, root.Execute())
	assert.Equal(t, ".md:# CONFIGURATION\n\nTHE CONFIG FILE.\n", buf.String())
}

func TestInitialize_HelpFlagTopic(t *testing.T) {
	root, buf := newRoot(t, topics.Options{})

	root.SetArgs([]string{"help", "--", "--dry-run"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "Dry run explained\n", buf.String())
}

func TestInitialize_TopicList(t *testing.T) {
	root, buf := newRoot(t, topics.Options{})

	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "General topics:\n  configuration\n  layout\n  scopes\n")
	assert.Contains(t, out, "Option topics:\n  --dry-run\n")
	assert.Contains(t, out, "Use 'tool help <topic>'")
}

func TestInitialize_FallsBackToCommandHelp(t *testing.T) {
	root, buf := newRoot(t, topics.Options{})

	root.SetArgs([]string{"help", "link"})
	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Link things")
}

func TestPlainRenderer(t *testing.T) {
	assert.Equal(t, "# x", (&topics.PlainRenderer{}).Render("# x", ".md"))
}

func TestGlamourRenderer(t *testing.T) {
	r := &topics.GlamourRenderer{Style: "notty", Width: 40}

	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))

	rendered := r.Render("# Title\n\nSome *markdown* text.\n", ".md")
	assert.Contains(t, rendered, "Title")
	assert.Contains(t, rendered, "markdown")
}
