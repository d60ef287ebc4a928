package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFallbackTemplate(t *testing.T) {
	a := NewAssembler(filepath.Join(t.TempDir(), "missing.txt"))

	out := a.Render("What is the treatment?", "Section-1:\nRest and hydration.", "General research text.")

	assert.Contains(t, out, "MEDICAL QUESTION: What is the treatment?")
	assert.Contains(t, out, "Section-1:\nRest and hydration.")
	assert.Contains(t, out, "General research text.")
	assert.NotContains(t, out, "{question}")
	assert.NotContains(t, out, "{chunks}")
	assert.NotContains(t, out, "{research}")
}

func TestRenderExternalTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.txt")
	require.NoError(t, os.WriteFile(path, []byte("Q={question} C={chunks} R={research}"), 0o644))

	a := NewAssembler(path)
	out := a.Render("q", "c", "r")
	assert.Equal(t, "Q=q C=c R=r", out)
}

func TestRenderMissingInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.txt")
	require.NoError(t, os.WriteFile(path, []byte("[{question}][{chunks}][{research}]"), 0o644))

	a := NewAssembler(path)
	out := a.Render("", "", "")
	assert.Equal(t, "[][][]", out)
}

func TestNewAssemblerDefaultPath(t *testing.T) {
	a := NewAssembler("")
	assert.Equal(t, DefaultTemplatePath, a.path)
}
