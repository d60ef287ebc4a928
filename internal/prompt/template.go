// Package prompt renders the final instruction template fed to the
// text-generation service.
package prompt

import (
	"os"
	"strings"
)

// DefaultTemplatePath is where the external instruction template is looked
// for. Its absence is non-fatal; the built-in template is used instead.
const DefaultTemplatePath = "default_medical_prompt.txt"

const fallbackTemplate = `You are an expert medical AI assistant with access to relevant document chunks and research data.

INSTRUCTIONS:
1. Analyze the provided medical question and document chunks carefully
2. Provide evidence-based medical information
3. Be precise and professional in your language
4. If uncertain, clearly state limitations
5. Always recommend consulting healthcare professionals for medical decisions

RESPONSE FORMAT:
- Start with a clear, direct answer to the question
- Support your answer with evidence from the provided chunks
- Include relevant medical context and considerations
- End with appropriate disclaimers and recommendations

MEDICAL QUESTION: {question}

RELEVANT DOCUMENT CHUNKS:
{chunks}

RESEARCH CONTEXT:
{research}

Please provide a comprehensive medical analysis following the above instructions.`

// Assembler renders the instruction template with question, chunk and
// research substitutions.
type Assembler struct {
	path string
}

// NewAssembler creates an Assembler reading its template from path. An empty
// path uses DefaultTemplatePath.
func NewAssembler(path string) *Assembler {
	if path == "" {
		path = DefaultTemplatePath
	}
	return &Assembler{path: path}
}

// Render substitutes the three placeholders into the template. The template
// file is re-read on every call so edits take effect without a restart; when
// it cannot be read the built-in template is used. Missing inputs render as
// empty strings.
func (a *Assembler) Render(question, chunks, research string) string {
	template := fallbackTemplate
	if data, err := os.ReadFile(a.path); err == nil {
		template = string(data)
	}

	rendered := strings.ReplaceAll(template, "{question}", question)
	rendered = strings.ReplaceAll(rendered, "{chunks}", chunks)
	rendered = strings.ReplaceAll(rendered, "{research}", research)
	return rendered
}
