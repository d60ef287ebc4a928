package workflow

import "meddoc-rag/internal/models"

// State is the single mutable record threaded through the pipeline stages.
// Each run owns its State exclusively; it is created per request and
// discarded once the final stage returns its Analysis as the answer.
type State struct {
	Question       string                   `json:"question"`
	PDFContent     string                   `json:"pdf_content"`
	Analysis       string                   `json:"analysis"`
	ToolsUsed      []string                 `json:"tools_used"`
	PDFChunks      []string                 `json:"pdf_chunks"`
	PDFMetadata    *models.DocumentMetadata `json:"pdf_metadata"`
	DocumentID     string                   `json:"document_id"`
	RelevantChunks []models.RelevantChunk   `json:"relevant_chunks"`
	SessionID      string                   `json:"session_id"`
	QueryID        string                   `json:"query_id"`
}

func (s *State) usedTool(name string) bool {
	for _, tool := range s.ToolsUsed {
		if tool == name {
			return true
		}
	}
	return false
}
