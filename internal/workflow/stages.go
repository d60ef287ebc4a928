package workflow

import (
	"context"
	"fmt"
	"strings"

	"meddoc-rag/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tool names recorded in the ToolsUsed audit log.
const (
	toolChunkText   = "semantic_chunk_text"
	toolStoreIndex  = "store_vector_index"
	toolQueryIndex  = "query_vector_index"
	toolResearch    = "research_medical_question"
	toolAnalyzeText = "analyze_medical_text"
	toolPrompt      = "prompt_engineer"
)

// Marker headings used to assemble and later dissect the combined analysis.
const (
	researchHeading = "**Medical Question Analysis:**"
	analysisHeading = "**Document Content Analysis:**"
	chunksHeading   = "**Top 5 Most Relevant Document Chunks:**"
)

// fallbackContextChars is how much raw document text feeds the analysis call
// when retrieval produces nothing.
const fallbackContextChars = 2000

// analysisChunkLimit is how many top chunks feed the text-analysis call.
const analysisChunkLimit = 3

// relevantChunkLimit is how many chunks are persisted for prompt assembly.
const relevantChunkLimit = 5

// processDocument chunks the uploaded document and stores its embeddings.
// Reads PDFContent and PDFMetadata; writes DocumentID, PDFChunks, Analysis
// and ToolsUsed.
//
// Chunking failures are deliberately soft: the failure message lands in
// Analysis and the later stages still run, degrading to general research.
func (a *Agent) processDocument(ctx context.Context, s *State) error {
	if s.PDFContent == "" || s.PDFMetadata == nil {
		return nil
	}

	s.DocumentID = uuid.NewString()[:8]

	result, err := a.chunker.Chunk(s.PDFContent, s.PDFMetadata.Filename)
	if err != nil {
		a.log.Warn("document processing failed",
			zap.String("document_id", s.DocumentID),
			zap.Error(err))
		s.Analysis = fmt.Sprintf("**Document Processing Failed**: %v", err)
		return nil
	}
	s.PDFChunks = result.Chunks

	status, err := a.index.Store(ctx, s.DocumentID, result.Chunks, result.Metadata)
	if err != nil {
		a.log.Warn("vector index storage failed",
			zap.String("document_id", s.DocumentID),
			zap.Error(err))
		status = fmt.Sprintf("Vector index storage failed: %v", err)
	}

	s.ToolsUsed = append(s.ToolsUsed, toolChunkText, toolStoreIndex)
	s.Analysis = fmt.Sprintf("**Document Processed Successfully**\n\n%s\n\nTotal chunks: %d", status, result.TotalChunks)

	a.log.Info("document ingested",
		zap.String("document_id", s.DocumentID),
		zap.Int("chunks", result.TotalChunks))
	return nil
}

// analyzeCombined researches the question, retrieves matching chunks and
// analyzes the document context, then concatenates all three into Analysis.
// Reads Question, DocumentID and PDFContent; writes Analysis, RelevantChunks
// and ToolsUsed.
func (a *Agent) analyzeCombined(ctx context.Context, s *State) error {
	// General research always runs, with or without a document.
	research, err := a.generator.Generate(ctx,
		fmt.Sprintf("Provide evidence-based medical information for: %s", s.Question))
	if err != nil {
		return fmt.Errorf("research generation failed: %w", err)
	}

	relevantSection := ""
	analysisContent := ""
	if s.DocumentID != "" {
		result, rerr := a.retriever.Retrieve(ctx, s.Question, relevantChunkLimit)
		if rerr != nil {
			a.log.Warn("retrieval failed, falling back to raw content",
				zap.String("document_id", s.DocumentID),
				zap.Error(rerr))
		}
		if rerr == nil && result.Count > 0 {
			entries := make([]string, 0, len(result.FormattedChunks))
			for _, chunk := range result.FormattedChunks {
				entries = append(entries, fmt.Sprintf("**Rank %d (Similarity: %v) - %s:**\n%s",
					chunk.Rank, chunk.SimilarityScore, chunk.ChunkInfo, chunk.Content))
			}
			relevantSection = fmt.Sprintf("\n%s\n\n%s\n\n---\n", chunksHeading, strings.Join(entries, "\n"))

			top := result.FormattedChunks
			if len(top) > analysisChunkLimit {
				top = top[:analysisChunkLimit]
			}
			contents := make([]string, 0, len(top))
			for _, chunk := range top {
				contents = append(contents, chunk.Content)
			}
			analysisContent = strings.Join(contents, "\n\n")

			keep := result.FormattedChunks
			if len(keep) > relevantChunkLimit {
				keep = keep[:relevantChunkLimit]
			}
			for _, chunk := range keep {
				s.RelevantChunks = append(s.RelevantChunks, models.RelevantChunk{
					Content:     chunk.Content,
					ReferenceID: chunk.ReferenceID,
					PageRef:     chunk.PageRef,
					Preview:     chunk.Preview,
				})
			}
			s.ToolsUsed = append(s.ToolsUsed, toolQueryIndex)
		} else {
			analysisContent = truncate(s.PDFContent, fallbackContextChars)
		}
	} else {
		analysisContent = truncate(s.PDFContent, fallbackContextChars)
	}

	analysis, err := a.generator.Generate(ctx,
		fmt.Sprintf("Analyze this medical text for key findings, diagnoses, and significant terms: %s", analysisContent))
	if err != nil {
		return fmt.Errorf("text analysis failed: %w", err)
	}

	s.Analysis = fmt.Sprintf(`%s
%s

%s
%s

%s

**Combined Medical Insights:**
Based on the medical question and the provided document analysis, here are the key findings and recommendations combining both the research knowledge and document-specific information.`,
		researchHeading, research, analysisHeading, analysis, relevantSection)
	s.ToolsUsed = append(s.ToolsUsed, toolResearch, toolAnalyzeText)
	return nil
}

// engineerPrompt extracts the research context and relevant chunks from the
// accumulated state, renders the instruction template and overwrites Analysis
// with the generated answer. Reads Question, Analysis and RelevantChunks;
// writes Analysis and ToolsUsed.
func (a *Agent) engineerPrompt(ctx context.Context, s *State) error {
	chunkTexts := make([]string, 0, relevantChunkLimit)
	for i, chunk := range s.RelevantChunks {
		if i >= relevantChunkLimit {
			break
		}
		chunkTexts = append(chunkTexts, fmt.Sprintf("%s %s:\n%s", chunk.ReferenceID, chunk.PageRef, chunk.Content))
	}

	// The research context is everything before the document-analysis
	// heading, with its own heading stripped.
	research := s.Analysis
	if i := strings.Index(research, analysisHeading); i >= 0 {
		research = research[:i]
	}
	research = strings.TrimSpace(strings.ReplaceAll(research, researchHeading, ""))

	rendered := a.assembler.Render(s.Question, strings.Join(chunkTexts, "\n\n"), research)
	generated, err := a.generator.Generate(ctx, rendered)
	if err != nil {
		return fmt.Errorf("answer generation failed: %w", err)
	}

	s.Analysis = generated
	s.ToolsUsed = append(s.ToolsUsed, toolPrompt)
	return nil
}

// generateResponse wraps the analysis in the final banner and appends the
// tools footer. Reads Analysis and ToolsUsed; writes Analysis.
func (a *Agent) generateResponse(_ context.Context, s *State) error {
	note := ""
	if s.usedTool(toolQueryIndex) {
		note = " | Vector similarity search performed on document chunks"
	}

	s.Analysis = fmt.Sprintf(`**AI Medical Research Analysis**

%s

---
*Analysis completed using: %s%s*`,
		strings.TrimSpace(s.Analysis), strings.Join(s.ToolsUsed, ", "), note)
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
