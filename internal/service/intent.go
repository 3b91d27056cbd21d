package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/asktube/asktube/internal/domain"
)

const intentPrompt = `Classify the user's question about a video into exactly one of two categories.

Categories:
- FULL_VIDEO_SUMMARY: the user wants an overview, summary, recap, or the main points of the entire video.
- SPECIFIC_QUERY: the user asks about a particular topic, moment, detail, or anything answerable from a part of the video.

Question: %s

Respond with exactly one word: FULL_VIDEO_SUMMARY or SPECIFIC_QUERY.`

// IntentClassifier decides whether a question asks for a whole-video summary
// or targets specific content.
type IntentClassifier struct {
	llm Generator
}

func NewIntentClassifier(llm Generator) *IntentClassifier {
	return &IntentClassifier{llm: llm}
}

// Classify routes a question to the summary or retrieval path. Classification
// is best effort: any failure or unrecognized response falls back to the
// specific-query path, which handles summary-like questions acceptably via
// retrieval.
func (c *IntentClassifier) Classify(ctx context.Context, query string) domain.QueryIntent {
	out, err := c.llm.Generate(ctx, fmt.Sprintf(intentPrompt, query))
	if err != nil {
		log.Printf("intent: classification failed, defaulting to specific query: %v", err)
		return domain.IntentSpecificQuery
	}

	if strings.Contains(strings.ToUpper(out), "FULL_VIDEO_SUMMARY") {
		return domain.IntentFullVideoSummary
	}
	return domain.IntentSpecificQuery
}
