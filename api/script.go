package api

import (
	"fmt"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/sse"
)

const (
	mockModel    = "gloss-dev-1"
	mockProvider = "glossdev"
)

func floatPtr(f float64) *float64 { return &f }

// frame is one scripted SSE event.
type frame struct {
	event   string
	payload any
}

// scriptAnswer builds the canned standard answer for a question.
func scriptAnswer(question string) *askData {
	return &askData{
		Answer: fmt.Sprintf("Here is the short answer to %q: the article addresses this directly in its second section.", question),
		Sources: []chat.Source{{
			Title:   "The article",
			Excerpt: "The passage most relevant to this question.",
			Score:   0.92,
		}},
		Confidence:     floatPtr(0.9),
		Provider:       mockProvider,
		RetrievalStats: &retrievalStats{ChunksRetrieved: 5, TopScore: 0.92},
	}
}

// researchFrames scripts one research turn. Follow-ups (sessions holding
// more than one question) get continuation wording.
func researchFrames(sess *session, question string, remaining int) []frame {
	outline := []string{"What the article claims", "Supporting evidence", "Open caveats"}
	answer := fmt.Sprintf("Research answer to %q: the article argues this at length, citing two supporting studies.", question)
	if len(sess.Questions) > 1 {
		outline = []string{"Continuing the thread", "New evidence"}
		answer = fmt.Sprintf("Following up on %q: building on the earlier answer, the article adds one more consideration.", question)
	}

	return []frame{
		{event: sse.TypeConnected, payload: connectedEvent{Type: "connected"}},
		{event: sse.TypeOutline, payload: outlineEvent{Outline: outline, Model: mockModel}},
		{event: sse.TypeStatus, payload: statusEvent{Message: "Reading the article"}},
		{event: sse.TypeAnswer, payload: answerEvent{Answer: answer, Model: mockModel}},
		{event: sse.TypeDone, payload: doneEvent{
			SessionID:        sess.ID,
			CanGoDeeper:      true,
			DeeperSuggestion: "Ask how the studies were selected",
			RemainingQuota:   &remaining,
		}},
	}
}

// deeperFrames scripts the deeper sub-session for an existing session.
func deeperFrames(sess *session, remaining int) []frame {
	topic := sess.Questions[len(sess.Questions)-1]

	return []frame{
		{event: sse.TypeAnalysis, payload: analysisEvent{
			Analysis: fmt.Sprintf("A closer look at %q: the article's method rests on three assumptions worth checking against the cited studies.", topic),
		}},
		{event: sse.TypeDone, payload: doneEvent{
			SessionID:      sess.ID,
			RemainingQuota: &remaining,
		}},
	}
}
