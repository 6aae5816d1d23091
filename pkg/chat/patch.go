package chat

// MessagePatch carries a partial update for an existing message. Nil fields
// are left untouched; nil slices likewise.
type MessagePatch struct {
	Content    *string
	Provider   *string
	Model      *string
	Sources    []Source
	Confidence *float64
	Route      *string
	Outline    []string

	IsStreaming     *bool
	StreamingStatus *string

	SessionID        *string
	CanGoDeeper      *bool
	DeeperSuggestion *string
	DeeperAnalysis   *string
	IsLoadingDeeper  *bool
}

// apply merges the patch into m.
func (m *Message) apply(p MessagePatch) {
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.Provider != nil {
		m.Provider = *p.Provider
	}
	if p.Model != nil {
		m.Model = *p.Model
	}
	if p.Sources != nil {
		m.Sources = p.Sources
	}
	if p.Confidence != nil {
		m.Confidence = p.Confidence
	}
	if p.Route != nil {
		m.Route = *p.Route
	}
	if p.Outline != nil {
		m.Outline = p.Outline
	}
	if p.IsStreaming != nil {
		m.IsStreaming = *p.IsStreaming
	}
	if p.StreamingStatus != nil {
		m.StreamingStatus = *p.StreamingStatus
	}
	// A session identifier is written once and never reassigned.
	if p.SessionID != nil && m.SessionID == "" {
		m.SessionID = *p.SessionID
	}
	if p.CanGoDeeper != nil {
		m.CanGoDeeper = *p.CanGoDeeper
	}
	if p.DeeperSuggestion != nil {
		m.DeeperSuggestion = *p.DeeperSuggestion
	}
	if p.DeeperAnalysis != nil {
		m.DeeperAnalysis = *p.DeeperAnalysis
	}
	if p.IsLoadingDeeper != nil {
		m.IsLoadingDeeper = *p.IsLoadingDeeper
	}
}

// String returns a pointer to s, for building patches.
func String(s string) *string {
	return &s
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool {
	return &b
}

// Float returns a pointer to f, for building patches.
func Float(f float64) *float64 {
	return &f
}
