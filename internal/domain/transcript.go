package domain

// TranscriptSegment is a single caption line as returned by the transcript
// provider. Segments are ordered by their appearance in the video and are
// immutable once fetched.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
}
