package domain

// QueryIntent classifies what a chat question is asking for.
type QueryIntent string

const (
	// IntentFullVideoSummary means the user wants an overview of the whole video.
	IntentFullVideoSummary QueryIntent = "full_video_summary"
	// IntentSpecificQuery means the user is asking about a particular topic.
	IntentSpecificQuery QueryIntent = "specific_query"
)
