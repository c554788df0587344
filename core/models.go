package core

import "time"

// Retrieval sources reported by the recommendation orchestrator.
const (
	// SourceCache indicates the recommendations were served from the cache store.
	SourceCache = "cache"
	// SourceComputed indicates the recommendations were computed from the
	// persistent stores on a cache miss.
	SourceComputed = "computed"
)

// ConversationRecord represents a single user-authored message event.
// It may be enriched with an embedding during ingestion.
type ConversationRecord struct {
	MessageID  string    `json:"message_id" bson:"message_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	CampaignID string    `json:"campaign_id" bson:"campaign_id"`
	Timestamp  string    `json:"timestamp" bson:"timestamp"` // RFC 3339
	Intent     string    `json:"intent" bson:"intent"`
	Message    string    `json:"message" bson:"message"`
	Embedding  []float32 `json:"embedding,omitempty" bson:"-"`
}

// Document returns a copy of the record without its embedding.
// The document store holds record text and labels; embeddings live only
// in the vector store.
func (r *ConversationRecord) Document() ConversationRecord {
	doc := *r
	doc.Embedding = nil
	return doc
}

// ParseTimestamp parses the record's timestamp string.
func (r *ConversationRecord) ParseTimestamp() (time.Time, error) {
	return time.Parse(time.RFC3339, r.Timestamp)
}

// SimilarityEntry is the projection of a ConversationRecord stored in the
// vector store. One entry per record.
type SimilarityEntry struct {
	MessageID string
	UserID    string
	Embedding []float32
}

// SimilarityMatch is a single nearest-neighbor hit from the vector store.
// Distance is the L2 distance between the query and the stored embedding,
// so lower is more similar.
type SimilarityMatch struct {
	MessageID string
	UserID    string
	Distance  float32
}

// EngagementAggregate is one row of the analytics store: the number of
// conversation records a user produced for a campaign.
type EngagementAggregate struct {
	UserID          string
	CampaignID      string
	EngagementCount int64
}

// RankedCampaign is a campaign with its total engagement across all users,
// as returned by the analytics store.
type RankedCampaign struct {
	CampaignID      string
	TotalEngagement int64
}

// Recommendation is a single ranked campaign recommendation.
type Recommendation struct {
	CampaignID   string `json:"campaign_id"`
	RankingScore int64  `json:"ranking_score"`
	Reason       string `json:"reason"`
}

// RecommendationSet is the full response for one user, including where the
// list came from.
type RecommendationSet struct {
	UserID          string           `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	RetrievalSource string           `json:"retrieval_source"`
}
