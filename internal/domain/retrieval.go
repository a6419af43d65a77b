package domain

// RetrievedChunk is one resume segment returned by the vector index for a
// query, ordered by descending similarity score. Produced transiently per
// request; the index itself owns the persisted vectors.
type RetrievedChunk struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// IndexMatch is a raw nearest-neighbor hit as returned by the vector index,
// before the text payload is lifted out of the metadata. The metadata is
// expected to carry a "text" field plus optional provenance keys
// (source, chunk_index, page).
type IndexMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}
