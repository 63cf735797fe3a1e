package domain

// KeyPrefix is the default namespace for every key semseo writes.
const KeyPrefix = "semseo:"

// VectorConfig describes the embedding model in use.
type VectorConfig struct {
	Model      string
	Dimensions int
}

// DefaultVectorConfig matches sentence-transformers/all-MiniLM-L6-v2, the
// model used when no provider is configured.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:      "sentence-transformers/all-MiniLM-L6-v2",
		Dimensions: 384,
	}
}
