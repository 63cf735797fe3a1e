package db

import (
	"errors"
	"strconv"
)

// DistanceMetric used by vector fields.
type DistanceMetric string

const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
	// DistanceCosine is cosine distance (1 - cosine similarity).
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm selects the vector index algorithm.
type VectorAlgorithm string

const (
	// VectorHNSW is the approximate HNSW graph.
	VectorHNSW VectorAlgorithm = "HNSW"
	// VectorFlat is exact brute-force search.
	VectorFlat VectorAlgorithm = "FLAT"
)

// IsValid reports whether a is a supported algorithm.
func (a VectorAlgorithm) IsValid() bool {
	return a == VectorHNSW || a == VectorFlat
}

// IndexFieldType enumerates supported FT schema field types.
type IndexFieldType int

const (
	// IndexFieldText is a full-text field scored by BM25.
	IndexFieldText IndexFieldType = iota
	// IndexFieldTag is an exact-match tag field.
	IndexFieldTag
	// IndexFieldNumeric is a numeric range field.
	IndexFieldNumeric
	// IndexFieldVector is a FLOAT32 vector field.
	IndexFieldVector
)

// IndexField describes a single field in an FT schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TEXT
	Weight float64 // 0 means the server default of 1

	// VECTOR
	VectorAlgo        VectorAlgorithm
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition is a complete FT.CREATE definition over hashes.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Weight < 0 {
			return errors.New("field weight must be non-negative: " + f.Name)
		}
		if f.Type == IndexFieldVector {
			if f.VectorDim <= 0 {
				return errors.New("vector field requires positive DIM")
			}
			if f.VectorAlgo != "" && !f.VectorAlgo.IsValid() {
				return errors.New("unknown vector algorithm: " + string(f.VectorAlgo))
			}
		}
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
