package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Image content hashes feed every key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey joins kind with the digest of the JSON-encoded parts.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return kind + ":" + hex.EncodeToString(sum[:])
}

// Keyer derives cache keys.
type Keyer interface {
	// SignatureKey identifies the signature of one image.
	SignatureKey(imageHash string, opts SignatureKeyOpts) string

	// CompositeKey identifies a merged image built from ordered sources.
	CompositeKey(sourceHashes []string, opts CompositeKeyOpts) string
}

// SignatureKeyOpts holds the parameters a signature depends on.
type SignatureKeyOpts struct {
	GridSize   int `json:"grid_size"`
	SampleSize int `json:"sample_size"`
}

// CompositeKeyOpts holds the parameters a composite depends on.
type CompositeKeyOpts struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Interpolator  string `json:"interpolator"`
	VectorBackend string `json:"vector_backend"`
}

// DefaultKeyer produces "sig:<sha256>" and "composite:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SignatureKey implements [Keyer].
func (DefaultKeyer) SignatureKey(imageHash string, opts SignatureKeyOpts) string {
	return hashKey("sig", imageHash, opts)
}

// CompositeKey implements [Keyer]. Source order is significant.
func (DefaultKeyer) CompositeKey(sourceHashes []string, opts CompositeKeyOpts) string {
	return hashKey("composite", sourceHashes, opts)
}
