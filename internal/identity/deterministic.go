package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ItemUUID identifies a parsed item by collection and content hash, so an
// unchanged file keeps its ID across refreshes. Items without a hash fall
// back to their repository path.
func ItemUUID(collection, hash, path string) uuid.UUID {
	key := strings.TrimSpace(hash)
	if key == "" {
		key = "path:" + strings.TrimSpace(path)
	}
	return UUID("gitcontent:item:" + strings.ToLower(strings.TrimSpace(collection)) + ":" + key)
}

// CollectionUUID identifies a configured collection by name.
func CollectionUUID(name string) uuid.UUID {
	return UUID("gitcontent:collection:" + strings.ToLower(strings.TrimSpace(name)))
}
