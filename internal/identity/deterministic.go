package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const keyPrefix = "nycb2b:"

// UUID derives a stable UUID from key. Keys must carry a type prefix so two
// kinds of record never collide.
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

// RecordUUID returns the seed identifier for a record of kind with slug.
func RecordUUID(kind, slug string) uuid.UUID {
	return UUID(keyPrefix + strings.ToLower(strings.TrimSpace(kind)) + ":" + strings.ToLower(strings.TrimSpace(slug)))
}

// Generator yields IDs for new records.
type Generator func() uuid.UUID

// RandomGenerator returns uuid.New.
func RandomGenerator() Generator {
	return uuid.New
}
