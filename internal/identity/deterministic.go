package identity

import (
	"encoding/json"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/domain"
)

// UUID derives a stable id for kind from parts. Blank parts yield uuid.Nil.
func UUID(kind string, parts ...string) uuid.UUID {
	var key strings.Builder
	key.WriteString("invites:" + strings.TrimSpace(kind))
	blank := true
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			blank = false
		}
		key.WriteString(":" + part)
	}
	if blank {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(key.String(), hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key.String()))
	}
	return uid
}

// SiteUUID is the site id reserved for a task before anything is stored.
func SiteUUID(taskID uuid.UUID) uuid.UUID {
	if taskID == uuid.Nil {
		return uuid.Nil
	}
	return UUID("site", taskID.String())
}

// Fingerprint identifies a request after normalization, so whitespace and
// category casing do not change it.
func Fingerprint(req domain.GenerationRequest) string {
	payload, err := json.Marshal(req.Normalized())
	if err != nil {
		return ""
	}
	return UUID("request", string(payload)).String()
}
