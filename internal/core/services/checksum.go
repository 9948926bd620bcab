package services

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

// Checksum fingerprints an untransformed payload.
// The payload is serialised as RFC 8785 canonical JSON (sorted keys, no
// whitespace) and digested with MD5. The hex digest is the ledger key, so
// changing either step invalidates every existing ledger.
func Checksum(payload *domain.LogPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalise payload: %w", err)
	}

	sum := md5.Sum(canonical) //nolint:gosec // see import
	return hex.EncodeToString(sum[:]), nil
}
