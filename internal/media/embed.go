package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
)

const refPrefix = "/api/media/"

// Store is the read side of the key -> JSON store holding media payloads
// under "media_{key}" keys as base64 data-URI strings.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
}

// InlineAsset is binary content ready for CID embedding in an email body.
type InlineAsset struct {
	ContentID string
	Bytes     []byte
	MIMEType  string
}

// CIDRef returns the "cid:" sentinel the template layer should emit in
// place of a public URL.
func (a *InlineAsset) CIDRef() string {
	return "cid:" + a.ContentID
}

type Embedder struct {
	store Store
}

func NewEmbedder(store Store) *Embedder {
	return &Embedder{store: store}
}

// EmbedLogo resolves a public "/api/media/{key}" reference into inline
// binary content. Nil is the expected "no logo" result, returned on any
// mismatch or failure; it is not an error condition.
func (e *Embedder) EmbedLogo(ctx context.Context, ref string) *InlineAsset {
	key, ok := strings.CutPrefix(ref, refPrefix)
	if !ok || key == "" {
		return nil
	}

	raw, found, err := e.store.Get(ctx, "media_"+key)
	if err != nil {
		slog.Warn("media lookup failed, skipping logo", "key", key, "error", err)
		return nil
	}
	if !found {
		return nil
	}

	var dataURI string
	if err := json.Unmarshal(raw, &dataURI); err != nil {
		slog.Warn("media payload is not a string, skipping logo", "key", key, "error", err)
		return nil
	}

	mimeType, payload, ok := splitDataURI(dataURI)
	if !ok {
		slog.Warn("media payload is not a base64 data URI, skipping logo", "key", key)
		return nil
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		slog.Warn("media payload failed to decode, skipping logo", "key", key, "error", err)
		return nil
	}

	return &InlineAsset{
		ContentID: "logo-" + key,
		Bytes:     decoded,
		MIMEType:  mimeType,
	}
}

// splitDataURI parses "data:<mime>;base64,<payload>".
func splitDataURI(s string) (mimeType, payload string, ok bool) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", "", false
	}
	mimeType, payload, ok = strings.Cut(rest, ";base64,")
	if !ok || mimeType == "" || payload == "" {
		return "", "", false
	}
	return mimeType, payload, true
}
