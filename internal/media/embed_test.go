package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values map[string]string
	err    error
}

func (s *fakeStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return json.RawMessage(value), true, nil
}

func dataURI(mime string, content []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
}

func TestEmbedLogo_Success(t *testing.T) {
	logoBytes := []byte("fake-png-bytes")
	store := &fakeStore{values: map[string]string{
		"media_logo123": `"` + dataURI("image/png", logoBytes) + `"`,
	}}

	asset := NewEmbedder(store).EmbedLogo(context.Background(), "/api/media/logo123")

	require.NotNil(t, asset)
	assert.Equal(t, "logo-logo123", asset.ContentID)
	assert.Equal(t, "image/png", asset.MIMEType)
	assert.Equal(t, logoBytes, asset.Bytes)
	assert.Equal(t, "cid:logo-logo123", asset.CIDRef())
}

func TestEmbedLogo_RefMismatchIsNil(t *testing.T) {
	embedder := NewEmbedder(&fakeStore{values: map[string]string{}})

	assert.Nil(t, embedder.EmbedLogo(context.Background(), ""))
	assert.Nil(t, embedder.EmbedLogo(context.Background(), "https://cdn.example.com/logo.png"))
	assert.Nil(t, embedder.EmbedLogo(context.Background(), "/api/media/"))
}

func TestEmbedLogo_MissingKeyIsNil(t *testing.T) {
	embedder := NewEmbedder(&fakeStore{values: map[string]string{}})

	assert.Nil(t, embedder.EmbedLogo(context.Background(), "/api/media/absent"))
}

func TestEmbedLogo_StoreErrorIsNil(t *testing.T) {
	embedder := NewEmbedder(&fakeStore{err: errors.New("store down")})

	assert.Nil(t, embedder.EmbedLogo(context.Background(), "/api/media/logo123"))
}

func TestEmbedLogo_BadPayloadIsNil(t *testing.T) {
	store := &fakeStore{values: map[string]string{
		"media_notjson":   `{"nope": true}`,
		"media_noprefix":  `"https://example.com/logo.png"`,
		"media_badbase64": `"data:image/png;base64,!!!not-base64!!!"`,
	}}
	embedder := NewEmbedder(store)

	assert.Nil(t, embedder.EmbedLogo(context.Background(), "/api/media/notjson"))
	assert.Nil(t, embedder.EmbedLogo(context.Background(), "/api/media/noprefix"))
	assert.Nil(t, embedder.EmbedLogo(context.Background(), "/api/media/badbase64"))
}
