package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpick/internal/domain"
	"cloudpick/internal/services/console/consoletest"
	"cloudpick/internal/store"
)

// fakeStore pages through keys two at a time.
type fakeStore struct {
	mu      sync.Mutex
	keys    []string
	bodies  map[string]string
	removed []string
	tokens  []string
}

func object(key string) domain.Entity {
	e, _ := domain.NewEntityFromFields("Key",
		domain.Field{Name: "Key", Value: key},
		domain.Field{Name: "Size", Value: int64(len(key))},
		domain.Field{Name: "LastModified", Value: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	)
	return e
}

func (f *fakeStore) ListBuckets(context.Context) ([]domain.Entity, error) {
	a, _ := domain.NewEntity("Name", map[string]any{"Name": "assets"})
	b, _ := domain.NewEntity("Name", map[string]any{"Name": "backups"})
	return []domain.Entity{a, b}, nil
}

func (f *fakeStore) ListObjectsPage(_ context.Context, bucket, prefix, token string) (domain.Page[domain.Entity], error) {
	f.tokens = append(f.tokens, bucket+":"+prefix+":"+token)
	var matching []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			matching = append(matching, k)
		}
	}
	start := 0
	if token != "" {
		start = 2
	}
	end := min(start+2, len(matching))
	page := domain.Page[domain.Entity]{}
	for _, k := range matching[start:end] {
		page.Items = append(page.Items, object(k))
	}
	if start == 0 && end < len(matching) {
		page.NextToken = "next"
	}
	return page, nil
}

func (f *fakeStore) StatObject(_ context.Context, _, key string) (domain.Entity, error) {
	return domain.NewEntity("Key", map[string]any{"Key": key, "ContentType": "image/png"})
}

func (f *fakeStore) GetObject(_ context.Context, _, key string) (io.ReadCloser, error) {
	body, ok := f.bodies[key]
	if !ok {
		return nil, &domain.TransportError{Endpoint: domain.Endpoint{Service: "s3", Operation: "get-object"}, Diagnostic: "NoSuchKey"}
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeStore) RemoveObject(_ context.Context, _, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == "img/locked.png" {
		return errors.New("AccessDenied")
	}
	f.removed = append(f.removed, key)
	return nil
}

func newFake() *fakeStore {
	return &fakeStore{
		keys:   []string{"img/", "img/a.png", "img/b.png", "img/locked.png"},
		bodies: map[string]string{"img/a.png": "AAA", "img/b.png": "BBB"},
	}
}

func TestBuckets(t *testing.T) {
	h := consoletest.New(consoletest.NewSelector(consoletest.Choose("backups")))
	require.NoError(t, New(newFake(), nil, h.Console).Buckets(context.Background(), nil))
	assert.Equal(t, "backups\n", h.Out.String())
}

func TestList_PicksBucketThenKeys(t *testing.T) {
	fs := newFake()
	h := consoletest.New(consoletest.NewSelector(
		consoletest.Choose("assets"),
		consoletest.Choose("img/locked.png", "img/a.png"),
	))

	require.NoError(t, New(fs, nil, h.Console).List(context.Background(), nil))
	assert.Equal(t, "img/locked.png\nimg/a.png\n", h.Out.String())
	assert.Equal(t, []string{"assets::", "assets::next"}, fs.tokens)
	require.Len(t, h.Selector.Offered, 2)
	assert.Len(t, h.Selector.Offered[1], 4)
}

func TestDescribe(t *testing.T) {
	h := consoletest.New(consoletest.NewSelector(consoletest.Choose("img/b.png")))
	require.NoError(t, New(newFake(), nil, h.Console).Describe(context.Background(), []string{"assets", "img/"}))
	assert.Contains(t, h.Out.String(), "ContentType: image/png")
	assert.Contains(t, h.Out.String(), "Key: img/b.png")
}

func TestRemove_ConfirmsAndSummarizes(t *testing.T) {
	fs := newFake()
	h := consoletest.New(consoletest.NewSelector(consoletest.Choose("img/a.png", "img/locked.png", "img/b.png")))
	h.Prompter.Answers = []bool{true}

	require.NoError(t, New(fs, nil, h.Console).Remove(context.Background(), []string{"assets"}))
	assert.Equal(t, []string{"img/a.png", "img/b.png"}, fs.removed)
	assert.Equal(t, []string{"Delete 3 object(s) from assets?"}, h.Prompter.Messages)
	assert.Contains(t, h.Out.String(), "delete-object: 2 succeeded, 1 failed")
	assert.Contains(t, h.Out.String(), "img/locked.png: delete-object: AccessDenied")
}

func TestRemove_Declined(t *testing.T) {
	fs := newFake()
	h := consoletest.New(consoletest.NewSelector(consoletest.Choose("img/a.png")))
	h.Prompter.Answers = []bool{false}

	require.NoError(t, New(fs, nil, h.Console).Remove(context.Background(), []string{"assets"}))
	assert.Empty(t, fs.removed)
}

func TestDownload_WritesFilesAndSkipsFolders(t *testing.T) {
	root := t.TempDir()
	fs := newFake()
	h := consoletest.New(consoletest.NewSelector(consoletest.Choose("img/a.png", "img/locked.png")))

	require.NoError(t, New(fs, store.NewAtomicWriter(root), h.Console).Download(context.Background(), []string{"assets", "img/"}))

	for _, label := range h.Selector.Offered[0] {
		assert.NotContains(t, label, "⟨img/⟩")
	}
	b, err := os.ReadFile(filepath.Join(root, "img", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "AAA", string(b))
	_, err = os.Stat(filepath.Join(root, "img", "locked.png"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, h.Out.String(), "download: 1 succeeded, 1 failed")
}

func TestDownload_NothingSelected(t *testing.T) {
	h := consoletest.New(consoletest.NewSelector(nil))
	err := New(newFake(), store.NewAtomicWriter(t.TempDir()), h.Console).Download(context.Background(), []string{"assets"})
	assert.True(t, domain.NoSelection(err))
}
