package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpick/internal/domain"
	"cloudpick/internal/paginate"
)

// fakeAPI serves a fixed key set in pages of pageSize.
type fakeAPI struct {
	keys     []string
	failAt   string
	tokens   []string
	removed  []string
	maxKeys  int
	statErr  error
	contents map[string]string
}

func (f *fakeAPI) ListBuckets(context.Context) ([]minio.BucketInfo, error) {
	return []minio.BucketInfo{{Name: "logs", CreationDate: time.Unix(0, 0).UTC()}, {Name: "media"}}, nil
}

func (f *fakeAPI) ListObjectsV2(_, prefix, _, token, _ string, maxKeys int) (minio.ListBucketV2Result, error) {
	f.tokens = append(f.tokens, token)
	f.maxKeys = maxKeys
	if token != "" && token == f.failAt {
		return minio.ListBucketV2Result{}, minio.ErrorResponse{Code: "SlowDown", Message: "please reduce your request rate"}
	}

	var matching []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			matching = append(matching, k)
		}
	}
	start := 0
	if token != "" {
		fmt.Sscanf(token, "t%d", &start)
	}
	end := min(start+maxKeys, len(matching))

	res := minio.ListBucketV2Result{}
	for _, k := range matching[start:end] {
		res.Contents = append(res.Contents, minio.ObjectInfo{Key: k, Size: int64(len(k))})
	}
	if end < len(matching) {
		res.IsTruncated = true
		res.NextContinuationToken = fmt.Sprintf("t%d", end)
	}
	return res, nil
}

func (f *fakeAPI) StatObject(_ context.Context, _, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.statErr != nil {
		return minio.ObjectInfo{}, f.statErr
	}
	return minio.ObjectInfo{
		Key:          key,
		Size:         42,
		ContentType:  "text/plain",
		UserMetadata: minio.StringMap{"Owner": "ops"},
	}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, _, key string, _ minio.GetObjectOptions) (io.ReadCloser, minio.ObjectInfo, http.Header, error) {
	body, ok := f.contents[key]
	if !ok {
		return nil, minio.ObjectInfo{}, nil, minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return io.NopCloser(strings.NewReader(body)), minio.ObjectInfo{Key: key}, nil, nil
}

func (f *fakeAPI) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	f.removed = append(f.removed, key)
	return nil
}

func keys(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("data/%03d.csv", i)
	}
	return out
}

func TestListObjectsPage_EnumeratesEveryKey(t *testing.T) {
	api := &fakeAPI{keys: keys(7)}
	s := newClient(api, 3)

	got, err := paginate.Enumerate(context.Background(), func(ctx context.Context, token string) (domain.Page[domain.Entity], error) {
		return s.ListObjectsPage(ctx, "b", "data/", token)
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID())
	}
	assert.Equal(t, keys(7), ids)
	assert.Equal(t, []string{"", "t3", "t6"}, api.tokens)
	assert.Equal(t, 3, api.maxKeys)

	size, err := got[0].Int("Size")
	require.NoError(t, err)
	assert.Equal(t, int64(len("data/000.csv")), size)
}

func TestListObjectsPage_FailureKeepsPartial(t *testing.T) {
	api := &fakeAPI{keys: keys(7), failAt: "t6"}
	s := newClient(api, 3)

	got, err := paginate.Enumerate(context.Background(), func(ctx context.Context, token string) (domain.Page[domain.Entity], error) {
		return s.ListObjectsPage(ctx, "b", "", token)
	})
	assert.Len(t, got, 6)

	var pe *paginate.PageError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Page)

	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "s3 list-objects-v2", te.Endpoint.String())
	assert.Equal(t, "SlowDown: please reduce your request rate", te.Diagnostic)
}

func TestListBuckets(t *testing.T) {
	got, err := newClient(&fakeAPI{}, 0).ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "logs", got[0].ID())
	assert.Equal(t, "media", got[1].ID())
}

func TestStatObject(t *testing.T) {
	s := newClient(&fakeAPI{}, 0)
	e, err := s.StatObject(context.Background(), "b", "report.txt")
	require.NoError(t, err)
	assert.Equal(t, "report.txt", e.ID())
	assert.Equal(t, "text/plain", e.Display("ContentType"))
	meta, ok := e.Get("Metadata")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"Owner": "ops"}, meta)

	s = newClient(&fakeAPI{statErr: minio.ErrorResponse{Code: "AccessDenied", Message: "Access Denied"}}, 0)
	_, err = s.StatObject(context.Background(), "b", "x")
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestGetAndRemoveObject(t *testing.T) {
	api := &fakeAPI{contents: map[string]string{"a.txt": "alpha"}}
	s := newClient(api, 0)

	body, err := s.GetObject(context.Background(), "b", "a.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(b))
	require.NoError(t, body.Close())

	_, err = s.GetObject(context.Background(), "b", "missing")
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Diagnostic, "NoSuchKey")

	require.NoError(t, s.RemoveObject(context.Background(), "b", "a.txt"))
	assert.Equal(t, []string{"a.txt"}, api.removed)
}

func TestTransportError_PassesCancellation(t *testing.T) {
	err := transportError("get-object", fmt.Errorf("wrapped: %w", context.Canceled))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, domain.ErrTransport))
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	s, err := New(Config{Endpoint: "https://minio.internal:9000", Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, s.pageSize)
}
