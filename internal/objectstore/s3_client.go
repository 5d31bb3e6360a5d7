package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"cloudpick/internal/ctxlog"
	"cloudpick/internal/domain"
)

const (
	service         = "s3"
	defaultPageSize = 1000
)

// api is the subset of *minio.Core used here.
type api interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	ListObjectsV2(bucket, prefix, startAfter, token, delimiter string, maxKeys int) (minio.ListBucketV2Result, error)
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, minio.ObjectInfo, http.Header, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// Config selects the endpoint and credentials.
type Config struct {
	Endpoint string // host[:port] or URL, e.g. s3.amazonaws.com
	Secure   bool
	Region   string
	Profile  string // shared-credentials profile
	PageSize int
}

// S3Client implements domain.ObjectStore.
type S3Client struct {
	api      api
	pageSize int
}

var _ domain.ObjectStore = (*S3Client)(nil)

// New builds a client whose credentials come from the environment, then the
// shared credentials file (cfg.Profile), then instance metadata.
func New(cfg Config) (*S3Client, error) {
	if cfg.Endpoint == "" {
		return nil, &domain.ValidationError{Field: "storage.endpoint", Reason: "must not be empty"}
	}

	endpoint, secure := cfg.Endpoint, cfg.Secure
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{Profile: cfg.Profile},
		&credentials.IAM{Client: &http.Client{Transport: http.DefaultTransport}},
	})

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return newClient(core, cfg.PageSize), nil
}

func newClient(a api, pageSize int) *S3Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &S3Client{api: a, pageSize: pageSize}
}

func (s *S3Client) ListBuckets(ctx context.Context) ([]domain.Entity, error) {
	buckets, err := s.api.ListBuckets(ctx)
	if err != nil {
		return nil, transportError("list-buckets", err)
	}
	out := make([]domain.Entity, 0, len(buckets))
	for _, b := range buckets {
		e, err := domain.NewEntityFromFields("Name",
			domain.Field{Name: "Name", Value: b.Name},
			domain.Field{Name: "CreationDate", Value: b.CreationDate},
		)
		if err != nil {
			return nil, fmt.Errorf("bucket: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// ListObjectsPage fetches one page of keys under prefix. An empty token
// requests the first page.
func (s *S3Client) ListObjectsPage(ctx context.Context, bucket, prefix, token string) (domain.Page[domain.Entity], error) {
	if err := ctx.Err(); err != nil {
		return domain.Page[domain.Entity]{}, err
	}
	res, err := s.api.ListObjectsV2(bucket, prefix, "", token, "", s.pageSize)
	if err != nil {
		return domain.Page[domain.Entity]{}, transportError("list-objects-v2", err)
	}
	ctxlog.FromContext(ctx).Debug("object page",
		"component", "objectstore",
		"bucket", bucket,
		"count", len(res.Contents),
		"truncated", res.IsTruncated,
	)
	return toPage(res)
}

func (s *S3Client) StatObject(ctx context.Context, bucket, key string) (domain.Entity, error) {
	info, err := s.api.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return domain.Entity{}, transportError("head-object", err)
	}
	return objectEntity(info)
}

func (s *S3Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	body, _, _, err := s.api.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, transportError("get-object", err)
	}
	return body, nil
}

func (s *S3Client) RemoveObject(ctx context.Context, bucket, key string) error {
	if err := s.api.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return transportError("delete-object", err)
	}
	return nil
}

func toPage(res minio.ListBucketV2Result) (domain.Page[domain.Entity], error) {
	page := domain.Page[domain.Entity]{Items: make([]domain.Entity, 0, len(res.Contents))}
	for _, obj := range res.Contents {
		e, err := objectEntity(obj)
		if err != nil {
			return domain.Page[domain.Entity]{}, err
		}
		page.Items = append(page.Items, e)
	}
	if res.IsTruncated {
		page.NextToken = res.NextContinuationToken
	}
	return page, nil
}

func objectEntity(obj minio.ObjectInfo) (domain.Entity, error) {
	fields := []domain.Field{
		{Name: "Key", Value: obj.Key},
		{Name: "Size", Value: obj.Size},
		{Name: "LastModified", Value: obj.LastModified},
		{Name: "ETag", Value: obj.ETag},
		{Name: "StorageClass", Value: obj.StorageClass},
	}
	if obj.ContentType != "" {
		fields = append(fields, domain.Field{Name: "ContentType", Value: obj.ContentType})
	}
	if obj.VersionID != "" {
		fields = append(fields, domain.Field{Name: "VersionId", Value: obj.VersionID})
	}
	if len(obj.UserMetadata) > 0 {
		meta := make(map[string]any, len(obj.UserMetadata))
		for k, v := range obj.UserMetadata {
			meta[k] = v
		}
		fields = append(fields, domain.Field{Name: "Metadata", Value: meta})
	}
	e, err := domain.NewEntityFromFields("Key", fields...)
	if err != nil {
		return domain.Entity{}, fmt.Errorf("object: %w", err)
	}
	return e, nil
}

func transportError(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	diag := err.Error()
	if resp := minio.ToErrorResponse(err); resp.Code != "" {
		diag = resp.Code + ": " + resp.Message
	}
	return &domain.TransportError{
		Endpoint:   domain.Endpoint{Service: service, Operation: operation},
		Diagnostic: diag,
		Err:        err,
	}
}
