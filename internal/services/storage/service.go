package storage

import (
	"context"
	"fmt"
	"strings"

	"cloudpick/internal/domain"
	"cloudpick/internal/paginate"
	"cloudpick/internal/selection"
	"cloudpick/internal/services/console"
)

var (
	bucketCodec = selection.MustCodec(selection.Column{Field: "Name", Width: 40})
	objectCodec = selection.MustCodec(
		selection.Column{Field: "Size", Width: 12},
		selection.Column{Field: "LastModified", Width: 20},
	)
)

// Service implements the storage subcommands.
type Service struct {
	objects domain.ObjectStore
	files   domain.FileWriter
	con     *console.Console
}

func New(objects domain.ObjectStore, files domain.FileWriter, con *console.Console) *Service {
	return &Service{objects: objects, files: files, con: con}
}

// Descriptor registers the storage domain.
func (s *Service) Descriptor() domain.DomainDescriptor {
	return domain.DomainDescriptor{
		Name:        "storage",
		Description: "object storage buckets",
		Subcommands: []domain.SubcommandDescriptor{
			{Name: "buckets", Description: "pick a bucket and print its name", Run: s.Buckets},
			{Name: "list", Description: "pick keys and print them", Usage: "list [bucket] [prefix]", Run: s.List},
			{Name: "describe", Description: "print an object's metadata", Usage: "describe [bucket] [prefix]", Run: s.Describe},
			{Name: "remove", Description: "delete objects", Usage: "remove [bucket] [prefix]", Run: s.Remove},
			{Name: "download", Description: "download objects", Usage: "download [bucket] [prefix]", Run: s.Download},
		},
	}
}

func (s *Service) pickBucket(ctx context.Context) (string, error) {
	buckets, err := s.objects.ListBuckets(ctx)
	if err != nil {
		return "", fmt.Errorf("list buckets: %w", err)
	}
	b, err := s.con.Pick(ctx, bucketCodec, buckets, "bucket")
	if err != nil {
		return "", err
	}
	return b.ID(), nil
}

func (s *Service) bucket(ctx context.Context, args []string) (string, error) {
	if b := console.Arg(args, 0); b != "" {
		return b, nil
	}
	return s.pickBucket(ctx)
}

// Objects enumerates every key under prefix.
func (s *Service) Objects(ctx context.Context, bucket, prefix string) ([]domain.Entity, error) {
	objects, err := paginate.Enumerate(ctx, func(ctx context.Context, token string) (domain.Page[domain.Entity], error) {
		return s.objects.ListObjectsPage(ctx, bucket, prefix, token)
	})
	if err != nil {
		return nil, s.con.Partial(bucket, len(objects), err)
	}
	return objects, nil
}

func (s *Service) pickObjects(ctx context.Context, args []string, multiple bool) (string, []domain.Entity, error) {
	bucket, err := s.bucket(ctx, args)
	if err != nil {
		return "", nil, err
	}
	objects, err := s.Objects(ctx, bucket, console.Arg(args, 1))
	if err != nil {
		return "", nil, err
	}
	if !multiple {
		o, err := s.con.Pick(ctx, objectCodec, objects, bucket)
		if err != nil {
			return "", nil, err
		}
		return bucket, []domain.Entity{o}, nil
	}
	chosen, err := s.con.PickMany(ctx, objectCodec, objects, bucket)
	return bucket, chosen, err
}

func (s *Service) Buckets(ctx context.Context, _ []string) error {
	b, err := s.pickBucket(ctx)
	if err != nil {
		return err
	}
	s.con.Println(b)
	return nil
}

func (s *Service) List(ctx context.Context, args []string) error {
	_, chosen, err := s.pickObjects(ctx, args, true)
	if err != nil {
		return err
	}
	for _, o := range chosen {
		s.con.Println(o.ID())
	}
	return nil
}

func (s *Service) Describe(ctx context.Context, args []string) error {
	bucket, chosen, err := s.pickObjects(ctx, args, false)
	if err != nil {
		return err
	}
	key := chosen[0].ID()
	info, err := s.objects.StatObject(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("describe %s/%s: %w", bucket, key, err)
	}
	return s.con.Print(info)
}

func (s *Service) Remove(ctx context.Context, args []string) error {
	bucket, chosen, err := s.pickObjects(ctx, args, true)
	if err != nil {
		return err
	}
	ok, err := s.con.Confirm(ctx, "Delete %d object(s) from %s?", len(chosen), bucket)
	if err != nil || !ok {
		return err
	}
	_, err = s.con.Apply(ctx, "delete-object", selection.IDs(chosen), func(ctx context.Context, key string) error {
		return s.objects.RemoveObject(ctx, bucket, key)
	})
	return err
}

// Download writes each chosen object under the download directory, keeping
// its key as the relative path. Folder markers (keys ending in "/") are not
// offered.
func (s *Service) Download(ctx context.Context, args []string) error {
	bucket, err := s.bucket(ctx, args)
	if err != nil {
		return err
	}
	objects, err := s.Objects(ctx, bucket, console.Arg(args, 1))
	if err != nil {
		return err
	}
	files := make([]domain.Entity, 0, len(objects))
	for _, o := range objects {
		if !strings.HasSuffix(o.ID(), "/") {
			files = append(files, o)
		}
	}
	chosen, err := s.con.PickMany(ctx, objectCodec, files, bucket)
	if err != nil {
		return err
	}

	_, err = s.con.Apply(ctx, "download", selection.IDs(chosen), func(ctx context.Context, key string) error {
		return s.download(ctx, bucket, key)
	})
	return err
}

func (s *Service) download(ctx context.Context, bucket, key string) error {
	body, err := s.objects.GetObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()
	_, err = s.files.WriteFrom(key, body)
	return err
}
