package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in an S3-compatible bucket. A zero-byte object named
// after the folder acts as the folder marker.
type S3Store struct {
	client     S3API
	bucket     string
	publicBase string
	logger     *slog.Logger
}

// NewS3Store builds an image store on top of client. publicBase is prepended
// to object keys to form download URLs.
func NewS3Store(client S3API, bucket, publicBase string, logger *slog.Logger) *S3Store {
	return &S3Store{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimSuffix(publicBase, "/"),
		logger:     logger,
	}
}

// Upload writes the folder marker and the object, returning its reference.
func (s *S3Store) Upload(ctx context.Context, upload Upload, folder string) (ImageRef, error) {
	if len(upload.Data) == 0 {
		return ImageRef{}, ErrEmptyUpload
	}
	prefix := folderPrefix(folder)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(prefix),
		Body:   bytes.NewReader(nil),
	}); err != nil {
		return ImageRef{}, fmt.Errorf("create folder %s: %w", folder, err)
	}

	ct := contentType(upload)
	key := prefix + ulid.Make().String() + extension(upload, ct)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(upload.Data),
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(int64(len(upload.Data))),
	}); err != nil {
		return ImageRef{}, fmt.Errorf("put object %s: %w", key, err)
	}

	return ImageRef{
		PublicID:    key,
		Folder:      folder,
		URL:         s.url(key),
		ContentType: ct,
		Bytes:       len(upload.Data),
	}, nil
}

// DeleteByPrefix removes every object under prefix except the folder marker.
func (s *S3Store) DeleteByPrefix(ctx context.Context, prefix string) error {
	p := folderPrefix(prefix)
	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(p),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list objects %s: %w", p, err)
		}
		ids := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			if aws.ToString(obj.Key) == p {
				continue
			}
			ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
		}
		if len(ids) == 0 {
			continue
		}
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete objects %s: %w", p, err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("delete object %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
		}
		if s.logger != nil {
			s.logger.Debug("media.objects_deleted", slog.String("prefix", p), slog.Int("count", len(ids)))
		}
	}
	return nil
}

// DeleteFolder removes the folder marker. It fails while other objects
// remain under the folder.
func (s *S3Store) DeleteFolder(ctx context.Context, folder string) error {
	p := folderPrefix(folder)
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(p),
		MaxKeys: aws.Int32(2),
	})
	if err != nil {
		return fmt.Errorf("list objects %s: %w", p, err)
	}
	for _, obj := range out.Contents {
		if aws.ToString(obj.Key) != p {
			return ErrFolderNotEmpty
		}
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(p),
	}); err != nil {
		return fmt.Errorf("delete folder %s: %w", folder, err)
	}
	return nil
}

func (s *S3Store) url(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
