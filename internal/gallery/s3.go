package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// s3API is the subset of *s3.Client used by S3Repository.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Repository stores each gallery as <prefix>/<key>.json in a bucket, the
// same document the file backend writes.
type S3Repository struct {
	client s3API
	bucket string
	prefix string
}

// Compile-time interface check.
var _ Repository = (*S3Repository)(nil)

// NewS3Repository creates a repository over bucket. prefix may be empty.
func NewS3Repository(client s3API, bucket, prefix string) *S3Repository {
	return &S3Repository{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (r *S3Repository) objectKey(id string) string {
	if r.prefix == "" {
		return id + fileExt
	}
	return path.Join(r.prefix, id+fileExt)
}

func (r *S3Repository) listPrefix() string {
	if r.prefix == "" {
		return keyPrefix
	}
	return r.prefix + "/" + keyPrefix
}

func (r *S3Repository) Get(ctx context.Context, id string) (*Gallery, error) {
	key := r.objectKey(id)
	data, err := r.read(ctx, key)
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("S3 GetObject %s: %w", key, err)
	}
	return Decode(id, data)
}

func (r *S3Repository) read(ctx context.Context, key string) ([]byte, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &r.bucket, Key: &key,
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (r *S3Repository) List(ctx context.Context) ([]*Gallery, error) {
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: &r.bucket,
		Prefix: aws.String(r.listPrefix()),
	})

	var out []*Gallery
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("S3 ListObjectsV2 %s/%s: %w", r.bucket, r.listPrefix(), err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, fileExt) {
				continue
			}
			id := strings.TrimSuffix(path.Base(key), fileExt)
			data, err := r.read(ctx, key)
			if err != nil {
				log.Warn().Err(err).Str("gallery", id).Str("key", key).Msg("Skipping unreadable gallery object")
				continue
			}
			g, err := Decode(id, data)
			if err != nil {
				log.Warn().Err(err).Str("gallery", id).Str("key", key).Msg("Skipping unparsable gallery object")
				continue
			}
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *S3Repository) Put(ctx context.Context, g *Gallery) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	key := r.objectKey(g.ID)
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &r.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s: %w", key, err)
	}
	log.Debug().Str("gallery", g.ID).Str("bucket", r.bucket).Str("key", key).Msg("Gallery uploaded to S3")
	return nil
}

// Delete removes the object. S3 treats deleting a missing key as success.
func (r *S3Repository) Delete(ctx context.Context, id string) error {
	key := r.objectKey(id)
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &r.bucket, Key: &key,
	})
	if err != nil {
		return fmt.Errorf("S3 DeleteObject %s: %w", key, err)
	}
	return nil
}
