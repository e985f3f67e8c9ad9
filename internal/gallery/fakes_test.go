package gallery

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("not found")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

// fakeDynamo is an in-memory single-partition table keyed by SK.
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]dtypes.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]dtypes.AttributeValue)}
}

func skOf(key map[string]dtypes.AttributeValue) string {
	if sk, ok := key["SK"].(*dtypes.AttributeValueMemberS); ok {
		return sk.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[skOf(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[skOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, skOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sks []string
	for sk := range f.items {
		sks = append(sks, sk)
	}
	sort.Strings(sks)
	out := &dynamodb.QueryOutput{}
	for _, sk := range sks {
		out.Items = append(out.Items, f.items[sk])
	}
	return out, nil
}

func TestS3RepositoryLayout(t *testing.T) {
	fake := newFakeS3()
	repo := NewS3Repository(fake, "bucket", "/galleries/")
	s := NewStore(repo)
	ctx := context.Background()

	g, err := s.Save(ctx, "G", []string{"a.jpg"}, "c", nil)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, ok := fake.objects["galleries/"+g.Filename()]; !ok {
		t.Errorf("object keys = %v, want galleries/%s", fake.objects, g.Filename())
	}

	fake.objects["galleries/gallery_20000101_000000.json"] = []byte("garbage")
	fake.objects["galleries/readme.txt"] = []byte("hello")
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List() returned %d galleries, want 1", len(list))
	}
}

func TestDynamoRepositorySkipsBadItems(t *testing.T) {
	fake := newFakeDynamo()
	s := NewStore(NewDynamoRepository(fake, "galleries"))
	ctx := context.Background()

	if _, err := s.Save(ctx, "G", []string{"a.jpg"}, "c", nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	fake.items["gallery_bad"] = map[string]dtypes.AttributeValue{
		"PK":         &dtypes.AttributeValueMemberS{Value: dynamoPartition},
		"SK":         &dtypes.AttributeValueMemberS{Value: "gallery_bad"},
		"created_at": &dtypes.AttributeValueMemberS{Value: "not a time"},
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "G" {
		t.Errorf("List() = %v, want only G", list)
	}
}
