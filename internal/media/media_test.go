package media

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestFolders(t *testing.T) {
	f := Folders{Root: "vinted-api"}
	assert.Equal(t, "vinted-api/offers/abc", f.Offer("abc"))
	assert.Equal(t, "vinted-api/user/abc", f.User("abc"))
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	folder := "root/offers/1"

	ref, err := store.Upload(ctx, Upload{Filename: "jacket.PNG", Data: pngHeader}, folder)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref.PublicID, folder+"/"))
	assert.True(t, strings.HasSuffix(ref.PublicID, ".png"))
	assert.Equal(t, "image/png", ref.ContentType)
	assert.Equal(t, folder, ref.Folder)
	assert.Len(t, store.Objects(folder), 1)

	require.ErrorIs(t, store.DeleteFolder(ctx, folder), ErrFolderNotEmpty)

	require.NoError(t, store.DeleteByPrefix(ctx, folder))
	assert.Empty(t, store.Objects(folder))
	assert.True(t, store.HasFolder(folder))

	require.NoError(t, store.DeleteFolder(ctx, folder))
	assert.False(t, store.HasFolder(folder))
}

func TestMemoryStoreRejectsEmptyUpload(t *testing.T) {
	_, err := NewMemoryStore().Upload(context.Background(), Upload{}, "root/x")
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

func TestMemoryStorePrefixDoesNotLeakToSiblings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Upload(ctx, Upload{Data: pngHeader}, "root/offers/1")
	require.NoError(t, err)
	_, err = store.Upload(ctx, Upload{Data: pngHeader}, "root/offers/10")
	require.NoError(t, err)

	require.NoError(t, store.DeleteByPrefix(ctx, "root/offers/1"))
	assert.Empty(t, store.Objects("root/offers/1"))
	assert.Len(t, store.Objects("root/offers/10"), 1)
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
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
	if in.MaxKeys != nil && int(*in.MaxKeys) < len(keys) {
		keys = keys[:*in.MaxKeys]
	}
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range in.Delete.Objects {
		delete(f.objects, aws.ToString(id.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StoreLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := NewS3Store(client, "listings", "https://cdn.example.com/", nil)
	folder := "vinted-api/offers/42"

	ref, err := store.Upload(ctx, Upload{Data: pngHeader}, folder)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+ref.PublicID, ref.URL)
	assert.True(t, strings.HasSuffix(ref.PublicID, ".png"))
	assert.Equal(t, "image/png", client.types[ref.PublicID])
	assert.Equal(t, pngHeader, client.objects[ref.PublicID])
	assert.Contains(t, client.objects, folder+"/")

	require.ErrorIs(t, store.DeleteFolder(ctx, folder), ErrFolderNotEmpty)

	require.NoError(t, store.DeleteByPrefix(ctx, folder))
	assert.NotContains(t, client.objects, ref.PublicID)
	assert.Contains(t, client.objects, folder+"/")

	require.NoError(t, store.DeleteFolder(ctx, folder))
	assert.Empty(t, client.objects)
}

func TestS3StoreDefaultURL(t *testing.T) {
	store := NewS3Store(newFakeS3(), "listings", "", nil)
	assert.Equal(t, "https://listings.s3.amazonaws.com/a/b.png", store.url("a/b.png"))
}
