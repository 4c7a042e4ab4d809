package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory bucket paging ListObjectsV2 two keys at a time
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) && k > aws.ToString(in.ContinuationToken) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	if len(keys) > 2 {
		keys = keys[:2]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[1])
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func newTestS3Store(fake *fakeS3) *S3Store {
	return &S3Store{client: fake, bucket: "blog", basePath: "uploads/"}
}

func TestS3Store_WriteReadDelete(t *testing.T) {
	fake := newFakeS3()
	s := newTestS3Store(fake)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "article_images/demo/0.jpeg", []byte("img")))
	assert.Contains(t, fake.objects, "uploads/article_images/demo/0.jpeg")

	ok, err := s.Exists(ctx, "article_images/demo/0.jpeg")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.Read(ctx, "article_images/demo/0.jpeg")
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)

	require.NoError(t, s.Delete(ctx, "article_images/demo/0.jpeg"))
	ok, err = s.Exists(ctx, "article_images/demo/0.jpeg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Read(ctx, "article_images/demo/0.jpeg")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestS3Store_ListPaginates(t *testing.T) {
	fake := newFakeS3()
	s := newTestS3Store(fake)
	ctx := context.Background()

	for _, p := range []string{"article_images/a/0.jpeg", "article_images/a/1.jpeg", "article_images/b/0.jpeg", "misc/x.txt"} {
		require.NoError(t, s.Write(ctx, p, []byte("x")))
	}

	paths, err := s.List(ctx, "article_images")
	require.NoError(t, err)
	assert.Equal(t, []string{"article_images/a/0.jpeg", "article_images/a/1.jpeg", "article_images/b/0.jpeg"}, paths)
}

func TestS3Store_URLFor(t *testing.T) {
	s := newTestS3Store(newFakeS3())
	assert.Equal(t, "https://blog.s3.amazonaws.com/uploads/article_images/demo/0.jpeg", s.URLFor("article_images/demo/0.jpeg"))

	s.cdnURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/uploads/article_images/demo/0.jpeg", s.URLFor("article_images/demo/0.jpeg"))
}
