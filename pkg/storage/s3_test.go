package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	putErr  error
	headErr error
	put     *s3.PutObjectInput
	body    string
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.putErr
}

func (f *fakeAPI) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{Bucket: "logs", AccessKey: "only-half"})
	require.ErrorIs(t, err, ErrInvalidConfig)

	s, err := New(Config{Bucket: "logs", Endpoint: "http://localhost:9000", PathStyle: true})
	require.NoError(t, err)
	require.Equal(t, "logs", s.Bucket())
	require.Equal(t, "us-east-1", s.cfg.Region)
}

func TestPut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("uploads body", func(t *testing.T) {
		t.Parallel()

		fake := &fakeAPI{}
		s := &S3Storage{client: fake, cfg: Config{Bucket: "logs"}}
		require.NoError(t, s.Put(ctx, "a/b.jsonl", []byte("{}\n"), "application/x-ndjson"))
		require.Equal(t, "logs", *fake.put.Bucket)
		require.Equal(t, "a/b.jsonl", *fake.put.Key)
		require.Equal(t, "application/x-ndjson", *fake.put.ContentType)
		require.Equal(t, "{}\n", fake.body)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		t.Parallel()

		s := &S3Storage{client: &fakeAPI{}, cfg: Config{Bucket: "logs"}}
		require.ErrorIs(t, s.Put(ctx, "k", nil, ""), ErrEmptyObject)
	})

	t.Run("failures are mapped", func(t *testing.T) {
		t.Parallel()

		s := &S3Storage{client: &fakeAPI{putErr: &mockAPIError{code: "AccessDenied"}}, cfg: Config{Bucket: "logs"}}
		require.ErrorIs(t, s.Put(ctx, "k", []byte("x"), ""), ErrAccessDenied)

		s = &S3Storage{client: &fakeAPI{headErr: errors.New("timeout")}, cfg: Config{Bucket: "logs"}}
		require.ErrorIs(t, s.Healthcheck(ctx), ErrHealthcheckFailed)
	})
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	key := ObjectKey("logs/../prod", "billing api", at, ".jsonl")

	require.True(t, strings.HasPrefix(key, "logs/prod/billing_api/2024/03/09/140506-"), key)
	require.True(t, strings.HasSuffix(key, ".jsonl"))
	require.NotContains(t, key, "..")
}
