package documents

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagehub/pkg/platform/sentinel"
)

type fakeS3 struct {
	s3iface.S3API
	put       *s3.PutObjectInput
	body      []byte
	deleted   []string
	putErr    error
	deleteErr error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3StoreWithClient(fake, "kyc-docs", "https://cdn.test/")

	url, err := store.Put(context.Background(), "kyc/e/business_license/x.pdf", "application/pdf", pdfBytes)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.test/kyc/e/business_license/x.pdf", url)
	assert.Equal(t, "kyc-docs", aws.StringValue(fake.put.Bucket))
	assert.Equal(t, "application/pdf", aws.StringValue(fake.put.ContentType))
	assert.Equal(t, int64(len(pdfBytes)), aws.Int64Value(fake.put.ContentLength))
	assert.Equal(t, pdfBytes, fake.body)
}

func TestS3StoreDelete(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3StoreWithClient(fake, "kyc-docs", "https://cdn.test")

	require.NoError(t, store.Delete(context.Background(), "kyc/old.pdf"))
	assert.Equal(t, []string{"kyc/old.pdf"}, fake.deleted)
}

func TestS3StoreClassifiesErrors(t *testing.T) {
	t.Run("throttling is unavailable", func(t *testing.T) {
		fake := &fakeS3{putErr: awserr.New("SlowDown", "reduce your request rate", nil)}
		_, err := NewS3StoreWithClient(fake, "b", "u").Put(context.Background(), "k", "application/pdf", pdfBytes)
		assert.True(t, errors.Is(err, sentinel.ErrUnavailable))
	})

	t.Run("missing key is not found", func(t *testing.T) {
		fake := &fakeS3{deleteErr: awserr.New(s3.ErrCodeNoSuchKey, "gone", nil)}
		err := NewS3StoreWithClient(fake, "b", "u").Delete(context.Background(), "k")
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("other errors pass through", func(t *testing.T) {
		fake := &fakeS3{putErr: awserr.New("AccessDenied", "denied", nil)}
		_, err := NewS3StoreWithClient(fake, "b", "u").Put(context.Background(), "k", "application/pdf", pdfBytes)
		require.Error(t, err)
		assert.False(t, errors.Is(err, sentinel.ErrUnavailable))
	})
}
