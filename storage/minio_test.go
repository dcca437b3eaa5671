package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresignGet(t *testing.T) {
	// With the region set the client signs locally without a round trip.
	client, err := minio.New("files.example.com", &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: true,
		Region: "us-east-1",
	})
	require.NoError(t, err)
	store := &MinioStore{client: client, bucket: "attachments"}

	raw, err := store.PresignGet(context.Background(), "jobs/42/photo.jpg", "door seal.jpg", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "files.example.com", u.Host)
	assert.Equal(t, "/attachments/jobs/42/photo.jpg", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Equal(t, `inline; filename="door seal.jpg"`, u.Query().Get("response-content-disposition"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}
