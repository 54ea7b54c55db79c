package objectclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Specta/internal/config"
)

func TestObjectURLRoundTrip(t *testing.T) {
	url := ObjectURL("specta-datasheets", "us-east-2", "users/u1/documents/d1/motor.pdf")
	assert.Equal(t, "https://specta-datasheets.s3.us-east-2.amazonaws.com/users/u1/documents/d1/motor.pdf", url)

	bucket, key := ParseS3URL(url)
	assert.Equal(t, "specta-datasheets", bucket)
	assert.Equal(t, "users/u1/documents/d1/motor.pdf", key)
}

func TestParseS3URL_NoKey(t *testing.T) {
	bucket, key := ParseS3URL("https://bucket.s3.eu-west-1.amazonaws.com")
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "", key)
}

func TestNewS3Client_Validation(t *testing.T) {
	_, err := NewS3Client(t.Context(), &config.Config{AwsRegion: "us-east-2", BucketName: "b"})
	require.Error(t, err)

	_, err = NewS3Client(t.Context(), &config.Config{AwsAccessKey: "a", AwsSecretKey: "s", BucketName: "b"})
	require.Error(t, err)

	_, err = NewS3Client(t.Context(), &config.Config{AwsAccessKey: "a", AwsSecretKey: "s", AwsRegion: "us-east-2"})
	require.Error(t, err)
}
