package utils

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// PhotoStorage wraps an S3-compatible bucket holding listing photos.
type PhotoStorage struct {
	client   *s3.S3
	bucket   string
	endpoint string
}

func NewPhotoStorage(accessKey, secretKey, bucket, region, endpoint string) *PhotoStorage {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:   aws.String(region),
		Endpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentials(
			accessKey, secretKey, "",
		),
	}))
	return &PhotoStorage{client: s3.New(sess), bucket: bucket, endpoint: endpoint}
}

// Upload stores one photo blob under the given key and returns the key.
func (p *PhotoStorage) Upload(key string, data []byte) (string, error) {
	_, err := p.client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("image/jpeg"),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}
	return key, nil
}

// Remove deletes the given keys. Individual deletes are idempotent on the
// storage side, so retrying a failed compensation is safe.
func (p *PhotoStorage) Remove(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make([]*s3.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
	}
	_, err := p.client.DeleteObjects(&s3.DeleteObjectsInput{
		Bucket: aws.String(p.bucket),
		Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("unable to delete files from S3: %v", err)
	}
	return nil
}

// PublicURL builds the deterministic public URL for a stored key.
func (p *PhotoStorage) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.object.pscloud.io/%s", p.bucket, key)
}
