package matches

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// PhotoResolver turns stored photo references into client-usable URLs at
// delivery time.
type PhotoResolver interface {
	Resolve(refs []string) []string
}

// PassthroughPhotoResolver returns references unchanged. Used when photos
// are stored as public URLs.
type PassthroughPhotoResolver struct{}

func NewPassthroughPhotoResolver() PhotoResolver {
	return &PassthroughPhotoResolver{}
}

func (r *PassthroughPhotoResolver) Resolve(refs []string) []string {
	return refs
}

// S3PhotoResolver presigns S3 object keys so private photos stay private.
// References that are already absolute URLs pass through untouched.
type S3PhotoResolver struct {
	s3Client *s3.S3
	bucket   string
	expiry   time.Duration
}

func NewS3PhotoResolver(bucket, region string, expiry time.Duration) (PhotoResolver, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3PhotoResolver{
		s3Client: s3.New(sess),
		bucket:   bucket,
		expiry:   expiry,
	}, nil
}

func (r *S3PhotoResolver) Resolve(refs []string) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			urls = append(urls, ref)
			continue
		}

		req, _ := r.s3Client.GetObjectRequest(&s3.GetObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(ref),
		})
		url, err := req.Presign(r.expiry)
		if err != nil {
			// Skip rather than leak a raw key to the client.
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
