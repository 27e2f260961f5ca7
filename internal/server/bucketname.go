package server

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	bucketNamePrefix    = "my-app-s3-kv2"
	bucketNameCharset   = "abcdefghijklmnopqrstuvwxyz0123456789"
	bucketNameSuffixLen = 6
)

// GenerateBucketName suggests a globally unique bucket name from a timestamp
// and a random suffix. The result is lowercase with hyphens only, conforming
// to S3 bucket naming rules by construction. The suffix is a uniqueness hint,
// not a secret.
func GenerateBucketName(now time.Time) string {
	suffix := make([]byte, bucketNameSuffixLen)
	for i := range suffix {
		suffix[i] = bucketNameCharset[rand.IntN(len(bucketNameCharset))]
	}
	return fmt.Sprintf("%s-%s-%s", bucketNamePrefix, now.Format("20060102150405"), suffix)
}
