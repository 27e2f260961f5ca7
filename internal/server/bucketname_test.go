package server

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var bucketNamePattern = regexp.MustCompile(`^my-app-s3-kv2-\d{14}-[a-z0-9]{6}$`)

func TestGenerateBucketNameFormat(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	name := GenerateBucketName(now)

	assert.Regexp(t, bucketNamePattern, name)
	assert.Contains(t, name, "20240501123045")
	assert.Equal(t, strings.ToLower(name), name)
	assert.NotContains(t, name, "_")
}

func TestGenerateBucketNameDistinctWithinSameInstant(t *testing.T) {
	// Two calls at the same timestamp must still differ via the random suffix
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		name := GenerateBucketName(now)
		assert.Regexp(t, bucketNamePattern, name)
		seen[name] = true
	}
	assert.Greater(t, len(seen), 1, "expected distinct names from the random suffix")
}
