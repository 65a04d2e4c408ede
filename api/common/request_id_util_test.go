package common

import (
	"strings"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateRequestID(t *testing.T) {
	assert.Equal(t, "abc-123", GenerateRequestID("abc-123"))

	long := strings.Repeat("x", 200)
	assert.Len(t, GenerateRequestID(long), maxRequestIDLength)

	rid := GenerateRequestID("")
	_, err := uuid.FromString(rid)
	assert.NoError(t, err, "generated id should be a uuid: %s", rid)
	assert.NotEqual(t, rid, GenerateRequestID(""))
}
