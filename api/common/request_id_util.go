package common

import (
	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
)

// maxRequestIDLength bounds request IDs accepted from clients.
const maxRequestIDLength = 64

// GenerateRequestID keeps a client supplied request ID, truncated to a sane
// length, or makes a new random one.
func GenerateRequestID(incoming string) string {
	if incoming != "" {
		if len(incoming) > maxRequestIDLength {
			incoming = incoming[:maxRequestIDLength]
		}
		return incoming
	}
	u, err := uuid.NewV4()
	if err != nil {
		logrus.WithError(err).Warn("cannot generate request id")
		return ""
	}
	return u.String()
}
