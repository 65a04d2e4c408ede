package messagestore

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fnproject/formserver/api/common"
	"github.com/fnproject/formserver/api/messagestore/metrics"
	"github.com/fnproject/formserver/api/models"
	"github.com/sirupsen/logrus"
)

// Provider defines a source that can create message stores
type Provider interface {
	fmt.Stringer
	// Supports indicates if this provider can handle a specific URL scheme
	Supports(url *url.URL) bool
	// New creates a message store from the corresponding URL
	New(ctx context.Context, url *url.URL) (models.MessageStore, error)
}

var providers []Provider

// AddProvider globally registers a new MessageStore provider
func AddProvider(p Provider) {
	logrus.Infof("Adding message store provider %s", p)
	providers = append(providers, p)
}

// New creates a message store based on a given URL, using the first
// registered provider that supports its scheme.
func New(ctx context.Context, storeURL string) (models.MessageStore, error) {
	if storeURL == "" {
		return nil, models.ErrMessageStoreEmptyURL
	}
	log := common.Logger(ctx)
	u, err := url.Parse(storeURL)
	if err != nil {
		return nil, fmt.Errorf("bad message store url %q: %w", storeURL, err)
	}
	log.WithFields(logrus.Fields{"scheme": u.Scheme}).Debug("creating message store")

	for _, p := range providers {
		if p.Supports(u) {
			return p.New(ctx, u)
		}
	}
	return nil, fmt.Errorf("no message store provider available for url %s", storeURL)
}

// Wrap instruments ms with tracing and opencensus measures.
func Wrap(ms models.MessageStore) models.MessageStore {
	return metrics.NewMessageStore(ms)
}
