package common

import (
	"github.com/sirupsen/logrus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// MakeKey creates a tag key, it is fatal for name to be invalid.
func MakeKey(name string) tag.Key {
	key, err := tag.NewKey(name)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"key": name}).Fatal("cannot create tag key")
	}
	return key
}

func MakeMeasure(name string, desc string, unit string) *stats.Int64Measure {
	return stats.Int64(name, desc, unit)
}

// CreateView names a view after its measure.
func CreateView(measure stats.Measure, agg *view.Aggregation, tagKeys []string) *view.View {
	keys := make([]tag.Key, len(tagKeys))
	for i, name := range tagKeys {
		keys[i] = MakeKey(name)
	}
	return CreateViewWithTags(measure, agg, keys)
}

func CreateViewWithTags(measure stats.Measure, agg *view.Aggregation, tags []tag.Key) *view.View {
	return &view.View{
		Name:        measure.Name(),
		Description: measure.Description(),
		Measure:     measure,
		TagKeys:     tags,
		Aggregation: agg,
	}
}

// GenerateLogScaleHistogramBuckets returns count buckets ending at max, each
// half the size of the next, starting with 0.
func GenerateLogScaleHistogramBuckets(max float64, count int) []float64 {
	if count < 1 {
		return nil
	}
	buckets := make([]float64, count)
	v := max
	for i := count - 1; i > 0; i-- {
		buckets[i] = v
		v /= 2
	}
	return buckets
}
