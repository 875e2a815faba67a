package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/mindtree/pkg/format"
	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/observability"
)

// Load sniffs the format of data and decodes it.
func Load(ctx context.Context, data []byte) (*mind.Mind, format.Format, error) {
	f, err := format.Detect(data)
	if err != nil {
		return nil, "", err
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, string(f))
	start := time.Now()

	m, err := format.Decode(data)

	n := 0
	if m != nil {
		n = m.Len()
	}
	hooks.OnLoadComplete(ctx, string(f), n, time.Since(start), err)
	if err != nil {
		return nil, f, err
	}
	return m, f, nil
}
