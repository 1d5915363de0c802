package scheduler

import (
	"context"

	"github.com/marmos91/oversightprobe/internal/model"
)

// CheckFunc is a host-supplied collection routine. Its return type is
// `any`, not `map[string]any`: the outcome classifier explicitly handles a
// check returning something other than a map, so the boundary must accept
// an untyped value tree rather than reject the mismatch at compile time.
type CheckFunc func(ctx context.Context, asset model.AssetHandle, assetConfig map[string]string, checkConfig map[string]any) (any, error)

// Catalog is the fixed set of named check routines a host program supplies
// at construction. It is read-only once the scheduler starts.
type Catalog map[string]CheckFunc
