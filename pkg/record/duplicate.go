package record

import (
	"context"

	"github.com/google/uuid"

	"github.com/papercomputeco/tagstash/pkg/tag"
)

// DuplicateChecker reports whether a live record other than exclude has
// exactly the given set of normalized tag values. Subsets and supersets are
// not duplicates.
type DuplicateChecker interface {
	ExistsByTagSet(ctx context.Context, values []string, exclude *uuid.UUID) (bool, error)
}

// ScanChecker checks for duplicates by scanning a snapshot of records. It is
// only a fast pre-check: the storage unique constraint stays the authority.
type ScanChecker struct {
	Records []*Record
}

// ExistsByTagSet implements DuplicateChecker.
func (s ScanChecker) ExistsByTagSet(_ context.Context, values []string, exclude *uuid.UUID) (bool, error) {
	key := tag.Key(values)
	for _, r := range s.Records {
		if exclude != nil && r.ID == *exclude {
			continue
		}
		if r.Tags.Key() == key {
			return true, nil
		}
	}
	return false, nil
}
