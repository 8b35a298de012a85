package engine

// DefaultMaxBatchSize bounds a single AddPlayers call. A draft round or a
// waiver run is far smaller; anything larger is almost certainly a caller bug.
const DefaultMaxBatchSize = 100

// checkBatchSize rejects a batch larger than limit. A limit <= 0 disables
// the check.
func checkBatchSize(size, limit int) error {
	if limit > 0 && size > limit {
		return &BatchSizeError{Size: size, Limit: limit}
	}
	return nil
}
