package repository

// Option applies a configuration option to the RankIndex.
type Option func(*RankIndex)

// WithBalancing enables AVL rotations on insert and delete. The external
// contract is the same either way; balancing only bounds the tree height.
func WithBalancing(enabled bool) Option {
	return func(ix *RankIndex) {
		ix.balanced = enabled
	}
}
