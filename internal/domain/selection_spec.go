package domain

// SelectionStrategyType identifies how draws are produced when resolving
// image versions.
type SelectionStrategyType string

const (
	// SelectionRandom draws independently for every image type and call.
	SelectionRandom SelectionStrategyType = "random"
	// SelectionDeterministic derives one draw from Key, so the same key
	// always lands in the same rampup bucket.
	SelectionDeterministic SelectionStrategyType = "deterministic"
)

// SelectionStrategySpec is the caller-provided specification for version
// selection.
type SelectionStrategySpec struct {
	Type SelectionStrategyType
	Key  string // required for "deterministic"
}

// RandomSelection returns the spec for independent random draws.
func RandomSelection() SelectionStrategySpec {
	return SelectionStrategySpec{Type: SelectionRandom}
}

// DeterministicSelection returns the spec for draws keyed by key.
func DeterministicSelection(key string) SelectionStrategySpec {
	return SelectionStrategySpec{Type: SelectionDeterministic, Key: key}
}
