package domain

import "context"

// ImageVersionResolver is the port through which the dispatch workflow
// binds job types to image versions. [VersionResolver] is the built-in
// implementation.
type ImageVersionResolver interface {
	ResolveVersions(ctx context.Context, imageTypes []string, spec SelectionStrategySpec) (map[string]string, error)
}
