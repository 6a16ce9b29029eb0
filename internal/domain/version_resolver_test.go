package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// stubPlans returns fixed active plans and records the requested types.
type stubPlans struct {
	plans map[string]domain.RampupPlan
	err   error
	calls [][]string
}

func (s *stubPlans) FetchActivePlans(_ context.Context, imageTypes []string) (map[string]domain.RampupPlan, error) {
	s.calls = append(s.calls, imageTypes)
	if s.err != nil {
		return nil, s.err
	}
	out := map[string]domain.RampupPlan{}
	for _, it := range imageTypes {
		if p, ok := s.plans[it]; ok {
			out[it] = p
		}
	}
	return out, nil
}

// stubVersions returns fixed active versions and records the requested types.
type stubVersions struct {
	active map[string]string
	err    error
	calls  [][]string
}

func (s *stubVersions) LatestActiveVersions(_ context.Context, imageTypes []string) ([]domain.ImageVersion, error) {
	s.calls = append(s.calls, imageTypes)
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.ImageVersion
	for _, it := range imageTypes {
		if v, ok := s.active[it]; ok {
			out = append(out, domain.ImageVersion{ImageType: it, Version: v, State: domain.VersionStateActive})
		}
	}
	return out, nil
}

type fixedFactory struct{ src domain.DrawSource }

func (f fixedFactory) DrawSource(domain.SelectionStrategySpec) (domain.DrawSource, error) {
	return f.src, nil
}

func planFor(imageType string, entries ...domain.RampupEntry) domain.RampupPlan {
	return domain.RampupPlan{ID: 1, ImageType: imageType, Active: true, Entries: entries}
}

func TestResolveVersions_PlanAndFallback(t *testing.T) {
	plans := &stubPlans{plans: map[string]domain.RampupPlan{
		"A": planFor("A", entry("2.0", 100, domain.StabilityStable)),
	}}
	versions := &stubVersions{active: map[string]string{"B": "1.5"}}
	r := &domain.VersionResolver{Plans: plans, Versions: versions}

	got, err := r.ResolveVersions(context.Background(), []string{"A", "B"}, domain.RandomSelection())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "2.0", "B": "1.5"}, got)

	require.Len(t, plans.calls, 1)
	assert.Equal(t, []string{"A", "B"}, plans.calls[0])
	require.Len(t, versions.calls, 1)
	assert.Equal(t, []string{"B"}, versions.calls[0], "fallback must ask for exactly the unresolved types")
}

func TestResolveVersions_AggregateFailureNamesUnresolvedOnly(t *testing.T) {
	plans := &stubPlans{plans: map[string]domain.RampupPlan{
		"A": planFor("A", entry("2.0", 100, domain.StabilityStable)),
	}}
	versions := &stubVersions{}
	r := &domain.VersionResolver{Plans: plans, Versions: versions}

	got, err := r.ResolveVersions(context.Background(), []string{"A", "C"}, domain.RandomSelection())
	require.ErrorIs(t, err, domain.ErrUnresolvedImageTypes)
	assert.Nil(t, got, "no partial result on failure")

	var agg *domain.AggregateResolutionError
	require.True(t, errors.As(err, &agg))
	assert.Equal(t, []string{"C"}, agg.ImageTypes)
	assert.ErrorIs(t, err, domain.ErrNoActivePlan)
}

func TestResolveVersions_ReportsEveryUnresolvedTypeTogether(t *testing.T) {
	r := &domain.VersionResolver{Plans: &stubPlans{}, Versions: &stubVersions{}}

	_, err := r.ResolveVersions(context.Background(), []string{"z", "a", "m"}, domain.RandomSelection())
	var agg *domain.AggregateResolutionError
	require.True(t, errors.As(err, &agg))
	assert.Equal(t, []string{"a", "m", "z"}, agg.ImageTypes)
	assert.Contains(t, err.Error(), "[a, m, z]")
}

func TestResolveVersions_SkipsFallbackWhenAllResolved(t *testing.T) {
	plans := &stubPlans{plans: map[string]domain.RampupPlan{
		"A": planFor("A", entry("1.0", 100, domain.StabilityStable)),
	}}
	versions := &stubVersions{}
	r := &domain.VersionResolver{Plans: plans, Versions: versions}

	_, err := r.ResolveVersions(context.Background(), []string{"A"}, domain.RandomSelection())
	require.NoError(t, err)
	assert.Empty(t, versions.calls)
}

func TestResolveVersions_IntegrityViolationFallsBackButIsReported(t *testing.T) {
	broken := planFor("A", entry("1.0", 30, domain.StabilityStable))
	plans := &stubPlans{plans: map[string]domain.RampupPlan{"A": broken}}
	r := &domain.VersionResolver{
		Plans:    plans,
		Versions: &stubVersions{},
		Draws:    fixedFactory{domain.FixedDraws{Default: 90}},
	}

	_, err := r.ResolveVersions(context.Background(), []string{"A"}, domain.RandomSelection())
	require.ErrorIs(t, err, domain.ErrUnresolvedImageTypes)
	assert.ErrorIs(t, err, domain.ErrPlanIntegrity)
	assert.Contains(t, err.Error(), "integrity")

	r.Versions = &stubVersions{active: map[string]string{"A": "0.9"}}
	got, err := r.ResolveVersions(context.Background(), []string{"A"}, domain.RandomSelection())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "0.9"}, got)
}

func TestResolveVersions_DeterministicSelection(t *testing.T) {
	plans := &stubPlans{plans: map[string]domain.RampupPlan{
		"A": planFor("A",
			entry("old", 50, domain.StabilityStable),
			entry("new", 50, domain.StabilityStable),
		),
	}}
	r := &domain.VersionResolver{Plans: plans, Versions: &stubVersions{}}

	// "projectA.flow1" draws 70, "azkaban.test-flow" draws 18.
	for i := 0; i < 5; i++ {
		got, err := r.ResolveVersions(context.Background(), []string{"A"}, domain.DeterministicSelection("projectA.flow1"))
		require.NoError(t, err)
		assert.Equal(t, "new", got["A"])

		got, err = r.ResolveVersions(context.Background(), []string{"A"}, domain.DeterministicSelection("azkaban.test-flow"))
		require.NoError(t, err)
		assert.Equal(t, "old", got["A"])
	}
}

func TestResolveVersions_StoreFailuresAreNotAggregateFailures(t *testing.T) {
	storeErr := errors.New("connection reset")

	r := &domain.VersionResolver{Plans: &stubPlans{err: storeErr}, Versions: &stubVersions{}}
	_, err := r.ResolveVersions(context.Background(), []string{"A"}, domain.RandomSelection())
	require.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, domain.ErrUnresolvedImageTypes)

	r = &domain.VersionResolver{Plans: &stubPlans{}, Versions: &stubVersions{err: context.DeadlineExceeded}}
	_, err = r.ResolveVersions(context.Background(), []string{"A"}, domain.RandomSelection())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrUnresolvedImageTypes)
}

func TestResolveVersions_InvalidSelection(t *testing.T) {
	plans := &stubPlans{}
	r := &domain.VersionResolver{Plans: plans, Versions: &stubVersions{}}
	_, err := r.ResolveVersions(context.Background(), []string{"A"}, domain.DeterministicSelection(""))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Empty(t, plans.calls)
}

func TestResolveVersions_EmptyRequest(t *testing.T) {
	plans := &stubPlans{}
	r := &domain.VersionResolver{Plans: plans, Versions: &stubVersions{}}
	got, err := r.ResolveVersions(context.Background(), nil, domain.RandomSelection())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, plans.calls)
}

func TestResolveVersions_DeduplicatesRequest(t *testing.T) {
	plans := &stubPlans{}
	versions := &stubVersions{active: map[string]string{"A": "1"}}
	r := &domain.VersionResolver{Plans: plans, Versions: versions}
	got, err := r.ResolveVersions(context.Background(), []string{"A", "A"}, domain.RandomSelection())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1"}, got)
	assert.Equal(t, []string{"A"}, plans.calls[0])
}
