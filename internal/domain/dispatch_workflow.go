package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DispatchInput starts a dispatch workflow for one flow execution.
type DispatchInput struct {
	ExecutionID ExecutionID
	Flow        Flow
	// Deterministic keys rampup draws by the flow name instead of drawing
	// at random, so the flow keeps the same versions during a rollout.
	Deterministic bool
}

// ProxyUsersInput is the input of the collect-proxy-users activity.
type ProxyUsersInput struct {
	Root     FlowNode
	JobTypes []string
}

// ResolveInput is the input of the resolve-image-versions activity.
type ResolveInput struct {
	ImageTypes []string
	Selection  SelectionStrategySpec
}

// ResolveOutput is the result of the resolve-image-versions activity. An
// unresolvable batch is reported through Unresolved rather than as an
// activity error, so durable engines do not retry it.
type ResolveOutput struct {
	Versions   map[string]string
	Unresolved string
}

// DispatchWorkflow binds every job type of a flow execution to an image
// version and records the binding. Each step runs as an activity.
type DispatchWorkflow struct {
	Resolver ImageVersionResolver
	Records  DispatchRecordRepository
	// PrefetchProxyUsers is a "jobtype,user;jobtype,user" mapping of users
	// whose credentials are needed whenever the job type is present.
	PrefetchProxyUsers string
	Now                func() time.Time
}

// Name is the registered workflow name.
func (w *DispatchWorkflow) Name() string { return "dispatch-flow" }

func (w *DispatchWorkflow) EnumerateJobTypes() Activity[Flow, []string] {
	return NewActivity("enumerate-job-types", func(_ context.Context, f Flow) ([]string, error) {
		return JobTypes(f.Root), nil
	})
}

func (w *DispatchWorkflow) CollectProxyUsers() Activity[ProxyUsersInput, []string] {
	return NewActivity("collect-proxy-users", func(_ context.Context, in ProxyUsersInput) ([]string, error) {
		users := ProxyUsers(in.Root)
		if w.PrefetchProxyUsers == "" {
			return users, nil
		}
		prefetch, err := ParsePrefetchProxyUsers(w.PrefetchProxyUsers, in.JobTypes)
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{}, len(users)+len(prefetch))
		for _, u := range users {
			set[u] = struct{}{}
		}
		for _, u := range prefetch {
			set[u] = struct{}{}
		}
		return sortedKeys(set), nil
	})
}

func (w *DispatchWorkflow) ResolveImageVersions() Activity[ResolveInput, ResolveOutput] {
	return NewActivity("resolve-image-versions", func(ctx context.Context, in ResolveInput) (ResolveOutput, error) {
		versions, err := w.Resolver.ResolveVersions(ctx, in.ImageTypes, in.Selection)
		if err != nil {
			if errors.Is(err, ErrUnresolvedImageTypes) {
				return ResolveOutput{Unresolved: err.Error()}, nil
			}
			return ResolveOutput{}, err
		}
		return ResolveOutput{Versions: versions}, nil
	})
}

func (w *DispatchWorkflow) RecordDispatch() Activity[DispatchRecord, DispatchRecord] {
	return NewActivity("record-dispatch", func(ctx context.Context, rec DispatchRecord) (DispatchRecord, error) {
		rec.CreatedAt = w.now()
		if err := w.Records.Put(ctx, rec); err != nil {
			return DispatchRecord{}, fmt.Errorf("put dispatch record: %w", err)
		}
		return rec, nil
	})
}

// Run executes the dispatch pipeline. When some job type cannot be bound,
// a failed record is still persisted and the returned error matches
// [ErrUnresolvedImageTypes].
func (w *DispatchWorkflow) Run(runner DurableRunner, in DispatchInput) (DispatchRecord, error) {
	jobTypes, err := RunActivity(runner, w.EnumerateJobTypes(), in.Flow)
	if err != nil {
		return DispatchRecord{}, fmt.Errorf("enumerate job types: %w", err)
	}

	users, err := RunActivity(runner, w.CollectProxyUsers(), ProxyUsersInput{Root: in.Flow.Root, JobTypes: jobTypes})
	if err != nil {
		return DispatchRecord{}, fmt.Errorf("collect proxy users: %w", err)
	}

	selection := RandomSelection()
	if in.Deterministic {
		selection = DeterministicSelection(in.Flow.Name())
	}
	resolved, err := RunActivity(runner, w.ResolveImageVersions(), ResolveInput{ImageTypes: jobTypes, Selection: selection})
	if err != nil {
		return DispatchRecord{}, fmt.Errorf("resolve image versions: %w", err)
	}

	rec := DispatchRecord{
		ExecutionID:   in.ExecutionID,
		FlowName:      in.Flow.Name(),
		ImageVersions: resolved.Versions,
		ProxyUsers:    users,
		State:         DispatchStateResolved,
	}
	if resolved.Unresolved != "" {
		rec.State = DispatchStateFailed
		rec.Error = resolved.Unresolved
		rec.ImageVersions = nil
	}

	rec, err = RunActivity(runner, w.RecordDispatch(), rec)
	if err != nil {
		return DispatchRecord{}, fmt.Errorf("record dispatch: %w", err)
	}
	if rec.State == DispatchStateFailed {
		return rec, fmt.Errorf("%w: %s", ErrUnresolvedImageTypes, rec.Error)
	}
	return rec, nil
}

func (w *DispatchWorkflow) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}
