package domain

import "time"

// ExecutionID identifies one execution of a flow.
type ExecutionID string

// DispatchState indicates whether the images of a flow execution were
// bound.
type DispatchState string

const (
	DispatchStatePending  DispatchState = "pending"
	DispatchStateResolved DispatchState = "resolved"
	DispatchStateFailed   DispatchState = "failed"
)

// DispatchRecord captures the image versions bound to a flow execution.
type DispatchRecord struct {
	ExecutionID   ExecutionID
	FlowName      string
	ImageVersions map[string]string
	ProxyUsers    []string
	State         DispatchState
	Error         string
	CreatedAt     time.Time
}
