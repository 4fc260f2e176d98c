package absence

import (
	"context"
)

// LifecycleService is the public boundary of the absence request engine.
// The caller is assumed to have resolved permissions already; actor ids
// identify who performed the action, not whether they may.
type LifecycleService interface {
	Submit(ctx context.Context, req SubmitRequestRequest) (RequestResponse, error)
	Approve(ctx context.Context, requestID, approverID string, comment *string) (RequestResponse, error)
	Reject(ctx context.Context, requestID, approverID, reason string) (RequestResponse, error)
	Withdraw(ctx context.Context, requestID, requesterID string) (RequestResponse, error)
	ApplyBulk(ctx context.Context, req BulkActionRequest, actorID string) (BulkActionResponse, error)

	GetRequest(ctx context.Context, requestID string) (RequestResponse, error)
	ListRequests(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)
	GetApprovalTrail(ctx context.Context, requestID string) ([]ApprovalStepResponse, error)

	GetQuotas(ctx context.Context, employeeID string, year int) ([]QuotaResponse, error)
	AdjustQuota(ctx context.Context, req AdjustQuotaRequest, actorID string) error
}
