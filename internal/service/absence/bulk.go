package absence

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
)

// bulkConcurrency caps how many item transitions run at once. Each item
// carries its own row guard, so no coordination beyond the cap is needed.
const bulkConcurrency = 8

// ApplyBulk applies the requested transition to every id independently.
// One item failing never aborts the rest; the caller gets a per-item
// breakdown of what went through.
func (s *Service) ApplyBulk(ctx context.Context, req absence.BulkActionRequest, actorID string) (absence.BulkActionResponse, error) {
	if err := req.Validate(); err != nil {
		return absence.BulkActionResponse{}, err
	}

	var (
		mu        sync.Mutex
		succeeded []string
		failed    []absence.BulkItemFailure
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)

	for _, requestID := range req.RequestIDs {
		requestID := requestID
		g.Go(func() error {
			var err error
			switch req.Action {
			case absence.BulkApprove:
				_, err = s.Approve(ctx, requestID, actorID, nil)
			case absence.BulkReject:
				_, err = s.Reject(ctx, requestID, actorID, req.Reason)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, absence.BulkItemFailure{
					RequestID: requestID,
					Error:     err.Error(),
				})
			} else {
				succeeded = append(succeeded, requestID)
			}

			// Item errors are reported per id, never propagated to the group.
			return nil
		})
	}

	// Goroutines never return errors; Wait only fences completion.
	_ = g.Wait()

	return absence.BulkActionResponse{
		Succeeded: succeeded,
		Failed:    failed,
	}, nil
}
