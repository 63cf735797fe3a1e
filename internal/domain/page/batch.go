package page

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// BatchResult is the outcome of upserting one page in a batch.
type BatchResult struct {
	ID      string
	Status  ItemStatus
	Created bool
	Err     error
}

// NewBatchOK creates a successful batch result.
func NewBatchOK(id string, created bool) BatchResult {
	return BatchResult{ID: id, Status: StatusOK, Created: created}
}

// NewBatchError creates a failed batch result.
func NewBatchError(id string, err error) BatchResult {
	return BatchResult{ID: id, Status: StatusError, Err: err}
}
