package binding

import "fmt"

// InvalidTargetError reports a bad or missing driver-source reference, or a
// source the host forbids (a cycle through the driven object itself).
type InvalidTargetError struct {
	// Reason describes why the target was rejected.
	Reason string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("binding: invalid driver target: %s", e.Reason)
}

// IndexOutOfRangeError reports a swap request for a value slot that was never
// recorded on the source.
type IndexOutOfRangeError struct {
	// Index is the requested slot index.
	Index int
	// Count is the number of recorded slots on the source.
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("binding: value slot %d out of range (%d recorded)", e.Index, e.Count)
}
