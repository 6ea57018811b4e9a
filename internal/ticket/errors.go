package ticket

import "fmt"

// NotFoundError reports that a ticket sequence number resolved to no record.
type NotFoundError struct {
	SeqNo int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("ticket %d not found", e.SeqNo)
}

// UpstreamError reports a non-success response or transport failure from
// the helpdesk API during a mandatory fetch.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("helpdesk api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("helpdesk api error: %s", e.Message)
}
