package run

import "time"

type Status string

const (
	StatusSent  Status = "sent"
	StatusNoNew Status = "no new items"
	StatusError Status = "error"
)

// Outcome summarizes one pass. String renders the fixed outcome strings
// "sent", "no new items" and "error: <detail>".
type Outcome struct {
	RunID    string
	Status   Status
	Items    int
	Failed   int
	Window   string
	Duration time.Duration
	Err      error
}

func (o Outcome) String() string {
	if o.Status == StatusError {
		if o.Err == nil {
			return "error: unknown"
		}
		return "error: " + o.Err.Error()
	}
	return string(o.Status)
}

func (o Outcome) IsError() bool { return o.Status == StatusError }
