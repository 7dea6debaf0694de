package queue

import "errors"

// ErrFull means a new request cannot be admitted; the trace reader holds
// it back and retries once the queue drains.
var ErrFull = errors.New("queue: full")
