/*
Package stresstest simulates many concurrent client sessions against a server
and reports how well it held up.

Each session connects once and then sends a keep-alive every
KeepAliveInterval until the test duration has elapsed or it collected
MaxSessionErrors errors. Sessions run in their own goroutine and write only
their own SessionResult; the Executor joins all of them before Aggregate
reads the results, so no locking is needed.

The transport is pluggable through Driver:

  - http: GET /health to connect, POST /packet per keep-alive
  - websocket: dial /ws, one JSON frame and its echo per keep-alive

A run is graded by its success rate: PASS at 95% and above, WARNING at 80%
and above, FAIL below that. Only FAIL makes Run return ErrBelowThreshold.
*/
package stresstest
