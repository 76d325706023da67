// Package health implements the liveness probe for the portfolio API.
//
// # Overview
//
// A Poller issues GET <baseURL>/health once on Start and then once per
// interval (default 60s). Each check is a single attempt: no retry, no
// backoff. The result is folded into a Snapshot:
//
//	success: status=online, responseTime=elapsed ms,
//	         uptime unchanged if already online, else RecoveryUptime (99.9)
//	failure: status=offline, responseTime=0, uptime=max(0, uptime-0.1)
//
// Succeeded and Failed are the pure forms of these rules.
//
// Any status below 400 counts as alive; the body is not inspected.
//
// # Scheduling
//
// Checks run on their own goroutine so a slow endpoint does not delay the
// ticker. At most one check is in flight: a tick or Refetch that arrives
// while a check is running is skipped.
//
// Stop cancels the ticker and the in-flight request. Whatever that request
// returns is dropped; Snapshot and OnUpdate never reflect work that finished
// after Stop.
//
// # Status Values
//
// The poller only produces online and offline. Maintenance comes from the
// curated catalog and is never derived from a check.
package health
