// Package httpclient provides the JSON request client used by folio.
//
// # Overview
//
// A Client joins a fixed base URL with a per-call path, sends JSON, and
// decodes JSON into the caller's type:
//
//	client := httpclient.New("https://api.example.com")
//	client.SetAuthToken(token)
//
//	projects, err := httpclient.Get[[]Project](ctx, client, "/projects", nil)
//
// Generic helpers exist for GET, POST, PUT, PATCH and DELETE. Do accepts a
// full Request when a per-call timeout is needed.
//
// # Headers
//
// Every request carries the client's default header set, which starts as
// Content-Type: application/json. SetAuthToken adds Authorization: Bearer
// <token> to that set and RemoveAuthToken deletes it. The set belongs to the
// Client and is read when each request is built, so concurrent calls see
// whichever token was set most recently. Per-call headers override defaults.
//
// # Timeouts
//
// The timeout (default 10s) is applied twice: once while waiting for the
// response headers and again while reading the body. Either phase running
// out fails the call with a TransportError wrapping ErrTimeout.
//
// # Errors
//
// Failures are typed by the layer they come from:
//
//   - *TransportError: DNS, connection, cancellation, timeouts
//   - *ProtocolError: status code 0 or >= 400 ("HTTP Error: 503")
//   - *DecodeError: the body is not JSON of the requested shape
//
// Kind and StatusCode classify an error without string matching. The client
// never recovers an error itself.
package httpclient
