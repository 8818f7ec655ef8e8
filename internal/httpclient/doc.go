// Package httpclient provides the request execution capability for the flux
// load testing tool.
//
// The [Client] wraps a tuned net/http client with connection pooling sized
// for sustained concurrent load. Each worker constructs one Client at start
// and reuses it for its whole lifetime:
//
//	client := httpclient.NewClient(30 * time.Second)
//	resp, err := client.Execute(ctx, httpclient.Request{
//		Method: "POST",
//		URL:    "http://example.com/login",
//		Body:   `{"user": "demo"}`,
//	})
//
// Requests carry either a plain body string or a multipart part list. File
// parts reference a filesystem path that must exist at send time; the body is
// assembled before any network activity, so a missing file raises a
// configuration-level error without generating traffic.
//
// Transport-level failures (connection refused, timeouts) return an error;
// any HTTP status code, including 4xx/5xx, is reported as a successful
// execution with the status and body text in the [Response].
package httpclient
