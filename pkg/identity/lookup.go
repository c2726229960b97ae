package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
)

// NewHTTPLookup builds a LookupFunc against a profile-picture backend. The
// backend answers GET <endpoint>?identity=<id> with {"url":"..."}; a 404
// means no picture and maps to the empty-URL miss answer.
func NewHTTPLookup(endpoint string) LookupFunc {
	client := &fasthttp.Client{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return func(ctx context.Context, identity string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(endpoint + "?identity=" + url.QueryEscape(identity))
		req.Header.SetMethod(fasthttp.MethodGet)

		deadline := time.Now().Add(10 * time.Second)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return "", err
		}
		switch resp.StatusCode() {
		case fasthttp.StatusOK:
			var body struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal(resp.Body(), &body); err != nil {
				return "", fmt.Errorf("bad avatar response: %w", err)
			}
			return body.URL, nil
		case fasthttp.StatusNotFound:
			return "", nil
		}
		return "", fmt.Errorf("avatar backend returned %d", resp.StatusCode())
	}
}
