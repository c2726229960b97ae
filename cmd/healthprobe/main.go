package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/valyala/fasthttp"
)

// healthprobe checks a running server's /healthz over either client stack.
// The fasthttp client doubles as a smoke test for the fasthttp engine.
func main() {
	addr := flag.String("addr", "http://127.0.0.1:8080", "server base URL")
	engine := flag.String("engine", "nethttp", "client stack: nethttp | fasthttp")
	timeout := flag.Duration("timeout", 5*time.Second, "probe timeout")
	flag.Parse()

	url := *addr + "/healthz"
	var (
		status int
		body   []byte
		err    error
	)
	switch *engine {
	case "fasthttp":
		status, body, err = probeFast(url, *timeout)
	default:
		status, body, err = probeNet(url, *timeout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d %s\n", status, string(body))
	if status != http.StatusOK {
		os.Exit(1)
	}
}

func probeNet(url string, timeout time.Duration) (int, []byte, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, b, err
}

func probeFast(url string, timeout time.Duration) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(url)
	if err := fasthttp.DoTimeout(req, resp, timeout); err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}
