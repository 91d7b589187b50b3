// Package main provides a CI-friendly HTTP smoke test for a running accountd.
//
// It validates:
//   - register of two fresh logins, and duplicate rejection
//   - identical 401 bodies for a wrong password and an unknown login
//   - update before any authenticate (only on a fresh server, -fresh)
//   - last authenticate wins: bob then alice, the update lands on alice
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"accountd/cmd/identity/ids"
)

const maxReadBytes = 1 << 20 // 1MiB

type smokeClient struct {
	base    string
	http    *http.Client
	timeout time.Duration
	verbose bool
}

type reply struct {
	status int
	body   string
	code   string
}

func main() {
	var (
		baseURL = flag.String("url", "http://127.0.0.1:8080", "accountd base URL")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		fresh   = flag.Bool("fresh", false, "Server has never seen an authenticate; also check /update -> 401")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}

	c := &smokeClient{
		base:    strings.TrimRight(*baseURL, "/"),
		http:    &http.Client{},
		timeout: *timeout,
		verbose: *verbose,
	}
	root := context.Background()

	suffix, err := ids.NewULID(time.Time{})
	if err != nil {
		fatalf("ulid: %v", err)
	}
	suffix = strings.ToLower(suffix)
	alice, bob := "alice-"+suffix, "bob-"+suffix

	if *fresh {
		c.mustStatus(root, "/update", map[string]any{"name": "X"}, http.StatusUnauthorized, "unauthorized")
	}

	c.mustStatus(root, "/register", creds(alice, "pw1"), http.StatusOK, "")
	c.mustStatus(root, "/register", creds(bob, "pw2"), http.StatusOK, "")
	c.mustStatus(root, "/register", creds(alice, "other"), http.StatusBadRequest, "user_exists")

	wrong := c.mustStatus(root, "/authenticate", creds(alice, "nope"), http.StatusUnauthorized, "invalid_credentials")
	unknown := c.mustStatus(root, "/authenticate", creds("nobody-"+suffix, "pw1"), http.StatusUnauthorized, "invalid_credentials")
	if wrong.body != unknown.body {
		fatalf("invalid credential bodies differ: %q vs %q", wrong.body, unknown.body)
	}

	c.mustStatus(root, "/authenticate", creds(bob, "pw2"), http.StatusOK, "")
	c.mustStatus(root, "/authenticate", creds(alice, "pw1"), http.StatusOK, "")
	c.mustStatus(root, "/update", map[string]any{"name": "A", "email": "a@x.com"}, http.StatusOK, "")
	c.mustStatus(root, "/update", map[string]any{"name": "B"}, http.StatusOK, "")

	c.mustStatus(root, "/update", map[string]any{"nickname": "x"}, http.StatusBadRequest, "invalid_json")

	fmt.Printf("OK: alice=%s bob=%s\n", alice, bob)
}

func creds(login, password string) map[string]any {
	return map[string]any{"login": login, "password": password}
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func (c *smokeClient) mustStatus(parent context.Context, path string, payload any, wantStatus int, wantCode string) reply {
	r, err := c.post(parent, path, payload)
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	if r.status != wantStatus {
		fatalf("%s: status=%d want=%d body=%s", path, r.status, wantStatus, r.body)
	}
	if wantCode != "" && r.code != wantCode {
		fatalf("%s: error code=%q want=%q", path, r.code, wantCode)
	}
	if c.verbose {
		fmt.Printf("%s -> %d %s\n", path, r.status, strings.TrimSpace(r.body))
	}
	return r
}

func (c *smokeClient) post(parent context.Context, path string, payload any) (reply, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	b, err := json.Marshal(payload)
	if err != nil {
		return reply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReadBytes))
	if err != nil {
		return reply{}, err
	}

	out := reply{status: resp.StatusCode, body: string(raw)}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &env) == nil {
		out.code = env.Error.Code
	}
	return out, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
