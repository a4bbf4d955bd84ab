package sqlchatctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	Strategy   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

type command struct {
	method string
	path   string
	body   any
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("sqlchatctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "sqlchat API base URL")
	strategy := fs.String("strategy", defaults.Strategy, "prompt strategy for ask/translate (zero-shot, single-domain, cross-domain)")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 90*time.Second), "HTTP timeout (e.g. 90s)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	cmd, err := buildCommand(strings.TrimSpace(fs.Arg(0)), fs.Args()[1:], strings.TrimSpace(*strategy))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n\n", err)
		writeUsage(stderr)
		return 2
	}

	endpoint := strings.TrimRight(*baseURL, "/") + cmd.path
	code, responseBody, err := doRequest(ctx, client, cmd.method, endpoint, cmd.body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func buildCommand(name string, args []string, strategy string) (command, error) {
	switch name {
	case "health":
		return command{method: http.MethodGet, path: "/v1/health"}, nil
	case "ready":
		return command{method: http.MethodGet, path: "/v1/ready"}, nil
	case "schema":
		return command{method: http.MethodGet, path: "/v1/schema"}, nil
	case "new-session":
		return command{method: http.MethodPost, path: "/v1/sessions"}, nil
	case "history":
		if len(args) != 1 {
			return command{}, fmt.Errorf("history needs <session-id>")
		}
		return command{method: http.MethodGet, path: sessionPath(args[0], "")}, nil
	case "end-session":
		if len(args) != 1 {
			return command{}, fmt.Errorf("end-session needs <session-id>")
		}
		return command{method: http.MethodDelete, path: sessionPath(args[0], "")}, nil
	case "strategy":
		if len(args) != 2 {
			return command{}, fmt.Errorf("strategy needs <session-id> <strategy>")
		}
		return command{
			method: http.MethodPut,
			path:   sessionPath(args[0], "/strategy"),
			body:   map[string]string{"strategy": args[1]},
		}, nil
	case "ask":
		if len(args) < 2 {
			return command{}, fmt.Errorf("ask needs <session-id> <question>")
		}
		body := map[string]string{"text": strings.Join(args[1:], " ")}
		if strategy != "" {
			body["strategy"] = strategy
		}
		return command{method: http.MethodPost, path: sessionPath(args[0], "/messages"), body: body}, nil
	case "translate":
		if len(args) < 1 {
			return command{}, fmt.Errorf("translate needs <prompt>")
		}
		body := map[string]string{"prompt": strings.Join(args, " ")}
		if strategy != "" {
			body["strategy"] = strategy
		}
		return command{method: http.MethodPost, path: "/v1/query/translate", body: body}, nil
	case "query":
		if len(args) < 1 {
			return command{}, fmt.Errorf("query needs <sql>")
		}
		return command{
			method: http.MethodPost,
			path:   "/v1/query",
			body:   map[string]string{"sql": strings.Join(args, " ")},
		}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", name)
	}
}

func sessionPath(id, suffix string) string {
	return "/v1/sessions/" + url.PathEscape(strings.TrimSpace(id)) + suffix
}

func doRequest(ctx context.Context, client *http.Client, method, endpoint string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, responseBody, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: sqlchatctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health                         GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready                          GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  schema                         GET /v1/schema")
	_, _ = fmt.Fprintln(w, "  new-session                    POST /v1/sessions")
	_, _ = fmt.Fprintln(w, "  history <id>                   GET /v1/sessions/{id}")
	_, _ = fmt.Fprintln(w, "  end-session <id>               DELETE /v1/sessions/{id}")
	_, _ = fmt.Fprintln(w, "  strategy <id> <strategy>       PUT /v1/sessions/{id}/strategy")
	_, _ = fmt.Fprintln(w, "  ask <id> <question>            POST /v1/sessions/{id}/messages")
	_, _ = fmt.Fprintln(w, "  translate <prompt>             POST /v1/query/translate")
	_, _ = fmt.Fprintln(w, "  query <sql>                    POST /v1/query")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
