package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// request is a small builder around http.Client for agent API calls.
type request struct {
	client *http.Client
	url    string
	method string
	token  string
	body   io.Reader
	args   map[string]string
	logger *slog.Logger
}

func newRequest(c *http.Client, logger *slog.Logger) *request {
	return &request{client: c, method: "GET", logger: logger}
}

func (r *request) URL(url string) *request {
	r.url = url

	return r
}

func (r *request) Method(method string) *request {
	r.method = method

	return r
}

func (r *request) Token(token string) *request {
	r.token = token

	return r
}

func (r *request) Args(args map[string]string) *request {
	r.args = args

	return r
}

func (r *request) Body(body io.Reader) *request {
	r.body = body

	return r
}

func (r *request) Do(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, err
	}

	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	if len(r.args) > 0 {
		q := req.URL.Query()

		for k, v := range r.args {
			q.Add(k, v)
		}

		req.URL.RawQuery = q.Encode()
	}

	res, err := r.client.Do(req)
	if err != nil {
		if r.logger != nil {
			r.logger.Info(fmt.Sprintf("%s %s - error %s", r.method, req.URL, err.Error()))
		}

		return nil, err
	}

	if res.StatusCode == http.StatusNotFound {
		_ = res.Body.Close()

		return nil, fmt.Errorf("%w: %s", ErrNotExist, req.URL.Query().Get("path"))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if r.logger != nil {
			r.logger.Warn(fmt.Sprintf("%s %s - %d", r.method, req.URL, res.StatusCode))
		}

		_ = res.Body.Close()

		return nil, fmt.Errorf("status is %s", res.Status)
	}

	if r.logger != nil {
		r.logger.Debug(fmt.Sprintf("%s %s - %d", r.method, req.URL, res.StatusCode))
	}

	return res.Body, nil
}

func (r *request) GetJSON(ctx context.Context, obj any) error {
	b, err := r.Do(ctx)

	if err != nil {
		return err
	}

	defer b.Close()

	dec := json.NewDecoder(b)

	return dec.Decode(obj)
}

func (r *request) Discard(ctx context.Context) error {
	b, err := r.Do(ctx)

	if err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, b)

	return b.Close()
}
