package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Agent is an FS backed by the file command API of a panel agent node.
type Agent struct {
	base   string
	token  string
	client *http.Client
	logger *slog.Logger
}

// NewAgent returns an FS talking to the agent at base (e.g.
// "https://node1.example.com:8443/api/instances/survival").
func NewAgent(base, token string) *Agent {
	return &Agent{
		base:   strings.TrimRight(base, "/"),
		token:  token,
		client: &http.Client{},
		logger: slog.Default().With("logger", "agent"),
	}
}

func (a *Agent) req() *request {
	return newRequest(a.client, a.logger).Token(a.token)
}

func (a *Agent) List(ctx context.Context, path string) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, MetaTimeout)
	defer cancel()

	var entries []Entry
	err := a.req().URL(a.base+"/fs/list").Args(map[string]string{"path": path}).GetJSON(ctx, &entries)

	return entries, err
}

func (a *Agent) Read(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	body, err := a.req().URL(a.base+"/fs/read").Args(map[string]string{"path": path}).Do(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return io.ReadAll(body)
}

func (a *Agent) Write(ctx context.Context, path string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	return a.req().URL(a.base+"/fs/write").Method("PUT").
		Args(map[string]string{"path": path}).
		Body(bytes.NewReader(data)).
		Discard(ctx)
}

func (a *Agent) Move(ctx context.Context, from, to string) error {
	ctx, cancel := context.WithTimeout(ctx, MetaTimeout)
	defer cancel()

	return a.req().URL(a.base+"/fs/move").Method("POST").
		Args(map[string]string{"from": from, "to": to}).
		Discard(ctx)
}

func (a *Agent) Delete(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()

	return a.req().URL(a.base+"/fs/delete").Method("POST").
		Args(map[string]string{"path": path}).
		Discard(ctx)
}

func (a *Agent) Mkdir(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, MetaTimeout)
	defer cancel()

	return a.req().URL(a.base+"/fs/mkdir").Method("POST").
		Args(map[string]string{"path": path}).
		Discard(ctx)
}

func (a *Agent) Download(ctx context.Context, path, url, sha1 string) error {
	ctx, cancel := context.WithTimeout(ctx, TransferTimeout)
	defer cancel()

	// The agent performs the transfer itself and verifies the digest inline,
	// so pack content never passes through the panel.
	payload, err := json.Marshal(map[string]string{
		"path": path,
		"url":  url,
		"sha1": sha1,
	})
	if err != nil {
		return err
	}

	return a.req().URL(a.base+"/fs/download").Method("POST").
		Body(bytes.NewReader(payload)).
		Discard(ctx)
}
