package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/typesense/typesense-go/typesense"
)

var (
	ErrNotFound = errors.New("search: document not found")
	ErrConflict = errors.New("search: already exists")
)

// StatusError 引擎返回的非预期状态码
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search: %s returned %d: %s", e.Op, e.Code, e.Body)
}

// Client 包一层 typesense 客户端，把 404/409 换成包内哨兵错误
type Client struct {
	ts *typesense.Client
}

// NewClient opts 追加在默认配置之后，可覆盖重试次数等
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...typesense.ClientOption) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	base := []typesense.ClientOption{
		typesense.WithServer(strings.TrimRight(baseURL, "/")),
		typesense.WithAPIKey(apiKey),
		typesense.WithConnectionTimeout(timeout),
	}
	return &Client{ts: typesense.NewClient(append(base, opts...)...)}
}

// EnsureCollections 建三个集合，已存在(409)视为成功
func (c *Client) EnsureCollections(ctx context.Context) error {
	for _, schema := range Schemas() {
		_, err := c.ts.Collections().Create(ctx, schema)
		if err = mapError("create collection "+schema.Name, err); err != nil && !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return nil
}

func (c *Client) Create(ctx context.Context, collection string, doc any) error {
	_, err := c.ts.Collection(collection).Documents().Create(ctx, doc)
	return mapError("create "+collection, err)
}

// Patch 只覆盖 doc 里出现的字段
func (c *Client) Patch(ctx context.Context, collection, id string, doc any) error {
	_, err := c.ts.Collection(collection).Document(id).Update(ctx, doc)
	return mapError("update "+collection+"/"+id, err)
}

// Get 取回的文档按 json 重新解到 out
func (c *Client) Get(ctx context.Context, collection, id string, out any) error {
	doc, err := c.ts.Collection(collection).Document(id).Retrieve(ctx)
	if err := mapError("retrieve "+collection+"/"+id, err); err != nil {
		return err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	_, err := c.ts.Collection(collection).Document(id).Delete(ctx)
	return mapError("delete "+collection+"/"+id, err)
}

func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var he *typesense.HTTPError
	if !errors.As(err, &he) {
		return fmt.Errorf("search %s: %w", op, err)
	}
	switch he.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return &StatusError{Op: op, Code: he.Status, Body: string(he.Body)}
}
