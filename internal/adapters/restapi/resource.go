package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/target/residence-console/internal/domain/resource"
	"github.com/target/residence-console/internal/ports"
)

// ResourceClient is the CRUD client for one collection.
// There are no retries and no caching; callers re-fetch after a mutation.
type ResourceClient struct {
	c         *Client
	def       resource.Definition
	mapper    *Mapper
	mapperErr error
}

var _ ports.ResourceClient = (*ResourceClient)(nil)

func (r *ResourceClient) fail(op Op, status int, err error) error {
	return &Error{Op: op, Singular: r.def.Singular, Plural: r.def.Plural, Status: status, Err: err}
}

// ListAll performs GET {ALL} and maps every record.
func (r *ResourceClient) ListAll(ctx context.Context) ([]resource.Record, error) {
	if r.mapperErr != nil {
		return nil, r.fail(OpFetch, 0, r.mapperErr)
	}

	var body json.RawMessage
	status, err := r.c.do(ctx, call{
		resource: r.def.Key,
		op:       OpFetch,
		method:   http.MethodGet,
		path:     r.def.AllPath(),
		out:      &body,
	})
	if err != nil {
		return nil, r.fail(OpFetch, status, err)
	}

	raws, err := decodeList(body)
	if err != nil {
		return nil, r.fail(OpFetch, status, err)
	}
	recs, err := r.mapper.MapAll(raws)
	if err != nil {
		return nil, r.fail(OpFetch, status, err)
	}
	return recs, nil
}

// Create performs POST {CREATE}.
func (r *ResourceClient) Create(ctx context.Context, body map[string]any) error {
	status, err := r.c.do(ctx, call{
		resource: r.def.Key,
		op:       OpCreate,
		method:   http.MethodPost,
		path:     r.def.CreateEndpoint(),
		body:     withoutID(body),
	})
	if err != nil {
		return r.fail(OpCreate, status, err)
	}
	return nil
}

// Update performs PUT {BASE}/{PATH}/{id}.
func (r *ResourceClient) Update(ctx context.Context, id string, body map[string]any) error {
	if id == "" {
		return r.fail(OpUpdate, 0, errors.New("id is required"))
	}
	status, err := r.c.do(ctx, call{
		resource: r.def.Key,
		op:       OpUpdate,
		method:   http.MethodPut,
		path:     r.def.ItemPath(id),
		body:     withoutID(body),
	})
	if err != nil {
		return r.fail(OpUpdate, status, err)
	}
	return nil
}

// Delete performs DELETE {BASE}/{PATH}/{id}.
func (r *ResourceClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return r.fail(OpDelete, 0, errors.New("id is required"))
	}
	status, err := r.c.do(ctx, call{
		resource: r.def.Key,
		op:       OpDelete,
		method:   http.MethodDelete,
		path:     r.def.ItemPath(id),
	})
	if err != nil {
		return r.fail(OpDelete, status, err)
	}
	return nil
}

// decodeList accepts a bare JSON array, or an object wrapping it under "data" or "items".
func decodeList(body json.RawMessage) ([]map[string]any, error) {
	var list []map[string]any
	if err := decodeJSON(bytes.NewReader(body), &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Data  []map[string]any `json:"data"`
		Items []map[string]any `json:"items"`
	}
	if err := decodeJSON(bytes.NewReader(body), &wrapped); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	switch {
	case wrapped.Data != nil:
		return wrapped.Data, nil
	case wrapped.Items != nil:
		return wrapped.Items, nil
	default:
		return nil, errors.New("decode list: response is not an array")
	}
}

func withoutID(body map[string]any) map[string]any {
	if _, ok := body["id"]; !ok {
		return body
	}
	out := make(map[string]any, len(body))
	for k, v := range body {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}
