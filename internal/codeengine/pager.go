package codeengine

import (
	"context"
	"encoding/json"

	"github.com/IBM/go-sdk-core/v5/core"
)

// DefaultPageSize is sent as the limit query parameter when the caller does
// not choose one.
const DefaultPageSize = 100

// pager is the iteration surface shared by the SDK list pagers.
type pager[T any] interface {
	HasNext() bool
	GetNextWithContext(ctx context.Context) ([]T, error)
}

func pageSize(limit int) *int64 {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return core.Int64Ptr(int64(limit))
}

// drain pulls pages until the pager is exhausted or the configured result cap
// is reached. newErr is the error returned by the pager constructor.
func drain[T any](ctx context.Context, c *Client, op string, p pager[T], newErr error) ([]Resource, error) {
	if newErr != nil {
		return nil, invalidArgument(op, "%v", newErr)
	}
	all := []Resource{}
	for p.HasNext() {
		var page []T
		err := c.call(ctx, op, func(ctx context.Context) (err error) {
			page, err = p.GetNextWithContext(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		for i := range page {
			record, err := toResource(op, &page[i])
			if err != nil {
				return nil, err
			}
			all = append(all, record)
			if c.maxResults > 0 && len(all) >= c.maxResults {
				return all, nil
			}
		}
	}
	return all, nil
}

// toResource flattens an SDK model into a map keyed by its wire names,
// dropping unset fields.
func toResource(op string, model any) (Resource, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Message: "decode response: " + err.Error(), Err: err}
	}
	var out Resource
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Message: "decode response: " + err.Error(), Err: err}
	}
	if out == nil {
		return Resource{}, nil
	}
	pruneNulls(out)
	return out, nil
}

func pruneNulls(record map[string]any) {
	for key, value := range record {
		switch v := value.(type) {
		case nil:
			delete(record, key)
		case map[string]any:
			pruneNulls(v)
		case []any:
			for _, item := range v {
				if nested, ok := item.(map[string]any); ok {
					pruneNulls(nested)
				}
			}
		}
	}
}
