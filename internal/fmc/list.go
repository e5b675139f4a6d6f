// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package fmc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// List retrieves all items of a collection. The management center pages
// collections, the response looks like
//
//	{"items": [...], "paging": {"offset": 0, "limit": 25, "count": 42, "pages": 2}}
//
// and "items" is omitted entirely when the collection is empty.
func (c *client) List(ctx context.Context, path string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	offset := 0
	for {
		p, err := withQuery(path, url.Values{
			"expanded": {"true"},
			"offset":   {strconv.Itoa(offset)},
			"limit":    {strconv.Itoa(c.pageSize)},
		})
		if err != nil {
			return nil, err
		}
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, p, nil, "", &raw, http.StatusOK); err != nil {
			return nil, err
		}
		page := gjson.GetBytes(raw, "items").Array()
		for _, item := range page {
			items = append(items, json.RawMessage(item.Raw))
		}
		offset += len(page)
		count := gjson.GetBytes(raw, "paging.count")
		if len(page) == 0 || !count.Exists() || offset >= int(count.Int()) {
			break
		}
		c.logger.V(1).Info("Fetching next page", "path", path, "offset", offset, "count", count.Int())
	}
	return items, nil
}

// ListAs retrieves all items of a collection and unmarshals each into T.
func ListAs[T any](ctx context.Context, c Client, path string) ([]T, error) {
	raw, err := c.List(ctx, path)
	if err != nil {
		return nil, err
	}
	res := make([]T, 0, len(raw))
	for i, b := range raw {
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("fmc: failed to unmarshal item %d of %s: %w", i, path, err)
		}
		res = append(res, v)
	}
	return res, nil
}

// withQuery merges q into the query string of path.
func withQuery(path string, q url.Values) (string, error) {
	p, raw, _ := strings.Cut(path, "?")
	v, err := url.ParseQuery(raw)
	if err != nil {
		return "", fmt.Errorf("fmc: invalid query in path %q: %w", path, err)
	}
	for k, vals := range q {
		v[k] = vals
	}
	return p + "?" + v.Encode(), nil
}
