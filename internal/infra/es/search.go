package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

type SearchQuery struct {
	Query map[string]any   `json:"query"`
	Sort  []map[string]any `json:"sort,omitempty"`
	From  int              `json:"from"`
	Size  int              `json:"size"`
}

// SearchResult 只保留命中总数与 _source
type SearchResult struct {
	Total int64
	Hits  []json.RawMessage
}

func (c *Client) Search(ctx context.Context, index string, q SearchQuery) (*SearchResult, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	res, err := c.ES.Search(
		c.ES.Search.WithContext(ctx),
		c.ES.Search.WithIndex(index),
		c.ES.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("es: search: %s", res.String())
	}

	var raw struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("es: decode search response: %w", err)
	}

	out := &SearchResult{Total: raw.Hits.Total.Value, Hits: make([]json.RawMessage, 0, len(raw.Hits.Hits))}
	for _, h := range raw.Hits.Hits {
		out.Hits = append(out.Hits, h.Source)
	}
	return out, nil
}
