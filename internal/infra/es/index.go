package es

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// EnsureIndex 不存在时按 mapping 创建
func (c *Client) EnsureIndex(ctx context.Context, index string, mapping map[string]any) error {
	res, err := c.ES.Indices.Exists([]string{index}, c.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return check("index exists", res, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	res, err = c.ES.Indices.Create(index,
		c.ES.Indices.Create.WithContext(ctx),
		c.ES.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	return check("create index", res, err)
}
