package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Upsert 按 id 写入文档，refresh 后立即可搜
func (c *Client) Upsert(ctx context.Context, index, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("es: encode %T: %w", doc, err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(b),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.ES)
	return check("upsert", res, err)
}
