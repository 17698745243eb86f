package user

import (
	"context"
	"ddi/internal/infra/es"
	"ddi/internal/infra/pgsql"
	"encoding/json"
	"fmt"
)

// Index 用户搜索索引
type Index interface {
	Index(ctx context.Context, user *User) error
	Search(ctx context.Context, query string, page, pageSize int) (*pgsql.PageResult[User], error)
}

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":         map[string]string{"type": "keyword"},
			"user_name":  map[string]string{"type": "text"},
			"full_name":  map[string]string{"type": "text"},
			"email":      map[string]string{"type": "keyword"},
			"created_at": map[string]string{"type": "date"},
		},
	},
}

type ESIndex struct {
	client *es.Client
	index  string
}

// NewESIndex 确保索引存在
func NewESIndex(ctx context.Context, client *es.Client, index string) (*ESIndex, error) {
	if err := client.EnsureIndex(ctx, index, indexMapping); err != nil {
		return nil, err
	}
	return &ESIndex{client: client, index: index}, nil
}

func (i *ESIndex) Index(ctx context.Context, user *User) error {
	return i.client.Upsert(ctx, i.index, user.ID, user)
}

// Search 用户名与姓名的全文匹配，按创建时间倒序
func (i *ESIndex) Search(ctx context.Context, query string, page, pageSize int) (*pgsql.PageResult[User], error) {
	page, pageSize = pgsql.NormalizePage(page, pageSize)
	res, err := i.client.Search(ctx, i.index, es.SearchQuery{
		Query: map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"user_name", "full_name"},
			},
		},
		Sort: []map[string]any{{"created_at": "desc"}},
		From: (page - 1) * pageSize,
		Size: pageSize,
	})
	if err != nil {
		return nil, err
	}

	list := make([]User, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var u User
		if err := json.Unmarshal(hit, &u); err != nil {
			return nil, fmt.Errorf("user: decode search hit: %w", err)
		}
		list = append(list, u)
	}
	return pgsql.NewPageResult(list, res.Total, page, pageSize), nil
}
