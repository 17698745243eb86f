package pgsql

import (
	"context"

	"gorm.io/gorm"
)

const maxPageSize = 100

// Paginate 分页，page 从 1 开始
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	page, pageSize = NormalizePage(page, pageSize)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// NormalizePage page 从 1 开始，pageSize 默认 10，上限 100
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// Like 模糊查询，value 为空时不加条件
func Like(field string, value string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(field+" ILIKE ?", "%"+value+"%")
	}
}

// Order 排序
func Order(field string, desc bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		order := field
		if desc {
			order += " DESC"
		} else {
			order += " ASC"
		}
		return db.Order(order)
	}
}

// FindPage 分页 + 条件查询
func FindPage[T any](ctx context.Context, db *gorm.DB, page, pageSize int, conds ...func(*gorm.DB) *gorm.DB) (*PageResult[T], error) {
	page, pageSize = NormalizePage(page, pageSize)

	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Scopes(conds...).Count(&total).Error; err != nil {
		return nil, err
	}
	list := make([]T, 0, pageSize)
	if total > 0 {
		err := db.WithContext(ctx).Scopes(conds...).Scopes(Paginate(page, pageSize)).Find(&list).Error
		if err != nil {
			return nil, err
		}
	}
	return NewPageResult(list, total, page, pageSize), nil
}
