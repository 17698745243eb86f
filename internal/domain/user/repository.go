package user

import (
	"context"
	"ddi/internal/infra/pgsql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("user: not found")

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUserName(ctx context.Context, userName string) (*User, error)
	UpdateAvatar(ctx context.Context, id, avatar string) error
	List(ctx context.Context, page, pageSize int, query string) (*pgsql.PageResult[User], error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate 建表
func (r *GormRepository) Migrate() error {
	return r.db.AutoMigrate(&User{})
}

func (r *GormRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormRepository) FindByUserName(ctx context.Context, userName string) (*User, error) {
	return r.first(ctx, "user_name = ?", userName)
}

func (r *GormRepository) first(ctx context.Context, query string, args ...any) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepository) UpdateAvatar(ctx context.Context, id, avatar string) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("avatar", avatar)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List 用户名模糊查询，按创建时间倒序
func (r *GormRepository) List(ctx context.Context, page, pageSize int, query string) (*pgsql.PageResult[User], error) {
	return pgsql.FindPage[User](ctx, r.db, page, pageSize,
		pgsql.Like("user_name", query),
		pgsql.Order("created_at", true),
	)
}
