package user

import (
	"context"
	"ddi/internal/infra/logger"
	"ddi/internal/infra/pgsql"
	"ddi/internal/pkg/response"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Events 领域事件发布
type Events interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// KV 吊销列表存储
type KV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Options struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Topic      string
}

type Service struct {
	repo   Repository
	events Events
	kv     KV
	opts   Options
	log    *logger.Logger
	now    func() time.Time

	// 可选，未设置时 List 走数据库模糊查询
	index Index
}

func NewService(repo Repository, events Events, kv KV, opts Options, log *logger.Logger) *Service {
	return &Service{repo: repo, events: events, kv: kv, opts: opts, log: log, now: time.Now}
}

// UseIndex 启用搜索索引
func (s *Service) UseIndex(index Index) {
	s.index = index
}

var errInvalidCredentials = response.Unauthorized("invalid username or password")

func (s *Service) Register(ctx context.Context, dto *CreateUserDTO) (*User, error) {
	_, err := s.repo.FindByUserName(ctx, dto.UserName)
	if err == nil {
		return nil, response.Conflict("this username has already been registered")
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("user: hash password: %w", err)
	}

	now := s.now()
	user := &User{
		ID:        uuid.NewString(),
		UserName:  dto.UserName,
		Password:  string(hashed),
		Email:     dto.Email,
		FullName:  dto.FullName,
		Role:      "user",
		Status:    Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 索引与事件失败都不影响注册结果
	if s.index != nil {
		if err := s.index.Index(ctx, user); err != nil {
			s.log.Warning("index user failed", user.ID, err)
		}
	}
	event := RegisteredEvent{ID: user.ID, UserName: user.UserName, Email: user.Email, At: now}
	if err := s.events.Publish(ctx, s.opts.Topic, user.ID, event); err != nil {
		s.log.Warning("publish registered event failed", user.ID, err)
	}
	s.log.Info("user registered", user.UserName)
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, userName, password string) (*User, *Tokens, error) {
	user, err := s.repo.FindByUserName(ctx, userName)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, errInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, errInvalidCredentials
	}
	if user.Status != Active {
		return nil, nil, response.NewError(http.StatusForbidden, "user is disabled")
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh 刷新令牌只能用一次，旧令牌立即吊销
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := s.parse(refreshToken, TokenRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, claims.Subject)
	if errors.Is(err, ErrNotFound) {
		return nil, response.Unauthorized("user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Logout 吊销刷新令牌
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parse(refreshToken, TokenRefresh)
	if err != nil {
		return err
	}
	return s.revoke(ctx, claims)
}

// ParseAccessToken 供鉴权中间件使用
func (s *Service) ParseAccessToken(token string) (*Claims, error) {
	return s.parse(token, TokenAccess)
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, response.NotFound("user not found")
	}
	return user, err
}

func (s *Service) List(ctx context.Context, page, pageSize int, query string) (*pgsql.PageResult[User], error) {
	if s.index != nil && query != "" {
		return s.index.Search(ctx, query, page, pageSize)
	}
	return s.repo.List(ctx, page, pageSize, query)
}

func (s *Service) SetAvatar(ctx context.Context, id, avatar string) error {
	err := s.repo.UpdateAvatar(ctx, id, avatar)
	if errors.Is(err, ErrNotFound) {
		return response.NotFound("user not found")
	}
	return err
}

func (s *Service) issue(user *User) (*Tokens, error) {
	access, err := s.sign(user, TokenAccess, s.opts.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, TokenRefresh, s.opts.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.opts.AccessTTL.Seconds())}, nil
}

func (s *Service) sign(user *User, typ string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Type:     typ,
		UserName: user.UserName,
		Role:     user.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("user: sign token: %w", err)
	}
	return token, nil
}

func (s *Service) parse(tokenString, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.opts.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, response.Wrap(http.StatusUnauthorized, "token verification failed", err)
	}
	if claims.Type != typ {
		return nil, response.Unauthorized("wrong token type")
	}
	return claims, nil
}

func revokedKey(jti string) string { return "auth:revoked:" + jti }

func (s *Service) checkRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := s.kv.Exists(ctx, revokedKey(claims.Id))
	if err != nil {
		return err
	}
	if revoked {
		return response.Unauthorized("token has been revoked")
	}
	return nil
}

func (s *Service) revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Unix(claims.ExpiresAt, 0).Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.kv.Set(ctx, revokedKey(claims.Id), 1, ttl)
}
