package handlers

import (
	"bytes"
	"context"
	"ddi/internal/domain/user"
	"ddi/internal/infra/container"
	"ddi/internal/infra/routing"
	"ddi/internal/interfaces/middlewares"
	"ddi/internal/pkg/response"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxAvatarSize 头像上限 2MB
const MaxAvatarSize = 2 << 20

// AvatarStore 头像对象存储，未配置时头像接口返回 503
type AvatarStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

var AvatarStoreAlias = container.NewAlias[AvatarStore]("AvatarStore")

type UserController struct {
	users    *user.Service
	avatars  AvatarStore
	validate *validator.Validate
}

func NewUserController(users *user.Service, avatars AvatarStore) *UserController {
	return &UserController{users: users, avatars: avatars, validate: validator.New()}
}

// userView 附带头像的临时访问地址
type userView struct {
	*user.User
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (h *UserController) Register(r *routing.Request) (*routing.Response, error) {
	dto, err := middlewares.Bind[user.CreateUserDTO](r, h.validate)
	if err != nil {
		return nil, err
	}
	u, err := h.users.Register(r.Context(), dto)
	if err != nil {
		return nil, err
	}
	return response.Created(u)
}

func (h *UserController) Login(r *routing.Request) (*routing.Response, error) {
	dto, err := middlewares.Bind[user.LoginDTO](r, h.validate)
	if err != nil {
		return nil, err
	}
	u, tokens, err := h.users.Authenticate(r.Context(), dto.UserName, dto.Password)
	if err != nil {
		return nil, err
	}
	return response.OK(map[string]any{"user": u, "tokens": tokens})
}

func (h *UserController) Refresh(r *routing.Request) (*routing.Response, error) {
	dto, err := middlewares.Bind[user.RefreshTokenDTO](r, h.validate)
	if err != nil {
		return nil, err
	}
	tokens, err := h.users.Refresh(r.Context(), dto.RefreshToken)
	if err != nil {
		return nil, err
	}
	return response.OK(tokens)
}

func (h *UserController) Logout(r *routing.Request) (*routing.Response, error) {
	dto, err := middlewares.Bind[user.RefreshTokenDTO](r, h.validate)
	if err != nil {
		return nil, err
	}
	if err := h.users.Logout(r.Context(), dto.RefreshToken); err != nil {
		return nil, err
	}
	return response.OK(nil)
}

// List ?page=1&size=20&q=name
func (h *UserController) List(r *routing.Request) (*routing.Response, error) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	result, err := h.users.List(r.Context(), page, size, q.Get("q"))
	if err != nil {
		return nil, err
	}
	return response.OK(result)
}

func (h *UserController) Get(r *routing.Request) (*routing.Response, error) {
	u, err := h.users.Get(r.Context(), r.Params.Get("id"))
	if err != nil {
		return nil, err
	}
	view := userView{User: u}
	if h.avatars != nil && u.Avatar != "" {
		view.AvatarURL, err = h.avatars.PresignedURL(r.Context(), u.Avatar, 0)
		if err != nil {
			return nil, err
		}
	}
	return response.OK(view)
}

// SetAvatar 只能修改自己的头像
func (h *UserController) SetAvatar(r *routing.Request) (*routing.Response, error) {
	id := r.Params.Get("id")
	claims, ok := middlewares.ClaimsFrom(r.Context())
	if !ok || claims.Subject != id {
		return nil, response.NewError(http.StatusForbidden, "cannot change another user's avatar")
	}
	if h.avatars == nil {
		return nil, response.NewError(http.StatusServiceUnavailable, "avatar storage is not configured")
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxAvatarSize+1))
	if err != nil {
		return nil, response.Wrap(http.StatusBadRequest, "read avatar failed", err)
	}
	if len(data) == 0 {
		return nil, response.BadRequest("avatar must be not empty")
	}
	if len(data) > MaxAvatarSize {
		return nil, response.NewError(http.StatusRequestEntityTooLarge, "avatar is too large")
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	objectName := "avatars/" + id
	if err := h.avatars.Upload(r.Context(), objectName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, err
	}
	if err := h.users.SetAvatar(r.Context(), id, objectName); err != nil {
		return nil, err
	}
	return response.OK(map[string]string{"avatar": objectName})
}

// Avatar 302 到预签名地址
func (h *UserController) Avatar(r *routing.Request) (*routing.Response, error) {
	if h.avatars == nil {
		return nil, response.NewError(http.StatusServiceUnavailable, "avatar storage is not configured")
	}
	u, err := h.users.Get(r.Context(), r.Params.Get("id"))
	if err != nil {
		return nil, err
	}
	if u.Avatar == "" {
		return nil, response.NotFound("avatar not found")
	}
	url, err := h.avatars.PresignedURL(r.Context(), u.Avatar, 0)
	if err != nil {
		return nil, err
	}
	res := routing.NewResponse(http.StatusFound, "", nil)
	res.SetHeader("Location", url)
	return res, nil
}

var UserControllerType = container.Define("UserController", func(c *container.Container) (*UserController, error) {
	svc, err := container.Resolve[*user.Service](c, user.ServiceType)
	if err != nil {
		return nil, err
	}
	var avatars AvatarStore
	if c.Has(AvatarStoreAlias) {
		if avatars, err = container.Resolve[AvatarStore](c, AvatarStoreAlias); err != nil {
			return nil, err
		}
	}
	return NewUserController(svc, avatars), nil
}, routing.Controller(
	routing.Post("/auth/register", (*UserController).Register),
	routing.Post("/auth/login", (*UserController).Login, middlewares.RateLimitType),
	routing.Post("/auth/refresh", (*UserController).Refresh),
	routing.Post("/auth/logout", (*UserController).Logout),
	routing.Get("/users", (*UserController).List, middlewares.AuthType),
	routing.Get("/users/{id}", (*UserController).Get, middlewares.AuthType),
	routing.Put("/users/{id}/avatar", (*UserController).SetAvatar, middlewares.AuthType),
	routing.Get("/users/{id}/avatar", (*UserController).Avatar),
))
