package config

import (
	"ddi/internal/infra/container"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Service 扁平的 a.b.c 键折叠成嵌套树，再按 schema 解码校验
type Service struct {
	v        *viper.Viper
	validate *validator.Validate
}

// ServiceAlias 容器中的配置服务
var ServiceAlias = container.NewAlias[*Service]("ConfigService")

// NewService 键按 "." 切分；最后一段为空的键忽略。
// 键按字典序写入，深层键会覆盖同名的标量。
func NewService(env map[string]string) *Service {
	v := viper.New()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "" || strings.HasSuffix(k, ".") {
			continue
		}
		v.Set(k, env[k])
	}
	return &Service{v: v, validate: validator.New()}
}

// FromEnviron 进程环境 + .env 文件；进程环境优先，不存在的文件跳过
func FromEnviron(files ...string) (*Service, error) {
	env := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
		for k, val := range values {
			if _, ok := env[k]; !ok {
				env[k] = val
			}
		}
	}
	for _, kv := range os.Environ() {
		k, val, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = val
		}
	}
	return NewService(env), nil
}

// SetDefault 未提供时的默认值
func (s *Service) SetDefault(key string, value any) {
	s.v.SetDefault(key, value)
}

// Value 原始值，路径大小写不敏感
func (s *Service) Value(path string) any {
	return s.v.Get(path)
}

// Tree 折叠后的整棵配置树
func (s *Service) Tree() map[string]any {
	return s.v.AllSettings()
}

// Get 解码到 T 并执行 validate 标签校验
func Get[T any](s *Service) (*T, error) {
	out := new(T)
	if err := s.v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("config: decode %T: %w", out, err)
	}
	if err := s.validate.Struct(out); err != nil {
		return nil, fmt.Errorf("config: validate %T: %w", out, err)
	}
	return out, nil
}
