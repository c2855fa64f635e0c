package handler

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/weibaohui/energyaudit/backend/config"
	"github.com/weibaohui/energyaudit/backend/internal/domain"
)

const (
	sessionName       = "energyaudit-session"
	sessionKeyProject = "project"
)

// ProjectStore 将每个调用方的项目配置保存在签名 cookie 中，并发用户互不影响
type ProjectStore struct {
	store *sessions.CookieStore
}

func NewProjectStore(cfg config.SessionConfig) *ProjectStore {
	// 任意口令经过哈希得到 32 字节密钥
	key := sha256.Sum256([]byte(cfg.Secret))
	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &ProjectStore{store: store}
}

// Load 返回调用方的配置，未保存时返回空配置
func (s *ProjectStore) Load(r *http.Request) (domain.ProjectConfig, error) {
	cfg := domain.NewProjectConfig()
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// cookie 无法解析（例如密钥已更换）时从空项目开始
		return cfg, nil
	}
	raw, ok := session.Values[sessionKeyProject].(string)
	if !ok || raw == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return domain.NewProjectConfig(), fmt.Errorf("decode project configuration: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

func (s *ProjectStore) Save(r *http.Request, w http.ResponseWriter, cfg domain.ProjectConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	session, _ := s.store.Get(r, sessionName)
	session.Values[sessionKeyProject] = string(data)
	return session.Save(r, w)
}

// Clear 清除配置，问题和答案仍保留
func (s *ProjectStore) Clear(r *http.Request, w http.ResponseWriter) error {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, sessionKeyProject)
	return session.Save(r, w)
}
