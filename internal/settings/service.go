package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	// EnvFile is the dotenv file holding user-editable settings
	// (stock list, schedule, provider keys).
	EnvFile string `conf:"env_file"`
}

type ServiceParams struct {
	fx.In

	Config Config

	Log *zap.Logger
}

// Service manages the runtime settings file. Reads always hit the
// file so edits made through the dashboard are visible to the next
// analysis run without a restart.
type Service struct {
	path string
	mu   sync.Mutex
	log  *zap.Logger
}

func NewService(params ServiceParams) *Service {
	path := params.Config.EnvFile
	if path == "" {
		path = ".env"
	}

	return &Service{
		path: path,
		log:  params.Log.Named("settings"),
	}
}

// Get returns the value for a settings key, or "" when the key or the
// file is absent.
func (s *Service) Get(key string) string {
	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), dotenv.Parser()); err != nil {
		s.log.Debug("settings file not readable", zap.String("file", s.path), zap.Error(err))
		return ""
	}
	return k.String(key)
}

// StockList returns the configured fund codes, comma-separated in the
// settings file.
func (s *Service) StockList() []string {
	raw := s.Get("STOCK_LIST")

	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// ScheduleTime returns the daily analysis schedule, HH:MM.
func (s *Service) ScheduleTime() string {
	if t := s.Get("SCHEDULE_TIME"); t != "" {
		return t
	}
	return "18:00"
}

// FileName returns the base name of the settings file, for display.
func (s *Service) FileName() string {
	return filepath.Base(s.path)
}

// ReadText returns the raw settings file. A missing file reads as
// empty rather than failing.
func (s *Service) ReadText() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read settings file: %w", err)
	}
	return string(data), nil
}

func (s *Service) WriteText(text string) error {
	if err := os.WriteFile(s.path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// Update rewrites the given keys in place, appending keys the file
// does not have yet. Empty values and values still carrying the "*"
// mask placeholder are skipped, so posting back an unchanged form
// never clobbers stored secrets. Lines for keys not in updates are
// preserved untouched.
func (s *Service) Update(updates map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.ReadText()
	if err != nil {
		return err
	}

	for key, value := range updates {
		if value == "" || strings.Contains(value, "*") {
			continue
		}

		line := key + "=" + value
		pattern := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(key) + `=.*$`)

		if pattern.MatchString(text) {
			text = pattern.ReplaceAllString(text, line)
		} else {
			if text != "" && !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			text += line + "\n"
		}

		s.log.Debug("settings key updated", zap.String("key", key))
	}

	return s.WriteText(text)
}
