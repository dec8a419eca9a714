package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

const (
	Tier1 = "tier1_v1"
	Tier2 = "tier2_v1"

	extension = ".tmpl"
)

//go:embed templates/*.tmpl
var embedded embed.FS

type Tier1Data struct {
	Prompt string
}

type Tier2Data struct {
	Prompt         string
	TotalProcessed int
	AttackPatterns map[string]int
	RecentHistory  []session.Entry
}

//go:generate mockery --name=Renderer --dir=. --output=./mocks --filename=renderer_mock.go --case=underscore --with-expecter

type Renderer interface {
	Render(name string, data interface{}) (string, error)
}

// Store renders named prompt templates. Templates found in the override
// directory win over the embedded ones.
type Store struct {
	logger      *logrus.Logger
	overrideDir string

	mu    sync.RWMutex
	cache map[string]*template.Template
}

func NewStore(logger *logrus.Logger, overrideDir string) *Store {
	return &Store{
		logger:      logger,
		overrideDir: overrideDir,
		cache:       make(map[string]*template.Template),
	}
}

func (s *Store) Render(name string, data interface{}) (string, error) {
	tmpl, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *Store) lookup(name string) (*template.Template, error) {
	s.mu.RLock()
	tmpl, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	src, origin, err := s.load(name)
	if err != nil {
		return nil, err
	}
	tmpl, err = template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	s.mu.Lock()
	s.cache[name] = tmpl
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"template": name, "origin": origin}).Debug("prompt template loaded")
	}
	return tmpl, nil
}

func (s *Store) load(name string) (string, string, error) {
	if strings.ContainsAny(name, `/\`) {
		return "", "", fmt.Errorf("invalid template name %q", name)
	}
	file := name + extension
	if s.overrideDir != "" {
		path := filepath.Join(s.overrideDir, file)
		raw, err := os.ReadFile(path)
		if err == nil {
			return string(raw), path, nil
		}
		if !os.IsNotExist(err) {
			return "", "", fmt.Errorf("read template %s: %w", path, err)
		}
	}
	raw, err := embedded.ReadFile("templates/" + file)
	if err != nil {
		return "", "", fmt.Errorf("template %s not found", name)
	}
	return string(raw), "embedded", nil
}
