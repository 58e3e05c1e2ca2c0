package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"lower": strings.ToLower,
}

// Templates holds the parsed page templates. When loaded from a directory it
// re-parses them whenever a file there changes.
type Templates struct {
	fsys fs.FS
	log  *zap.Logger

	mu   sync.RWMutex
	tmpl *template.Template

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// LoadTemplates parses the embedded templates, or those in dir when it is not empty.
func LoadTemplates(dir string, log *zap.Logger) (*Templates, error) {
	if dir == "" {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, err
		}
		t := &Templates{fsys: sub, log: log}
		return t, t.reload()
	}

	t := &Templates{fsys: os.DirFS(dir), log: log}
	if err := t.reload(); err != nil {
		return nil, err
	}
	if err := t.watch(dir); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Templates) reload() error {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(t.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	t.mu.Lock()
	t.tmpl = tmpl
	t.mu.Unlock()
	return nil
}

func (t *Templates) watch(dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}
	t.watcher = w
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".html") || event.Has(fsnotify.Chmod) {
					continue
				}
				// a half-written file keeps the previous templates in place
				if err := t.reload(); err != nil {
					t.log.Warn("template reload failed", zap.String("file", event.Name), zap.Error(err))
					continue
				}
				t.log.Info("templates reloaded", zap.String("file", event.Name))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				t.log.Warn("template watcher error", zap.Error(err))
			}
		}
	}()

	t.log.Info("watching templates", zap.String("dir", dir))
	return nil
}

// Close stops the directory watcher, if any.
func (t *Templates) Close() error {
	if t.watcher == nil {
		return nil
	}
	err := t.watcher.Close()
	<-t.done
	return err
}

// Render executes the named template and writes it with the given status. Nothing is
// written to w when execution fails.
func (t *Templates) Render(w http.ResponseWriter, status int, name string, data any) error {
	t.mu.RLock()
	tmpl := t.tmpl
	t.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded stylesheet under /static/.
func StaticHandler() http.Handler {
	return http.FileServerFS(staticFS)
}
