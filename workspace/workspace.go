// Package workspace manages per-request scratch directories. Every request
// that touches the filesystem gets its own uniquely named directory, and the
// whole directory is removed when the request finishes.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/skillsenselab/mediagate/logger"
)

const dirPrefix = "mediagate-"

// Config is the workspace section of the service configuration.
type Config struct {
	// Root is the directory under which request workspaces are created.
	// Defaults to the system temp directory.
	Root string `yaml:"root" mapstructure:"root"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Root == "" {
		c.Root = os.TempDir()
	}
}

// Manager creates request-scoped workspaces under a configured root.
type Manager struct {
	root string
	log  *logger.Logger
}

// NewManager creates a workspace manager. A nil logger falls back to the
// global logger.
func NewManager(cfg Config, log *logger.Logger) *Manager {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Manager{
		root: cfg.Root,
		log:  log.WithComponent("workspace"),
	}
}

// Create allocates a new uniquely named workspace directory.
// The caller owns the workspace and must arrange exactly one Destroy,
// normally via defer immediately after a successful Create.
func (m *Manager) Create(ctx context.Context) (*Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace root %s: %w", m.root, err)
	}

	dir := filepath.Join(m.root, dirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	m.log.Debug("workspace created", logger.Fields(logger.FieldWorkspace, dir))
	return &Workspace{dir: dir, log: m.log}, nil
}

// Workspace is a request-scoped scratch directory.
type Workspace struct {
	dir  string
	log  *logger.Logger
	once sync.Once
}

// Dir returns the absolute path of the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace directory. The name is reduced to its
// base component so a crafted name cannot escape the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, filepath.Base(name))
}

// Destroy recursively removes the workspace directory. It is idempotent,
// tolerates an already-missing directory, and never propagates removal
// failures; they are logged and the request outcome is unaffected.
func (w *Workspace) Destroy() {
	w.once.Do(func() {
		if err := os.RemoveAll(w.dir); err != nil {
			w.log.WithError(err).Warn("workspace cleanup failed",
				logger.Fields(logger.FieldWorkspace, w.dir))
			return
		}
		w.log.Debug("workspace destroyed", logger.Fields(logger.FieldWorkspace, w.dir))
	})
}
