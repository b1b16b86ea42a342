// Package mcpserver exposes the analysis tools over the Model Context
// Protocol.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/folio/internal/cache"
	"github.com/panbanda/folio/internal/scanner"
	"github.com/panbanda/folio/internal/tools"
	"github.com/panbanda/folio/pkg/config"
	"github.com/panbanda/folio/pkg/corpus"
)

// Options configures a Server.
type Options struct {
	// Root is the corpus used when a call does not name one.
	Root   string
	Config *config.Config
	Logger *slog.Logger
}

// Server wraps the MCP server and the tool registry it serves.
type Server struct {
	server   *mcp.Server
	registry *tools.Registry
	version  string
	root     string
	cfg      *config.Config
	logger   *slog.Logger
	corpora  *cache.Cache[*tools.Env]
}

// corpusTTL bounds how long an unchanged corpus stays loaded.
const corpusTTL = 10 * time.Minute

// NewServer creates an MCP server with every registry tool, the document
// resources and the bundled prompts.
func NewServer(version string, opts Options) *Server {
	if version == "" {
		version = "dev"
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		server:   mcp.NewServer(&mcp.Implementation{Name: "folio", Version: version}, nil),
		registry: tools.Builtin(),
		version:  version,
		root:     opts.Root,
		cfg:      opts.Config,
		logger:   opts.Logger,
		corpora:  cache.New[*tools.Env](corpusTTL),
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// load returns the corpus at root, or the server's default root. A corpus
// is reused across calls until one of its documents changes.
func (s *Server) load(ctx context.Context, root string) (*tools.Env, error) {
	if root == "" {
		root = s.root
	}
	key, hash, cacheable := s.fingerprint(root)
	if cacheable {
		if env, ok := s.corpora.GetWithHash(key, hash); ok {
			s.logger.Debug("reusing loaded corpus", "root", key)
			return env, nil
		}
	}

	c, err := corpus.NewLoader(s.cfg, corpus.WithLogger(s.logger)).Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	env := tools.NewEnv(c, s.cfg, s.version)
	env.Logger = s.logger
	if cacheable {
		s.corpora.SetWithHash(key, hash, env)
	}
	return env, nil
}

// fingerprint identifies the current state of the documents under root.
// Roots that cannot be scanned are not cached; loading reports the error.
func (s *Server) fingerprint(root string) (key, hash string, ok bool) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	files, err := scanner.NewScanner(s.cfg).ScanDir(abs)
	if err != nil {
		return "", "", false
	}
	hash, err = cache.Fingerprint(files)
	if err != nil {
		return "", "", false
	}
	return abs, hash, true
}
