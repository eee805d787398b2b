// Package fusefs exposes an embedfs filesystem through FUSE so its
// contents can be browsed with ordinary shell tools. The mount is strictly
// read-only; open requests with write flags are refused.
package fusefs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/embedkit/embedfs"
)

// Server bridges an embedfs.FS to a FUSE mount point.
type Server struct {
	fsys       *embedfs.FS
	conn       *fuse.Conn
	mountPoint string
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for mount lifecycle and request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server for fsys.
func New(fsys *embedfs.FS, opts ...Option) *Server {
	s := &Server{fsys: fsys}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Server) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Mount attaches the filesystem at mountPoint and serves requests on a
// background goroutine. It returns once the kernel reports the mount as
// ready.
func (s *Server) Mount(mountPoint string) error {
	s.log().Info("mounting filesystem", "mount_point", mountPoint)

	conn, err := fuse.Mount(mountPoint,
		fuse.FSName("embedfs"),
		fuse.Subtype("embedfs"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return fmt.Errorf("fusefs: mount %s: %w", mountPoint, err)
	}
	s.conn = conn
	s.mountPoint = mountPoint

	go func() {
		if err := fusefs.Serve(conn, s); err != nil {
			s.log().Error("fuse serve failed", "error", err)
		}
	}()

	if err := waitForMount(mountPoint); err != nil {
		_ = conn.Close()
		return fmt.Errorf("fusefs: %w", err)
	}
	s.log().Info("filesystem mounted", "mount_point", mountPoint)
	return nil
}

// Unmount detaches the filesystem. It is a no-op if Mount never succeeded.
func (s *Server) Unmount() error {
	if s.conn == nil {
		return nil
	}
	s.log().Info("unmounting filesystem", "mount_point", s.mountPoint)
	if err := fuse.Unmount(s.mountPoint); err != nil {
		return fmt.Errorf("fusefs: unmount %s: %w", s.mountPoint, err)
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Root implements fusefs.FS.
func (s *Server) Root() (fusefs.Node, error) {
	return &dirNode{srv: s, path: "."}, nil
}

func waitForMount(mountPoint string) error {
	for range 30 {
		info, err := os.Stat(mountPoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point %s not ready after 3s", mountPoint)
}

var _ fusefs.FS = (*Server)(nil)

// Serve mounts fsys at mountPoint and blocks until the context is
// canceled, then unmounts.
func Serve(ctx context.Context, fsys *embedfs.FS, mountPoint string, opts ...Option) error {
	srv := New(fsys, opts...)
	if err := srv.Mount(mountPoint); err != nil {
		return err
	}
	<-ctx.Done()
	return srv.Unmount()
}
