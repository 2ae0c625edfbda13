// Package httpapi exposes the marketplace services over HTTP: JSON
// responses, form and multipart requests, bearer-token identity.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/logging"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
	"github.com/dmitrijs2005/a2hand/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Me(ctx context.Context, token string) (*models.User, error)
	Authenticate(token string) (string, error)
}

type ProductService interface {
	Create(ctx context.Context, np services.NewProduct, images []services.Upload) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Delete(ctx context.Context, id int64, requester string) error
}

type MessageService interface {
	Send(ctx context.Context, nm services.NewMessage, attachment *services.Upload) (*models.Message, error)
	List(ctx context.Context, username string) ([]models.Message, error)
	MarkRead(ctx context.Context, id int64, receiver string) error
}

// Options tunes the HTTP surface.
type Options struct {
	// RequireAuth rejects acting requests that carry no bearer token.
	RequireAuth bool
	// MaxUploadSize caps multipart request bodies, in bytes.
	MaxUploadSize int64
	// AllowedOrigins for CORS; "*" allows any origin.
	AllowedOrigins []string
	// UploadDir is served under /uploads/ when set.
	UploadDir string
}

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address  string
	users    UserService
	products ProductService
	messages MessageService
	logger   logging.Logger
	opts     Options
	metrics  *Metrics
}

func NewHTTPServer(a string, l logging.Logger, us UserService, ps ProductService, ms MessageService, opts Options) *HTTPServer {
	if l == nil {
		l = logging.Nop{}
	}
	return &HTTPServer{
		address:  a,
		logger:   l.With("module", "http_server"),
		users:    us,
		products: ps,
		messages: ms,
		opts:     opts,
		metrics:  NewMetrics(),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-shutdownErr
}
