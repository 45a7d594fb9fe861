package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"lawdesk/internal/gmail"
	"lawdesk/internal/logger"
	"lawdesk/internal/model"
	"lawdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Store is the persistence the API needs. *store.SQLiteStore satisfies it.
type Store interface {
	CreateLawyer(ctx context.Context, l model.Lawyer) error
	GetLawyer(ctx context.Context, email string) (model.Lawyer, error)
	CreateCase(ctx context.Context, c model.Case) (model.Case, error)
	GetCase(ctx context.Context, id string) (model.Case, error)
	ListCases(ctx context.Context, lawyerEmail string) ([]model.Case, error)
	SaveEmails(ctx context.Context, lawyerEmail, caseID string, emails []model.NormalizedEmail) error
	ListEmails(ctx context.Context, f store.EmailFilter) ([]model.StoredEmail, error)
}

// TextExtractor turns an uploaded PDF into text. *ocr.Extractor satisfies it.
type TextExtractor interface {
	ExtractPDF(ctx context.Context, pdf io.Reader) (string, error)
}

// FetchFunc has the signature of gmail.FetchEmails.
type FetchFunc func(ctx context.Context, creds gmail.Credentials, sender, startDate string, opts ...gmail.Option) (model.EmailBatch, error)

type Server struct {
	store      Store
	ocr        TextExtractor
	fetch      FetchFunc
	ingestOpts []gmail.Option
}

// New wires the API. ingestOpts are applied to every fetch before the
// per-request limit.
func New(st Store, ext TextExtractor, ingestOpts ...gmail.Option) *Server {
	return &Server{
		store:      st,
		ocr:        ext,
		fetch:      gmail.FetchEmails,
		ingestOpts: ingestOpts,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(GinLogger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Tender for Lawyers API"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/emails/fetch", s.fetchEmails)
		api.GET("/emails", s.listEmails)

		api.POST("/lawyers", s.createLawyer)
		api.GET("/lawyers/:email", s.getLawyer)

		api.POST("/cases", s.createCase)
		api.GET("/cases", s.listCases)
		api.GET("/cases/:id", s.getCase)

		api.POST("/ocr/extract", s.extractText)
	}
	return r
}

// ListenAndServe serves h on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("server shutdown failed", zap.Error(err))
		return err
	}
	logger.Logger.Info("server stopped")
	return nil
}
