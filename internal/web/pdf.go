package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"aviancal/internal/capture"
	appLog "aviancal/internal/log"
)

// printPDF serves /print on an ephemeral loopback listener, outside basic
// auth, and has the printer capture it.
func (s *Server) printPDF(ctx context.Context, id string, year int, template bool) ([]byte, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("web: print listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /print", s.handlePrint)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("print server failed", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	q := url.Values{}
	q.Set("schedule", id)
	q.Set("year", strconv.Itoa(year))
	q.Set("template", strconv.FormatBool(template))
	target := url.URL{Scheme: "http", Host: ln.Addr().String(), Path: "/print", RawQuery: q.Encode()}

	var buf bytes.Buffer
	if err := s.printer(ctx, capture.PDFOptions{URL: target.String()}, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
