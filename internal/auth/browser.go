package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPortMin = 8000
	DefaultPortMax = 20000

	loginSuccessBody = "Login successful. You can close this window."
)

// ErrNoFreePort indicates every port in the callback range was taken.
var ErrNoFreePort = errors.New("no free port for login callback")

// BrowserLogin opens the index's login page and captures the session the
// page redirects to a one-shot local listener. The session is the request
// path without its leading slash.
type BrowserLogin struct {
	// PortMin and PortMax bound the callback port search, max exclusive.
	PortMin int
	PortMax int
	// Open launches a browser; defaults to the system browser.
	Open func(url string) error
	// Out receives the login URL so it can be opened by hand.
	Out io.Writer
	Log logrus.FieldLogger
}

// NewBrowserLogin returns a BrowserLogin with the default port range and
// system browser.
func NewBrowserLogin(out io.Writer, log logrus.FieldLogger) *BrowserLogin {
	return &BrowserLogin{
		PortMin: DefaultPortMin,
		PortMax: DefaultPortMax,
		Open:    browser.OpenURL,
		Out:     out,
		Log:     log,
	}
}

// ObtainSession binds the first free port, opens loginURL(port) and blocks
// until the first callback request or ctx is done. The listener is closed
// before returning on every path.
func (b *BrowserLogin) ObtainSession(ctx context.Context, loginURL func(port int) string) (string, error) {
	ln, port, err := listenFirstFree(b.PortMin, b.PortMax)
	if err != nil {
		return "", err
	}

	sessions := make(chan string, 1)
	srv := &http.Server{
		Handler:           callbackRouter(sessions),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
		}
	}()

	url := loginURL(port)
	b.logger().WithField("port", port).Debug("login callback listening")
	if b.Out != nil {
		fmt.Fprintf(b.Out, "Log in to continue: %s\n", url)
	}
	if b.Open != nil {
		if err := b.Open(url); err != nil {
			b.logger().WithError(err).Warn("failed to open browser")
		}
	}

	select {
	case s := <-sessions:
		return s, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *BrowserLogin) logger() logrus.FieldLogger {
	if b.Log == nil {
		return logrus.StandardLogger()
	}
	return b.Log
}

// callbackRouter accepts exactly one session; later requests get 410.
func callbackRouter(sessions chan<- string) http.Handler {
	var once sync.Once
	r := chi.NewRouter()
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		session := chi.URLParam(r, "*")
		if session == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}
		accepted := false
		once.Do(func() {
			sessions <- session
			accepted = true
		})
		if !accepted {
			http.Error(w, "login already completed", http.StatusGone)
			return
		}
		io.WriteString(w, loginSuccessBody)
	})
	return r
}

func listenFirstFree(lo, hi int) (net.Listener, int, error) {
	if lo <= 0 || hi <= lo {
		lo, hi = DefaultPortMin, DefaultPortMax
	}
	for port := lo; port < hi; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		if err == nil {
			return ln, port, nil
		}
	}
	return nil, 0, fmt.Errorf("%w in range %d-%d", ErrNoFreePort, lo, hi-1)
}
