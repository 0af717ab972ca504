package dashboard

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// Network is the minimal JSON status listener the CLI's `-n` flag
// enables: a deliberately thin stand-in for a richer Dashboard UI,
// exposing the same begin-task/set-state/add-output contract as a
// single GET /status endpoint returning every task's current
// Snapshot.
type Network struct {
	reg    *registry
	server *http.Server
}

// NewNetwork starts a Network dashboard listening on addr (e.g.
// "127.0.0.1:7890"). It never blocks the caller; Close shuts the
// listener down.
func NewNetwork(addr string) (*Network, error) {
	n := &Network{reg: newRegistry()}
	r := chi.NewRouter()
	r.Get("/status", n.handleStatus)
	n.server = &http.Server{Addr: addr, Handler: r}

	ln, err := listen(addr)
	if err != nil {
		return nil, err
	}
	go n.server.Serve(ln)
	return n, nil
}

func (n *Network) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(n.reg.snapshot())
}

func (n *Network) BeginTask(verb, noun string, silent bool) Task {
	t := newBaseTask(verb, noun, silent, nil)
	n.reg.add(t)
	return t
}

func (n *Network) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return n.server.Shutdown(ctx)
}
