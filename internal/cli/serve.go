package cli

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depdistill/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may take after an
// interrupt.
const shutdownTimeout = 15 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the distillation pipeline over HTTP",
		Long: `Serve the distillation pipeline over HTTP.

The API reads existing restore graphs only; dotnet is never run on behalf of a
request. Analyses are stored in MongoDB when store.mongo_uri is set and kept in
memory otherwise.

A request names a restore graph on the server's filesystem, and the lock files
and packages folders it references are read as well. Without --root any path
readable by the server process is accepted, so bind to a public --addr only
together with --root.`,
		Example: `  depdistill serve --addr :8080
  depdistill serve --root /srv/solutions
  curl -X POST localhost:8080/v1/analyze -d '{"graphPath": "obj/App.dgspec.json"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	cmd.Flags().String("root", "", "directory restore graphs must be inside")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))
	if runner.Store, err = c.newStore(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", c.cfg.Server.Addr)
	if err != nil {
		return err
	}
	handler, err := server.New(runner, c.Logger, server.Options{Root: c.cfg.Server.Root})
	if err != nil {
		return err
	}
	if c.cfg.Server.Root == "" {
		c.Logger.Warn("serving restore graphs from any path; set --root to confine requests")
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	printSuccess("Listening on %s", StyleLink.Render("http://"+ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
