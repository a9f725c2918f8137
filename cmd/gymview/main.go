// Command gymview is a small command-line client for the GymView API. It keeps
// the session in a token file so consecutive invocations stay signed in.
//
// Usage:
//
//	gymview [-config file] [-env file] <command> [args]
//
// Commands:
//
//	login -user <name> [-password <pw>]   sign in (password defaults to GYMVIEW_PASSWORD)
//	logout                                end the session and clear the token file
//	whoami                                print the signed-in user
//	get <path>                            GET an API path and print the JSON body
//	health                                check the gRPC endpoint (requires grpc.address)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironfitness/go-gymview/grpcclient"
	"github.com/ironfitness/go-gymview/gymapi"
	"github.com/ironfitness/go-gymview/httpclient"
	"github.com/ironfitness/go-gymview/internal/config"
	"github.com/ironfitness/go-gymview/oauth2client"
	"github.com/ironfitness/go-gymview/tokenstore"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var errUsage = errors.New("usage: gymview [-config file] [-env file] login|logout|whoami|get|health")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err and, when the session is gone, how to get a new one.
// A failed refresh clears the stored session just like a rejected replay.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "gymview: %v\n", err)
	if errors.Is(err, httpclient.ErrAuthorizationExpired) || errors.Is(err, httpclient.ErrRefreshFailed) {
		fmt.Fprintln(w, "Session expired. Run `gymview login` again.")
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("gymview", flag.ContinueOnError)
	configFile := fs.String("config", "", "config file (default: ./gymview.yaml)")
	envFile := fs.String("env", ".env", "dotenv file loaded before the environment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	var opts []config.Option
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	opts = append(opts, config.WithEnvFile(*envFile))

	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "login":
		return app.login(ctx, rest, stdout)
	case "logout":
		return app.api.Auth.Logout(ctx)
	case "whoami":
		return app.whoami(ctx, stdout)
	case "get":
		return app.get(ctx, rest, stdout)
	case "health":
		return app.health(ctx, stdout)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

type app struct {
	cfg config.Config
	api *gymapi.Client
}

func newApp(cfg config.Config) (*app, error) {
	var fileOpts []tokenstore.FileOption
	if cfg.TokenStore.Secret != "" {
		fileOpts = append(fileOpts, tokenstore.WithEncryptionSecret([]byte(cfg.TokenStore.Secret)))
	}
	store, err := tokenstore.NewFileStore(cfg.TokenStore.File, fileOpts...)
	if err != nil {
		return nil, err
	}

	logger := httpclient.Logger(log.New(io.Discard, "", 0))
	if cfg.Logging.Enabled {
		logger = log.Default()
	}

	builder := httpclient.NewBuilder(cfg.BaseURL).
		WithTokenStore(store).
		WithRefreshPath(cfg.RefreshPath).
		WithTimeout(cfg.Timeout).
		WithRetry(cfg.Retry.Max, cfg.Retry.Delay).
		WithLogger(logger).
		WithRefresherOptions(
			oauth2client.WithMaxPending(cfg.Refresh.MaxPending),
			oauth2client.WithRefreshTimeout(cfg.Refresh.Timeout),
		)
	if cfg.TLS.CAFile != "" || cfg.TLS.CertFile != "" {
		builder = builder.WithTLS(cfg.TLS.CAFile, cfg.TLS.CertFile, cfg.TLS.KeyFile)
	}
	if cfg.TLS.InsecureSkipVerify {
		builder = builder.WithInsecureSkipVerify()
	}

	hc, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg: cfg,
		api: gymapi.New(hc, store, gymapi.WithLogger(logger)),
	}, nil
}

func (a *app) login(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	user := fs.String("user", "", "user name")
	password := fs.String("password", "", "password (default: GYMVIEW_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("GYMVIEW_PASSWORD")
	}
	if *user == "" || *password == "" {
		return errors.New("login: -user and a password are required")
	}

	session, err := a.api.Auth.Login(ctx, gymapi.LoginCredentials{Usuario: *user, Contrasena: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Signed in as %s (%s)\n", session.User.NombreCompleto, session.User.Rol)
	return nil
}

func (a *app) whoami(ctx context.Context, stdout io.Writer) error {
	user, err := a.api.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(stdout, "Not signed in")
		return nil
	}
	fmt.Fprintf(stdout, "%s (%s, id %d)\n", user.NombreCompleto, user.Rol, user.IDUsuario)

	features, err := a.api.Auth.Features(ctx)
	if err != nil {
		return err
	}
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = string(f)
	}
	fmt.Fprintf(stdout, "Features: %s\n", strings.Join(names, ", "))
	return nil
}

func (a *app) get(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("get: exactly one API path is required")
	}

	var body []byte
	if err := a.api.HTTP().Get(ctx, args[0], &body); err != nil {
		return err
	}
	_, err := fmt.Fprintln(stdout, string(body))
	return err
}

func (a *app) health(ctx context.Context, stdout io.Writer) error {
	if a.cfg.GRPC.Address == "" {
		return errors.New("health: grpc.address is not configured")
	}

	builder := grpcclient.NewBuilder().
		WithAddress(a.cfg.GRPC.Address).
		WithRefresher(a.api.HTTP().Refresher())
	if a.cfg.GRPC.Insecure {
		builder = builder.WithInsecure()
	} else if a.cfg.TLS.CAFile != "" || a.cfg.TLS.CertFile != "" {
		builder = builder.WithTLS(a.cfg.TLS.CAFile, a.cfg.TLS.CertFile, a.cfg.TLS.KeyFile, "")
	}

	conn, err := builder.Build()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	fmt.Fprintln(stdout, resp.GetStatus())
	return nil
}
