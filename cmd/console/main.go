package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/app"
	"github.com/spec-kit/console-client/internal/config"
	"github.com/spec-kit/console-client/internal/domain"
	"github.com/spec-kit/console-client/internal/notify"
	"github.com/spec-kit/console-client/internal/observability"
)

const usage = `usage: console <command> [flags]

commands:
  login -email E -password P      sign in with email and password
  register -username U -email E -password P [-invite CODE]
  logout                          end the current session
  whoami                          show the signed-in profile
  site-config                     show the public site configuration
  visit PATH                      navigate to a console view
  get PATH                        call a backend endpoint and print the JSON body
  oauth-url PROVIDER              print the sign-in URL for github, google or nodeloc
  callback LOCATION|TOKEN         finish a third-party sign-in
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, app.Options{}))
}

type cli struct {
	app    *app.App
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, opts app.Options) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printBanner(stdout)
		fmt.Fprint(stdout, usage)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		log.New(stderr, "", 0).Printf("failed to load config: %v", err)
		return 1
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.New(stderr, "", 0).Printf("failed to init logger: %v", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	a, err := app.New(ctx, cfg, logger, opts)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer a.Close()
	if err := a.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	c := &cli{app: a, in: bufio.NewScanner(stdin), out: stdout, logger: logger}
	err = c.dispatch(ctx, args[0], args[1:])
	c.flushNotifications(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
			return 2
		}
		return 1
	}
	return 0
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, figure.NewFigure("console", "cybermedium", true).String())
}

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.login(ctx, args)
	case "register":
		return c.register(ctx, args)
	case "logout":
		c.app.Session.Logout(ctx)
		return nil
	case "whoami":
		return c.whoami(ctx)
	case "site-config":
		return c.siteConfig(ctx)
	case "visit":
		return c.visit(ctx, args)
	case "get":
		return c.get(ctx, args)
	case "oauth-url":
		return c.oauthURL(ctx, args)
	case "callback":
		return c.callback(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil || *email == "" || *password == "" {
		return fmt.Errorf("%w: login needs -email and -password", errUsage)
	}

	if err := c.app.Session.Login(ctx, domain.Credentials{Email: *email, Password: *password}); err != nil {
		return err
	}
	profile, _ := c.app.Session.Profile()
	fmt.Fprintf(c.out, "signed in as %s\n", profile.DisplayName)
	return nil
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	invite := fs.String("invite", "", "invite code")
	if err := fs.Parse(args); err != nil || *username == "" || *email == "" || *password == "" {
		return fmt.Errorf("%w: register needs -username, -email and -password", errUsage)
	}

	if err := c.app.SiteConfig.Load(ctx); err == nil && !c.app.SiteConfig.Get().AllowPasswordRegister {
		return errors.New("password registration is disabled on this site")
	}
	msg, err := c.app.Session.Register(ctx, domain.Registration{
		Username:   *username,
		Email:      *email,
		Password:   *password,
		InviteCode: *invite,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, msg)
	return nil
}

func (c *cli) whoami(ctx context.Context) error {
	if !c.app.Session.IsAuthenticated() {
		return errors.New("not signed in")
	}
	if err := c.app.Session.FetchProfile(ctx); err != nil {
		return err
	}
	profile, ok := c.app.Session.Profile()
	if !ok {
		return errors.New("not signed in")
	}
	return c.printJSON(map[string]any{
		"id":           profile.ID,
		"username":     profile.DisplayName,
		"email":        profile.Email,
		"is_admin":     profile.IsAdmin,
		"user_level":   profile.Level,
		"status":       profile.Status,
		"domain_quota": profile.DomainQuota,
	})
}

func (c *cli) siteConfig(ctx context.Context) error {
	if err := c.app.SiteConfig.Load(ctx); err != nil {
		return err
	}
	cfg := c.app.SiteConfig.Get()
	return c.printJSON(map[string]any{
		"site_name":               cfg.SiteName,
		"site_description":        cfg.SiteDescription,
		"allow_password_register": cfg.AllowPasswordRegister,
		"currency_symbol":         cfg.CurrencySymbol,
		"oauth": map[string]bool{
			"github":  cfg.OAuth.Github,
			"google":  cfg.OAuth.Google,
			"nodeloc": cfg.OAuth.Nodeloc,
		},
		"billing": map[string]any{"enabled": cfg.Billing.Enabled, "url": cfg.Billing.URL},
	})
}

func (c *cli) visit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: visit needs a path", errUsage)
	}
	loc, err := c.app.Router.Navigate(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s)\n", loc.Path, loc.Route.Name)
	return nil
}

func (c *cli) get(ctx context.Context, args []string) error {
	if len(args) != 1 || !strings.HasPrefix(args[0], "/") {
		return fmt.Errorf("%w: get needs a path starting with /", errUsage)
	}
	var body json.RawMessage
	if err := c.app.Gateway.Get(ctx, args[0], &body); err != nil {
		return err
	}
	return c.printJSON(body)
}

func (c *cli) oauthURL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: oauth-url needs a provider", errUsage)
	}
	if err := c.app.SiteConfig.Load(ctx); err != nil {
		c.logger.Warn("site config unavailable, provider availability not checked", zap.Error(err))
	}
	url, err := c.app.OAuthURL(domain.OAuthProvider(strings.ToLower(args[0])))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, url)
	return nil
}

func (c *cli) callback(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: callback needs a location or token", errUsage)
	}
	target := args[0]
	if !strings.HasPrefix(target, "/") {
		target = "/auth/callback?token=" + target
	}
	loc, err := c.app.HandleCallback(ctx, target)
	if err != nil {
		return err
	}
	profile, _ := c.app.Session.Profile()
	fmt.Fprintf(c.out, "signed in as %s, now at %s\n", profile.DisplayName, loc.Path)
	return nil
}

// flushNotifications prints queued notifications and asks for an answer to any
// prompt, until answering raises nothing new.
func (c *cli) flushNotifications(ctx context.Context) {
	for batch := c.app.Notifications.Drain(); len(batch) > 0; batch = c.app.Notifications.Drain() {
		for _, n := range batch {
			fmt.Fprintf(c.out, "[%s] %s\n", n.Level, n.Message)
			if n.Prompt == nil {
				continue
			}
			choice := c.ask(n.Prompt)
			if err := c.app.Reactor.ResolvePrompt(ctx, n.Prompt.ID, choice); err != nil {
				c.logger.Warn("prompt not resolved", zap.String("prompt_id", n.Prompt.ID), zap.Error(err))
				continue
			}
			fmt.Fprintf(c.out, "now at %s\n", c.app.Router.Current().Path)
		}
	}
}

// ask reads the answer; anything unrecognised, including end of input, picks the last choice.
func (c *cli) ask(p *notify.Prompt) string {
	fallback := p.Choices[len(p.Choices)-1]
	fmt.Fprintf(c.out, "choose [%s]: ", strings.Join(p.Choices, "/"))
	if !c.in.Scan() {
		fmt.Fprintln(c.out)
		return fallback
	}
	answer := strings.ToLower(strings.TrimSpace(c.in.Text()))
	for _, choice := range p.Choices {
		if answer == choice {
			return choice
		}
	}
	return fallback
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
