// Package cli — команды commentctl: просмотр ветки комментариев поста и работа с ней
// из терминала поверх thread.Manager.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/bragboard/internal/client"
	"github.com/pribylovaa/bragboard/internal/config"
	"github.com/pribylovaa/bragboard/internal/thread"
	"github.com/pribylovaa/bragboard/internal/timefmt"
	"github.com/pribylovaa/bragboard/pkg/log"
)

const userAgent = "commentctl"

// app — общее состояние команд одного запуска.
type app struct {
	configPath string
	verbose    bool
}

// New собирает корневую команду commentctl.
func New() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "commentctl",
		Short: "Work with BragBoard comment threads",
		Long: heredoc.Doc(`
			Read and manage the comment thread of a BragBoard post.

			Connection settings come from --config, COMMENTCTL_CONFIG, ./commentctl.yaml
			or the environment (COMMENTS_BASE_URL, COMMENTS_TOKEN).
		`),
		Example: heredoc.Doc(`
			$ commentctl list --post 42
			$ commentctl post --post 42 "Congrats on the launch!"
			$ commentctl react --post 42 65f1c0 like
		`),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path")
	_ = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log requests to stderr")

	cmd.AddCommand(
		listCmd(a),
		postCmd(a),
		replyCmd(a),
		editCmd(a),
		deleteCmd(a),
		reactCmd(a),
		tokenCmd(),
	)

	return cmd
}

// session — загруженная конфигурация и менеджер ветки одного поста.
type session struct {
	ctx     context.Context
	manager *thread.Manager
	format  *timefmt.Formatter
	out     io.Writer
}

// open читает конфигурацию, создаёт клиента и менеджер и загружает ветку.
func (a *app) open(cmd *cobra.Command, postID string) (*session, error) {
	cfg, err := config.LoadClient(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}

	stderr := cmd.ErrOrStderr()
	lg := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("env", cfg.Env, "post_id", postID)
	ctx := log.Into(cmd.Context(), lg)

	c, err := client.New(cfg.BaseURL, client.StaticToken(cfg.Token),
		client.WithTimeout(cfg.Timeouts.Request),
		client.WithRetry(cfg.Retry.Count, cfg.Retry.Backoff),
		client.WithUserAgent(userAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	notify := thread.NotifierFunc(func(_ context.Context, ev thread.Event) {
		fmt.Fprintf(stderr, "%s: %s\n", ev.Level, ev.Message)
	})
	onAuth := func(context.Context, error) {
		fmt.Fprintln(stderr, "hint: set COMMENTS_TOKEN or mint a development token with `commentctl token`")
	}

	m := thread.New(postID, c, thread.WithNotifier(notify), thread.WithAuthFailure(onAuth))
	if err := m.Load(ctx); err != nil {
		return nil, err
	}

	return &session{
		ctx:     ctx,
		manager: m,
		format:  timefmt.New(timefmt.WithDateLayout(cfg.DateLayout)),
		out:     cmd.OutOrStdout(),
	}, nil
}

// show печатает ветку целиком.
func (s *session) show() {
	render(s.out, s.manager.Comments(), s.format)
}

func postFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "post", "p", "", "Post ID")
	_ = cmd.MarkFlagRequired("post")
}
