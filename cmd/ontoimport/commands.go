package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/ontoimport/pkg/config/xconf"
	"github.com/omeyang/ontoimport/pkg/lifecycle/xrun"
	"github.com/omeyang/ontoimport/pkg/observability/xlog"
	"github.com/omeyang/ontoimport/pkg/semantics/xrdf"
)

// shutdownTimeout 关闭组件的最长等待时间。
const shutdownTimeout = 10 * time.Second

// exitError 表示输出已完成、只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 表示命令参数错误。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func closeApp(ctx context.Context, a *app) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		a.logger.Warn("shutdown failed", slog.Any("error", err))
	}
}

func createImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Aliases:   []string{"i"},
		Usage:     "导入文件",
		ArgsUsage: "<files...>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				return &usageError{msg: "import 需要至少一个文件"}
			}
			cfg, _, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			return cmdImport(ctx, cmd, cfg, files)
		},
	}
}

func cmdImport(ctx context.Context, cmd *cli.Command, cfg Config, files []string) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp(ctx, a)

	out := cmd.Root().Writer
	failed := 0
	for _, f := range files {
		rep, _ := a.importer.ImportFile(ctx, f)
		fmt.Fprintln(out, rep)
		if rep.Failed() {
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}
	if failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

func createWatchCommand() *cli.Command {
	return &cli.Command{
		Name:    "watch",
		Aliases: []string{"w"},
		Usage:   "监视收件目录并导入新文件",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "收件目录"},
			&cli.StringFlag{Name: "success-dir", Usage: "导入成功的文件移动到此目录（默认 <dir>/success）"},
			&cli.StringFlag{Name: "failure-dir", Usage: "导入失败的文件移动到此目录（默认 <dir>/failure）"},
			&cli.StringFlag{Name: "rescan", Usage: "定期扫描收件目录的 cron 表达式，如 \"@every 5m\""},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, loader, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			applyWatchFlags(cmd, &cfg.Watch)
			if cfg.Watch.Dir == "" {
				return &usageError{msg: "watch 需要 --dir 或配置 watch.dir"}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return cmdWatch(ctx, cfg, loader)
		},
	}
}

func applyWatchFlags(cmd *cli.Command, w *WatchConfig) {
	if v := cmd.String("dir"); v != "" {
		w.Dir = v
	}
	if v := cmd.String("success-dir"); v != "" {
		w.SuccessDir = v
	}
	if v := cmd.String("failure-dir"); v != "" {
		w.FailureDir = v
	}
	if v := cmd.String("rescan"); v != "" {
		w.Rescan = v
	}
}

func cmdWatch(ctx context.Context, cfg Config, loader *xconf.Loader) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp(ctx, a)

	in, err := newInbox(cfg.Watch, a.importer.ImportFile, a.logger)
	if err != nil {
		return err
	}
	tasks := in.tasks(cfg.Watch.Rescan)
	if loader != nil {
		tasks = append(tasks, func(ctx context.Context) error {
			return xconf.Watch(ctx, loader, a.reloadLogLevel)
		})
	}

	a.logger.Info("watching inbox",
		slog.String("dir", in.dir),
		slog.String("success_dir", in.successDir),
		slog.String("failure_dir", in.failureDir))

	err = xrun.Run(ctx, []xrun.Option{xrun.WithLogger(a.logger), xrun.WithName("watch")}, tasks...)
	var sigErr *xrun.SignalError
	if errors.As(err, &sigErr) {
		a.logger.Info("received signal, stopping", slog.String("signal", sigErr.Signal.String()))
		return nil
	}
	return err
}

// reloadLogLevel 配置文件变更后只热更新日志级别，其余配置需重启生效。
func (a *app) reloadLogLevel(l *xconf.Loader, err error) {
	if err != nil {
		a.logger.Warn("reload config failed", slog.Any("error", err))
		return
	}
	var lc LogConfig
	if err := l.Unmarshal("log", &lc); err != nil {
		a.logger.Warn("reload log config failed", slog.Any("error", err))
		return
	}
	level, err := xlog.ParseLevel(lc.Level)
	if err != nil {
		a.logger.Warn("invalid log level", slog.String("level", lc.Level))
		return
	}
	if level != a.level.Level() {
		a.level.Set(level)
		a.logger.Info("log level changed", slog.String("level", level.String()))
	}
}

func createHealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "检查图存储连通性",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			a, err := newBaseApp(cfg)
			if err != nil {
				return err
			}
			defer closeApp(ctx, a)

			if err := a.openMongo(ctx); err != nil {
				return err
			}
			st := a.mongo.Stats()
			fmt.Fprintf(cmd.Root().Writer, "ok %s/%s pings=%d sessions=%d\n",
				redactURI(cfg.Mongo.URI), cfg.Mongo.Database, st.PingCount, st.SessionsInProgress)
			return nil
		},
	}
}

func createFormatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: "列出支持的格式",
		Action: func(_ context.Context, cmd *cli.Command) error {
			tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EXTENSION\tFORMAT\tSUPPORTED\tSTREAMING")
			for _, e := range xrdf.Formats() {
				fmt.Fprintf(tw, ".%s\t%s\t%t\t%t\n", e.Extension, e.Format, e.Supported, e.Streamable)
			}
			return tw.Flush()
		},
	}
}
