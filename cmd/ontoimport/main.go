// ontoimport 将语义网文档导入 MongoDB 属性图。
//
// 用法:
//
//	ontoimport [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config   配置文件路径（.yaml/.yml/.json），环境变量 ONTOIMPORT_CONFIG
//
// 命令:
//
//	import <files...>   导入文件并输出每个文件的导入报告
//	watch               监视收件目录，导入新文件并按结果移动到 success/failure 目录
//	health              检查图存储连通性
//	formats             列出支持的文件扩展名和格式
//
// 退出码:
//
//	0: 成功
//	1: 执行失败，或有文件导入失败
//	2: 参数或配置错误
//
// 示例:
//
//	ontoimport -c ontoimport.yaml import onto.nt data.nq
//	ontoimport -c ontoimport.yaml watch --dir /data/inbox --rescan "@every 5m"
//	ontoimport formats
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息，可通过 -ldflags "-X main.Version=..." 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "ontoimport",
		Usage:     "将语义网文档导入属性图",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				Sources: cli.EnvVars("ONTOIMPORT_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			createImportCommand(),
			createWatchCommand(),
			createHealthCommand(),
			createFormatsCommand(),
		},
		// 退出码由 run 统一映射
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := createApp(stdout, stderr).Run(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if errors.Is(err, errInvalidConfig) {
		fmt.Fprintf(stderr, "配置错误: %v\n", err)
		return 2
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return 1
}
