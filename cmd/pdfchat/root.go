package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pdfchat-go/internal/config"
	"pdfchat-go/pkg/log"
	"pdfchat-go/pkg/ragclient"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfchat [file.pdf]",
		Short: "Chat with a PDF from the terminal",
		Long: `pdfchat uploads a PDF to the RAG backend and answers questions
grounded in it. Without a file argument, choose one with /file PATH.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runChat,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringP("config", "c", "./configs/config.yaml", "config file path")
	cmd.PersistentFlags().String("api", "", "backend base URL, overrides api.base_url")
	cmd.PersistentFlags().Bool("stub", false, "use the fixed-delay placeholder backend")
	return cmd
}

// loadConfig 把命令行参数绑定到 viper 后加载配置，参数优先于环境变量和配置文件。
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	v := viper.New()
	if err := v.BindPFlag("api.base_url", flags.Lookup("api")); err != nil {
		return config.Config{}, err
	}
	if stub, _ := flags.GetBool("stub"); stub {
		v.Set("client.mode", config.ClientModeStub)
	}
	path, _ := flags.GetString("config")
	return config.LoadWith(v, path)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// 终端里只保留警告以上的日志，避免打断对话
	log.Init("warn", "console", cfg.Log.OutputPath)
	defer log.Sync()

	ctx := cmd.Context()
	t := newTerminal(ctx, ragclient.New(cfg), cmd.OutOrStdout())
	defer t.close()
	t.orch.CheckHealth(ctx)

	if len(args) == 1 {
		t.handle("/file " + args[0])
		t.handle("/upload")
	}
	return t.run(cmd.InOrStdin())
}
