package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/veriflow/veriflow/internal/accounts"
	"github.com/veriflow/veriflow/internal/auth"
	"github.com/veriflow/veriflow/internal/config"
	"github.com/veriflow/veriflow/internal/emailverification"
	"github.com/veriflow/veriflow/internal/jwtkeys"
	"github.com/veriflow/veriflow/internal/logger"
	"github.com/veriflow/veriflow/internal/server"
	"github.com/veriflow/veriflow/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "veriflow",
	Short: "Third-party sign-in/sign-up server",
	Long: `Veriflow serves the third-party (OAuth2/OIDC) sign-in and sign-up flow:
authorization URL construction, code-for-token exchange, profile resolution
and session issuance, with a development-mode relay for test credentials.`,
	Run: runServer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			fmt.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := logger.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app := fx.New(
		fx.Supply(cfg),
		accounts.Module,
		emailverification.Module,
		session.Module,
		auth.Module,
		jwtkeys.Module,
		server.Module,
		fx.Invoke(registerServer),
	)
	app.Run()
}

// registerServer ties the HTTP server to the fx lifecycle.
func registerServer(lc fx.Lifecycle, srv *server.Server, shutdowner fx.Shutdowner) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(ctx); err != nil {
					logger.Error("Server exited", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
