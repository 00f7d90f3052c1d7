// Package cli команды storectl, админской утилиты магазина
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pkgerrors "StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/cli/client"
	"StorefrontPlatform/services/storefront-service/internal/cli/output"
	"StorefrontPlatform/services/storefront-service/internal/cli/store"
)

const (
	defaultServer  = "http://localhost:8080/api"
	defaultTimeout = 30 * time.Second
)

// app общее состояние команд одного запуска
type app struct {
	v      *viper.Viper
	logger logger.Logger
	now    func() time.Time
}

// NewRootCmd собирает дерево команд storectl
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: logger.NewNop(), now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "storectl",
		Short: "storectl - администрирование магазина",
		Long: `storectl - инструмент командной строки для администратора магазина.

Позволяет войти в админку, просматривать и менять статусы заказов,
редактировать конфигурацию витрины и следить за событиями заказов.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.storectl/config.yaml)")
	flags.StringP("server", "s", defaultServer, "functions base URL")
	flags.StringP("output", "o", string(output.FormatTable), "output format (table, json, yaml)")
	flags.String("token", "", "admin token (overrides the saved one)")
	flags.Duration("timeout", defaultTimeout, "request timeout")
	flags.Bool("debug", false, "debug logging to stderr")

	for _, name := range []string{"config", "server", "output", "token", "timeout", "debug"} {
		a.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newHashPasswordCmd(),
		a.newOrdersCmd(),
		a.newConfigCmd(),
		a.newEventsCmd(),
	)

	return rootCmd
}

// init читает файл конфигурации и переменные окружения STORECTL_*
func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("STORECTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".storectl"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
		if err := a.v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	level := "error"
	if a.v.GetBool("debug") {
		level = "debug"
	}
	log, err := logger.New(logger.Options{
		Environment: "dev",
		Level:       level,
		Service:     "storectl",
		Output:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	a.logger = log

	a.logger.Debug("Config loaded",
		logger.String("file", a.v.ConfigFileUsed()),
		logger.String("server", a.v.GetString("server")))
	return nil
}

func (a *app) format() output.FormatType {
	return output.FormatType(a.v.GetString("output"))
}

func (a *app) print(cmd *cobra.Command, data interface{}) error {
	return output.Print(cmd.OutOrStdout(), a.format(), data)
}

func (a *app) tokenStore() (*store.TokenStore, error) {
	return store.NewTokenStore()
}

// anonymousClient клиент без токена, для входа
func (a *app) anonymousClient() *client.AdminClient {
	return client.NewAdminClient(a.v.GetString("server"), "", a.v.GetDuration("timeout"), a.logger)
}

// adminClient клиент с токеном из флага, окружения или сохраненной сессии
func (a *app) adminClient() (*client.AdminClient, error) {
	token := a.v.GetString("token")
	if token == "" {
		ts, err := a.tokenStore()
		if err != nil {
			return nil, err
		}
		info, err := ts.Load()
		if err != nil {
			return nil, err
		}
		if info.Expired(a.now()) {
			return nil, pkgerrors.New(pkgerrors.ErrSessionExpired, "Session expired, run 'storectl login' again")
		}
		token = info.Token
	}
	return a.anonymousClient().WithToken(token), nil
}

// handleError приводит ошибку команды к единому виду
func (a *app) handleError(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}

	appErr, ok := pkgerrors.As(err)
	if !ok {
		appErr = pkgerrors.Wrap(err, pkgerrors.ErrInternal, err.Error())
	}

	a.logger.Debug("Command failed",
		logger.String("command", cmd.CommandPath()),
		logger.String("code", string(appErr.Code)),
		logger.Error(err))

	if appErr.Code == pkgerrors.ErrSessionExpired || appErr.Code == pkgerrors.ErrUnauthorized {
		return fmt.Errorf("%s: %s (run 'storectl login')", cmd.Name(), appErr.Message)
	}
	return fmt.Errorf("%s: %s", cmd.Name(), appErr.Message)
}
