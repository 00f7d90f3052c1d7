package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	pkgerrors "StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
	"StorefrontPlatform/services/storefront-service/internal/cli/store"
	"StorefrontPlatform/services/storefront-service/internal/pkg/password"
)

func (a *app) newLoginCmd() *cobra.Command {
	var passwordFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Вход администратора",
		Long: `Обменивает пароль администратора на токен и сохраняет его
в $STORECTL_HOME/.storectl/token. Пароль берется из флага --password,
переменной STORECTL_PASSWORD или первой строки stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := passwordFlag
			if secret == "" {
				secret = a.v.GetString("password")
			}
			if secret == "" {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return a.handleError(cmd, err)
				}
				secret = line
			}

			token, err := a.anonymousClient().Login(cmd.Context(), secret)
			if err != nil {
				return a.handleError(cmd, err)
			}

			info := &store.TokenInfo{
				Token:     token,
				Server:    a.v.GetString("server"),
				ExpiresAt: tokenExpiry(token),
			}
			ts, err := a.tokenStore()
			if err != nil {
				return a.handleError(cmd, err)
			}
			if err := ts.Save(info); err != nil {
				return a.handleError(cmd, err)
			}

			a.logger.Debug("Token saved", logger.String("path", ts.Path()))

			if info.ExpiresAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s\n", info.Server)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s, session valid until %s\n",
					info.Server, info.ExpiresAt.Local().Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "admin password")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить сохраненный токен",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := a.tokenStore()
			if err != nil {
				return a.handleError(cmd, err)
			}
			if err := ts.Clear(); err != nil {
				return a.handleError(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Сгенерировать bcrypt хеш для ADMIN_PASSWORD_HASH",
		Long: `Печатает bcrypt хеш пароля. Результат кладется в ADMIN_PASSWORD_HASH
вместо открытого ADMIN_PASSWORD. Без аргумента пароль читается из stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			if len(args) == 1 {
				secret = args[0]
			} else {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return a.handleError(cmd, err)
				}
				secret = line
			}

			hash, err := password.Hash(secret, cost)
			if err != nil {
				return a.handleError(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

// readLine читает первую строку без перевода строки
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", pkgerrors.New(pkgerrors.ErrValidation, "Password required")
	}
	return line, nil
}

// tokenExpiry достает exp из токена без проверки подписи, ключа у клиента нет
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
