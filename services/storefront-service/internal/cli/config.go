package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	pkgerrors "StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/services/storefront-service/internal/cli/output"
	"StorefrontPlatform/services/storefront-service/internal/domain"
)

// configView конфигурация магазина в виде таблицы поле/значение
type configView struct {
	*domain.Config
}

func (c configView) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Config)
}

func (c configView) Table() *output.TableData {
	table := output.NewTableData("FIELD", "VALUE")
	if c.Config == nil {
		return table
	}
	table.AddRow("version", strconv.FormatInt(c.Version, 10))
	table.AddRow("updated", c.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	table.AddRow("brand.name", c.Brand.Name)
	table.AddRow("brand.tagline", dash(c.Brand.Tagline))
	table.AddRow("payment.number", c.Payment.Number)
	table.AddRow("payment.methods", strings.Join(c.Payment.Methods, ", "))
	table.AddRow("support.telegram", c.Support.Telegram)
	for _, p := range c.Products {
		table.AddRow("product."+p.ID, fmt.Sprintf("%s (%s)", p.Name, strconv.FormatFloat(p.Price, 'f', -1, 64)))
	}
	return table
}

func (a *app) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Конфигурация витрины",
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Показать текущую конфигурацию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.adminClient()
			if err != nil {
				return a.handleError(cmd, err)
			}
			cfg, err := c.GetConfig(cmd.Context())
			if err != nil {
				return a.handleError(cmd, err)
			}
			return a.print(cmd, configView{cfg})
		},
	}

	var file string
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Применить частичное изменение конфигурации",
		Long: `Отправляет JSON объект с изменениями (brand, payment, support, products)
из файла или stdin (--file -). Поля, которых нет в объекте, не меняются.`,
		Example: `  echo '{"brand":{"name":"Hidden Shop"}}' | storectl config update -f -`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			edit, err := readEdit(cmd.InOrStdin(), file)
			if err != nil {
				return a.handleError(cmd, err)
			}
			c, err := a.adminClient()
			if err != nil {
				return a.handleError(cmd, err)
			}
			version, err := c.UpdateConfig(cmd.Context(), edit)
			if err != nil {
				return a.handleError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config updated, version %d\n", version)
			return nil
		},
	}
	updateCmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the edit, - for stdin")

	configCmd.AddCommand(getCmd, updateCmd)
	return configCmd
}

// readEdit читает изменение и проверяет, что это JSON объект
func readEdit(stdin io.Reader, file string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if file == "" || file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read edit: %w", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation, "Invalid config")
	}
	return json.RawMessage(data), nil
}
