package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"StorefrontPlatform/pkg/validation"
)

// ConfigKey ключ единственной записи конфигурации магазина
const ConfigKey = "config"

// Ограничения длины полей конфигурации (в символах)
const (
	MaxBrandName       = 80
	MaxBrandTagline    = 120
	MaxPaymentNumber   = 30
	MaxPaymentMethod   = 30
	MaxPaymentMethods  = 10
	MaxSupportTelegram = 50
	MaxProducts        = 200
	MaxProductID       = 40
	MaxProductName     = 120
	MaxProductDesc     = 300
)

// Config публичная конфигурация магазина: бренд, реквизиты оплаты и каталог
type Config struct {
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	Brand     Brand     `json:"brand"`
	Payment   Payment   `json:"payment"`
	Support   Support   `json:"support"`
	Products  []Product `json:"products"`
}

// Brand название и слоган витрины
type Brand struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
}

// Payment куда покупатель переводит деньги
type Payment struct {
	Number  string   `json:"number"`
	Methods []string `json:"methods"`
}

// Support контакт поддержки
type Support struct {
	Telegram string `json:"telegram"`
}

// Product позиция каталога
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// SeedDefaults значения окружения для начальной конфигурации
type SeedDefaults struct {
	PaymentNumber   string
	SupportTelegram string
}

// SeedConfig строит конфигурацию, которая записывается при первом чтении
func SeedConfig(defaults SeedDefaults, now time.Time) *Config {
	return &Config{
		Version:   1,
		UpdatedAt: now.UTC(),
		Brand: Brand{
			Name:    "Hidden Community Store",
			Tagline: "Premium Python tools • Manual payment • Verified delivery",
		},
		Payment: Payment{
			Number:  validation.Coalesce(defaults.PaymentNumber, "01576593082"),
			Methods: []string{"bKash", "Nagad"},
		},
		Support: Support{Telegram: validation.Coalesce(defaults.SupportTelegram, "@HiddenSupport")},
		Products: []Product{
			{ID: "p-starter", Name: "Python Starter Kit", Description: "A clean toolkit to jumpstart your automation projects.", Price: 199},
			{ID: "p-scraper", Name: "Pro Web Scraper", Description: "Fast scraping utilities with retry logic and export options.", Price: 299},
			{ID: "p-bot", Name: "Telegram Bot Toolkit", Description: "A production-ready bot template with commands & utilities.", Price: 349},
		},
	}
}

// FindProduct ищет товар по id
func (c *Config) FindProduct(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Clone возвращает глубокую копию конфигурации
func (c *Config) Clone() *Config {
	out := *c
	out.Payment.Methods = append([]string(nil), c.Payment.Methods...)
	out.Products = append([]Product(nil), c.Products...)
	return &out
}

// ConfigEdit частичная правка конфигурации от администратора.
// Nil секция означает "не менять"; поля вне этой структуры отбрасываются при разборе JSON.
type ConfigEdit struct {
	Brand    *BrandEdit    `json:"brand,omitempty"`
	Payment  *PaymentEdit  `json:"payment,omitempty"`
	Support  *SupportEdit  `json:"support,omitempty"`
	Products []ProductEdit `json:"products,omitempty"`
}

// BrandEdit правка бренда
type BrandEdit struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
}

// PaymentEdit правка реквизитов; nil Methods оставляет список без изменений
type PaymentEdit struct {
	Number  string   `json:"number"`
	Methods []string `json:"methods,omitempty"`
}

// SupportEdit правка контакта поддержки
type SupportEdit struct {
	Telegram string `json:"telegram"`
}

// ProductEdit товар в правке. Цена принимается числом или числовой строкой.
type ProductEdit struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
}

// UnmarshalJSON терпит цену в виде строки или null
func (p *ProductEdit) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          interface{} `json:"id"`
		Name        interface{} `json:"name"`
		Description interface{} `json:"description"`
		Price       interface{} `json:"price"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	p.ID = scalarString(raw.ID)
	p.Name = scalarString(raw.Name)
	p.Description = scalarString(raw.Description)
	p.Price = json.Number(scalarString(raw.Price))
	return nil
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ApplyEdit сливает правку с текущей конфигурацией по списку разрешенных полей.
// Пустое значение в правке сохраняет старое, все строки обрезаются до лимитов,
// список товаров заменяется целиком, некорректные товары отбрасываются.
// Версия увеличивается на единицу, updatedAt ставится в now.
func ApplyEdit(old *Config, edit *ConfigEdit, now time.Time) *Config {
	next := old.Clone()
	if edit == nil {
		edit = &ConfigEdit{}
	}

	if edit.Brand != nil {
		next.Brand.Name = validation.Truncate(validation.Coalesce(edit.Brand.Name, old.Brand.Name), MaxBrandName)
		next.Brand.Tagline = validation.Truncate(validation.Coalesce(edit.Brand.Tagline, old.Brand.Tagline), MaxBrandTagline)
	}
	if edit.Payment != nil {
		next.Payment.Number = validation.Truncate(validation.Coalesce(edit.Payment.Number, old.Payment.Number), MaxPaymentNumber)
		if edit.Payment.Methods != nil {
			if methods := sanitizeMethods(edit.Payment.Methods); len(methods) > 0 {
				next.Payment.Methods = methods
			}
		}
	}
	if edit.Support != nil {
		next.Support.Telegram = validation.Truncate(validation.Coalesce(edit.Support.Telegram, old.Support.Telegram), MaxSupportTelegram)
	}
	if edit.Products != nil {
		next.Products = sanitizeProducts(edit.Products)
	}

	next.Version = old.Version + 1
	if old.Version < 1 {
		next.Version = 2
	}
	next.UpdatedAt = now.UTC()
	return next
}

func sanitizeMethods(in []string) []string {
	out := make([]string, 0, len(in))
	for _, m := range in {
		m = validation.Truncate(strings.TrimSpace(m), MaxPaymentMethod)
		if m == "" {
			continue
		}
		out = append(out, m)
		if len(out) == MaxPaymentMethods {
			break
		}
	}
	return out
}

func sanitizeProducts(in []ProductEdit) []Product {
	if len(in) > MaxProducts {
		in = in[:MaxProducts]
	}
	out := make([]Product, 0, len(in))
	for _, p := range in {
		price, ok := parsePrice(p.Price)
		if !ok {
			continue
		}
		product := Product{
			ID:          validation.Truncate(p.ID, MaxProductID),
			Name:        validation.Truncate(p.Name, MaxProductName),
			Description: validation.Truncate(p.Description, MaxProductDesc),
			Price:       price,
		}
		if product.ID == "" || product.Name == "" {
			continue
		}
		out = append(out, product)
	}
	return out
}

// parsePrice: пустая цена считается нулем, нечисловая или отрицательная делает товар некорректным
func parsePrice(n json.Number) (float64, bool) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
