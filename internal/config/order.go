package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// OrderConfig holds the order-entry settings that operators may tune
// without a restart.
type OrderConfig struct {
	// HomeJurisdiction is the state whose customers get the SGST/CGST split.
	HomeJurisdiction string `mapstructure:"homeJurisdiction"`
	// HomeAliases are extra spellings accepted for HomeJurisdiction ("TN").
	HomeAliases []string `mapstructure:"homeAliases"`
	// NumberTemplate drives the client-side order number fallback.
	NumberTemplate string `mapstructure:"numberTemplate"`
	CurrencySymbol string `mapstructure:"currencySymbol"`
	VoucherType    string `mapstructure:"voucherType"`
	CompanyName    string `mapstructure:"companyName"`
}

func DefaultOrderConfig() OrderConfig {
	return OrderConfig{
		HomeJurisdiction: "Tamil Nadu",
		HomeAliases:      []string{"TN"},
		NumberTemplate:   "SQ-{DD}-{MM}-{YY}-{RAND4}",
		CurrencySymbol:   "₹",
		VoucherType:      "Sales Order",
		CompanyName:      "",
	}
}

// HomeNames returns the home jurisdiction followed by its aliases.
func (c OrderConfig) HomeNames() []string {
	names := make([]string, 0, len(c.HomeAliases)+1)
	if strings.TrimSpace(c.HomeJurisdiction) != "" {
		names = append(names, c.HomeJurisdiction)
	}
	for _, alias := range c.HomeAliases {
		if strings.TrimSpace(alias) != "" {
			names = append(names, alias)
		}
	}
	return names
}

type OrderConfigHolder struct {
	current atomic.Value // holds OrderConfig
}

// NewStaticOrderConfigHolder returns a holder that never reloads.
func NewStaticOrderConfigHolder(cfg OrderConfig) *OrderConfigHolder {
	holder := &OrderConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewOrderConfigHolder() (*OrderConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("orderdesk")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/orderdesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORDERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultOrderConfig()
	v.SetDefault("order.homeJurisdiction", defaults.HomeJurisdiction)
	v.SetDefault("order.homeAliases", defaults.HomeAliases)
	v.SetDefault("order.numberTemplate", defaults.NumberTemplate)
	v.SetDefault("order.currencySymbol", defaults.CurrencySymbol)
	v.SetDefault("order.voucherType", defaults.VoucherType)
	v.SetDefault("order.companyName", defaults.CompanyName)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg OrderConfig
	if err := v.UnmarshalKey("order", &cfg); err != nil {
		return nil, err
	}
	if err := validateOrderConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticOrderConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated OrderConfig
		if err := v.UnmarshalKey("order", &updated); err != nil {
			log.Printf("[order-config] reload failed: %v", err)
			return
		}
		if err := validateOrderConfig(updated); err != nil {
			log.Printf("[order-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[order-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *OrderConfigHolder) Get() OrderConfig {
	return h.current.Load().(OrderConfig)
}

func validateOrderConfig(cfg OrderConfig) error {
	if strings.TrimSpace(cfg.HomeJurisdiction) == "" {
		return errors.New("order.homeJurisdiction cannot be empty")
	}
	if strings.TrimSpace(cfg.NumberTemplate) == "" {
		return errors.New("order.numberTemplate cannot be empty")
	}
	return nil
}
