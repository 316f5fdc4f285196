package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/vanshika/creditshop/internal/domain"
)

type catalogFile struct {
	Packages []PackageConfig `mapstructure:"packages"`
}

// LoadCatalogFile reads credit packages from a YAML, JSON or TOML file:
//
//	packages:
//	  - size: "100"
//	    price_id: price_123
//	    bonus_rate: 0
func LoadCatalogFile(path string) ([]PackageConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}

	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", path, err)
	}
	for i, pkg := range file.Packages {
		if pkg.Size == "" {
			return nil, fmt.Errorf("catalog file %s: package %d has no size", path, i)
		}
	}
	return file.Packages, nil
}

// Catalog builds the sellable package catalog from the store configuration.
func (s StoreConfig) Catalog() domain.Catalog {
	pkgs := make([]domain.CreditPackage, 0, len(s.Packages))
	for _, p := range s.Packages {
		pkgs = append(pkgs, domain.CreditPackage{
			Size:      domain.PackageSize(p.Size),
			PriceID:   p.PriceID,
			Credits:   p.Credits,
			BonusRate: p.BonusRate,
		})
	}
	return domain.NewCatalog(pkgs...)
}
