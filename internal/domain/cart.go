package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// PackageSize identifies a sellable credit package ("100", "1000", ...).
type PackageSize string

// UnmarshalJSON accepts both `"100"` and `100`.
func (p *PackageSize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PackageSize(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("package must be a string or number: %w", err)
	}
	*p = PackageSize(n.String())
	return nil
}

// CartItem is a client-held (package, quantity) pair.
type CartItem struct {
	Package  PackageSize `json:"package" validate:"required"`
	Quantity int64       `json:"quantity" validate:"gte=0"`
}

// CreditPackage maps a package size to its processor price and credit yield.
type CreditPackage struct {
	Size      PackageSize `json:"package"`
	PriceID   string      `json:"-"`
	Credits   int64       `json:"credits"`
	BonusRate float64     `json:"bonusRate"`
}

// BonusCredits is the extra credit granted per unit of the package.
func (p CreditPackage) BonusCredits() int64 {
	return int64(math.Round(float64(p.Credits) * p.BonusRate))
}

// Catalog is the fixed set of packages that can be purchased.
type Catalog struct {
	packages map[PackageSize]CreditPackage
}

// NewCatalog builds a catalog. Packages without a price identifier are not
// sellable and are left out.
func NewCatalog(pkgs ...CreditPackage) Catalog {
	c := Catalog{packages: make(map[PackageSize]CreditPackage, len(pkgs))}
	for _, pkg := range pkgs {
		if pkg.Size == "" || pkg.PriceID == "" {
			continue
		}
		if pkg.Credits == 0 {
			if n, err := strconv.ParseInt(string(pkg.Size), 10, 64); err == nil {
				pkg.Credits = n
			}
		}
		c.packages[pkg.Size] = pkg
	}
	return c
}

// Lookup returns the package registered for size.
func (c Catalog) Lookup(size PackageSize) (CreditPackage, bool) {
	pkg, ok := c.packages[size]
	return pkg, ok
}

// Packages lists the catalog ordered by credit yield.
func (c Catalog) Packages() []CreditPackage {
	out := make([]CreditPackage, 0, len(c.packages))
	for _, pkg := range c.packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Credits == out[j].Credits {
			return out[i].Size < out[j].Size
		}
		return out[i].Credits < out[j].Credits
	})
	return out
}

// Len returns the number of sellable packages.
func (c Catalog) Len() int {
	return len(c.packages)
}
