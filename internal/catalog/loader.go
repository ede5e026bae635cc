package catalog

import (
	stderrors "errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/volari/license-quoter/internal/errors"
	"github.com/volari/license-quoter/internal/logger"
)

// Load returns the catalog at path, or the built-in catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a YAML catalog. Sections left out of the file (company,
// currency, quantity tiers, tax) fall back to the built-in values. The result
// is validated, so an unusable tax configuration is rejected here.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.ErrInvalidCatalog(fmt.Sprintf("file %s does not exist", path), err)
		}
		return nil, errors.ErrInvalidCatalog("read "+path, err)
	}
	return Parse(b)
}

// Parse decodes a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.ErrInvalidCatalog("decode yaml", err)
	}

	def := Default()
	if c.Company == (Company{}) {
		c.Company = def.Company
	}
	if c.Currency.Origin.Code == "" {
		c.Currency.Origin = def.Currency.Origin
	}
	if c.Currency.Resale.Code == "" {
		c.Currency.Resale = def.Currency.Resale
	}
	if len(c.QuantityDiscounts) == 0 {
		c.QuantityDiscounts = defaultQuantityTiers()
	}
	if c.Tax.IsZero() {
		c.Tax = DefaultTaxConfig()
	}

	c.index()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Catalog loaded", logger.Fields{
		"licenses":  len(c.Licenses),
		"addons":    len(c.Addons),
		"durations": len(c.ContractDurations),
		"tiers":     len(c.QuantityDiscounts),
	})
	return &c, nil
}

// Marshal encodes the catalog as YAML
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
