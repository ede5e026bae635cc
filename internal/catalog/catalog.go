package catalog

import (
	"github.com/volari/license-quoter/internal/errors"
)

// index builds the lookup maps and stamps product kinds
func (c *Catalog) index() {
	c.licenses = make(map[string]Product, len(c.Licenses))
	for i := range c.Licenses {
		c.Licenses[i].Kind = KindLicense
		c.licenses[c.Licenses[i].ID] = c.Licenses[i]
	}
	c.addons = make(map[string]Product, len(c.Addons))
	for i := range c.Addons {
		c.Addons[i].Kind = KindAddon
		c.addons[c.Addons[i].ID] = c.Addons[i]
	}
	c.durations = make(map[string]ContractDuration, len(c.ContractDurations))
	for _, d := range c.ContractDurations {
		c.durations[d.ID] = d
	}
}

// License looks up a license tier by id
func (c *Catalog) License(id string) (Product, error) {
	p, ok := c.licenses[id]
	if !ok {
		return Product{}, errors.ErrUnknownIdentifier("license", id)
	}
	return p, nil
}

// Addon looks up an add-on by id
func (c *Catalog) Addon(id string) (Product, error) {
	p, ok := c.addons[id]
	if !ok {
		return Product{}, errors.ErrUnknownIdentifier("addon", id)
	}
	return p, nil
}

// Product looks up a product of the given kind
func (c *Catalog) Product(kind Kind, id string) (Product, error) {
	switch kind {
	case KindLicense:
		return c.License(id)
	case KindAddon:
		return c.Addon(id)
	default:
		return Product{}, errors.ErrUnknownIdentifier("product type", string(kind))
	}
}

// Duration looks up a contract duration by id
func (c *Catalog) Duration(id string) (ContractDuration, error) {
	d, ok := c.durations[id]
	if !ok {
		return ContractDuration{}, errors.ErrUnknownIdentifier("contract duration", id)
	}
	return d, nil
}

// DefaultDuration returns the first configured contract duration
func (c *Catalog) DefaultDuration() ContractDuration {
	if len(c.ContractDurations) == 0 {
		return ContractDuration{}
	}
	return c.ContractDurations[0]
}
