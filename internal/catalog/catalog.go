package catalog

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"Aquaquote/internal/calc/flow"
	"Aquaquote/internal/calc/plant"
	"Aquaquote/internal/calc/tanks"
)

type Attribute string

const (
	AttrCapacity Attribute = "capacity"
	AttrDiameter Attribute = "diameter"
	AttrVolume   Attribute = "volume"
)

type Shape string

const (
	ShapeLinear   Shape = "linear"
	ShapeCircular Shape = "circular"
)

// Rule sources besides tank ids.
const (
	SourceFlowRate = "flowRate"
	SourcePeakFlow = "peakFlow"
	SourceCapacity = "capacity"
)

// Rule derives one dimensional attribute from a plant or tank quantity.
type Rule struct {
	Attribute Attribute `json:"attribute" yaml:"attribute"`
	Source    string    `json:"source" yaml:"source"`
	Factor    float64   `json:"factor" yaml:"factor"`
	Shape     Shape     `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// Coefficients are the per-unit costs of a dynamic item.
type Coefficients struct {
	CostPerCapacity float64 `json:"costPerCapacity" yaml:"costPerCapacity"`
	CostPerDiameter float64 `json:"costPerDiameter" yaml:"costPerDiameter"`
	CostPerVolume   float64 `json:"costPerVolume" yaml:"costPerVolume"`
	CostPerFlow     float64 `json:"costPerFlow" yaml:"costPerFlow"`
	CostPerPiece    float64 `json:"costPerPiece" yaml:"costPerPiece"`
}

type Item struct {
	ID         string       `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	Type       string       `json:"type" yaml:"type"`
	Fixed      bool         `json:"fixed" yaml:"fixed"`
	FixedPrice float64      `json:"fixedPrice,omitempty" yaml:"fixedPrice,omitempty"`
	Costs      Coefficients `json:"costs" yaml:"costs"`
	Sizing     []Rule       `json:"sizing,omitempty" yaml:"sizing,omitempty"`
}

// Has reports whether the item declares the attribute.
func (it Item) Has(a Attribute) bool {
	for _, r := range it.Sizing {
		if r.Attribute == a {
			return true
		}
	}
	return false
}

func (it Item) clone() Item {
	if it.Sizing != nil {
		it.Sizing = append([]Rule(nil), it.Sizing...)
	}
	return it
}

// Definition is the raw, loadable form of a catalog.
type Definition struct {
	Flow      flow.Conversion    `json:"flow" yaml:"flow"`
	Tanks     tanks.Coefficients `json:"tanks" yaml:"tanks"`
	Equipment []Item             `json:"equipment" yaml:"equipment"`
}

// Catalog is the validated, read-only configuration shared by all sessions.
type Catalog struct {
	flow  flow.Conversion
	tanks tanks.Coefficients
	items []Item
	index map[string]int
}

func New(def Definition) (*Catalog, error) {
	if len(def.Equipment) == 0 {
		return nil, fmt.Errorf("catalog has no equipment")
	}
	if err := validateSettings(def); err != nil {
		return nil, err
	}
	c := &Catalog{
		flow:  def.Flow,
		tanks: def.Tanks,
		items: make([]Item, 0, len(def.Equipment)),
		index: make(map[string]int, len(def.Equipment)),
	}
	for i, it := range def.Equipment {
		it.ID = strings.TrimSpace(it.ID)
		if err := validate(it); err != nil {
			return nil, fmt.Errorf("equipment #%d: %w", i+1, err)
		}
		if _, dup := c.index[it.ID]; dup {
			return nil, fmt.Errorf("equipment %q: duplicate id", it.ID)
		}
		it = it.clone()
		for j := range it.Sizing {
			if it.Sizing[j].Shape == "" {
				it.Sizing[j].Shape = ShapeLinear
			}
		}
		c.index[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

func validate(it Item) error {
	if it.ID == "" {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("equipment %q: missing name", it.ID)
	}
	if it.Fixed && len(it.Sizing) > 0 {
		return fmt.Errorf("equipment %q: fixed items cannot have sizing rules", it.ID)
	}
	for name, v := range map[string]float64{
		"fixedPrice":      it.FixedPrice,
		"costPerCapacity": it.Costs.CostPerCapacity,
		"costPerDiameter": it.Costs.CostPerDiameter,
		"costPerVolume":   it.Costs.CostPerVolume,
		"costPerFlow":     it.Costs.CostPerFlow,
		"costPerPiece":    it.Costs.CostPerPiece,
	} {
		if !nonNegative(v) {
			return fmt.Errorf("equipment %q: %s must be a non-negative number", it.ID, name)
		}
	}
	seen := map[Attribute]bool{}
	for _, r := range it.Sizing {
		switch r.Attribute {
		case AttrCapacity, AttrDiameter, AttrVolume:
		default:
			return fmt.Errorf("equipment %q: unknown attribute %q", it.ID, r.Attribute)
		}
		if seen[r.Attribute] {
			return fmt.Errorf("equipment %q: attribute %q sized twice", it.ID, r.Attribute)
		}
		seen[r.Attribute] = true
		if !ValidSource(r.Source) {
			return fmt.Errorf("equipment %q: unknown source %q", it.ID, r.Source)
		}
		if !nonNegative(r.Factor) {
			return fmt.Errorf("equipment %q: factor must be a non-negative number", it.ID)
		}
		switch r.Shape {
		case "", ShapeLinear, ShapeCircular:
		default:
			return fmt.Errorf("equipment %q: unknown shape %q", it.ID, r.Shape)
		}
	}
	return nil
}

// positiveSettings are used as divisors and must be above zero.
var positiveSettings = []string{"operatingHours", "organicLoadingRate", "sludgeConsistency", "length", "height"}

func validateSettings(def Definition) error {
	settings := def.Settings()
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !nonNegative(settings[k]) {
			return fmt.Errorf("setting %s must be a non-negative number", k)
		}
	}
	for _, k := range positiveSettings {
		if settings[k] <= 0 {
			return fmt.Errorf("setting %s must be positive", k)
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func ValidSource(s string) bool {
	switch s {
	case SourceFlowRate, SourcePeakFlow, SourceCapacity:
		return true
	}
	return tanks.Valid(tanks.ID(s))
}

func (c *Catalog) Flow() flow.Conversion     { return c.flow }
func (c *Catalog) Tanks() tanks.Coefficients { return c.tanks }
func (c *Catalog) Len() int                  { return len(c.items) }

// Items returns the equipment in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

func (c *Catalog) Item(id string) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i].clone(), true
}

func (c *Catalog) Definition() Definition {
	return Definition{Flow: c.flow, Tanks: c.tanks, Equipment: c.Items()}
}

// Seed builds the initial equipment set: quantity 1, no price, declared
// attributes present at 0.
func (c *Catalog) Seed() plant.Entries {
	out := make(plant.Entries, len(c.items))
	for _, it := range c.items {
		e := plant.Entry{
			ID:       it.ID,
			Name:     it.Name,
			Type:     it.Type,
			Fixed:    it.Fixed,
			Quantity: 1,
		}
		if it.Has(AttrCapacity) {
			e.Capacity = new(float64)
		}
		if it.Has(AttrDiameter) {
			e.Diameter = new(float64)
		}
		if it.Has(AttrVolume) {
			e.Volume = new(float64)
		}
		out[it.ID] = e
	}
	return out
}

// ParseRules reads the compact rule form used by workbooks and the
// database: "attribute:source:factor[:shape]" separated by ';'.
func ParseRules(s string) ([]Rule, error) {
	var rules []Rule
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) < 3 || len(fields) > 4 {
			return nil, fmt.Errorf("rule %q: want attribute:source:factor[:shape]", part)
		}
		factor, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("rule %q: factor: %w", part, err)
		}
		r := Rule{
			Attribute: Attribute(strings.ToLower(strings.TrimSpace(fields[0]))),
			Source:    strings.TrimSpace(fields[1]),
			Factor:    factor,
		}
		if len(fields) == 4 {
			r.Shape = Shape(strings.ToLower(strings.TrimSpace(fields[3])))
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// FormatRules is the inverse of ParseRules.
func FormatRules(rules []Rule) string {
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		p := fmt.Sprintf("%s:%s:%s", r.Attribute, r.Source, strconv.FormatFloat(r.Factor, 'g', -1, 64))
		if r.Shape != "" && r.Shape != ShapeLinear {
			p += ":" + string(r.Shape)
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ";")
}

// SetSetting assigns a flow or tank coefficient by its yaml key.
func (d *Definition) SetSetting(key string, v float64) error {
	p, ok := d.settings()[strings.TrimSpace(key)]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	*p = v
	return nil
}

func (d *Definition) settings() map[string]*float64 {
	return map[string]*float64{
		"operatingHours":     &d.Flow.OperatingHours,
		"barScreenHours":     &d.Tanks.BarScreenHours,
		"oilGreaseHours":     &d.Tanks.OilGreaseHours,
		"equalizationHours":  &d.Tanks.EqualizationHours,
		"anoxicHours":        &d.Tanks.AnoxicHours,
		"tubeSettleHours":    &d.Tanks.TubeSettleHours,
		"filterFeedHours":    &d.Tanks.FilterFeedHours,
		"treatedWaterHours":  &d.Tanks.TreatedWaterHours,
		"ufWaterHours":       &d.Tanks.UFWaterHours,
		"organicLoadingRate": &d.Tanks.OrganicLoadingRate,
		"sludgeYield":        &d.Tanks.SludgeYield,
		"solidsCapture":      &d.Tanks.SolidsCapture,
		"sludgeConsistency":  &d.Tanks.SludgeConsistency,
		"sludgeStorageDays":  &d.Tanks.SludgeStorageDays,
		"length":             &d.Tanks.LengthM,
		"height":             &d.Tanks.HeightM,
	}
}

// Settings returns every flow and tank coefficient keyed as in SetSetting.
func (d Definition) Settings() map[string]float64 {
	out := make(map[string]float64)
	for k, p := range d.settings() {
		out[k] = *p
	}
	return out
}
