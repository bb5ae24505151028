// Package stages holds the fixed, ordered catalog of funnel stages.
package stages

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Name is a canonical stage name as reported by the backend
type Name = string

// Designated stages used by the funnel metrics
const (
	AllDeals = "Все сделки"
	AllReady = "Все готово"
)

// Catalog is an ordered list of stage names. Position is 1-based and
// user-visible as the row number "п.N".
// ⭐ SSOT: stage order and validity come from here only
type Catalog struct {
	names    []Name
	position map[Name]int
}

var defaultNames = []Name{
	AllDeals,
	"Без статуса",
	"Без даты",
	"Без региона",
	"Без суммы",
	"Без адреса",
	AllReady,
	"МСК",
	"СПб",
	"Регион",
	"Звоним без предоплаты",
	"Звоним без предоплаты несколько товаров",
	"Подтвердил заказ без предоплаты",
	"Отменил заказ без предоплаты",
	"Не взял трубку без предоплаты",
	"Звоним с предоплатой",
	"Звоним с предоплатой несколько товаров",
	"Подтвердил заказ с предоплатой",
	"Отменил заказ с предоплатой",
	"Не взял трубку с предоплатой",
	"Звоним регион",
	"Подтвердил заказ регион",
	"Отменил заказ регион",
	"Не взял трубку регион",
	"Непонятно",
}

// Confirmed order stages, one per channel
var Confirmed = []Name{
	"Подтвердил заказ без предоплаты",
	"Подтвердил заказ с предоплатой",
	"Подтвердил заказ регион",
}

// Cancelled order stages, one per channel
var Cancelled = []Name{
	"Отменил заказ без предоплаты",
	"Отменил заказ с предоплатой",
	"Отменил заказ регион",
}

// NoAnswer stages (customer did not pick up), one per channel
var NoAnswer = []Name{
	"Не взял трубку без предоплаты",
	"Не взял трубку с предоплатой",
	"Не взял трубку регион",
}

var defaultCatalog = MustNew(defaultNames)

// Default returns the 25-stage catalog the dashboard ships with
func Default() *Catalog {
	return defaultCatalog
}

// New builds a catalog, rejecting empty, duplicate or slash-containing names
func New(names []Name) (*Catalog, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("catalog must not be empty")
	}
	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate stage names: %v", dups)
	}
	if lo.Contains(names, "") {
		return nil, fmt.Errorf("stage name must not be empty")
	}
	// Stage names are a single path segment in /dashboard/deals/{stage}.
	if bad := lo.Filter(names, func(n Name, _ int) bool { return strings.Contains(n, "/") }); len(bad) > 0 {
		return nil, fmt.Errorf("stage names must not contain '/': %v", bad)
	}

	position := make(map[Name]int, len(names))
	for i, n := range names {
		position[n] = i + 1
	}

	return &Catalog{
		names:    append([]Name(nil), names...),
		position: position,
	}, nil
}

// MustNew is New for package-level catalogs
func MustNew(names []Name) *Catalog {
	c, err := New(names)
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns a copy of the stage names in display order
func (c *Catalog) Names() []Name {
	return append([]Name(nil), c.names...)
}

// Len returns the number of stages
func (c *Catalog) Len() int {
	return len(c.names)
}

// Contains reports whether name is a catalog stage (exact match)
func (c *Catalog) Contains(name string) bool {
	_, ok := c.position[name]
	return ok
}

// Position returns the 1-based row number of name, or 0 if unknown
func (c *Catalog) Position(name string) int {
	return c.position[name]
}

// At returns the stage at a 1-based position
func (c *Catalog) At(position int) (Name, bool) {
	if position < 1 || position > len(c.names) {
		return "", false
	}
	return c.names[position-1], true
}
