// Package catalog holds the fixed pricing table the entry form sells from:
// product -> color -> size -> unit price in rupiah. The table is read-only at
// runtime; price changes ship with a new build.
package catalog

import "sort"

type Catalog map[string]map[string]map[string]int64

// Default returns the shop's pricing table.
func Default() Catalog {
	return Catalog{
		"Lengan Pendek Combed 24S": {
			"Putih": {"S": 42000, "M": 42500, "L": 46000, "XL": 49000, "2XL": 50500, "3XL": 52500},
			"Hitam": {"S": 44500, "M": 45000, "L": 49000, "XL": 52000, "2XL": 54000, "3XL": 56500},
			"Warna": {"S": 45000, "M": 46000, "L": 50600, "XL": 53000, "2XL": 55000, "3XL": 57500},
		},
		"Lengan Pendek Combed 30S": {
			"Putih": {"S": 39500, "M": 40000, "L": 42500, "XL": 43500, "2XL": 46000, "3XL": 49500},
			"Hitam": {"S": 41500, "M": 42000, "L": 45000, "XL": 46500, "2XL": 49500, "3XL": 52500},
			"Warna": {"S": 42500, "M": 43000, "L": 46000, "XL": 47000, "2XL": 50000, "3XL": 53500},
		},
		"Lengan Panjang Combed 24S": {
			"Putih": {"S": 47500, "M": 49000, "L": 51000, "XL": 54000, "2XL": 57500, "3XL": 61000},
			"Hitam": {"S": 50500, "M": 52500, "L": 54500, "XL": 58000, "2XL": 62000, "3XL": 66000},
			"Warna": {"S": 51500, "M": 53500, "L": 55500, "XL": 59000, "2XL": 63000, "3XL": 67000},
		},
		"Lengan Panjang Combed 30S": {
			"Putih": {"S": 44500, "M": 45500, "L": 47500, "XL": 49500, "2XL": 52000, "3XL": 58000},
			"Hitam": {"S": 46500, "M": 48600, "L": 51000, "XL": 53000, "2XL": 55500, "3XL": 62000},
			"Warna": {"S": 48000, "M": 49500, "L": 52000, "XL": 54000, "2XL": 56500, "3XL": 63000},
		},
		"Polo": {
			"Semua Warna": {"S": 87000, "M": 87000, "L": 87000, "XL": 87000, "2XL": 93500, "3XL": 100000},
		},
		"Desain": {
			"Layanan": {"Per Desain": 10000},
		},
		"Sablon/Bordir": {
			"Layanan": {"Per Item": 15000},
		},
	}
}

// Price looks up the unit price for a product/color/size combination.
func (c Catalog) Price(product, color, size string) (int64, bool) {
	colors, ok := c[product]
	if !ok {
		return 0, false
	}
	sizes, ok := colors[color]
	if !ok {
		return 0, false
	}
	price, ok := sizes[size]
	return price, ok
}

func (c Catalog) Products() []string {
	products := make([]string, 0, len(c))
	for product := range c {
		products = append(products, product)
	}
	sort.Strings(products)
	return products
}

func (c Catalog) Colors(product string) []string {
	colors := make([]string, 0, len(c[product]))
	for color := range c[product] {
		colors = append(colors, color)
	}
	sort.Strings(colors)
	return colors
}

func (c Catalog) Sizes(product, color string) []string {
	sizes := make([]string, 0, len(c[product][color]))
	for size := range c[product][color] {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)
	return sizes
}
