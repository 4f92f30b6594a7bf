package localdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/yumi/backend/internal/domain"
)

// Catalog is the local product dataset backing recommendations when the
// external catalog is unreachable. It is loaded once at startup and read-only
// afterwards.
type Catalog struct {
	products []domain.Product
}

// Column names with fixed meaning; every other column is carried verbatim
// into the product's nutrient map.
const (
	colCode       = "code"
	colName       = "product_name"
	colBrands     = "brands"
	colNutriscore = "nutriscore_grade"
	colCategories = "categories"
)

// Load reads the fallback dataset from a CSV file. The first row is the
// header; rows without a barcode or product name are skipped. Category cells
// hold pipe-separated tags.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local dataset: %w", err)
	}
	defer f.Close()

	catalog, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse local dataset %s: %w", path, err)
	}

	log.Printf("[LOCAL] Loaded %d products from %s", len(catalog.products), path)
	return catalog, nil
}

func parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make(map[int]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	var products []domain.Product
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		product := domain.Product{Nutrients: map[string]any{}}
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			switch columns[i] {
			case colCode:
				product.Barcode = cell
			case colName:
				product.Name = cell
			case colBrands:
				product.Brands = cell
			case colNutriscore:
				product.NutriscoreGrade = strings.ToLower(cell)
			case colCategories:
				product.Categories = splitTags(cell)
			case "":
			default:
				if cell != "" {
					product.Nutrients[columns[i]] = cell
				}
			}
		}

		if product.Barcode == "" || product.Name == "" {
			continue
		}
		products = append(products, product)
	}

	return &Catalog{products: products}, nil
}

// Products returns the loaded dataset. Callers must not mutate the slice.
func (c *Catalog) Products() []domain.Product {
	return c.products
}

func splitTags(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, "|")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
