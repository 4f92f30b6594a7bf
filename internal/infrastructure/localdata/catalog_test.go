package localdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `code,product_name,brands,nutriscore_grade,categories,energy_100g,sugars_100g,proteins_100g
3017620422003,Nutella,Ferrero,E,spreads|chocolate-spreads,539,56.3,6.3
5411188110835,Skyr Nature,Lactel,A,dairy-products|yogurts,57,3.5,10.5
,Missing Barcode,X,A,dairy-products,50,1,5
0000000000001,,X,A,dairy-products,50,1,5
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	catalog, err := Load(writeSample(t, sampleCSV))
	require.NoError(t, err)

	products := catalog.Products()
	require.Len(t, products, 2, "rows without barcode or name are skipped")

	nutella := products[0]
	assert.Equal(t, "3017620422003", nutella.Barcode)
	assert.Equal(t, "Nutella", nutella.Name)
	assert.Equal(t, "Ferrero", nutella.Brands)
	assert.Equal(t, "e", nutella.NutriscoreGrade)
	assert.Equal(t, []string{"spreads", "chocolate-spreads"}, nutella.Categories)
	assert.Equal(t, "539", nutella.Nutrients["energy_100g"])
	assert.Equal(t, "56.3", nutella.Nutrients["sugars_100g"])

	skyr := products[1]
	assert.Equal(t, "Skyr Nature", skyr.Name)
	assert.Equal(t, []string{"dairy-products", "yogurts"}, skyr.Categories)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load(writeSample(t, ""))
	assert.Error(t, err, "a dataset without a header is rejected")
}

func TestLoad_HeaderOnly(t *testing.T) {
	catalog, err := Load(writeSample(t, "code,product_name\n"))
	require.NoError(t, err)
	assert.Empty(t, catalog.Products())
}

func TestParse_RaggedRecordTolerated(t *testing.T) {
	csv := strings.Join([]string{
		"code,product_name,brands",
		"111,Eau de Source",
	}, "\n")
	catalog, err := Load(writeSample(t, csv))
	require.NoError(t, err)
	require.Len(t, catalog.Products(), 1)
	assert.Equal(t, "Eau de Source", catalog.Products()[0].Name)
}
