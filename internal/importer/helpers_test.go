package importer_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hsi-patrimonio/inventory-api/internal/importer"
)

// hsiColumns is the full header of an HSI inventory export, in file order
var hsiColumns = []string{
	importer.ColLocalizacao, importer.ColAndar, importer.ColPredio, importer.ColUsuario,
	importer.ColHostname, importer.ColPatrimonio, importer.ColIP, importer.ColSerialCPU,
	importer.ColNomeSO, importer.ColOSRelease, importer.ColFabricante, importer.ColModelo,
	importer.ColTipoChassi, "Monitor 1", "Modelo 1", "Patrimônio 1",
	"Monitor 2", "Modelo 2", "Patrimônio 2", "Monitor 3", "Modelo 3", "Patrimônio 3",
	importer.ColWebcam, importer.ColHeadset, importer.ColData,
}

func hsiHeader() string {
	return strings.Join(hsiColumns, ";")
}

// hsiRow renders one data line, filling unnamed columns with empty fields
func hsiRow(values map[string]string) string {
	fields := make([]string, len(hsiColumns))
	for i, col := range hsiColumns {
		fields[i] = values[col]
	}
	return strings.Join(fields, ";")
}

func blankHSIRow() string {
	return hsiRow(nil)
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp csv: %v", err)
	}
	return path
}
