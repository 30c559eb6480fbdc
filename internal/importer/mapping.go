package importer

import (
	"strings"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

// HSI inventory export column names (the file is produced by an external
// collection agent; headers are fixed Portuguese labels)
const (
	ColLocalizacao  = "Localização"
	ColBeiraLeito   = "Beira Leito?"
	ColCarrinho     = "N° do Carrinho"
	ColCadeado      = "Cadeado"
	ColAndar        = "Andar"
	ColPredio       = "Prédio"
	ColUsuario      = "Usuário conectado"
	ColHostname     = "Hostname"
	ColPatrimonio   = "Patrimônio"
	ColIP           = "IP"
	ColSerialCPU    = "Serial Number CPU"
	ColNomeSO       = "Nome de SO"
	ColOSRelease    = "Os Release"
	ColFabricante   = "Fabricante"
	ColModelo       = "Modelo"
	ColTipoChassi   = "Tipo de chassi"
	ColWebcam       = "Webcam"
	ColHeadset      = "Headset"
	ColData         = "DATA"
	ColAtualizadoPor = "última atualização por"
)

// hsiSignatureColumns identify the HSI inventory format. A header set
// matching at least hsiSignatureThreshold of them classifies the file.
var hsiSignatureColumns = []string{
	ColLocalizacao,
	ColHostname,
	ColPatrimonio,
	ColSerialCPU,
	ColFabricante,
	ColModelo,
	ColTipoChassi,
	"Monitor 1",
	"Monitor 2",
	"Monitor 3",
}

const hsiSignatureThreshold = 6

// IsHSIFormat reports whether the headers match the HSI inventory signature
func IsHSIFormat(headers []string) bool {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = true
	}
	matches := 0
	for _, col := range hsiSignatureColumns {
		if present[col] {
			matches++
		}
	}
	return matches >= hsiSignatureThreshold
}

// hsiFixedMappings is the direct mapping for HSI files; no heuristics needed
var hsiFixedMappings = []models.ColumnSuggestion{
	{CSVColumn: ColPatrimonio, SystemField: "assetTag", Confidence: 1.0},
	{CSVColumn: ColHostname, SystemField: "name", Confidence: 1.0},
	{CSVColumn: ColSerialCPU, SystemField: "serialNumber", Confidence: 1.0},
	{CSVColumn: ColModelo, SystemField: "model", Confidence: 1.0},
	{CSVColumn: ColFabricante, SystemField: "manufacturer", Confidence: 1.0},
	{CSVColumn: ColLocalizacao, SystemField: "location", Confidence: 1.0},
}

// fieldKeywords drives generic header matching: target field → keywords.
// Matching is done on normalized (lowercased, diacritic-stripped) text, so
// accented and unaccented spellings both hit.
var fieldKeywords = []struct {
	systemField string
	keywords    []string
}{
	{"name", []string{"nome", "item", "descrição", "descricao", "produto"}},
	{"assetTag", []string{"patrimônio", "patrimonio", "tag", "código", "codigo"}},
	{"serialNumber", []string{"serial", "serial number", "ns", "número de série"}},
	{"model", []string{"modelo", "model"}},
	{"quantity", []string{"quantidade", "qtd", "estoque", "saldo"}},
	{"price", []string{"preço", "preco", "valor", "custo"}},
	{"manufacturer", []string{"fabricante", "marca", "manufacturer"}},
	{"location", []string{"localização", "localizacao", "local", "setor"}},
}

// SuggestMappings proposes a column mapping for the detected file type.
// HSI files get the fixed table; generic files get keyword heuristics with
// 1.0 confidence for exact matches, 0.8 for containment, omission otherwise.
func SuggestMappings(headers []string, fileType string) []models.ColumnSuggestion {
	if fileType == models.FileTypeHSIInventario {
		out := make([]models.ColumnSuggestion, len(hsiFixedMappings))
		copy(out, hsiFixedMappings)
		return out
	}

	var suggestions []models.ColumnSuggestion
	for _, header := range headers {
		normalized := NormalizeKey(header)
		for _, field := range fieldKeywords {
			for _, keyword := range field.keywords {
				normalizedKeyword := NormalizeKey(keyword)
				if strings.Contains(normalized, normalizedKeyword) {
					confidence := 0.8
					if normalized == normalizedKeyword {
						confidence = 1.0
					}
					suggestions = append(suggestions, models.ColumnSuggestion{
						CSVColumn:   header,
						SystemField: field.systemField,
						Confidence:  confidence,
					})
					break
				}
			}
		}
	}
	return suggestions
}

// MappingIgnore marks a column the operator chose to drop
const MappingIgnore = "ignore"

// MapColumns projects a raw record through a csvColumn→systemField mapping
func MapColumns(record map[string]string, mapping map[string]string) map[string]string {
	mapped := make(map[string]string, len(mapping))
	for csvColumn, systemField := range mapping {
		if systemField == MappingIgnore {
			continue
		}
		if value, ok := record[csvColumn]; ok && value != "" {
			mapped[systemField] = strings.TrimSpace(value)
		}
	}
	return mapped
}
