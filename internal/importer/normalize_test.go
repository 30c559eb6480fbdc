package importer

import (
	"testing"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Localização  ", "Localizacao"},
		{"Prédio   Principal", "Predio Principal"},
		{"Farmácia", "Farmacia"},
		{"TI", "TI"},
		{"", ""},
		{"São   Paulo\t2", "Sao Paulo 2"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  PATRIMÔNIO "); got != "patrimonio" {
		t.Errorf("NormalizeKey = %q, want %q", got, "patrimonio")
	}
}

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`ACSC\jsilva`, "jsilva"},
		{"maria", "maria"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractUsername(tt.in); got != tt.want {
			t.Errorf("ExtractUsername(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetermineStatus(t *testing.T) {
	tests := []struct {
		user string
		want models.AssetStatus
	}{
		{"", models.StatusEmEstoque},
		{"user", models.StatusEmEstoque},
		{"USER", models.StatusEmEstoque},
		{`ACSC\user`, models.StatusEmEstoque},
		{`ACSC\jsilva`, models.StatusEmUso},
		{"maria.souza", models.StatusEmUso},
	}
	for _, tt := range tests {
		if got := DetermineStatus(tt.user); got != tt.want {
			t.Errorf("DetermineStatus(%q) = %q, want %q", tt.user, got, tt.want)
		}
	}
}

func TestLocationDisplayName(t *testing.T) {
	tests := []struct {
		sector, floor, building string
		want                    string
	}{
		{"UTI", "3", "Anexo", "UTI - 3º Andar (Anexo)"},
		{"UTI", "3", "Principal", "UTI - 3º Andar"},
		{"TI", "", "Principal", "TI"},
		{"TI", "", "", "TI"},
		{"Recepção", "1", "", "Recepção - 1º Andar"},
	}
	for _, tt := range tests {
		got := LocationDisplayName(tt.sector, tt.floor, tt.building)
		if got != tt.want {
			t.Errorf("LocationDisplayName(%q, %q, %q) = %q, want %q",
				tt.sector, tt.floor, tt.building, got, tt.want)
		}
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"a;b;c", ";"},
		{"a,b,c", ","},
		{"a\tb\tc", "\t"},
		{"a|b|c", "|"},
		{"nocolumns", ";"},
		{"a;b,c;d", ";"},
	}
	for _, tt := range tests {
		if got := DetectDelimiter(tt.line); got != tt.want {
			t.Errorf("DetectDelimiter(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestDetectEncoding(t *testing.T) {
	if got := DetectEncoding([]byte("Localização;Hostname")); got != EncodingUTF8 {
		t.Errorf("valid UTF-8 detected as %q", got)
	}
	// "Localização" encoded as Windows-1252
	latin1 := []byte{'L', 'o', 'c', 'a', 'l', 'i', 'z', 'a', 0xE7, 0xE3, 'o'}
	if got := DetectEncoding(latin1); got != EncodingLatin1 {
		t.Errorf("latin1 bytes detected as %q", got)
	}
	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Hostname;IP")...)
	if got := DetectEncoding(bom); got != EncodingUTF8 {
		t.Errorf("BOM-prefixed UTF-8 detected as %q", got)
	}
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		rows, rate int
		want       string
	}{
		{0, 1000, "menos de 1 segundo"},
		{500, 1000, "1 segundo"},
		{1000, 1000, "1 segundo"},
		{5000, 1000, "5 segundos"},
		{90000, 1000, "2 minutos"},
		{250, 500, "1 segundo"},
		{30000, 500, "1 minutos"},
	}
	for _, tt := range tests {
		if got := estimateDuration(tt.rows, tt.rate); got != tt.want {
			t.Errorf("estimateDuration(%d, %d) = %q, want %q", tt.rows, tt.rate, got, tt.want)
		}
	}
}

func TestIsHSIFormat(t *testing.T) {
	full := []string{
		ColLocalizacao, ColHostname, ColPatrimonio, ColSerialCPU,
		ColFabricante, ColModelo, ColTipoChassi, "Monitor 1", "Monitor 2", "Monitor 3",
	}
	if !IsHSIFormat(full) {
		t.Error("full signature should match")
	}

	// Exactly at the threshold
	six := full[:6]
	if !IsHSIFormat(six) {
		t.Error("six signature columns should match")
	}

	five := full[:5]
	if IsHSIFormat(five) {
		t.Error("five signature columns should not match")
	}

	generic := []string{"Nome", "Código", "Quantidade"}
	if IsHSIFormat(generic) {
		t.Error("generic headers should not match")
	}
}

func TestSuggestMappingsGeneric(t *testing.T) {
	headers := []string{"Nome do Item", "Patrimônio", "Qtd", "Irrelevante"}
	suggestions := SuggestMappings(headers, models.FileTypeGeneric)

	byColumn := make(map[string]models.ColumnSuggestion)
	for _, s := range suggestions {
		byColumn[s.CSVColumn] = s
	}

	if s, ok := byColumn["Nome do Item"]; !ok || s.SystemField != "name" || s.Confidence != 0.8 {
		t.Errorf("containment match wrong: %+v", s)
	}
	if s, ok := byColumn["Patrimônio"]; !ok || s.SystemField != "assetTag" || s.Confidence != 1.0 {
		t.Errorf("exact match wrong: %+v", s)
	}
	if s, ok := byColumn["Qtd"]; !ok || s.SystemField != "quantity" || s.Confidence != 1.0 {
		t.Errorf("quantity match wrong: %+v", s)
	}
	if _, ok := byColumn["Irrelevante"]; ok {
		t.Error("unmatched header should be omitted")
	}
}

func TestSuggestMappingsHSI(t *testing.T) {
	suggestions := SuggestMappings(nil, models.FileTypeHSIInventario)
	if len(suggestions) != 6 {
		t.Fatalf("expected 6 fixed mappings, got %d", len(suggestions))
	}
	for _, s := range suggestions {
		if s.Confidence != 1.0 {
			t.Errorf("fixed mapping %q should have confidence 1.0, got %v", s.CSVColumn, s.Confidence)
		}
	}
}

func TestMapColumns(t *testing.T) {
	record := map[string]string{"Nome": " Mouse ", "Código": "A-1", "Cor": "preto"}
	mapping := map[string]string{"Nome": "name", "Código": "assetTag", "Cor": MappingIgnore}
	mapped := MapColumns(record, mapping)

	if mapped["name"] != "Mouse" {
		t.Errorf("name = %q", mapped["name"])
	}
	if mapped["assetTag"] != "A-1" {
		t.Errorf("assetTag = %q", mapped["assetTag"])
	}
	if _, ok := mapped["Cor"]; ok {
		t.Error("ignored column leaked through")
	}
}
