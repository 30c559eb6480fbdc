package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/models"
	"github.com/hsi-patrimonio/inventory-api/internal/repository"
)

const hsiMovedBy = "Sistema - Importação HSI Inventário"

// ChunkProcessor reconciles one batch of rows into the asset catalog
type ChunkProcessor interface {
	ProcessChunk(ctx context.Context, chunk []Row) BatchResult
}

// BatchResult aggregates the outcome of one processed chunk
type BatchResult struct {
	Created int
	Updated int
	Errors  []models.ImportError
}

// RowResult is the outcome of reconciling a single HSI row
type RowResult struct {
	ComputerID string
	MonitorIDs []string
	Created    int
	Updated    int
	Errors     []string
}

// categoryConfig carries the presentation attributes for auto-created categories
type categoryConfig struct {
	name  string
	icon  string
	color string
}

var hsiCategories = map[string]categoryConfig{
	"Desktop":  {name: "Desktop", icon: "monitor", color: "#3B82F6"},
	"Notebook": {name: "Notebook", icon: "laptop", color: "#10B981"},
	"Monitor":  {name: "Monitor", icon: "tv", color: "#8B5CF6"},
}

// HSIProcessor reconciles HSI inventory rows against the catalog. Reference
// entities are resolved through per-run caches so each distinct location,
// manufacturer and category costs at most one read and one write per import.
// Not safe for concurrent use; each worker run builds its own instance.
type HSIProcessor struct {
	repos  *repository.Repositories
	userID string
	log    zerolog.Logger

	locations     map[string]string // "sector|floor|building" → location id
	manufacturers map[string]string // normalized name → manufacturer id
	categories    map[string]string // category name → category id
}

// NewHSIProcessor creates a processor bound to one import run
func NewHSIProcessor(repos *repository.Repositories, userID string, log zerolog.Logger) *HSIProcessor {
	return &HSIProcessor{
		repos:         repos,
		userID:        userID,
		log:           log.With().Str("component", "hsi_processor").Logger(),
		locations:     make(map[string]string),
		manufacturers: make(map[string]string),
		categories:    make(map[string]string),
	}
}

// ProcessChunk reconciles a batch of rows. Row failures are captured into the
// result and never abort the chunk.
func (p *HSIProcessor) ProcessChunk(ctx context.Context, chunk []Row) BatchResult {
	var result BatchResult
	for _, row := range chunk {
		rr := p.ProcessRow(ctx, row)
		if len(rr.Errors) > 0 {
			result.Errors = append(result.Errors, models.ImportError{
				Row:     row.Number,
				Message: strings.Join(rr.Errors, "; "),
			})
			continue
		}
		result.Created += rr.Created
		result.Updated += rr.Updated
	}
	return result
}

// ProcessRow reconciles the row's computer and up to three attached monitors.
// The first failure stops the row; partial work already written stays, and
// re-running the import converges because every write is an upsert.
func (p *HSIProcessor) ProcessRow(ctx context.Context, row Row) RowResult {
	var res RowResult

	computerID, created, err := p.processComputer(ctx, row)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	res.ComputerID = computerID
	if created {
		res.Created++
	} else {
		res.Updated++
	}

	for slot := 1; slot <= 3; slot++ {
		monitorID, created, err := p.processMonitor(ctx, row, slot, computerID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("monitor %d: %v", slot, err))
			return res
		}
		if monitorID == "" {
			continue
		}
		res.MonitorIDs = append(res.MonitorIDs, monitorID)
		if created {
			res.Created++
		}
	}
	return res
}

// computerObservations is the structured blob persisted with each computer
type computerObservations struct {
	Hostname          string `json:"hostname,omitempty"`
	IP                string `json:"ip,omitempty"`
	OS                string `json:"os,omitempty"`
	OSRelease         string `json:"osRelease,omitempty"`
	Chassis           string `json:"tipo,omitempty"`
	ConnectedUser     string `json:"usuarioConectado,omitempty"`
	BeiraLeito        bool   `json:"beiraLeito"`
	Carrinho          string `json:"carrinho,omitempty"`
	Cadeado           string `json:"cadeado,omitempty"`
	UltimaAtualizacao string `json:"ultimaAtualizacao,omitempty"`
	AtualizadoPor     string `json:"atualizadoPor,omitempty"`
}

func (p *HSIProcessor) processComputer(ctx context.Context, row Row) (string, bool, error) {
	f := row.Fields
	tag := Normalize(f[ColPatrimonio])
	host := Normalize(f[ColHostname])
	serial := Normalize(f[ColSerialCPU])

	if tag == "" && host == "" {
		return "", false, errors.New("Patrimônio ou Hostname obrigatório")
	}

	existing, err := p.repos.Asset.GetByTagOrSerial(ctx, tag, serial)
	if err != nil {
		return "", false, err
	}

	chassis := strings.ToLower(Normalize(f[ColTipoChassi]))
	categoryName := "Desktop"
	if strings.Contains(chassis, "laptop") || strings.Contains(chassis, "notebook") {
		categoryName = "Notebook"
	}
	categoryID, err := p.resolveCategory(ctx, categoryName)
	if err != nil {
		return "", false, err
	}

	manufacturerID := ""
	if man := Normalize(f[ColFabricante]); man != "" {
		manufacturerID, err = p.resolveManufacturer(ctx, man)
		if err != nil {
			return "", false, err
		}
	}

	locationID, err := p.resolveLocation(ctx,
		Normalize(f[ColLocalizacao]), Normalize(f[ColAndar]), Normalize(f[ColPredio]))
	if err != nil {
		return "", false, err
	}

	name := host
	if name == "" {
		name = strings.TrimSpace(strings.ToUpper(chassis) + " " + tag)
	}

	observations := computerObservations{
		Hostname:          host,
		IP:                Normalize(f[ColIP]),
		OS:                Normalize(f[ColNomeSO]),
		OSRelease:         Normalize(f[ColOSRelease]),
		Chassis:           chassis,
		ConnectedUser:     f[ColUsuario],
		BeiraLeito:        f[ColBeiraLeito] == "Sim",
		Carrinho:          f[ColCarrinho],
		Cadeado:           f[ColCadeado],
		UltimaAtualizacao: f[ColData],
		AtualizadoPor:     f[ColAtualizadoPor],
	}
	observationsJSON, err := json.MarshalIndent(observations, "", "  ")
	if err != nil {
		return "", false, err
	}

	status := DetermineStatus(f[ColUsuario])
	description := buildComputerDescription(f, chassis)

	importDate := f[ColData]
	if importDate == "" {
		importDate = "sem data"
	}

	if existing != nil {
		prevLocationID := existing.LocationID

		existing.Name = name
		if tag != "" {
			existing.AssetTag = tag
		}
		if serial != "" {
			existing.SerialNumber = serial
		}
		existing.Model = Normalize(f[ColModelo])
		existing.Description = description
		existing.Status = status
		existing.CategoryID = categoryID
		existing.LocationID = locationID
		existing.ManufacturerID = manufacturerID
		existing.Observations = string(observationsJSON)

		if err := p.repos.Asset.Update(ctx, existing); err != nil {
			return "", false, err
		}

		// Also covers assets that had no location yet; FromLocationID
		// stays empty in that case.
		if prevLocationID != locationID {
			movement := &models.Movement{
				ID:             uuid.New().String(),
				AssetID:        existing.ID,
				Type:           models.MovementTransfer,
				FromLocationID: prevLocationID,
				ToLocation:     Normalize(f[ColLocalizacao]),
				Reason:         "Atualização do inventário HSI - " + importDate,
				MovedBy:        hsiMovedBy,
				MovedAt:        time.Now(),
			}
			if err := p.repos.Movement.Create(ctx, movement); err != nil {
				return "", false, err
			}
		}
		return existing.ID, false, nil
	}

	asset := &models.Asset{
		ID:             uuid.New().String(),
		AssetTag:       tag,
		SerialNumber:   serial,
		Name:           name,
		Model:          Normalize(f[ColModelo]),
		Description:    description,
		Status:         status,
		CategoryID:     categoryID,
		LocationID:     locationID,
		ManufacturerID: manufacturerID,
		CreatedByID:    p.userID,
		Observations:   string(observationsJSON),
	}
	if err := p.repos.Asset.Create(ctx, asset); err != nil {
		return "", false, err
	}

	movementType := models.MovementCheckIn
	if status == models.StatusEmUso {
		movementType = models.MovementAssignment
	}
	movement := &models.Movement{
		ID:         uuid.New().String(),
		AssetID:    asset.ID,
		Type:       movementType,
		ToLocation: Normalize(f[ColLocalizacao]),
		Reason:     "Importação HSI Inventário - " + importDate,
		MovedBy:    hsiMovedBy,
		MovedAt:    time.Now(),
	}
	if err := p.repos.Movement.Create(ctx, movement); err != nil {
		return "", false, err
	}
	return asset.ID, true, nil
}

// processMonitor handles one monitor slot. An empty slot returns ("", false,
// nil); a monitor whose tag already exists is reused without a new movement.
func (p *HSIProcessor) processMonitor(ctx context.Context, row Row, slot int, computerID string) (string, bool, error) {
	f := row.Fields
	manufacturer := Normalize(f[fmt.Sprintf("Monitor %d", slot)])
	model := Normalize(f[fmt.Sprintf("Modelo %d", slot)])
	tag := Normalize(f[fmt.Sprintf("Patrimônio %d", slot)])

	if manufacturer == "" && model == "" && tag == "" {
		return "", false, nil
	}

	if tag != "" {
		existing, err := p.repos.Asset.GetByTag(ctx, tag)
		if err != nil {
			return "", false, err
		}
		if existing != nil {
			return existing.ID, false, nil
		}
	}

	categoryID, err := p.resolveCategory(ctx, "Monitor")
	if err != nil {
		return "", false, err
	}

	manufacturerID := ""
	if manufacturer != "" {
		manufacturerID, err = p.resolveManufacturer(ctx, manufacturer)
		if err != nil {
			return "", false, err
		}
	}

	// The monitor inherits the location of the computer it is attached to
	computer, err := p.repos.Asset.GetByID(ctx, computerID)
	if err != nil {
		return "", false, err
	}
	locationID := ""
	if computer != nil {
		locationID = computer.LocationID
	}

	displayModel := model
	if displayModel == "" {
		displayModel = "Sem modelo"
	}

	observations, err := json.MarshalIndent(struct {
		NumeroMonitor       int    `json:"numeroMonitor"`
		ComputadorVinculado string `json:"computadorVinculado"`
	}{slot, computerID}, "", "  ")
	if err != nil {
		return "", false, err
	}

	asset := &models.Asset{
		ID:             uuid.New().String(),
		AssetTag:       tag,
		Name:           fmt.Sprintf("Monitor %d - %s", slot, displayModel),
		Model:          model,
		Description:    "Monitor vinculado ao computador principal",
		Status:         models.StatusEmUso,
		CategoryID:     categoryID,
		LocationID:     locationID,
		ManufacturerID: manufacturerID,
		CreatedByID:    p.userID,
		Observations:   string(observations),
	}
	if err := p.repos.Asset.Create(ctx, asset); err != nil {
		return "", false, err
	}

	movement := &models.Movement{
		ID:         uuid.New().String(),
		AssetID:    asset.ID,
		Type:       models.MovementAssignment,
		ToLocation: Normalize(f[ColLocalizacao]),
		Reason:     fmt.Sprintf("Monitor %d vinculado ao computador", slot),
		MovedBy:    hsiMovedBy,
		MovedAt:    time.Now(),
	}
	if err := p.repos.Movement.Create(ctx, movement); err != nil {
		return "", false, err
	}
	return asset.ID, true, nil
}

// resolveLocation finds or creates the location for a sector/floor/building
// triple, caching by the composite key. The display name suppresses the
// default "Principal" building.
func (p *HSIProcessor) resolveLocation(ctx context.Context, sector, floor, building string) (string, error) {
	if sector == "" {
		return "", errors.New("Setor não pode estar vazio")
	}

	key := sector + "|" + floor + "|" + building
	if id, ok := p.locations[key]; ok {
		return id, nil
	}

	name := LocationDisplayName(sector, floor, building)
	location, err := p.repos.Location.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if location == nil {
		location = &models.Location{
			ID:          uuid.New().String(),
			Name:        name,
			Building:    building,
			Floor:       floor,
			Description: "Importado do inventário HSI",
		}
		if err := p.repos.Location.Create(ctx, location); err != nil {
			return "", err
		}
	}
	p.locations[key] = location.ID
	return location.ID, nil
}

func (p *HSIProcessor) resolveManufacturer(ctx context.Context, name string) (string, error) {
	key := NormalizeKey(name)
	if id, ok := p.manufacturers[key]; ok {
		return id, nil
	}

	manufacturer, err := p.repos.Manufacturer.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if manufacturer == nil {
		manufacturer = &models.Manufacturer{ID: uuid.New().String(), Name: name}
		if err := p.repos.Manufacturer.Create(ctx, manufacturer); err != nil {
			return "", err
		}
	}
	p.manufacturers[key] = manufacturer.ID
	return manufacturer.ID, nil
}

func (p *HSIProcessor) resolveCategory(ctx context.Context, name string) (string, error) {
	if id, ok := p.categories[name]; ok {
		return id, nil
	}

	config, ok := hsiCategories[name]
	if !ok {
		config = categoryConfig{name: name}
	}

	category, err := p.repos.Category.GetByName(ctx, config.name)
	if err != nil {
		return "", err
	}
	if category == nil {
		category = &models.Category{
			ID:          uuid.New().String(),
			Name:        config.name,
			Icon:        config.icon,
			Color:       config.color,
			Description: "Categoria " + config.name,
		}
		if err := p.repos.Category.Create(ctx, category); err != nil {
			return "", err
		}
	}
	p.categories[name] = category.ID
	return category.ID, nil
}

// LocationDisplayName builds the catalog name "SETOR - Nº Andar (Prédio)".
// The building is omitted when it is the default "Principal".
func LocationDisplayName(sector, floor, building string) string {
	name := sector
	if floor != "" {
		name += fmt.Sprintf(" - %sº Andar", floor)
	}
	if building != "" && building != "Principal" {
		name += " (" + building + ")"
	}
	return name
}

// DetermineStatus maps the connected-user column to an asset status. A blank
// user, the generic "user" login or any "acsc\user" service account means the
// machine sits in stock.
func DetermineStatus(connectedUser string) models.AssetStatus {
	u := strings.ToLower(strings.TrimSpace(connectedUser))
	if u == "" || u == "user" || strings.Contains(u, `acsc\user`) {
		return models.StatusEmEstoque
	}
	return models.StatusEmUso
}

// buildComputerDescription assembles the pipe-separated summary line
func buildComputerDescription(f map[string]string, chassis string) string {
	var parts []string
	if os := Normalize(f[ColNomeSO]); os != "" {
		parts = append(parts, strings.TrimSpace("SO: "+os+" "+Normalize(f[ColOSRelease])))
	}
	if ip := Normalize(f[ColIP]); ip != "" {
		parts = append(parts, "IP: "+ip)
	}
	if user := strings.TrimSpace(f[ColUsuario]); user != "" {
		parts = append(parts, "Usuário: "+ExtractUsername(user))
	}
	if f[ColBeiraLeito] == "Sim" {
		parts = append(parts, "Beira Leito")
	}
	if f[ColWebcam] == "Sim" {
		parts = append(parts, "Webcam")
	}
	if f[ColHeadset] == "Sim" {
		parts = append(parts, "Headset")
	}
	return strings.Join(parts, " | ")
}
