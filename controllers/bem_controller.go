package controllers

import (
	"fmt"
	"time"

	"inventario-app/models"
	"inventario-app/repositories"
	"inventario-app/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BemController struct {
	DB       *gorm.DB
	repo     *repositories.BemRepository
	exporter *services.ExportService
}

func NewBemController(DB *gorm.DB) *BemController {
	return &BemController{
		DB:       DB,
		repo:     repositories.NewBemRepository(DB),
		exporter: services.NewExportService(),
	}
}

func (c *BemController) GetAllBens(ctx *fiber.Ctx) error {
	query := c.DB.Order("created_at DESC")

	if situacao := ctx.Query("situacao"); situacao != "" {
		query = query.Where("situacao = ?", situacao)
	}
	if ctx.Query("favorito") == "true" {
		query = query.Where("favorito = ?", true)
	}

	var bens []models.Bem
	if err := query.Find(&bens).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch bens",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    bens,
	})
}

func (c *BemController) GetBemByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid bem ID",
		})
	}

	var bem models.Bem
	if err := c.DB.First(&bem, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Bem not found",
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    bem,
	})
}

func (c *BemController) GetBemByNumeroPatrimonio(ctx *fiber.Ctx) error {
	numero := ctx.Params("numero")
	if numero == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid numero patrimonio",
		})
	}

	bem, err := c.repo.GetByNumeroPatrimonio(ctx.Context(), numero)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch bem",
			"error":   err.Error(),
		})
	}

	// A missing bem is a valid lookup result for the collector flow.
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    bem,
	})
}

func (c *BemController) CreateBem(ctx *fiber.Ctx) error {
	userID := int(ctx.Locals("userID").(float64))

	var bem models.Bem
	if err := ctx.BodyParser(&bem); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	validate := validator.New()
	if err := validate.Struct(bem); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	exists, err := c.repo.ExistsByNumeroPatrimonio(bem.NumeroPatrimonio, 0)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to check numero patrimonio",
		})
	}
	if exists {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Numero patrimonio already registered",
		})
	}

	if bem.Situacao == "" {
		bem.Situacao = models.SituacaoAtivo
	}
	bem.UsuarioID = uint(userID)
	bem.CreatedBy = userID

	if err := c.DB.Create(&bem).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create bem",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Bem created successfully",
		"data":    bem,
	})
}

func (c *BemController) UpdateBem(ctx *fiber.Ctx) error {
	userID := int(ctx.Locals("userID").(float64))

	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid bem ID",
		})
	}

	var bem models.Bem
	if err := c.DB.First(&bem, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Bem not found",
		})
	}

	var input models.Bem
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	exists, err := c.repo.ExistsByNumeroPatrimonio(input.NumeroPatrimonio, bem.ID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to check numero patrimonio",
		})
	}
	if exists {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Numero patrimonio already registered",
		})
	}

	bem.Codigo = input.Codigo
	bem.Descricao = input.Descricao
	bem.Categoria = input.Categoria
	bem.Localizacao = input.Localizacao
	bem.Responsavel = input.Responsavel
	bem.DataAquisicao = input.DataAquisicao
	bem.Valor = input.Valor
	bem.NumeroPatrimonio = input.NumeroPatrimonio
	if input.Situacao != "" {
		bem.Situacao = input.Situacao
	}
	bem.NumeroSerie = input.NumeroSerie
	bem.Fabricante = input.Fabricante
	bem.Modelo = input.Modelo
	bem.Observacoes = input.Observacoes
	bem.UpdatedBy = userID

	if err := c.DB.Save(&bem).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update bem",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Bem updated successfully",
		"data":    bem,
	})
}

func (c *BemController) DeleteBem(ctx *fiber.Ctx) error {
	userID := int(ctx.Locals("userID").(float64))

	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid bem ID",
		})
	}

	var bem models.Bem
	if err := c.DB.First(&bem, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Bem not found",
		})
	}

	bem.DeletedBy = userID
	c.DB.Save(&bem)

	if err := c.DB.Delete(&bem).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete bem",
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Bem deleted successfully",
	})
}

func (c *BemController) ToggleFavorito(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid bem ID",
		})
	}

	var bem models.Bem
	if err := c.DB.First(&bem, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Bem not found",
		})
	}

	bem.Favorito = !bem.Favorito
	if err := c.DB.Save(&bem).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update bem",
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    bem,
	})
}

// Export renders the selected bens in the requested format.
func (c *BemController) Export(ctx *fiber.Ctx) error {
	format := ctx.Params("format")

	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := ctx.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No bens selected for export",
		})
	}

	var bens []models.Bem
	if err := c.DB.Where("id IN ?", req.IDs).Order("numero_patrimonio ASC").Find(&bens).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch bens",
			"error":   err.Error(),
		})
	}
	if len(bens) == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "No bens found for the selected ids",
		})
	}

	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case "csv":
		ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bens_export_%s.csv"`, timestamp))
		// BOM keeps Excel happy with UTF-8.
		return ctx.SendString("\uFEFF" + c.exporter.ConvertToCSV(bens))
	case "json":
		data, err := c.exporter.ConvertToJSON(bens)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to encode bens",
			})
		}
		ctx.Set(fiber.HeaderContentType, "application/json; charset=utf-8")
		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bens_export_%s.json"`, timestamp))
		return ctx.Send(data)
	case "xml":
		ctx.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bens_export_%s.xml"`, timestamp))
		return ctx.SendString(c.exporter.ConvertToXML(bens))
	case "xlsx", "excel":
		data, err := c.exporter.ConvertToXLSX(bens)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to build spreadsheet",
				"error":   err.Error(),
			})
		}
		ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="bens_export_%s.xlsx"`, timestamp))
		return ctx.Send(data)
	case "pdf":
		ctx.Set(fiber.HeaderContentType, "text/html; charset=utf-8")
		return ctx.SendString(c.exporter.BuildPrintHTML(bens, time.Now()))
	case "whatsapp":
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"url": c.exporter.BuildWhatsAppLink(bens),
			},
		})
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Unsupported export format: %s", format),
		})
	}
}
