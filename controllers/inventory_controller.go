package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"inventario-app/collector"

	"github.com/gofiber/fiber/v2"
)

// InventoryController exposes the offline collection queue: scan/collect,
// sync, multi-format import, and read views.
type InventoryController struct {
	Machine *collector.Machine
}

func NewInventoryController(machine *collector.Machine) *InventoryController {
	return &InventoryController{Machine: machine}
}

func (c *InventoryController) currentUserID(ctx *fiber.Ctx) uint {
	userID, ok := ctx.Locals("userID").(float64)
	if !ok {
		return 0
	}
	return uint(userID)
}

func (c *InventoryController) StartScan(ctx *fiber.Ctx) error {
	if err := c.Machine.StartScan(); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"status":  c.Machine.Status(),
	})
}

func (c *InventoryController) CancelScan(ctx *fiber.Ctx) error {
	if err := c.Machine.CancelScan(); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"status":  c.Machine.Status(),
	})
}

// Collect takes a decoded tag code through the full scan cycle. The
// client scanner sends the code plus its position when it has one.
func (c *InventoryController) Collect(ctx *fiber.Ctx) error {
	var req struct {
		Plaqueta  string   `json:"plaqueta"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := ctx.BodyParser(&req); err != nil || req.Plaqueta == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "plaqueta is required",
		})
	}

	var pos *collector.Position
	if req.Latitude != nil && req.Longitude != nil {
		pos = &collector.Position{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	item, err := c.Machine.Collect(ctx.Context(), req.Plaqueta, c.currentUserID(ctx), pos)
	if err != nil {
		switch {
		case errors.Is(err, collector.ErrDuplicatePending):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Item already collected and pending sync",
			})
		case errors.Is(err, collector.ErrBusy):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Another collection flow is in progress",
			})
		case errors.Is(err, collector.ErrNoUser):
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Collection requires an authenticated user",
			})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to collect item",
				"error":   err.Error(),
			})
		}
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Item collected",
		"data":    item,
	})
}

func (c *InventoryController) Sync(ctx *fiber.Ctx) error {
	count, err := c.Machine.Sync(ctx.Context())
	if err != nil {
		switch {
		case errors.Is(err, collector.ErrBusy):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Another collection flow is in progress",
			})
		case errors.Is(err, collector.ErrSyncPersist):
			// The remote accepted the batch; only the local write lagged.
			return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
				"success": true,
				"message": "Sync completed, local persistence will catch up",
				"data": fiber.Map{
					"synced": count,
				},
			})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Sync failed, items kept for retry",
				"error":   err.Error(),
			})
		}
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Sync completed",
		"data": fiber.Map{
			"synced": count,
		},
	})
}

// Import accepts a multipart batch of JSON/CSV/XLSX/XLS/XML files. Each
// file succeeds or fails on its own.
func (c *InventoryController) Import(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid multipart form",
		})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No files uploaded",
		})
	}

	files, failed := readImportFiles(headers)

	results, err := c.Machine.Import(ctx.Context(), files, c.currentUserID(ctx))
	if err != nil {
		if errors.Is(err, collector.ErrBusy) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"message": "Another collection flow is in progress",
			})
		}
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    append(failed, results...),
	})
}

// readImportFiles loads each uploaded part. A part that cannot be read
// gets an error result of its own instead of reaching the parser with
// empty bytes.
func readImportFiles(headers []*multipart.FileHeader) ([]collector.ImportFile, []collector.FileResult) {
	files := make([]collector.ImportFile, 0, len(headers))
	var failed []collector.FileResult
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			failed = append(failed, collector.FileResult{
				FileName: header.Filename,
				Status:   "error",
				Message:  fmt.Sprintf("Failed to read file: %v", err),
			})
			continue
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			failed = append(failed, collector.FileResult{
				FileName: header.Filename,
				Status:   "error",
				Message:  fmt.Sprintf("Failed to read file: %v", err),
			})
			continue
		}
		files = append(files, collector.ImportFile{Name: header.Filename, Data: data})
	}
	return files, failed
}

func (c *InventoryController) GetItems(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    c.Machine.Queue().List(),
	})
}

func (c *InventoryController) GetPendingCount(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"pending": c.Machine.Queue().PendingCount(),
		},
	})
}

func (c *InventoryController) GetStatus(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"status": c.Machine.Status(),
		},
	})
}
