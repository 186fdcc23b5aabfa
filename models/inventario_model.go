package models

import (
	"time"

	"gorm.io/gorm"
)

// InventarioItem is the remote row a synced collection event lands in.
// Local-only fields of a collected item (local id, synced flag) are
// stripped before insert.
type InventarioItem struct {
	gorm.Model
	BemID             *uint     `json:"bem_id"`
	PlaquetaLida      string    `json:"plaqueta_lida"`
	DataColeta        time.Time `json:"data_coleta"`
	UsuarioColetaID   uint      `json:"usuario_coleta_id"`
	Latitude          *float64  `json:"latitude"`
	Longitude         *float64  `json:"longitude"`
	StatusConciliacao string    `json:"status_conciliacao"`
	Observacao        string    `json:"observacao"`
}
