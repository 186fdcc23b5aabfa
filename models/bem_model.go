package models

import (
	"time"

	"gorm.io/gorm"
)

// Situacao values for a Bem.
const (
	SituacaoAtivo        = "ativo"
	SituacaoInativo      = "inativo"
	SituacaoEmManutencao = "em_manutencao"
	SituacaoBaixado      = "baixado"
)

// Bem is one tracked asset record. NumeroPatrimonio is the printed tag
// operators scan in the field.
type Bem struct {
	gorm.Model
	Codigo           string     `json:"codigo" validate:"required"`
	Descricao        string     `json:"descricao" validate:"required"`
	Categoria        string     `json:"categoria"`
	Localizacao      string     `json:"localizacao"`
	Responsavel      string     `json:"responsavel"`
	DataAquisicao    *time.Time `json:"data_aquisicao"`
	Valor            float64    `json:"valor"`
	NumeroPatrimonio string     `json:"numero_patrimonio" gorm:"unique" validate:"required"`
	Situacao         string     `json:"situacao" gorm:"default:'ativo'" validate:"omitempty,oneof=ativo inativo em_manutencao baixado"`
	NumeroSerie      string     `json:"numero_serie"`
	Fabricante       string     `json:"fabricante"`
	Modelo           string     `json:"modelo"`
	Observacoes      string     `json:"observacoes"`
	Favorito         bool       `json:"favorito" gorm:"default:false"`
	UsuarioID        uint       `json:"usuario_id"`
	CreatedBy        int
	UpdatedBy        int
	DeletedBy        int
}
