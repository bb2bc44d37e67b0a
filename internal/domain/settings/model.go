// Package settings stores owner-scoped configuration: report templates,
// clinic identity, and doctor preferences.
package settings

import (
	"time"

	"github.com/serenvale/radcore/internal/platform/errs"
)

// TemplateSection is one block of a structured report template.
type TemplateSection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// RAGFilter narrows terminology retrieval for a template.
type RAGFilter struct {
	Modalities []string `json:"modalities,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// ReportTemplate is a predefined report structure for one modality.
// Name is unique per owner.
type ReportTemplate struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Modality string `db:"modality" json:"modality"`
	Language string `db:"language" json:"language"`

	Header   string            `db:"header" json:"header,omitempty"`
	Footer   string            `db:"footer" json:"footer,omitempty"`
	Sections []TemplateSection `db:"sections" json:"sections,omitempty"`

	RAGFilter RAGFilter `db:"rag_filter" json:"ragFilter,omitempty"`

	IsDefault bool `db:"is_default" json:"isDefault"`
	IsActive  bool `db:"is_active" json:"isActive"`

	OwnerID   string    `db:"owner_id" json:"ownerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (t *ReportTemplate) Validate() error {
	if t.Name == "" {
		return errs.Validation("name", "required")
	}
	if t.Modality == "" {
		return errs.Validation("modality", "required")
	}
	if t.Language == "" {
		t.Language = "fr"
	}
	if t.Language != "fr" && t.Language != "en" {
		return errs.Validation("language", "must be fr or en")
	}
	return nil
}

// PACSConfig holds the connection parameters for the clinic's PACS node.
type PACSConfig struct {
	Host           string            `json:"host,omitempty"`
	Port           int               `json:"port,omitempty"`
	AETitle        string            `json:"aet,omitempty"`
	CallingAETitle string            `json:"callingAet,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

type PrinterConfig struct {
	NetworkPrinter string            `json:"networkPrinter,omitempty"`
	PaperSize      string            `json:"paperSize,omitempty"`
	AutoPrint      bool              `json:"autoPrint,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// ClinicSettings is the clinic identity and printing setup, one row per
// owner.
type ClinicSettings struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address,omitempty"`
	Phone   string `db:"phone" json:"phone,omitempty"`
	Email   string `db:"email" json:"email,omitempty"`
	TaxID   string `db:"tax_id" json:"taxId,omitempty"`
	Logo    string `db:"logo" json:"logo,omitempty"`

	LetterheadHTML string `db:"letterhead_html" json:"letterheadHtml,omitempty"`
	FooterHTML     string `db:"footer_html" json:"footerHtml,omitempty"`

	PACS    PACSConfig    `db:"pacs_config" json:"pacsConfig,omitempty"`
	Printer PrinterConfig `db:"printer_config" json:"printerConfig,omitempty"`

	OwnerID   string    `db:"owner_id" json:"ownerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (c *ClinicSettings) Validate() error {
	if c.Name == "" {
		return errs.Validation("name", "required")
	}
	if c.PACS.Port < 0 || c.PACS.Port > 65535 {
		return errs.Validation("pacsConfig.port", "out of range")
	}
	return nil
}

// DoctorSettings are individual radiologist preferences, one row per owner.
type DoctorSettings struct {
	ID            string `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Specialty     string `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber string `db:"license_number" json:"licenseNumber,omitempty"`
	Signature     string `db:"signature" json:"signature,omitempty"`
	Stamp         string `db:"stamp" json:"stamp,omitempty"`

	DefaultLanguage string `db:"default_language" json:"defaultLanguage"`
	DefaultTemplate string `db:"default_template" json:"defaultTemplate,omitempty"`

	OwnerID   string    `db:"owner_id" json:"ownerId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (d *DoctorSettings) Validate() error {
	if d.Name == "" {
		return errs.Validation("name", "required")
	}
	if d.DefaultLanguage == "" {
		d.DefaultLanguage = "fr"
	}
	if d.DefaultLanguage != "fr" && d.DefaultLanguage != "en" {
		return errs.Validation("defaultLanguage", "must be fr or en")
	}
	return nil
}
