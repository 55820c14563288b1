package domain

// PageType classifies a physical page of a bill. It decides which copy of a
// repeated charge survives deduplication.
type PageType string

const (
	PageTypeBillDetail PageType = "Bill Detail"
	PageTypeFinalBill  PageType = "Final Bill"
	PageTypePharmacy   PageType = "Pharmacy"
)

// ValidPageTypes lists the page types the extractor may emit.
var ValidPageTypes = map[PageType]bool{
	PageTypeBillDetail: true,
	PageTypeFinalBill:  true,
	PageTypePharmacy:   true,
}

// FileType represents the document formats accepted for extraction.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedContentTypes maps MIME content types to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// ExtractionStatus is the outcome recorded in the extraction audit log.
type ExtractionStatus string

const (
	ExtractionStatusCompleted ExtractionStatus = "completed"
	ExtractionStatusFailed    ExtractionStatus = "failed"
)

// ExportFormat selects the spreadsheet format for line-item exports.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ValidExportFormats lists supported export formats.
var ValidExportFormats = map[ExportFormat]bool{
	ExportFormatCSV:  true,
	ExportFormatXLSX: true,
}
