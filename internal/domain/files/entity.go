package files

import (
	"fmt"
	"time"
)

// FileID identifies an uploaded file on the server.
type FileID int64

// ResultID identifies an AI analysis result on the server. File and result
// ids are separate namespaces and are not interchangeable.
type ResultID int64

// AnalysisResult is the AI-generated analysis of one uploaded file, created
// atomically with it by the server and immutable afterwards.
type AnalysisResult struct {
	ID           ResultID `json:"id"`
	ResponseText string   `json:"response_text"`
}

// UploadedFile is the server's record of an analyzed upload. AIResponse may
// be absent when the server kept the file but produced no analysis.
type UploadedFile struct {
	ID              FileID          `json:"id"`
	Filename        string          `json:"filename"`
	UploadTimestamp time.Time       `json:"upload_timestamp"`
	AIResponse      *AnalysisResult `json:"ai_response,omitempty"`
}

// Format enum for downloads
type Format string

const (
	// FormatPDF and FormatTXT download the rendered analysis and take a
	// ResultID.
	FormatPDF Format = "pdf"
	FormatTXT Format = "txt"
	// FormatOriginal downloads the uploaded bytes and takes a FileID.
	FormatOriginal Format = "original"
)

func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatTXT, FormatOriginal:
		return true
	}
	return false
}

// DownloadPath maps a target id and format to the API path. The id is raw
// because which namespace it belongs to depends on the format; callers track
// which kind they hold.
func DownloadPath(id int64, f Format) string {
	return fmt.Sprintf("/download/%d/%s", id, f)
}
