package analysis

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bryanwahyu/insight-cli/internal/domain/files"
)

// Category enum: selects which analysis instructions are sent to the AI, not
// which code path runs locally.
type Category string

const (
	CategoryImage       Category = "image"
	CategoryDocument    Category = "document"
	CategorySpreadsheet Category = "spreadsheet"
	CategoryText        Category = "text"
	CategoryUnknown     Category = "unknown"
)

// JobStatus enum
type JobStatus string

const (
	StatusIdle      JobStatus = "idle"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the lifecycle of one upload-and-analyze request. At most one
// job is running at a time; that is enforced by the client, not the server.
type Job struct {
	FileName  string
	Category  Category
	Status    JobStatus
	StartedAt time.Time
	FileID    files.FileID
	Result    *files.AnalysisResult
	Err       string
}

var categoryByExt = map[string]Category{
	".jpg":  CategoryImage,
	".jpeg": CategoryImage,
	".png":  CategoryImage,
	".pdf":  CategoryDocument,
	".docx": CategoryDocument,
	".csv":  CategorySpreadsheet,
	".xlsx": CategorySpreadsheet,
	".xls":  CategorySpreadsheet,
	".txt":  CategoryText,
}

// Allowed reports whether the file's extension is in the accepted set.
func Allowed(fileName string) bool {
	_, ok := categoryByExt[ext(fileName)]
	return ok
}

// Classify maps a file name to its analysis category. Case-insensitive on
// the extension; anything outside the accepted set is CategoryUnknown.
func Classify(fileName string) Category {
	if c, ok := categoryByExt[ext(fileName)]; ok {
		return c
	}
	return CategoryUnknown
}

// Extensions returns the accepted extension list, sorted, for user-facing
// validation messages.
func Extensions() []string {
	out := make([]string, 0, len(categoryByExt))
	for e := range categoryByExt {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

func ext(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}
