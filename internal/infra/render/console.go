package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	domain "github.com/bryanwahyu/insight-cli/internal/domain/analysis"
	"github.com/bryanwahyu/insight-cli/internal/domain/files"
)

// Console renders controller state on the terminal. Controllers stay free of
// presentation; everything user-visible goes through here.
type Console struct {
	out io.Writer
	in  *bufio.Reader

	success *color.Color
	failure *color.Color
	info    *color.Color
}

func NewConsole() *Console {
	return &Console{
		out:     os.Stdout,
		in:      bufio.NewReader(os.Stdin),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		info:    color.New(color.FgCyan),
	}
}

func (c *Console) Successf(format string, args ...any) {
	c.success.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) Errorf(format string, args ...any) {
	c.failure.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) Infof(format string, args ...any) {
	c.info.Fprintf(c.out, format+"\n", args...)
}

// Result prints a finished analysis job: the markdown prose plus the ids the
// user needs for downloads.
func (c *Console) Result(job domain.Job) {
	if job.Status != domain.StatusSucceeded {
		return
	}
	c.Successf("Analysis complete for %q", job.FileName)
	if job.Result != nil {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, job.Result.ResponseText)
		fmt.Fprintln(c.out)
		c.Infof("file id %d, result id %d (use `insight download` for pdf/txt/original)",
			job.FileID, job.Result.ID)
	}
}

// History lists the per-user uploads with a short analysis preview, the way
// the web client renders its history panel.
func (c *Console) History(entries []*files.UploadedFile) {
	if len(entries) == 0 {
		c.Infof("No files uploaded yet.")
		return
	}
	for _, f := range entries {
		fmt.Fprintf(c.out, "%6d  %s  %s\n", f.ID, f.UploadTimestamp.Format("2006-01-02 15:04"), f.Filename)
		if f.AIResponse == nil {
			fmt.Fprintf(c.out, "        no AI analysis available\n")
			continue
		}
		fmt.Fprintf(c.out, "        result id %d: %s\n", f.AIResponse.ID, preview(f.AIResponse.ResponseText, 150))
	}
}

// Confirm is the yes/no gate for destructive actions.
func (c *Console) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
