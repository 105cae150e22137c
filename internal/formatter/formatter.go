// package formatter renders gallery pages as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/wallview/internal/models"
	"github.com/desertthunder/wallview/internal/shared"
)

// Formats lists the names accepted by [Format].
var Formats = []string{"text", "csv", "markdown", "json"}

// ToCSV converts a page to CSV with columns: ID, Filename, Width, Height, Size, UploadTime, SortIndex
func ToCSV(page *models.Page) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Filename", "Width", "Height", "Size", "UploadTime", "SortIndex"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, img := range page.Images {
		record := []string{
			img.ID,
			img.Filename,
			strconv.Itoa(img.Width),
			strconv.Itoa(img.Height),
			strconv.FormatInt(img.Size, 10),
			img.UploadTime,
			strconv.Itoa(img.SortIndex),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders a page as a Markdown list with inline image links
func ToMarkdown(category string, page *models.Page) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", category)
	fmt.Fprintf(&buf, "**Images**: %d\n", page.TotalCount)
	fmt.Fprintf(&buf, "**Page**: %d of %d\n\n", page.CurrentPage, page.TotalPages)

	buf.WriteString("## Images\n\n")
	for _, img := range page.Images {
		fmt.Fprintf(&buf, "%d. [%s](%s) %s, %s, uploaded %s\n",
			img.SortIndex, img.Filename, img.URL, Dimensions(img.Width, img.Height), FormatSize(img.Size), img.UploadTime)
	}

	return buf.Bytes(), nil
}

// ToText renders a page as plain text, one image per line
func ToText(category string, page *models.Page) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Category: %s\n", category)
	fmt.Fprintf(&buf, "Page: %d of %d (%d images)\n\n", page.CurrentPage, page.TotalPages, page.TotalCount)

	for _, img := range page.Images {
		fmt.Fprintf(&buf, "%d. %s  %s  %s  %s\n", img.SortIndex, img.Filename, Dimensions(img.Width, img.Height), FormatSize(img.Size), img.UploadTime)
	}

	return buf.Bytes(), nil
}

// ToJSON renders a page as indented JSON in the API's shape
func ToJSON(page *models.Page) ([]byte, error) {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page: %w", err)
	}
	return append(data, '\n'), nil
}

// Format renders page in the named format. Unknown formats fail with shared.ErrInvalidArgument.
func Format(format, category string, page *models.Page) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "text", "txt":
		return ToText(category, page)
	case "csv":
		return ToCSV(page)
	case "markdown", "md":
		return ToMarkdown(category, page)
	case "json":
		return ToJSON(page)
	}
	return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
}

// Write renders page to w
func Write(w io.Writer, format, category string, page *models.Page) error {
	data, err := Format(format, category, page)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteFile renders page into the file at path
func WriteFile(path, format, category string, page *models.Page) error {
	data, err := Format(format, category, page)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FormatSize renders a byte count with binary units, e.g. "1.5 MB"
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Dimensions renders width and height as "W×H", or "?" when unknown
func Dimensions(w, h int) string {
	if w == 0 || h == 0 {
		return "?"
	}
	return fmt.Sprintf("%d×%d", w, h)
}
