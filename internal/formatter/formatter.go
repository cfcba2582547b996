// package formatter exports tracked items to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
)

// Export is a snapshot of one account's tracked items.
type Export struct {
	Owner      models.Identity      `json:"owner"`
	Tracks     []models.TrackedItem `json:"tracks"`
	ExportedAt time.Time            `json:"exported_at"`
}

// Metadata summarizes an [Export] without its items.
type Metadata struct {
	SteamID      string    `json:"steam_id"`
	DisplayName  string    `json:"display_name"`
	Tracked      int       `json:"tracked"`
	Purchased    int       `json:"purchased"`
	TargetsHit   int       `json:"targets_reached"`
	AutoPurchase int       `json:"auto_purchase"`
	ExportedAt   time.Time `json:"exported_at"`
}

// Summarize counts the export's items by state.
func (e *Export) Summarize() Metadata {
	m := Metadata{
		SteamID:     e.Owner.SteamID,
		DisplayName: e.Owner.DisplayName,
		Tracked:     len(e.Tracks),
		ExportedAt:  e.ExportedAt,
	}
	for _, t := range e.Tracks {
		if t.Purchased() {
			m.Purchased++
		} else if t.TargetReached() {
			m.TargetsHit++
		}
		if t.AutoPurchase {
			m.AutoPurchase++
		}
	}
	return m
}

func baseName(e *Export) string {
	if e.Owner.SteamID != "" {
		return "steamwatch_" + e.Owner.SteamID
	}
	return "steamwatch"
}

// ExportToCSV renders one row per item with columns: ID, Name, HashName, Current, Target, Status, AutoPurchase, Reached
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "HashName", "Current", "Target", "Status", "AutoPurchase", "Reached"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range export.Tracks {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Name,
			t.HashName,
			t.CurrentPrice.StringFixed(2),
			t.TargetPrice.StringFixed(2),
			string(t.Status),
			strconv.FormatBool(t.AutoPurchase),
			strconv.FormatBool(t.TargetReached()),
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

// ExportToMarkdown renders a table of items with an optional avatar image
func ExportToMarkdown(export *Export, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	meta := export.Summarize()

	owner := export.Owner.DisplayName
	if owner == "" {
		owner = "steamwatch"
	}
	fmt.Fprintf(&buf, "# %s's watchlist\n\n", owner)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Avatar](%s)\n\n", imageFilename)
	}

	fmt.Fprintf(&buf, "**Tracked**: %d\n", meta.Tracked)
	fmt.Fprintf(&buf, "**Targets reached**: %d\n", meta.TargetsHit)
	fmt.Fprintf(&buf, "**Purchased**: %d\n\n", meta.Purchased)

	buf.WriteString("## Items\n\n")
	buf.WriteString("| # | Item | Current | Target | Status | Auto |\n")
	buf.WriteString("|---|------|---------|--------|--------|------|\n")
	for i, t := range export.Tracks {
		name := t.Name
		if t.TargetReached() && !t.Purchased() {
			name = "**" + name + "**"
		}
		auto := ""
		if t.AutoPurchase {
			auto = "yes"
		}
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s | %s |\n",
			i+1, name, t.CurrentPrice.StringFixed(2), t.TargetPrice.StringFixed(2), t.Status, auto)
	}

	return buf.Bytes(), nil
}

// ExportToText renders a plain list of items
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	if export.Owner.DisplayName != "" {
		fmt.Fprintf(&buf, "Account: %s (%s)\n", export.Owner.DisplayName, export.Owner.SteamID)
	}
	fmt.Fprintf(&buf, "Tracked: %d\n\n", len(export.Tracks))

	for i, t := range export.Tracks {
		marker := ""
		switch {
		case t.Purchased():
			marker = " [purchased]"
		case t.TargetReached():
			marker = " [target reached]"
		}
		fmt.Fprintf(&buf, "%d. %s - %s / %s%s\n", i+1, t.Name, t.CurrentPrice.StringFixed(2), t.TargetPrice.StringFixed(2), marker)
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates the JSON summary written next to CSV exports
func ToMetadataJSON(export *Export) ([]byte, error) {
	return shared.MarshalJSON(export.Summarize(), true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport writes {base}_tracks.csv and {base}_metadata.json.
//
// The base defaults to steamwatch_{steam id}.
func WriteCSVExport(export *Export, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = baseName(export)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Avatar    string
}

// WriteMarkdownExport writes {dir}/README.md and, when imageURL downloads, {dir}/avatar.jpg.
//
// A failed avatar download is logged to warn and skipped.
func WriteMarkdownExport(export *Export, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = baseName(export)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir}
	logger := shared.NewLogger(nil)

	var avatarFilename string
	if imageURL != "" {
		if imageData, err := DownloadImage(imageURL); err != nil {
			logger.Warn("failed to download avatar", "err", err)
		} else {
			avatarPath := filepath.Join(outputDir, "avatar.jpg")
			if err := os.WriteFile(avatarPath, imageData, 0644); err != nil {
				logger.Warn("failed to save avatar", "err", err)
			} else {
				avatarFilename = "avatar.jpg"
				result.Avatar = avatarPath
				result.Files = append(result.Files, avatarPath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, avatarFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport writes the plain text export, defaulting to {base}_tracks.txt.
func WriteTextExport(export *Export, path string) (string, error) {
	if path == "" {
		path = baseName(export) + "_tracks.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
