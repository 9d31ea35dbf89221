// Package excel bulk-loads the word catalogue from spreadsheet files.
package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	NameColumn        string // Column with the word
	TranslationColumn string // Column with the translation
	AnnotationColumn  string // Column with the annotation
	TagsColumn        string // Column with comma-separated tag names
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		NameColumn:        "A",
		TranslationColumn: "B",
		AnnotationColumn:  "C",
		TagsColumn:        "D",
		SheetName:         "Sheet1",
		StartRow:          2, // Skip the header row
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	TagsCreated    int
	Errors         []string
}

// ImportWords imports words from an Excel or CSV file. Existing words
// are matched by name and updated in place.
func ImportWords(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

func importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	importer, err := newImporter(ctx)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		importer.processRow(ctx, rowValues(row, config), i+1)
	}
	return importer.result, nil
}

func importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	importer, err := newImporter(ctx)
	if err != nil {
		return nil, err
	}

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		importer.processRow(ctx, rowValues(row, config), rowNum)
	}
	return importer.result, nil
}

type rowData struct {
	name        string
	translation string
	annotation  string
	tags        []string
}

func rowValues(row []string, config ImportConfig) rowData {
	cell := func(column string) string {
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}
	data := rowData{
		name:        strings.ToLower(cell(config.NameColumn)),
		translation: cell(config.TranslationColumn),
		annotation:  cell(config.AnnotationColumn),
	}
	for _, raw := range strings.Split(cell(config.TagsColumn), ",") {
		if tag := strings.ToLower(strings.TrimSpace(raw)); tag != "" {
			data.tags = append(data.tags, tag)
		}
	}
	return data
}

type importer struct {
	words    *database.WordRepository
	tags     *database.TagRepository
	existing map[string]int64
	tagIDs   map[string]int64
	result   *ImportResult
}

func newImporter(ctx context.Context) (*importer, error) {
	wordRepo := database.NewWordRepository()
	tagRepo := database.NewTagRepository()

	words, err := wordRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing words: %v", err)
	}
	existing := make(map[string]int64, len(words))
	for _, word := range words {
		existing[word.Name] = word.ID
	}

	tags, err := tagRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing tags: %v", err)
	}
	tagIDs := make(map[string]int64, len(tags))
	for _, tag := range tags {
		tagIDs[tag.Name] = tag.ID
	}

	return &importer{
		words:    wordRepo,
		tags:     tagRepo,
		existing: existing,
		tagIDs:   tagIDs,
		result:   &ImportResult{Errors: make([]string, 0)},
	}, nil
}

func (imp *importer) processRow(ctx context.Context, data rowData, rowNum int) {
	imp.result.TotalProcessed++

	if data.name == "" || data.translation == "" {
		imp.result.Skipped++
		return
	}

	tagIDs, err := imp.ensureTags(ctx, data.tags)
	if err != nil {
		imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}

	word := &models.Word{Name: data.name, Translation: data.translation, Annotation: data.annotation}
	if id, ok := imp.existing[data.name]; ok {
		word.ID = id
		if err := imp.words.Update(ctx, word, tagIDs); err != nil {
			imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			return
		}
		imp.result.Updated++
		return
	}

	if err := imp.words.Create(ctx, word, tagIDs); err != nil {
		imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}
	imp.existing[data.name] = word.ID
	imp.result.Created++
}

// ensureTags resolves tag names to IDs, creating missing tags
func (imp *importer) ensureTags(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		if id, ok := imp.tagIDs[name]; ok {
			ids = append(ids, id)
			continue
		}
		found, err := imp.tags.GetByName(ctx, name)
		if err == nil {
			imp.tagIDs[name] = found.ID
			ids = append(ids, found.ID)
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		tag := &models.Tag{Name: name}
		if err := imp.tags.Create(ctx, tag); err != nil {
			return nil, err
		}
		imp.tagIDs[name] = tag.ID
		imp.result.TagsCreated++
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// columnToIndex converts an Excel column letter to a zero-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	index := 0
	for _, ch := range column {
		if ch < 'A' || ch > 'Z' {
			return -1
		}
		index = index*26 + int(ch-'A') + 1
	}
	return index - 1
}
