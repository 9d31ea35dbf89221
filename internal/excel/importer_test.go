package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/wordapi/internal/database"
	"github.com/example/wordapi/pkg/models"
)

func TestColumnToIndex(t *testing.T) {
	cases := map[string]int{
		"A":  0,
		"B":  1,
		"Z":  25,
		"AA": 26,
		"":   -1,
		"1":  -1,
	}
	for column, want := range cases {
		if got := columnToIndex(column); got != want {
			t.Errorf("columnToIndex(%q) = %d, want %d", column, got, want)
		}
	}
}

func TestImportWordsFromCSV(t *testing.T) {
	if err := database.ConnectTest(); err != nil {
		t.Fatalf("ConnectTest: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	ctx := context.Background()

	// A word that already exists gets updated, not duplicated.
	existing := &models.Word{Name: "house", Translation: "old"}
	if err := database.NewWordRepository().Create(ctx, existing, nil); err != nil {
		t.Fatalf("create word: %v", err)
	}

	path := filepath.Join(t.TempDir(), "words.csv")
	content := "name,translation,annotation,tags\n" +
		"House,casa,building,Nouns\n" +
		"dog,cachorro,,\"nouns,animals\"\n" +
		"run,correr,,verbs\n" +
		",missing name,,\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	config := DefaultImportConfig()
	config.FilePath = path
	result, err := ImportWords(ctx, config)
	if err != nil {
		t.Fatalf("ImportWords: %v", err)
	}

	if result.TotalProcessed != 4 {
		t.Errorf("processed = %d, want 4", result.TotalProcessed)
	}
	if result.Created != 2 {
		t.Errorf("created = %d, want 2", result.Created)
	}
	if result.Updated != 1 {
		t.Errorf("updated = %d, want 1", result.Updated)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %v, want none", result.Errors)
	}
	if result.TagsCreated != 3 {
		t.Errorf("tags created = %d, want 3", result.TagsCreated)
	}

	got, err := database.NewWordRepository().GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Translation != "casa" {
		t.Errorf("translation = %q, want %q", got.Translation, "casa")
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "nouns" {
		t.Errorf("tags = %+v, want [nouns]", got.Tags)
	}

	words, err := database.NewWordRepository().GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(words) != 3 {
		t.Errorf("catalogue has %d words, want 3", len(words))
	}
}
