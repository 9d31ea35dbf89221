package validation

import (
	"encoding/json"
	"testing"
)

func ptrInt(v int64) *int64 { return &v }
func ptrBool(v bool) *bool  { return &v }

func TestValidateHistoricBatch(t *testing.T) {
	known := map[int64]bool{5: true, 7: true}

	tests := []struct {
		name       string
		batch      []HistoricInput
		wantFields []string
	}{
		{
			name:  "valid batch",
			batch: []HistoricInput{{IDWord: ptrInt(5), Hit: ptrBool(true)}, {IDWord: ptrInt(7), Hit: ptrBool(false)}},
		},
		{
			name:       "empty batch",
			batch:      nil,
			wantFields: []string{"historics"},
		},
		{
			name:       "unknown word",
			batch:      []HistoricInput{{IDWord: ptrInt(99), Hit: ptrBool(true)}},
			wantFields: []string{"historics.0.id_word"},
		},
		{
			name:       "missing fields accumulate",
			batch:      []HistoricInput{{}, {IDWord: ptrInt(5)}},
			wantFields: []string{"historics.0.id_word", "historics.0.hit", "historics.1.hit"},
		},
		{
			name: "one bad entry rejects batch",
			batch: []HistoricInput{
				{IDWord: ptrInt(5), Hit: ptrBool(true)},
				{IDWord: ptrInt(42), Hit: ptrBool(false)},
			},
			wantFields: []string{"historics.1.id_word"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateHistoricBatch(tt.batch, known)
			if len(tt.wantFields) == 0 && errs.Any() {
				t.Fatalf("expected no errors, got %v", errs)
			}
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("expected %d errors, got %v", len(tt.wantFields), errs)
			}
			for _, field := range tt.wantFields {
				if _, ok := errs[field]; !ok {
					t.Errorf("missing error for %q in %v", field, errs)
				}
			}
		})
	}
}

func TestHistoricBatchDecodeRejectsNonBoolean(t *testing.T) {
	var batch HistoricBatch
	err := json.Unmarshal([]byte(`{"historics":[{"id_word":5,"hit":"yes"}]}`), &batch)
	if err == nil {
		t.Fatal("expected a type error for non-boolean hit")
	}
}

func TestValidateNewUser(t *testing.T) {
	roles := map[int64]bool{1: true}

	tests := []struct {
		name       string
		input      UserInput
		emailTaken bool
		wantFields []string
	}{
		{
			name:  "valid",
			input: UserInput{Name: "Ada", Email: "ada@example.com", Password: "abc_123"},
		},
		{
			name:       "all fields missing",
			input:      UserInput{},
			wantFields: []string{"name", "email", "password"},
		},
		{
			name:       "bad email format",
			input:      UserInput{Name: "Ada", Email: "not-an-email", Password: "abc"},
			wantFields: []string{"email"},
		},
		{
			name:       "email taken",
			input:      UserInput{Name: "Ada", Email: "ada@example.com", Password: "abc"},
			emailTaken: true,
			wantFields: []string{"email"},
		},
		{
			name:       "password too short",
			input:      UserInput{Name: "Ada", Email: "ada@example.com", Password: "ab"},
			wantFields: []string{"password"},
		},
		{
			name:       "password bad characters",
			input:      UserInput{Name: "Ada", Email: "ada@example.com", Password: "bad pass!"},
			wantFields: []string{"password"},
		},
		{
			name:       "unknown role",
			input:      UserInput{Name: "Ada", Email: "ada@example.com", Password: "abc", Roles: []int64{9}},
			wantFields: []string{"roles"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateNewUser(tt.input, tt.emailTaken, roles)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("expected %d errors, got %v", len(tt.wantFields), errs)
			}
			for _, field := range tt.wantFields {
				if _, ok := errs[field]; !ok {
					t.Errorf("missing error for %q in %v", field, errs)
				}
			}
		})
	}
}

func TestValidateRolesUpdateKeepsLastAdmin(t *testing.T) {
	errs := ValidateRolesUpdate(RolesUpdateInput{IsAdmin: ptrBool(false)}, nil, true)
	if _, ok := errs["is_admin"]; !ok {
		t.Errorf("demoting the last admin must be rejected, got %v", errs)
	}
	errs = ValidateRolesUpdate(RolesUpdateInput{IsAdmin: ptrBool(false)}, nil, false)
	if errs.Any() {
		t.Errorf("demoting a non-last admin must pass, got %v", errs)
	}
}

func TestValidateWord(t *testing.T) {
	tags := map[int64]bool{1: true}
	errs := ValidateWord(WordInput{Name: "house", Translation: "casa", Tags: []int64{1}}, tags)
	if errs.Any() {
		t.Errorf("expected valid word, got %v", errs)
	}
	errs = ValidateWord(WordInput{Tags: []int64{2}}, tags)
	for _, field := range []string{"name", "translation", "tags"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for %q in %v", field, errs)
		}
	}
}

func TestValidateSet(t *testing.T) {
	words := map[int64]bool{5: true}
	if errs := ValidateSet(SetInput{Name: "basics", Words: []int64{5}}, words, false); errs.Any() {
		t.Errorf("expected valid set, got %v", errs)
	}
	errs := ValidateSet(SetInput{Name: "basics"}, words, true)
	for _, field := range []string{"name", "words"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for %q in %v", field, errs)
		}
	}
	errs = ValidateSet(SetInput{Name: "basics", Words: []int64{9}}, words, false)
	if _, ok := errs["words"]; !ok {
		t.Errorf("unknown word id must fail, got %v", errs)
	}
}
