package validation

import "fmt"

// HistoricInput is one review event in a create_historic batch. Pointer
// fields distinguish absent from zero-valued, so "required" can be
// reported precisely.
type HistoricInput struct {
	IDWord *int64 `json:"id_word"`
	Hit    *bool  `json:"hit"`
}

// HistoricBatch is the create_historic request body
type HistoricBatch struct {
	Historics []HistoricInput `json:"historics"`
}

// ValidateHistoricBatch checks every event in the batch: id_word and hit
// must be present, and each id_word must be in the pre-fetched word id
// set. Errors are keyed historics.N.field so each bad entry is named.
// Any error rejects the entire batch; nothing is partially inserted.
func ValidateHistoricBatch(batch []HistoricInput, knownWords map[int64]bool) FieldErrors {
	errs := FieldErrors{}
	if len(batch) == 0 {
		errs.Add("historics", "Field 'historics' cannot be left blank")
		return errs
	}
	for i, event := range batch {
		if event.IDWord == nil {
			errs.Add(fmt.Sprintf("historics.%d.id_word", i), "Field 'id_word' is required.")
		} else if !knownWords[*event.IDWord] {
			errs.Add(fmt.Sprintf("historics.%d.id_word", i), fmt.Sprintf("Word ID %d does not exist", *event.IDWord))
		}
		if event.Hit == nil {
			errs.Add(fmt.Sprintf("historics.%d.hit", i), "Field 'hit' is required.")
		}
	}
	return errs
}
