package normalize

// Drop reasons, used as log fields and metric labels.
const (
	reasonEmptyID      = "empty_id"
	reasonNotObject    = "not_object"
	reasonMissingScore = "missing_score"
	reasonBadScore     = "invalid_score"
)
