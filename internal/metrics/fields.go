package metrics

// Common label keys to keep the lineup series consistent/searchable.
const (
	LabelType    = "type"
	LabelTier    = "tier"
	LabelReason  = "reason"
	LabelOutcome = "outcome"
	LabelCode    = "code"
	LabelFrom    = "from"
	LabelTo      = "to"
)
