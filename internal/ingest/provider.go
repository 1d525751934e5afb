package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	ExercisesReceived int   `json:"exercises_received"`
	ExercisesUpserted int64 `json:"exercises_upserted"`
	// Duplicates counts rows dropped because a later row had the same name.
	Duplicates int `json:"duplicates,omitempty"`

	Message string `json:"message,omitempty"`
}
