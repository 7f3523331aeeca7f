package api

import (
	"net/http"

	"github.com/c360chat/c360chat/internal/schema"
)

type schemaResponse struct {
	Table      string            `json:"table"`
	Descriptor schema.Descriptor `json:"descriptor"`
	Text       string            `json:"text"`
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema.Table == "" {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "schema descriptor is not configured", false, nil)
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse{
		Table:      deps.Schema.Identifier(),
		Descriptor: deps.Schema,
		Text:       deps.Schema.Render(),
	})
}
