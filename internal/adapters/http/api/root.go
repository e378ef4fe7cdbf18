package api

import (
	"net/http"

	"github.com/okian/itemstore/internal/domain/types"
)

// handleRoot handles GET /.
func handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.Message{Message: welcomeMessage})
}
