package handler

import (
	"log"
	"net/http"

	"github.com/awsl-project/lsdir/internal/bridge"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := bridge.Marshal(v)
	if err != nil {
		log.Printf("[Handler] Failed to encode response: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
