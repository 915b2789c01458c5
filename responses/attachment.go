package responses

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/zeptools/invoicing-core/rw"
)

// WriteAttachment streams rendered bytes to the response as a file download.
func WriteAttachment(w http.ResponseWriter, contentType string, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK) // Response Header Sent & Frozen
	cw := rw.NewCountWriter(w)
	if _, err := cw.Write(data); err != nil {
		log.Printf("[ERROR] writing attachment %q to Response after %d bytes: %v", filename, cw.BytesWritten(), err)
	}
}
