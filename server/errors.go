// MODUL: errors
// ZWECK: Abbildung von Engine-Fehlern auf API-Codes und HTTP-Status
// INPUT: Fehler aus upscale, corrupt, vision
// OUTPUT: Code-String, HTTP-Status, gin.H Fehlerobjekt
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: gin (gin.H)
// HINWEISE: Die Codes sind Teil der API und werden vom Client in
//           api.StatusError.Code durchgereicht

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chishi/forge/corrupt"
	"github.com/chishi/forge/upscale"
	"github.com/chishi/forge/vision"
)

// ============================================================================
// Fehler-Definitionen
// ============================================================================

var (
	// errInvalidImage markiert nicht dekodierbare Bild-Daten
	errInvalidImage = errors.New("invalid image data")

	// errMissingInput: Anfrage ohne Bild bzw. ohne Body
	errMissingInput = errors.New("missing input")

	// errHostNotAllowed: Host-Header passt nicht zur Host-Liste
	errHostNotAllowed = errors.New("host not allowed")
)

// ============================================================================
// Fehler-Code Mapping
// ============================================================================

type errorClass struct {
	err    error
	code   string
	status int
}

// Reihenfolge ist relevant: die erste passende Klasse gewinnt
var errorClasses = []errorClass{
	{vision.ErrUnknownModel, "MODEL_NOT_FOUND", http.StatusNotFound},
	{vision.ErrModelNotFound, "MODEL_NOT_FOUND", http.StatusNotFound},
	{upscale.ErrModelNotLoaded, "MODEL_NOT_LOADED", http.StatusServiceUnavailable},
	{upscale.ErrUnsupportedScale, "UNSUPPORTED_SCALE", http.StatusBadRequest},
	{upscale.ErrEmptyImage, "INVALID_IMAGE", http.StatusBadRequest},
	{upscale.ErrInference, "INFERENCE_ERROR", http.StatusInternalServerError},
	{errInvalidImage, "INVALID_IMAGE", http.StatusBadRequest},
	{vision.ErrUnsupportedFormat, "UNSUPPORTED_FORMAT", http.StatusBadRequest},
	{errMissingInput, "MISSING_INPUT", http.StatusBadRequest},
	{corrupt.ErrNoPayloadRegion, "NO_PAYLOAD_REGION", http.StatusUnprocessableEntity},
	{corrupt.ErrInvalidPercent, "INVALID_PERCENT", http.StatusBadRequest},
	{corrupt.ErrTooLarge, "FILE_TOO_LARGE", http.StatusRequestEntityTooLarge},
	{errHostNotAllowed, "HOST_NOT_ALLOWED", http.StatusForbidden},
}

// classify gibt API-Code und HTTP-Status fuer einen Fehler zurueck.
func classify(err error) (string, int) {
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.code, c.status
		}
	}
	return "INTERNAL_ERROR", http.StatusInternalServerError
}

// errorH baut das Fehlerobjekt fuer streamResponse
func errorH(err error) gin.H {
	code, status := classify(err)
	return gin.H{"error": err.Error(), "code": code, "status": status}
}

// abortWithError beendet eine Anfrage bevor der Stream beginnt
func abortWithError(c *gin.Context, err error) {
	code, status := classify(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": code})
}
