package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/automator-io/admin-service/pkg/response"
	"github.com/automator-io/admin-service/pkg/resterr"
	"github.com/automator-io/admin-service/pkg/validation"
)

// writeErr renders a service error into the response envelope. Multi-detail
// errors expand into one entry per field, single errors into one entry, and
// any attached data rides along in the data slot.
func writeErr(c *gin.Context, e *resterr.Error) {
	details := make([]response.ErrorDetail, 0, 1)
	if len(e.Details) > 0 {
		for _, d := range e.Details {
			details = append(details, response.ErrorDetail{Code: d.Code, Message: d.Message, Field: d.Field})
		}
	} else {
		details = append(details, response.ErrorDetail{Code: e.Code, Message: e.Message, Field: e.Field})
	}
	c.JSON(e.Status, response.Envelope{
		Success:    false,
		StatusCode: e.Status,
		Message:    e.Message,
		Data:       e.Data,
		Errors:     details,
	})
}

// badPayload renders a 400 for bodies that fail binding, expanding
// validator errors into per-field details.
func badPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Envelope{
		Success:    false,
		StatusCode: http.StatusBadRequest,
		Message:    "Invalid request payload",
		Errors:     validation.ToDetails(err),
	})
}

// pageParams reads limit and skip from the query string. Range validation
// happens in the services; this only rejects values that do not parse.
func pageParams(c *gin.Context) (limit, skip int, ok bool) {
	limit, skip = 100, 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeErr(c, resterr.BadRequest("INVALID_LIMIT", "Limit must be between 1 and 1000").WithField("limit"))
			return 0, 0, false
		}
		limit = v
	}
	if raw := c.Query("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeErr(c, resterr.BadRequest("INVALID_SKIP", "Skip must be 0 or greater").WithField("skip"))
			return 0, 0, false
		}
		skip = v
	}
	return limit, skip, true
}

// rawBody drains the request body for the patch-style update endpoints,
// which need the exact top-level keys the client sent.
func rawBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		writeErr(c, resterr.BadRequest("VALIDATION_ERROR", "Invalid request payload").WithField("body"))
		return nil, false
	}
	return body, true
}

func created(c *gin.Context, message string, data any) {
	response.Success(c, http.StatusCreated, message, data)
}

func ok(c *gin.Context, message string, data any) {
	response.Success(c, http.StatusOK, message, data)
}
