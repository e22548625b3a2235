package application

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/automator-io/admin-service/pkg/resterr"
)

// decodePatch unmarshals an update payload into dst after rejecting any
// top-level key outside the allowed set. Unknown keys fail the whole
// request up front, one detail per offending field, so a typo never
// silently drops part of an update.
func decodePatch(body []byte, allowed map[string]struct{}, dst any) *resterr.Error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return resterr.BadRequest("VALIDATION_ERROR", "Invalid request payload").WithField("body")
	}

	var invalid []string
	for key := range raw {
		if _, ok := allowed[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		details := make([]resterr.Detail, 0, len(invalid))
		for _, f := range invalid {
			details = append(details, resterr.Detail{
				Code:    "INVALID_FIELD",
				Message: fmt.Sprintf("Field '%s' is not a valid top-level field", f),
				Field:   f,
			})
		}
		msg := "Invalid top-level fields provided: " + strings.Join(invalid, ", ")
		return resterr.BadRequest("INVALID_FIELD", msg).WithDetails(details...)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return resterr.BadRequest("VALIDATION_ERROR", "Invalid request payload").WithField("body")
	}
	return nil
}
