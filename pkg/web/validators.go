package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

// gte returns a ParamValidator that checks if the argument is greater than or equal to min.
func gte(min int64) ParamValidator {
	return func(argValue int64) bool {
		return argValue >= min
	}
}

// ParseOptionalGte reads an integer query parameter that must be >= min.
// An absent parameter yields def. On an invalid value the 400 response is written and false is returned.
func ParseOptionalGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, min, def int64) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return int(def), true
	}
	return parseValidate(w, logger, key, value, gte(min))
}

func parseValidate(w http.ResponseWriter, logger *slog.Logger, key, value string, pValidator ParamValidator) (int, bool) {
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || !pValidator(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return int(intValue), true
}
