package common

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrescamacho/garmentflow/internal/application/mediator"
	"github.com/andrescamacho/garmentflow/internal/domain/shared"
)

// LoggingMiddleware logs every request with its duration and, on failure, the
// error code. The request-scoped logger is injected into the context so
// handlers can add their own events.
func LoggingMiddleware(logger zerolog.Logger) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		name := mediator.RequestName(request)

		fields := logger.With().Str("request", name)
		for key, value := range requestIdentifiers(request) {
			fields = fields.Str(key, value)
		}
		reqLogger := fields.Logger()
		ctx = WithLogger(ctx, reqLogger)

		start := time.Now()
		response, err := next(ctx, request)
		elapsed := time.Since(start)

		if err != nil {
			event := reqLogger.Warn()
			if code := shared.CodeOf(err); code != "" {
				event = event.Str("code", string(code))
			} else {
				event = reqLogger.Error()
			}
			event.Err(err).Dur("duration", elapsed).Msg("request failed")
			return response, err
		}

		reqLogger.Debug().Dur("duration", elapsed).Msg("request handled")
		return response, nil
	}
}

// requestIdentifiers collects non-empty string fields named *ID from a request
// struct, e.g. JobID becomes "job_id"
func requestIdentifiers(request mediator.Request) map[string]string {
	ids := make(map[string]string)

	value := reflect.ValueOf(request)
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return ids
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return ids
	}

	valueType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		field := valueType.Field(i)
		if !field.IsExported() || !strings.HasSuffix(field.Name, "ID") {
			continue
		}
		fieldValue := value.Field(i)
		if fieldValue.Kind() != reflect.String || fieldValue.String() == "" {
			continue
		}
		ids[snakeCase(field.Name)] = fieldValue.String()
	}
	return ids
}

func snakeCase(name string) string {
	name = strings.TrimSuffix(name, "ID")
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String()) + "_id"
}
