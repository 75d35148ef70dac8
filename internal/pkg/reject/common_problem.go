package reject

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const (
	genericUnexpectedError string = "error.generic.unexpected"
	cannotParseParams      string = "error.generic.cannot-parse-params"
	invalidRequest         string = "error.generic.invalid-request-payload"
	cannotParseBody        string = "error.generic.cannot-parse-payload"
	genericNotFound        string = "error.generic.not-found"
	accessForbidden        string = "error.generic.forbidden"
)

func RequestValidationProblem(details []ProblemDetail) Problem {
	return NewProblem().
		WithTitle("Invalid request payload").
		WithStatus(http.StatusBadRequest).
		WithCode(invalidRequest).
		WithErrors(details).
		Build()
}

// BindProblem renders a gin binding error. Field rule violations list the
// offending fields, anything else is an unreadable body.
func BindProblem(err error) Problem {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return BodyParseProblem()
	}

	details := make([]ProblemDetail, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		details = append(details, ProblemDetail{
			Property: fe.Field(),
			Code:     fe.Tag(),
			Info:     fe.Error(),
		})
	}
	return RequestValidationProblem(details)
}

func RequestParamsProblem() Problem {
	return NewProblem().
		WithTitle("Invalid request parameters").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseParams).
		Build()
}

func BodyParseProblem() Problem {
	return NewProblem().
		WithTitle("Cannot read payload").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseBody).
		Build()
}

func NotFoundProblem() Problem {
	return NewProblem().
		WithTitle("Record not found").
		WithStatus(http.StatusNotFound).
		WithCode(genericNotFound).
		Build()
}

func UnexpectedProblem(err error) Problem {
	log.Warn().Err(err).Msg("Unexpected error while handling request")
	return NewProblem().
		WithTitle("Unexpected error").
		WithStatus(http.StatusInternalServerError).
		WithCode(genericUnexpectedError).
		Build()
}

func ForbiddenProblem() Problem {
	return NewProblem().
		WithTitle("Access forbidden").
		WithStatus(http.StatusForbidden).
		WithCode(accessForbidden).
		Build()
}

func Unexpected(err error) *ProblemWithTrace {
	return &ProblemWithTrace{Problem: UnexpectedProblem(err), Cause: err}
}
