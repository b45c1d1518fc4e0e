package pipeline

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrQueueFull          = errors.New("pipeline: queue full")
	ErrTaskNotFound       = errors.New("pipeline: task not found")
	ErrStoreRequired      = errors.New("pipeline: site store required")
	ErrServiceClosed      = errors.New("pipeline: service closed")
	ErrSubscriptionClosed = errors.New("pipeline: subscription closed before task finished")
	errMissingStep        = errors.New("pipeline: no step registered for status")
	errSlugRaceExhaust    = errors.New("pipeline: slug kept colliding on save")
)

// Text codes carried by task failures.
const (
	TextCodeValidationFailed  = "TASK_VALIDATION_FAILED"
	TextCodePersistenceFailed = "PERSISTENCE_FAILED"
	TextCodeSlugExhausted     = "SLUG_EXHAUSTED"
	TextCodeAssemblyFailed    = "ASSEMBLY_FAILED"
	TextCodeInternal          = "PIPELINE_INTERNAL"
)

// FailureKind is the exhaustive set of reasons a task may end in Failed.
type FailureKind string

const (
	FailureValidation    FailureKind = "validation_failed"
	FailurePersistence   FailureKind = "persistence_failed"
	FailureSlugExhausted FailureKind = "slug_exhausted"
	FailureAssembly      FailureKind = "assembly_failed"
	FailureInternal      FailureKind = "internal"
)

type failure struct {
	kind    FailureKind
	code    string
	message string
	loud    bool
}

var failures = map[string]failure{
	TextCodeValidationFailed:  {kind: FailureValidation, code: TextCodeValidationFailed, message: "The invitation details are incomplete or invalid"},
	TextCodePersistenceFailed: {kind: FailurePersistence, code: TextCodePersistenceFailed, message: "The invitation could not be saved, please try again"},
	TextCodeSlugExhausted:     {kind: FailureSlugExhausted, code: TextCodeSlugExhausted, message: "Could not allocate an address for the invitation", loud: true},
	TextCodeAssemblyFailed:    {kind: FailureAssembly, code: TextCodeAssemblyFailed, message: "The invitation page could not be built", loud: true},
	TextCodeInternal:          {kind: FailureInternal, code: TextCodeInternal, message: "Unexpected error while generating the invitation", loud: true},
}

func validationFailed(err error) error {
	return goerrors.FromOzzoValidation(err, "generation request is invalid").
		WithTextCode(TextCodeValidationFailed)
}

func persistenceFailed(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "site could not be saved").
		WithTextCode(TextCodePersistenceFailed)
}

func slugExhausted(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryConflict, "slug space exhausted").
		WithTextCode(TextCodeSlugExhausted).
		WithSeverity(goerrors.SeverityCritical)
}

func assemblyFailed(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "document assembly failed").
		WithTextCode(TextCodeAssemblyFailed)
}

func internalFailure(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "pipeline step failed").
		WithTextCode(TextCodeInternal).
		WithSeverity(goerrors.SeverityCritical)
}

// classify maps a step error onto its failure. Errors that did not pass
// through one of the constructors above are internal defects.
func classify(err error) failure {
	var typed *goerrors.Error
	if errors.As(err, &typed) && typed != nil {
		if f, ok := failures[typed.TextCode]; ok {
			return f
		}
	}
	return failures[TextCodeInternal]
}

// FailureKindOf reports the failure kind recorded on a task error code.
func FailureKindOf(code string) (FailureKind, bool) {
	f, ok := failures[code]
	return f.kind, ok
}
