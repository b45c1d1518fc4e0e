package generationcmd

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/commands"
	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/pipeline"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

const generateSiteMessageType = "invites.generation.generate_site"

// DefaultWaitTimeout bounds a GenerateSiteCommand that waits for its task.
const DefaultWaitTimeout = 3 * time.Minute

// Text codes returned by the handler.
const (
	TextCodeQueueFull        = "GENERATION_QUEUE_FULL"
	TextCodeServiceClosed    = "GENERATION_SERVICE_CLOSED"
	TextCodeGenerationFailed = "GENERATION_FAILED"
)

// GenerateSiteCommand submits a generation request. With Wait set the
// handler blocks until the task finishes and fills Result.
type GenerateSiteCommand struct {
	Request domain.GenerationRequest `json:"request"`
	Wait    bool                     `json:"wait,omitempty"`
	Result  *GenerateSiteResult      `json:"-"`
}

// GenerateSiteResult reports the submitted task and, when waited on, its final state.
type GenerateSiteResult struct {
	TaskID   uuid.UUID
	Snapshot domain.StatusSnapshot
}

// Type implements command.Message.
func (GenerateSiteCommand) Type() string { return generateSiteMessageType }

// Validate only checks the envelope. Request content is validated by the
// pipeline so that an invalid request still yields a failed task.
func (m GenerateSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Result, validation.When(m.Wait,
			validation.NotNil.ErrorObject(validation.NewError("invites.generation.result_required", "result is required when waiting")))),
	)
}

// Generator is the part of the pipeline service the handler drives.
type Generator interface {
	Submit(ctx context.Context, req domain.GenerationRequest) (uuid.UUID, error)
	Wait(ctx context.Context, taskID uuid.UUID) (domain.StatusSnapshot, error)
}

// GenerateSiteHandler executes GenerateSiteCommand through the shared handler.
type GenerateSiteHandler struct {
	inner *commands.Handler[GenerateSiteCommand]
}

// NewGenerateSiteHandler wires the handler to the pipeline service.
func NewGenerateSiteHandler(service Generator, logger interfaces.Logger, opts ...commands.HandlerOption[GenerateSiteCommand]) *GenerateSiteHandler {
	exec := func(ctx context.Context, msg GenerateSiteCommand) error {
		taskID, err := service.Submit(ctx, msg.Request)
		if err != nil {
			return submitError(err)
		}
		if msg.Result != nil {
			msg.Result.TaskID = taskID
		}
		if !msg.Wait {
			return nil
		}

		snapshot, err := service.Wait(ctx, taskID)
		msg.Result.Snapshot = snapshot
		if err != nil {
			return err
		}
		if snapshot.Status == domain.StatusFailed {
			return goerrors.New(snapshot.Message, goerrors.CategoryOperation).
				WithTextCode(TextCodeGenerationFailed).
				WithMetadata(map[string]any{"task_id": taskID.String()})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[GenerateSiteCommand]{
		commands.WithLogger[GenerateSiteCommand](logger),
		commands.WithOperation[GenerateSiteCommand]("generation.generate_site"),
		commands.WithTimeout[GenerateSiteCommand](DefaultWaitTimeout),
		commands.WithMessageFields(func(msg GenerateSiteCommand) map[string]any {
			return map[string]any{
				"event_category": string(msg.Request.EventCategory),
				"wait":           msg.Wait,
			}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &GenerateSiteHandler{
		inner: commands.NewHandler[GenerateSiteCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[GenerateSiteCommand].Execute.
func (h *GenerateSiteHandler) Execute(ctx context.Context, msg GenerateSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func submitError(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrQueueFull):
		return goerrors.Wrap(err, goerrors.CategoryRateLimit, "generation queue is full").
			WithTextCode(TextCodeQueueFull)
	case errors.Is(err, pipeline.ErrServiceClosed):
		return goerrors.Wrap(err, goerrors.CategoryOperation, "generation service is shutting down").
			WithTextCode(TextCodeServiceClosed)
	default:
		return err
	}
}
