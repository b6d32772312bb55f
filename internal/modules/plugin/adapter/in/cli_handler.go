package in

import (
	"context"

	"mdash/internal/modules/plugin/dto"
	pluginin "mdash/internal/modules/plugin/port/in"
)

type CLIHandler struct {
	uc pluginin.Usecase
}

func NewCLIHandler(uc pluginin.Usecase) *CLIHandler {
	return &CLIHandler{uc: uc}
}

func (h *CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.uc.List(ctx)
}

func (h *CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.uc.Doctor(ctx)
}

func (h *CLIHandler) ListCommands(ctx context.Context, pluginName string) ([]dto.CommandInfo, error) {
	return h.uc.ListCommands(ctx, pluginName)
}

func (h *CLIHandler) Export(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error) {
	return h.uc.Export(ctx, input)
}

func (h *CLIHandler) Analyze(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error) {
	return h.uc.Analyze(ctx, input)
}

func (h *CLIHandler) PrepareTTY(ctx context.Context, input dto.TTYPrepareInput) (dto.TTYPrepareOutput, error) {
	return h.uc.PrepareTTY(ctx, input)
}
