package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PromptRoleSystem = "system"
	PromptRoleUser   = "user"
)

// CreateModelConfig persists a generation configuration. Temperature is
// validated here because generation parameters are caller input, not a
// derived value.
func (db DB) CreateModelConfig(
	ctx context.Context,
	modelConfig *ModelConfig,
) (*ModelConfig, error) {
	if modelConfig == nil || modelConfig.Name == "" || modelConfig.Model == "" {
		return nil, &BadInputError{
			Reason: "model config must have name and model",
		}
	}
	if modelConfig.Temperature < 0 || modelConfig.Temperature > 2 {
		return nil, &BadInputError{
			Reason: fmt.Sprintf(
				"temperature %.2f out of range [0, 2]",
				modelConfig.Temperature,
			),
		}
	}

	err := gorm.G[ModelConfig](db.dbGorm).Create(ctx, modelConfig)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"create model config",
			fmt.Sprintf("name=%s", modelConfig.Name),
		)
	}

	return modelConfig, nil
}

// GetModelConfig retrieves a generation configuration by id.
func (db DB) GetModelConfig(
	ctx context.Context,
	id uuid.UUID,
) (*ModelConfig, error) {
	modelConfig, err := gorm.G[ModelConfig](db.dbGorm).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get model config",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &modelConfig, nil
}

// CreatePrompt persists a reusable prompt.
func (db DB) CreatePrompt(ctx context.Context, prompt *Prompt) (*Prompt, error) {
	if prompt == nil || prompt.Name == "" || prompt.Content == "" {
		return nil, &BadInputError{
			Reason: "prompt must have name and content",
		}
	}
	if prompt.Role != PromptRoleSystem && prompt.Role != PromptRoleUser {
		return nil, &BadInputError{
			Reason: fmt.Sprintf("unknown prompt role %q", prompt.Role),
		}
	}

	err := gorm.G[Prompt](db.dbGorm).Create(ctx, prompt)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"create prompt",
			fmt.Sprintf("name=%s, role=%s", prompt.Name, prompt.Role),
		)
	}

	return prompt, nil
}

// GetPrompt retrieves a prompt by id.
func (db DB) GetPrompt(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	prompt, err := gorm.G[Prompt](db.dbGorm).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get prompt",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &prompt, nil
}
