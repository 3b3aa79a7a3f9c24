package repository

import (
	"context"
	"greeter/internal/domain/entity"
)

// TextGenerator интерфейс для генерации текста через LLM
type TextGenerator interface {
	// GenerateText отправляет промпт модели. Ошибки клиента провайдера
	// возвращаются как *entity.ProviderError.
	GenerateText(ctx context.Context, req entity.GenerationRequest) (*entity.Generation, error)
	// Model возвращает имя модели, используемой генератором
	Model() string
}
