package usecases_port

import "context"

type RefreshStreetIndexUseCase interface {
	Execute(ctx context.Context, trigger string) error
}
