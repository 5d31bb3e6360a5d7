package interfaces

import (
	"context"

	domaintypes "cloudpick/internal/domain/types"
)

// Invoker executes one remote control-plane call. A failed call returns a
// *domaintypes.TransportError carrying the platform's diagnostic.
type Invoker interface {
	Invoke(
		ctx context.Context,
		endpoint domaintypes.Endpoint,
		params domaintypes.Params,
	) (domaintypes.Result, error)
}
