package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Pinger is implemented by every store backend and probed by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}
