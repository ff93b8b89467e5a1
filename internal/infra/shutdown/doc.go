// Package shutdown coordinates process termination for long-running
// commands such as watch.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return medium.Close() })
//	ctx, stop := h.Context(context.Background())
//	defer stop()
//	<-ctx.Done()
//	return h.Run()
package shutdown
