// Package shutdown coordinates graceful termination of the hub.
//
// A Handler waits for SIGINT or SIGTERM (or a cancelled context), moves
// the core state to stopping, runs the registered hooks newest first under
// a shared deadline and finally marks the core stopped:
//
//	h := shutdown.NewHandler(30*time.Second, shutdown.WithState(state))
//	h.OnShutdown("http", srv.Shutdown)
//	if err := h.Wait(ctx); err != nil {
//		log.Error("shutdown", "error", err)
//	}
package shutdown
