// Package shutdown coordinates graceful process termination.
//
// Components register hooks as they start; on SIGINT, SIGTERM or an
// explicit Trigger the hooks run in reverse registration order under one
// shared deadline.
//
// Usage:
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown("aof", engine.Close)
//	err := h.Wait()
package shutdown
